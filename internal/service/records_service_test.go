package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/spec-kit/support-console/internal/domain"
)

func TestPageNormalize(t *testing.T) {
	cases := []struct {
		in         Page
		limit, off int
	}{
		{Page{}, DefaultPageLimit, 0},
		{Page{Page: 3, Limit: 10}, 10, 20},
		{Page{Page: -1, Limit: 500}, MaxPageLimit, 0},
	}
	for _, tc := range cases {
		limit, off := tc.in.normalize()
		if limit != tc.limit || off != tc.off {
			t.Fatalf("%+v -> (%d, %d), want (%d, %d)", tc.in, limit, off, tc.limit, tc.off)
		}
	}
}

func TestListUsersPaginates(t *testing.T) {
	users := &fakeUserRepo{}
	for i := 0; i < 5; i++ {
		users.users = append(users.users, domain.User{ID: fmt.Sprintf("u%d", i)})
	}
	svc := NewRecordsService(RecordsDependencies{UserRepo: users})
	ctx := context.Background()

	first, err := svc.ListUsers(ctx, UserListFilter{Page: Page{Page: 1, Limit: 2}})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(first.Items) != 2 || !first.HasMore || first.Items[0].ID != "u0" {
		t.Fatalf("page 1 = %+v", first)
	}
	last, err := svc.ListUsers(ctx, UserListFilter{Page: Page{Page: 3, Limit: 2}})
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(last.Items) != 1 || last.HasMore || last.Page != 3 {
		t.Fatalf("page 3 = %+v", last)
	}

	if _, err := svc.GetUser(ctx, "ghost"); errorCode(err) != "NOT_FOUND" {
		t.Fatalf("missing user: %v", err)
	}
}

func TestListTransactionsRejectsInvertedRange(t *testing.T) {
	svc := NewRecordsService(RecordsDependencies{})
	from := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	_, err := svc.ListTransactions(context.Background(), TransactionListFilter{From: &from, To: &to})
	if errorCode(err) != "VALIDATION_FAILED" {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func newKYCFixture() (*RecordsService, *fakeUserRepo, *fakeKYCRepo) {
	users := &fakeUserRepo{users: []domain.User{{ID: "u1", KYCStatus: domain.KYCStatusPending}}}
	kyc := &fakeKYCRepo{subs: map[string]*domain.KYCSubmission{
		"k1": {ID: "k1", UserID: "u1", Status: domain.KYCSubmissionPending},
	}}
	return NewRecordsService(RecordsDependencies{UserRepo: users, KYCRepo: kyc}), users, kyc
}

func TestApproveKYC(t *testing.T) {
	svc, users, _ := newKYCFixture()
	sub, err := svc.ApproveKYC(context.Background(), "k1", "a1", " looks good ")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if sub.Status != domain.KYCSubmissionApproved || sub.AdminNotes != "looks good" {
		t.Fatalf("submission = %+v", sub)
	}
	if sub.ReviewedBy == nil || *sub.ReviewedBy != "a1" {
		t.Fatalf("reviewed by = %v", sub.ReviewedBy)
	}
	if users.kycStatus["u1"] != domain.KYCStatusVerified {
		t.Fatalf("user kyc status = %q", users.kycStatus["u1"])
	}
}

func TestRejectKYC(t *testing.T) {
	svc, users, _ := newKYCFixture()
	ctx := context.Background()
	if _, err := svc.RejectKYC(ctx, "k1", "a1", "  "); errorCode(err) != "VALIDATION_FAILED" {
		t.Fatalf("blank reason: %v", err)
	}

	users.kycErr = errors.New("user store down")
	sub, err := svc.RejectKYC(ctx, "k1", "a1", "document expired")
	if err != nil {
		t.Fatalf("reject should stand despite user update failure: %v", err)
	}
	if sub.Status != domain.KYCSubmissionRejected || sub.RejectionReason != "document expired" {
		t.Fatalf("submission = %+v", sub)
	}

	if _, err := svc.ApproveKYC(ctx, "ghost", "a1", ""); errorCode(err) != "NOT_FOUND" {
		t.Fatalf("missing submission: %v", err)
	}
}

func TestRequestMoreInfoKYC(t *testing.T) {
	cases := []struct {
		name     string
		id       string
		message  string
		wantCode string
	}{
		{name: "blank message", id: "k1", message: " \n", wantCode: "VALIDATION_FAILED"},
		{name: "unknown submission", id: "ghost", message: "need a clearer scan", wantCode: "NOT_FOUND"},
		{name: "request recorded", id: "k1", message: " need a clearer scan "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, users, _ := newKYCFixture()
			sub, err := svc.RequestMoreInfoKYC(context.Background(), tc.id, "a1", tc.message)
			if tc.wantCode != "" {
				if errorCode(err) != tc.wantCode {
					t.Fatalf("expected %s, got %v", tc.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("request info: %v", err)
			}
			if sub.Status != domain.KYCSubmissionPendingInfo || sub.InfoRequest != "need a clearer scan" {
				t.Fatalf("submission = %+v", sub)
			}
			if sub.InfoRequestedAt == nil {
				t.Fatal("expected info request timestamp")
			}
			if status, ok := users.kycStatus["u1"]; ok {
				t.Fatalf("user kyc status should be untouched, got %q", status)
			}
		})
	}
}
