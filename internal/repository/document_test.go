package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/support-console/internal/domain"
)

func TestDecodeChatLegacyFields(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	chat := decodeChat(bson.M{
		"_id":          "c1",
		"userId":       "u1",
		"title":        "Card blocked",
		"topic":        "billing",
		"participants": bson.A{"u1", "support"},
		"unreadCount":  int32(2),
		"createdAt":    primitive.NewDateTimeFromTime(created),
	})

	if chat.Subject != "Card blocked" || chat.Category != "billing" {
		t.Fatalf("legacy fields not mapped: %+v", chat)
	}
	if chat.UserName != DefaultChatUserName {
		t.Fatalf("expected default user name, got %q", chat.UserName)
	}
	if chat.Status != domain.ChatStatusActive || chat.Priority != domain.ChatPriorityMedium {
		t.Fatalf("unexpected defaults: %s %s", chat.Status, chat.Priority)
	}
	if chat.UnreadCount != 2 || len(chat.Participants) != 2 {
		t.Fatalf("unexpected counts: %+v", chat)
	}
	if !chat.CreatedAt.Equal(created) || !chat.UpdatedAt.Equal(created) {
		t.Fatalf("timestamps not decoded: %v %v", chat.CreatedAt, chat.UpdatedAt)
	}
	if chat.Tags == nil {
		t.Fatal("tags should decode to an empty slice")
	}
}

func TestDecodeChatCurrentFields(t *testing.T) {
	chat := decodeChat(bson.M{
		"_id":        primitive.NilObjectID,
		"subject":    "Login",
		"category":   "technical",
		"assignedTo": "a1",
		"status":     "resolved",
		"closedBy":   "a1",
	})
	if chat.Subject != "Login" || chat.Category != "technical" {
		t.Fatalf("current fields not mapped: %+v", chat)
	}
	if chat.ID != primitive.NilObjectID.Hex() {
		t.Fatalf("object id not rendered as hex: %q", chat.ID)
	}
	if chat.AssignedTo == nil || *chat.AssignedTo != "a1" || chat.ClosedBy == nil {
		t.Fatalf("pointer fields not mapped: %+v", chat)
	}
}

func TestEncodeChatWritesCurrentNamesOnly(t *testing.T) {
	doc := encodeChat(&domain.Chat{ID: "c1", Subject: "s", Category: "general"})
	for _, legacy := range []string{"title", "topic"} {
		if _, ok := doc[legacy]; ok {
			t.Fatalf("legacy field %q written", legacy)
		}
	}
	if doc["subject"] != "s" || doc["category"] != "general" {
		t.Fatalf("current fields missing: %v", doc)
	}
	if _, ok := doc["assignedTo"]; ok {
		t.Fatal("unassigned chat should not write assignedTo")
	}
}

func TestDecodeMessage(t *testing.T) {
	cases := []struct {
		name string
		doc  bson.M
		role domain.SenderRole
		body string
	}{
		{"stored sender type wins", bson.M{"senderId": "support", "senderType": "user", "text": "hi"}, domain.SenderRoleUser, "hi"},
		{"admin marker", bson.M{"senderId": "admin", "content": "legacy"}, domain.SenderRoleAdmin, "legacy"},
		{"support marker", bson.M{"senderId": "support", "text": "x"}, domain.SenderRoleAdmin, "x"},
		{"end user", bson.M{"senderId": "u1", "text": "help"}, domain.SenderRoleUser, "help"},
		{"text preferred over content", bson.M{"senderId": "u1", "text": "new", "content": "old"}, domain.SenderRoleUser, "new"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := decodeMessage(tc.doc)
			if msg.SenderRole != tc.role {
				t.Fatalf("role = %s, want %s", msg.SenderRole, tc.role)
			}
			if msg.Body != tc.body {
				t.Fatalf("body = %q, want %q", msg.Body, tc.body)
			}
			if msg.Status != domain.MessageStatusSent || msg.Type != domain.MessageTypeText {
				t.Fatalf("unexpected defaults: %s %s", msg.Status, msg.Type)
			}
		})
	}
}

func TestEncodeMessageUsesTextField(t *testing.T) {
	doc := encodeMessage(&domain.ChatMessage{ID: "m1", ChatID: "c1", Body: "hello", SenderRole: domain.SenderRoleAdmin})
	if doc["text"] != "hello" {
		t.Fatalf("body not written as text: %v", doc)
	}
	if _, ok := doc["content"]; ok {
		t.Fatal("legacy content field written")
	}
	if doc["senderType"] != domain.SenderRoleAdmin {
		t.Fatalf("sender type not written: %v", doc["senderType"])
	}
}

func TestDecodeAdminActiveFlag(t *testing.T) {
	if !decodeAdmin(bson.M{"_id": "a"}).Active {
		t.Fatal("missing isActive should decode as active")
	}
	if decodeAdmin(bson.M{"_id": "a", "isActive": false}).Active {
		t.Fatal("explicit false should decode as inactive")
	}
	if role := decodeAdmin(bson.M{"_id": "a"}).Role; role != domain.AdminRoleAdmin {
		t.Fatalf("default role = %s", role)
	}
}

func TestDecodeUserEmbeddedRecords(t *testing.T) {
	user := decodeUser(bson.M{
		"_id":         "u1",
		"phoneNumber": "+33",
		"accounts": bson.A{
			bson.M{"id": "acc1", "balance": int32(100), "status": "active"},
			bson.D{{Key: "id", Value: "acc2"}, {Key: "balance", Value: 25.5}},
		},
		"transactions": bson.A{bson.M{"id": "t1", "amount": 12.5}},
	})
	if user.UID != "u1" || user.Phone != "+33" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if len(user.Accounts) != 2 || user.Accounts[0].Balance != 100 || user.Accounts[1].Balance != 25.5 {
		t.Fatalf("accounts not decoded: %+v", user.Accounts)
	}
	if user.Accounts[0].UserID != "u1" {
		t.Fatalf("embedded account should inherit user id")
	}
	if len(user.Transactions) != 1 || user.Transactions[0].Amount != 12.5 {
		t.Fatalf("transactions not decoded: %+v", user.Transactions)
	}
	if user.Status != domain.UserStatusPending || user.KYCStatus != domain.KYCStatusPending {
		t.Fatalf("unexpected defaults: %s %s", user.Status, user.KYCStatus)
	}
}

func TestDocTime(t *testing.T) {
	want := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	for name, v := range map[string]any{
		"datetime":  primitive.NewDateTimeFromTime(want),
		"time":      want,
		"timestamp": primitive.Timestamp{T: uint32(want.Unix())},
		"rfc3339":   want.Format(time.RFC3339),
	} {
		got, ok := docTime(bson.M{"at": v}, "at")
		if !ok || !got.Equal(want) {
			t.Errorf("%s: got %v, %v", name, got, ok)
		}
	}
	if _, ok := docTime(bson.M{"at": "yesterday"}, "at"); ok {
		t.Error("garbage string should not parse")
	}
}

func TestIDFilter(t *testing.T) {
	if f := idFilter("plain"); f["_id"] != "plain" {
		t.Fatalf("unexpected filter %v", f)
	}
	hex := primitive.NewObjectID().Hex()
	in, ok := idFilter(hex)["_id"].(bson.M)
	if !ok {
		t.Fatalf("hex id should match both representations")
	}
	if vals, ok := in["$in"].(bson.A); !ok || len(vals) != 2 {
		t.Fatalf("unexpected $in: %v", in)
	}
}

func TestIsPermissionDenied(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrPermissionDenied, true},
		{fmt.Errorf("lookup: %w", ErrPermissionDenied), true},
		{mongo.CommandError{Code: 13, Message: "not authorized"}, true},
		{mongo.CommandError{Code: 18}, true},
		{mongo.CommandError{Code: 11000}, false},
		{mongo.ErrNoDocuments, false},
		{errors.New("network"), false},
	}
	for _, tc := range cases {
		if got := IsPermissionDenied(tc.err); got != tc.want {
			t.Errorf("IsPermissionDenied(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestKYCStatsFromGroups(t *testing.T) {
	stats := kycStatsFromGroups([]bson.M{
		{"_id": "pending", "count": int32(3)},
		{"_id": "approved", "count": int32(2)},
		{"_id": "rejected", "count": int64(1)},
		{"_id": "pending_info", "count": int32(4)},
	})
	want := domain.KYCStats{Total: 10, Pending: 3, Approved: 2, Rejected: 1, PendingInfo: 4}
	if stats != want {
		t.Fatalf("got %+v, want %+v", stats, want)
	}
}
