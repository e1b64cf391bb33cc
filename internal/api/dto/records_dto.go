package dto

import (
	"time"

	"github.com/spec-kit/support-console/internal/domain"
)

// PageMeta describes a page of records.
type PageMeta struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
}

// UserResponse summarizes a customer.
type UserResponse struct {
	ID              string            `json:"id"`
	UID             string            `json:"uid,omitempty"`
	Email           string            `json:"email"`
	Name            string            `json:"name"`
	FirstName       string            `json:"first_name"`
	LastName        string            `json:"last_name"`
	Phone           string            `json:"phone,omitempty"`
	Country         string            `json:"country,omitempty"`
	City            string            `json:"city,omitempty"`
	KYCStatus       domain.KYCStatus  `json:"kyc_status"`
	Status          domain.UserStatus `json:"status"`
	IsEmailVerified bool              `json:"is_email_verified"`
	IsPhoneVerified bool              `json:"is_phone_verified"`
	CreatedAt       time.Time         `json:"created_at"`
	LastLogin       *time.Time        `json:"last_login,omitempty"`
}

// UserDetailResponse adds the embedded records.
type UserDetailResponse struct {
	UserResponse
	Accounts     []AccountResponse     `json:"accounts"`
	Transactions []TransactionResponse `json:"transactions"`
}

// AccountResponse describes a bank account.
type AccountResponse struct {
	ID               string               `json:"id"`
	UserID           string               `json:"user_id"`
	AccountNumber    string               `json:"account_number"`
	IBAN             string               `json:"iban"`
	AccountType      string               `json:"account_type"`
	Currency         string               `json:"currency"`
	Balance          float64              `json:"balance"`
	AvailableBalance float64              `json:"available_balance"`
	Status           domain.AccountStatus `json:"status"`
	CreatedAt        time.Time            `json:"created_at"`
	LastActivity     *time.Time           `json:"last_activity,omitempty"`
}

// TransactionResponse describes a money movement.
type TransactionResponse struct {
	ID            string                   `json:"id"`
	TransactionID string                   `json:"transaction_id"`
	FromAccountID string                   `json:"from_account_id,omitempty"`
	ToAccountID   string                   `json:"to_account_id,omitempty"`
	FromUserID    string                   `json:"from_user_id,omitempty"`
	ToUserID      string                   `json:"to_user_id,omitempty"`
	Type          string                   `json:"type"`
	Amount        float64                  `json:"amount"`
	Currency      string                   `json:"currency"`
	Fees          float64                  `json:"fees"`
	Status        domain.TransactionStatus `json:"status"`
	Description   string                   `json:"description,omitempty"`
	Reference     string                   `json:"reference,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	CompletedAt   *time.Time               `json:"completed_at,omitempty"`
}

// KYCResponse describes a submission.
type KYCResponse struct {
	ID              string                     `json:"id"`
	UserID          string                     `json:"user_id"`
	DocumentType    string                     `json:"document_type"`
	FileName        string                     `json:"file_name"`
	FileSize        int64                      `json:"file_size"`
	MimeType        string                     `json:"mime_type"`
	URL             string                     `json:"url"`
	Priority        string                     `json:"priority"`
	Status          domain.KYCSubmissionStatus `json:"status"`
	AdminNotes      string                     `json:"admin_notes,omitempty"`
	RejectionReason string                     `json:"rejection_reason,omitempty"`
	InfoRequest     string                     `json:"info_request,omitempty"`
	InfoRequestedAt *time.Time                 `json:"info_requested_at,omitempty"`
	SubmittedAt     time.Time                  `json:"submitted_at"`
	ReviewedAt      *time.Time                 `json:"reviewed_at,omitempty"`
	ReviewedBy      *string                    `json:"reviewed_by,omitempty"`
}

// KYCApproveRequest payload.
type KYCApproveRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// KYCRejectRequest payload.
type KYCRejectRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

// KYCInfoRequest payload.
type KYCInfoRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// UserFromDomain maps a customer without embedded records.
func UserFromDomain(u *domain.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		UID:             u.UID,
		Email:           u.Email,
		Name:            u.FullName(),
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Phone:           u.Phone,
		Country:         u.Country,
		City:            u.City,
		KYCStatus:       u.KYCStatus,
		Status:          u.Status,
		IsEmailVerified: u.IsEmailVerified,
		IsPhoneVerified: u.IsPhoneVerified,
		CreatedAt:       u.CreatedAt,
		LastLogin:       u.LastLogin,
	}
}

// UserDetailFromDomain maps a customer with embedded records.
func UserDetailFromDomain(u *domain.User) UserDetailResponse {
	return UserDetailResponse{
		UserResponse: UserFromDomain(u),
		Accounts:     AccountsFromDomain(u.Accounts),
		Transactions: TransactionsFromDomain(u.Transactions),
	}
}

// UsersFromDomain maps a user list.
func UsersFromDomain(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, UserFromDomain(&users[i]))
	}
	return out
}

// AccountFromDomain maps an account.
func AccountFromDomain(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:               a.ID,
		UserID:           a.UserID,
		AccountNumber:    a.AccountNumber,
		IBAN:             a.IBAN,
		AccountType:      a.AccountType,
		Currency:         a.Currency,
		Balance:          a.Balance,
		AvailableBalance: a.AvailableBalance,
		Status:           a.Status,
		CreatedAt:        a.CreatedAt,
		LastActivity:     a.LastActivity,
	}
}

// AccountsFromDomain maps an account list.
func AccountsFromDomain(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, AccountFromDomain(&accounts[i]))
	}
	return out
}

// TransactionFromDomain maps a transaction.
func TransactionFromDomain(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		TransactionID: t.TransactionID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		FromUserID:    t.FromUserID,
		ToUserID:      t.ToUserID,
		Type:          t.Type,
		Amount:        t.Amount,
		Currency:      t.Currency,
		Fees:          t.Fees,
		Status:        t.Status,
		Description:   t.Description,
		Reference:     t.Reference,
		CreatedAt:     t.CreatedAt,
		CompletedAt:   t.CompletedAt,
	}
}

// TransactionsFromDomain maps a transaction list.
func TransactionsFromDomain(txs []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for i := range txs {
		out = append(out, TransactionFromDomain(&txs[i]))
	}
	return out
}

// KYCFromDomain maps a submission.
func KYCFromDomain(k *domain.KYCSubmission) KYCResponse {
	return KYCResponse{
		ID:              k.ID,
		UserID:          k.UserID,
		DocumentType:    k.DocumentType,
		FileName:        k.FileName,
		FileSize:        k.FileSize,
		MimeType:        k.MimeType,
		URL:             k.URL,
		Priority:        k.Priority,
		Status:          k.Status,
		AdminNotes:      k.AdminNotes,
		RejectionReason: k.RejectionReason,
		InfoRequest:     k.InfoRequest,
		InfoRequestedAt: k.InfoRequestedAt,
		SubmittedAt:     k.SubmittedAt,
		ReviewedAt:      k.ReviewedAt,
		ReviewedBy:      k.ReviewedBy,
	}
}

// KYCListFromDomain maps a submission list.
func KYCListFromDomain(subs []domain.KYCSubmission) []KYCResponse {
	out := make([]KYCResponse, 0, len(subs))
	for i := range subs {
		out = append(out, KYCFromDomain(&subs[i]))
	}
	return out
}
