package domain

import "time"

// TransactionStatus enumerates settlement states.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
)

// Transaction is a money movement on a customer account.
type Transaction struct {
	ID            string
	TransactionID string
	FromAccountID string
	ToAccountID   string
	FromUserID    string
	ToUserID      string
	Type          string
	Amount        float64
	Currency      string
	Fees          float64
	Status        TransactionStatus
	Description   string
	Reference     string
	CreatedAt     time.Time
	CompletedAt   *time.Time
}
