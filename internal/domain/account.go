package domain

import "time"

// AccountStatus enumerates bank account states.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusBlocked   AccountStatus = "blocked"
	AccountStatusClosed    AccountStatus = "closed"
	AccountStatusPending   AccountStatus = "pending"
)

// Account is a customer bank account.
type Account struct {
	ID               string
	UserID           string
	AccountNumber    string
	IBAN             string
	AccountType      string
	Currency         string
	Balance          float64
	AvailableBalance float64
	Status           AccountStatus
	CreatedAt        time.Time
	LastActivity     *time.Time
}
