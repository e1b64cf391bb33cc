package domain

import "time"

// UserStatus represents lifecycle states for a platform customer.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusPending   UserStatus = "pending"
	UserStatusBlocked   UserStatus = "blocked"
	UserStatusSuspended UserStatus = "suspended"
)

// KYCStatus is the customer's identity verification state.
type KYCStatus string

const (
	KYCStatusPending    KYCStatus = "pending"
	KYCStatusInProgress KYCStatus = "in_progress"
	KYCStatusValidated  KYCStatus = "validated"
	KYCStatusVerified   KYCStatus = "verified"
	KYCStatusRejected   KYCStatus = "rejected"
	KYCStatusUnverified KYCStatus = "unverified"
)

// User is a platform customer as seen by the console.
type User struct {
	ID              string
	UID             string
	Email           string
	DisplayName     string
	FirstName       string
	LastName        string
	Phone           string
	Country         string
	City            string
	KYCStatus       KYCStatus
	Status          UserStatus
	IsEmailVerified bool
	IsPhoneVerified bool
	Accounts        []Account
	Transactions    []Transaction
	CreatedAt       time.Time
	LastLogin       *time.Time
}

// FullName returns the display name, falling back to first and last name.
func (u *User) FullName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}
