package domain

import "time"

// KYCSubmissionStatus enumerates review states for submitted documents.
type KYCSubmissionStatus string

const (
	KYCSubmissionPending  KYCSubmissionStatus = "pending"
	KYCSubmissionApproved KYCSubmissionStatus = "approved"
	KYCSubmissionRejected KYCSubmissionStatus = "rejected"
	// KYCSubmissionPendingInfo waits on the owner to answer an information request.
	KYCSubmissionPendingInfo KYCSubmissionStatus = "pending_info"
)

// KYCSubmission is an identity document awaiting or past review.
type KYCSubmission struct {
	ID              string
	UserID          string
	DocumentType    string
	FileName        string
	FileSize        int64
	MimeType        string
	URL             string
	Priority        string
	Status          KYCSubmissionStatus
	AdminNotes      string
	RejectionReason string
	InfoRequest     string
	InfoRequestedAt *time.Time
	SubmittedAt     time.Time
	ReviewedAt      *time.Time
	ReviewedBy      *string
}

// KYCStats counts submissions per review state.
type KYCStats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Approved    int `json:"approved"`
	Rejected    int `json:"rejected"`
	PendingInfo int `json:"pending_info"`
}
