package models

import "time"

// RequestStatus represents the lifecycle state of a transcript request.
type RequestStatus string

const (
	StatusSubmitted   RequestStatus = "SUBMITTED"
	StatusUnderReview RequestStatus = "UNDER_REVIEW"
	StatusApproved    RequestStatus = "APPROVED"
	StatusRejected    RequestStatus = "REJECTED"
	StatusCompleted   RequestStatus = "COMPLETED"
)

// statusRank orders the forward-progress states. REJECTED sits outside the
// order as an absorbing side state.
var statusRank = map[RequestStatus]int{
	StatusSubmitted:   0,
	StatusUnderReview: 1,
	StatusApproved:    2,
	StatusCompleted:   3,
}

// Valid reports whether the value is one of the five known statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further forward transition exists.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// CanTransition is the single source of truth for status legality. Every
// mutating operation consults it; none bypasses it. Legal moves are forward
// progress along the total order, a rejection from any non-terminal state,
// and a same-status write (idempotent no-op).
func CanTransition(from, to RequestStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	if to == StatusRejected {
		return !from.Terminal()
	}
	if from == StatusRejected {
		return false
	}
	return statusRank[to] > statusRank[from]
}

// Request is the transcript-issuance application record tracked through its
// lifecycle. Artifact fields are owned by the party named in the transition
// table: source_link by admins, excel_link by the owning user, transcript_*
// by admins.
type Request struct {
	ID            string        `db:"id" json:"id"`
	UserID        string        `db:"user_id" json:"user_id"`
	Course        string        `db:"course" json:"course"`
	Purpose       string        `db:"purpose" json:"purpose"`
	Type          string        `db:"type" json:"type"`
	Status        RequestStatus `db:"status" json:"status"`
	SourceLink    *string       `db:"source_link" json:"source_link,omitempty"`
	ExcelLink     *string       `db:"excel_link" json:"excel_link,omitempty"`
	TranscriptKey *string       `db:"transcript_key" json:"transcript_key,omitempty"`
	TranscriptURL *string       `db:"transcript_url" json:"transcript_url,omitempty"`
	FileSize      *int64        `db:"file_size" json:"file_size,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
	UnderReviewAt *time.Time    `db:"under_review_at" json:"under_review_at,omitempty"`
	ApprovedAt    *time.Time    `db:"approved_at" json:"approved_at,omitempty"`
	CompletedAt   *time.Time    `db:"completed_at" json:"completed_at,omitempty"`
}

// RequestWithOwner joins the owning user's identity for admin views.
type RequestWithOwner struct {
	Request
	OwnerName  string `db:"owner_name" json:"owner_name"`
	OwnerNIM   string `db:"owner_nim" json:"owner_nim"`
	OwnerEmail string `db:"owner_email" json:"owner_email"`
}
