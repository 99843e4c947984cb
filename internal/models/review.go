package models

import "time"

// ReviewAction enumerates reviewer dispositions.
type ReviewAction string

const (
	ReviewActionApprove ReviewAction = "APPROVE"
	ReviewActionReject  ReviewAction = "REJECT"
)

// Valid reports whether the action is a known enum member.
func (a ReviewAction) Valid() bool {
	return a == ReviewActionApprove || a == ReviewActionReject
}

// ReviewRecord is an immutable audit entry written once per review disposition.
type ReviewRecord struct {
	ID              string         `db:"id" json:"id"`
	DocumentID      string         `db:"document_id" json:"document_id"`
	ReviewerID      string         `db:"reviewer_id" json:"reviewer_id"`
	Action          ReviewAction   `db:"action" json:"action"`
	Status          DocumentStatus `db:"status" json:"status"`
	RejectionReason *string        `db:"rejection_reason" json:"rejection_reason,omitempty"`
	RealmID         string         `db:"realm_id" json:"realm_id"`
	ReviewedAt      time.Time      `db:"reviewed_at" json:"reviewed_at"`
}
