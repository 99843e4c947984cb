package models

import "time"

// NotificationType enumerates notification categories.
type NotificationType string

const (
	NotificationTypeForReview   NotificationType = "DOCUMENT_FOR_REVIEW"
	NotificationTypeApproved    NotificationType = "DOCUMENT_APPROVED"
	NotificationTypeRejected    NotificationType = "DOCUMENT_REJECTED"
	NotificationTypeStateChange NotificationType = "DOCUMENT_STATE_CHANGE"
)

// Valid reports whether the type is a known enum member.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeForReview, NotificationTypeApproved,
		NotificationTypeRejected, NotificationTypeStateChange:
		return true
	}
	return false
}

// Notification is a message delivered to a recipient identity.
type Notification struct {
	ID          string           `db:"id" json:"id"`
	SenderID    *string          `db:"sender_id" json:"sender_id,omitempty"`
	RecipientID string           `db:"recipient_id" json:"recipient_id"`
	DocumentID  *string          `db:"document_id" json:"document_id,omitempty"`
	Type        NotificationType `db:"type" json:"type"`
	Message     string           `db:"message" json:"message"`
	IsRead      bool             `db:"is_read" json:"is_read"`
	RealmID     string           `db:"realm_id" json:"realm_id"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}

// NotificationFilter constrains listing queries. RecipientID is always set by
// the service; it is never caller supplied.
type NotificationFilter struct {
	RecipientID string
	IsRead      *bool
	Type        *NotificationType
	Limit       int
	Offset      int
}
