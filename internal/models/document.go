package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DocumentStatus captures workflow states for documents.
type DocumentStatus string

const (
	DocumentStatusDraft         DocumentStatus = "DRAFT"
	DocumentStatusPendingReview DocumentStatus = "PENDING_REVIEW"
	DocumentStatusRejected      DocumentStatus = "REJECTED"
	DocumentStatusPublished     DocumentStatus = "PUBLISHED"
	// DocumentStatusArchived is reserved; no transition reaches it.
	DocumentStatusArchived DocumentStatus = "ARCHIVED"
)

// Valid reports whether the status is a known enum member.
func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusPendingReview, DocumentStatusRejected,
		DocumentStatusPublished, DocumentStatusArchived:
		return true
	}
	return false
}

// Submittable reports whether a document in this status may enter review.
func (s DocumentStatus) Submittable() bool {
	return s == DocumentStatusDraft || s == DocumentStatusRejected
}

// Editable reports whether a creator may still edit content in this status.
func (s DocumentStatus) Editable() bool {
	return s == DocumentStatusDraft || s == DocumentStatusRejected
}

// GroupSet is a set of group identifiers stored as a comma-joined column.
// Comparison is exact-match, case-sensitive on trimmed identifiers. A nil or
// empty set on a published document means publicly visible.
type GroupSet []string

// NewGroupSet normalises raw identifiers into a deduplicated set.
func NewGroupSet(groups []string) GroupSet {
	if len(groups) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(groups))
	out := make(GroupSet, 0, len(groups))
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Contains reports membership of a single group identifier.
func (g GroupSet) Contains(group string) bool {
	for _, member := range g {
		if member == group {
			return true
		}
	}
	return false
}

// Intersects reports whether the two sets share any group.
func (g GroupSet) Intersects(other []string) bool {
	for _, candidate := range other {
		if g.Contains(candidate) {
			return true
		}
	}
	return false
}

// Scan implements sql.Scanner, splitting the comma-joined column value.
func (g *GroupSet) Scan(src interface{}) error {
	if src == nil {
		*g = nil
		return nil
	}
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported group set source type %T", src)
	}
	*g = NewGroupSet(strings.Split(raw, ","))
	return nil
}

// Value implements driver.Valuer, producing the comma-joined column value.
func (g GroupSet) Value() (driver.Value, error) {
	if len(g) == 0 {
		return nil, nil
	}
	return strings.Join(g, ","), nil
}

// Document is the unit of work moving through the review workflow.
type Document struct {
	ID                string         `db:"id" json:"id"`
	RealmID           string         `db:"realm_id" json:"realm_id"`
	CreatorID         string         `db:"creator_id" json:"creator_id"`
	LastEditorID      *string        `db:"last_editor_id" json:"last_editor_id,omitempty"`
	Title             string         `db:"title" json:"title"`
	Description       string         `db:"description" json:"description"`
	Status            DocumentStatus `db:"status" json:"status"`
	CurrentReviewerID *string        `db:"current_reviewer_id" json:"current_reviewer_id,omitempty"`
	RejectionReason   *string        `db:"rejection_reason" json:"rejection_reason,omitempty"`
	AllowedGroups     GroupSet       `db:"allowed_groups" json:"allowed_groups,omitempty"`
	PublishedAt       *time.Time     `db:"published_at" json:"published_at,omitempty"`
	Version           int            `db:"version" json:"version"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// DocumentFilter constrains listing queries.
type DocumentFilter struct {
	RealmID   string
	Status    *DocumentStatus
	CreatorID string
	Limit     int
	Offset    int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
	TotalCount int `json:"total_count"`
}
