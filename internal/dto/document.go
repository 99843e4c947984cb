package dto

import "github.com/noah-isme/docflow-api/internal/models"

// CreateDocumentRequest payload for drafting a new document.
type CreateDocumentRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// UpdateDocumentRequest carries the enumerated updatable fields. Nil means
// "leave unchanged"; the service decides which fields each role may touch.
type UpdateDocumentRequest struct {
	Title             *string                `json:"title,omitempty"`
	Description       *string                `json:"description,omitempty"`
	AllowedGroups     *[]string              `json:"allowed_groups,omitempty"`
	Status            *models.DocumentStatus `json:"status,omitempty"`
	CurrentReviewerID *string                `json:"current_reviewer_id,omitempty"`
}

// SubmitForReviewRequest names the reviewer a document is handed to.
type SubmitForReviewRequest struct {
	ReviewerID string `json:"reviewer_id" validate:"required"`
}

// ReviewActionRequest captures the reviewer decision and optional reason.
type ReviewActionRequest struct {
	Action          models.ReviewAction `json:"action" validate:"required"`
	RejectionReason string              `json:"rejection_reason"`
}

// ReviewActionResult pairs the recorded review with the transitioned document.
type ReviewActionResult struct {
	Record   *models.ReviewRecord `json:"record"`
	Document *models.Document     `json:"document"`
}

// DocumentQuery mirrors supported listing filters.
type DocumentQuery struct {
	Status    *models.DocumentStatus
	CreatorID string
	Limit     int
	Offset    int
}
