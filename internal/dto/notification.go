package dto

import "github.com/noah-isme/docflow-api/internal/models"

// NotificationQuery mirrors supported listing filters for the recipient.
type NotificationQuery struct {
	IsRead *bool
	Type   *models.NotificationType
	Limit  int
	Offset int
}

// MarkNotificationReadRequest toggles the read flag.
type MarkNotificationReadRequest struct {
	IsRead *bool `json:"is_read" validate:"required"`
}
