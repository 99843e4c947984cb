package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/docflow-api/internal/dto"
	"github.com/noah-isme/docflow-api/internal/models"
	appErrors "github.com/noah-isme/docflow-api/pkg/errors"
	"github.com/noah-isme/docflow-api/pkg/response"
)

type notificationService interface {
	List(ctx context.Context, query dto.NotificationQuery, actor *models.AuthContext) ([]models.Notification, *models.Pagination, error)
	MarkRead(ctx context.Context, id string, isRead bool, actor *models.AuthContext) (*models.Notification, error)
}

// NotificationHandler exposes REST endpoints for workflow notifications.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List godoc
// @Summary List the caller's notifications
// @Tags Notifications
// @Produce json
// @Param is_read query boolean false "Read flag filter"
// @Param type query string false "Notification type"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "notification service not configured"))
		return
	}
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var query dto.NotificationQuery
	if rawRead := c.Query("is_read"); rawRead != "" {
		isRead, err := strconv.ParseBool(rawRead)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "is_read must be a boolean"))
			return
		}
		query.IsRead = &isRead
	}
	if rawType := c.Query("type"); rawType != "" {
		notificationType := models.NotificationType(strings.ToUpper(strings.TrimSpace(rawType)))
		query.Type = &notificationType
	}
	if rawLimit := c.Query("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be an integer"))
			return
		}
		query.Limit = limit
	}
	if rawOffset := c.Query("offset"); rawOffset != "" {
		offset, err := strconv.Atoi(rawOffset)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "offset must be an integer"))
			return
		}
		query.Offset = offset
	}
	notifications, pagination, err := h.service.List(c.Request.Context(), query, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, pagination)
}

// MarkRead godoc
// @Summary Mark a notification read or unread
// @Tags Notifications
// @Accept json
// @Produce json
// @Param id path string true "Notification ID"
// @Param payload body dto.MarkNotificationReadRequest true "Read flag"
// @Success 200 {object} response.Envelope
// @Router /notifications/{id} [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "notification service not configured"))
		return
	}
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.MarkNotificationReadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsRead == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "is_read is required"))
		return
	}
	notification, err := h.service.MarkRead(c.Request.Context(), c.Param("id"), *req.IsRead, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notification, nil)
}
