package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/docflow-api/internal/dto"
	"github.com/noah-isme/docflow-api/internal/models"
	appErrors "github.com/noah-isme/docflow-api/pkg/errors"
)

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error)
	SetRead(ctx context.Context, id string, isRead bool) error
}

// NotificationService persists and serves workflow notifications. Delivery is
// in-band: a notification exists once its row is committed.
type NotificationService struct {
	repo   notificationStore
	audit  auditLogger
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(repo notificationStore, audit auditLogger, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, audit: audit, logger: logger}
}

// Notify persists a new unread notification for its recipient.
func (s *NotificationService) Notify(ctx context.Context, notification *models.Notification) error {
	if notification == nil {
		return appErrors.Clone(appErrors.ErrValidation, "notification is required")
	}
	if notification.RecipientID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "notification recipient is required")
	}
	if !notification.Type.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid notification type %q", notification.Type))
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notification")
	}
	return nil
}

// List returns the actor's own notifications, newest first.
func (s *NotificationService) List(ctx context.Context, query dto.NotificationQuery, actor *models.AuthContext) ([]models.Notification, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	if query.Type != nil && !query.Type.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid notification type filter")
	}

	limit := query.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	notifications, err := s.repo.List(ctx, models.NotificationFilter{
		RecipientID: actor.UserID,
		IsRead:      query.IsRead,
		Type:        query.Type,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	pagination := &models.Pagination{Limit: limit, Offset: offset, TotalCount: len(notifications)}
	return notifications, pagination, nil
}

// MarkRead flips the read flag. Only the recipient, or an admin of the realm
// the notification belongs to, may touch it.
func (s *NotificationService) MarkRead(ctx context.Context, id string, isRead bool, actor *models.AuthContext) (*models.Notification, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("notification %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}

	if notification.RecipientID != actor.UserID && !actor.IsRealmAdmin(notification.RealmID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized to update this notification")
	}

	if err := s.repo.SetRead(ctx, id, isRead); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("notification %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notification")
	}
	notification.IsRead = isRead

	if s.audit != nil {
		log := &models.AuditLog{
			UserID:     &actor.UserID,
			Action:     models.AuditActionNotificationRead,
			Resource:   "notification",
			ResourceID: &id,
			IPAddress:  "system",
			UserAgent:  "notification-service",
		}
		log.NewValues, _ = json.Marshal(map[string]bool{"is_read": isRead})
		if err := s.audit.CreateAuditLog(ctx, log); err != nil {
			s.logger.Warn("failed to persist audit log", zap.Error(err))
		}
	}

	return notification, nil
}
