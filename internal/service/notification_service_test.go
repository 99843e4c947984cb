package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/docflow-api/internal/dto"
	"github.com/noah-isme/docflow-api/internal/models"
	appErrors "github.com/noah-isme/docflow-api/pkg/errors"
)

type notificationStoreStub struct {
	notifications map[string]*models.Notification
	filter        models.NotificationFilter
}

func newNotificationStoreStub() *notificationStoreStub {
	return &notificationStoreStub{notifications: make(map[string]*models.Notification)}
}

func (s *notificationStoreStub) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = "notif-new"
	}
	copy := *notification
	s.notifications[notification.ID] = &copy
	return nil
}

func (s *notificationStoreStub) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	notification, ok := s.notifications[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *notification
	return &copy, nil
}

func (s *notificationStoreStub) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error) {
	s.filter = filter
	out := make([]models.Notification, 0, len(s.notifications))
	for _, notification := range s.notifications {
		if notification.RecipientID == filter.RecipientID {
			out = append(out, *notification)
		}
	}
	return out, nil
}

func (s *notificationStoreStub) SetRead(ctx context.Context, id string, isRead bool) error {
	notification, ok := s.notifications[id]
	if !ok {
		return sql.ErrNoRows
	}
	notification.IsRead = isRead
	return nil
}

func TestNotificationServiceNotifyValidates(t *testing.T) {
	repo := newNotificationStoreStub()
	svc := NewNotificationService(repo, nil, nil)

	err := svc.Notify(context.Background(), &models.Notification{
		RecipientID: "rev-1",
		Type:        models.NotificationTypeForReview,
		Message:     "Document 'X' assigned for your review in realm 'realm-a'.",
		RealmID:     "realm-a",
	})
	require.NoError(t, err)
	require.Len(t, repo.notifications, 1)

	err = svc.Notify(context.Background(), &models.Notification{Type: models.NotificationTypeForReview})
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	err = svc.Notify(context.Background(), &models.Notification{RecipientID: "rev-1", Type: "BOGUS"})
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestNotificationServiceListScopedToRecipient(t *testing.T) {
	repo := newNotificationStoreStub()
	repo.notifications["n1"] = &models.Notification{ID: "n1", RecipientID: "user-1", RealmID: "realm-a"}
	repo.notifications["n2"] = &models.Notification{ID: "n2", RecipientID: "user-2", RealmID: "realm-a"}
	svc := NewNotificationService(repo, nil, nil)

	actor := userActor("user-1", "realm-a", "user")
	notifications, pagination, err := svc.List(context.Background(), dto.NotificationQuery{}, actor)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Equal(t, "n1", notifications[0].ID)
	require.Equal(t, "user-1", repo.filter.RecipientID)
	require.Equal(t, 100, pagination.Limit)
}

func TestNotificationServiceMarkRead(t *testing.T) {
	repo := newNotificationStoreStub()
	audit := &auditStub{}
	repo.notifications["n1"] = &models.Notification{ID: "n1", RecipientID: "user-1", RealmID: "realm-a"}
	svc := NewNotificationService(repo, audit, nil)

	recipient := userActor("user-1", "realm-a", "user")
	notification, err := svc.MarkRead(context.Background(), "n1", true, recipient)
	require.NoError(t, err)
	require.True(t, notification.IsRead)
	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AuditActionNotificationRead, audit.logs[0].Action)
}

func TestNotificationServiceMarkReadAuthorization(t *testing.T) {
	repo := newNotificationStoreStub()
	repo.notifications["n1"] = &models.Notification{ID: "n1", RecipientID: "user-1", RealmID: "realm-a"}
	svc := NewNotificationService(repo, nil, nil)

	stranger := userActor("user-2", "realm-a", "user")
	_, err := svc.MarkRead(context.Background(), "n1", true, stranger)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	admin := userActor("admin-1", "realm-a", "admin")
	_, err = svc.MarkRead(context.Background(), "n1", true, admin)
	require.NoError(t, err)
}

func TestNotificationServiceMarkReadNotFound(t *testing.T) {
	repo := newNotificationStoreStub()
	svc := NewNotificationService(repo, nil, nil)

	actor := userActor("user-1", "realm-a", "user")
	_, err := svc.MarkRead(context.Background(), "missing", true, actor)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
