package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/docflow-api/internal/models"
)

func TestNotificationRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	sender := "user-1"
	notification := &models.Notification{
		SenderID:    &sender,
		RecipientID: "rev-1",
		Type:        models.NotificationTypeForReview,
		Message:     "Document 'Proposal' assigned for your review in realm 'realm-a'.",
		RealmID:     "realm-a",
	}
	require.NoError(t, repo.Create(context.Background(), notification))
	require.NotEmpty(t, notification.ID)

	rows := sqlmock.NewRows([]string{"id", "sender_id", "recipient_id", "document_id", "type", "message", "is_read", "realm_id", "created_at"}).
		AddRow(notification.ID, "user-1", "rev-1", nil, "DOCUMENT_FOR_REVIEW", notification.Message, false, "realm-a", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, sender_id, recipient_id")).
		WithArgs(notification.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), notification.ID)
	require.NoError(t, err)
	require.Equal(t, "rev-1", found.RecipientID)
	require.False(t, found.IsRead)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	rows := sqlmock.NewRows([]string{"id", "sender_id", "recipient_id", "document_id", "type", "message", "is_read", "realm_id", "created_at"}).
		AddRow("n1", nil, "user-1", nil, "DOCUMENT_APPROVED", "approved", false, "realm-a", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, sender_id, recipient_id")).
		WithArgs("user-1", false).
		WillReturnRows(rows)

	unread := false
	list, err := repo.List(context.Background(), models.NotificationFilter{
		RecipientID: "user-1",
		IsRead:      &unread,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "n1", list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositorySetRead(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET is_read")).
		WithArgs(true, "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetRead(context.Background(), "n1", true))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET is_read")).
		WithArgs(true, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.SetRead(context.Background(), "missing", true)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
