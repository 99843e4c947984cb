package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/docflow-api/internal/models"
	appErrors "github.com/noah-isme/docflow-api/pkg/errors"
)

type historySourceStub struct {
	doc     *models.Document
	records []models.ReviewRecord
	err     error
}

func (s *historySourceStub) Get(ctx context.Context, id string, actor *models.AuthContext) (*models.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}

func (s *historySourceStub) ReviewHistory(ctx context.Context, id string, actor *models.AuthContext) ([]models.ReviewRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func exportFixture() *historySourceStub {
	reason := "missing citations"
	return &historySourceStub{
		doc: &models.Document{ID: "doc-1", Title: "Proposal", RealmID: "realm-a"},
		records: []models.ReviewRecord{
			{
				ID: "rec-1", DocumentID: "doc-1", ReviewerID: "rev-1",
				Action: models.ReviewActionReject, Status: models.DocumentStatusRejected,
				RejectionReason: &reason,
				ReviewedAt:      time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
			},
			{
				ID: "rec-2", DocumentID: "doc-1", ReviewerID: "rev-2",
				Action: models.ReviewActionApprove, Status: models.DocumentStatusPublished,
				ReviewedAt: time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestExportServiceReviewHistoryCSV(t *testing.T) {
	svc := NewExportService(exportFixture(), nil, nil, nil)
	actor := userActor("user-1", "realm-a", "user")

	result, err := svc.ReviewHistory(context.Background(), "doc-1", ExportFormatCSV, actor)
	require.NoError(t, err)
	require.Equal(t, "text/csv", result.ContentType)
	require.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Payload)
	require.Contains(t, body, "Reviewed At")
	require.Contains(t, body, "rev-1")
	require.Contains(t, body, "REJECT")
	require.Contains(t, body, "missing citations")
	require.Contains(t, body, "2026-01-20T10:00:00Z")
}

func TestExportServiceReviewHistoryPDF(t *testing.T) {
	svc := NewExportService(exportFixture(), nil, nil, nil)
	actor := userActor("user-1", "realm-a", "user")

	result, err := svc.ReviewHistory(context.Background(), "doc-1", ExportFormatPDF, actor)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", result.ContentType)
	require.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	require.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc := NewExportService(exportFixture(), nil, nil, nil)
	actor := userActor("user-1", "realm-a", "user")

	_, err := svc.ReviewHistory(context.Background(), "doc-1", ExportFormat("xlsx"), actor)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServicePropagatesAuthorization(t *testing.T) {
	source := exportFixture()
	source.err = appErrors.Clone(appErrors.ErrForbidden, "not authorized to view this document's review history")
	svc := NewExportService(source, nil, nil, nil)
	actor := userActor("user-9", "realm-b", "user")

	_, err := svc.ReviewHistory(context.Background(), "doc-1", ExportFormatCSV, actor)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
