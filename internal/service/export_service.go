package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/docflow-api/internal/models"
	appErrors "github.com/noah-isme/docflow-api/pkg/errors"
	"github.com/noah-isme/docflow-api/pkg/export"
)

// ExportFormat names a supported review history rendering.
type ExportFormat string

// Supported export formats.
const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries a rendered review history file.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type reviewHistorySource interface {
	Get(ctx context.Context, id string, actor *models.AuthContext) (*models.Document, error)
	ReviewHistory(ctx context.Context, id string, actor *models.AuthContext) ([]models.ReviewRecord, error)
}

// ExportService renders a document's review history for download.
type ExportService struct {
	documents reviewHistorySource
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(documents reviewHistorySource, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{documents: documents, csv: csv, pdf: pdf, logger: logger}
}

// ReviewHistory renders the document's review trail in the requested format.
// Authorization follows the review history read path.
func (s *ExportService) ReviewHistory(ctx context.Context, documentID string, format ExportFormat, actor *models.AuthContext) (*ExportResult, error) {
	records, err := s.documents.ReviewHistory(ctx, documentID, actor)
	if err != nil {
		return nil, err
	}
	doc, err := s.documents.Get(ctx, documentID, actor)
	if err != nil {
		return nil, err
	}

	dataset := buildReviewHistoryDataset(records)
	title := fmt.Sprintf("Review History %s", doc.Title)
	timestamp := time.Now().UTC().Format("20060102_150405")

	var payload []byte
	var contentType, extension string
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
		extension = "csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
		extension = "pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render review history")
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("review_history_%s_%s.%s", sanitizeFilename(documentID), timestamp, extension),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func buildReviewHistoryDataset(records []models.ReviewRecord) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		reason := ""
		if record.RejectionReason != nil {
			reason = *record.RejectionReason
		}
		rows = append(rows, map[string]string{
			"Reviewed At":      record.ReviewedAt.UTC().Format(time.RFC3339),
			"Reviewer ID":      record.ReviewerID,
			"Action":           string(record.Action),
			"Resulting Status": string(record.Status),
			"Rejection Reason": reason,
		})
	}
	return export.Dataset{
		Headers: []string{"Reviewed At", "Reviewer ID", "Action", "Resulting Status", "Rejection Reason"},
		Rows:    rows,
	}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
