package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/docflow-api/internal/models"
)

const documentColumns = `id, realm_id, creator_id, last_editor_id, title, description, status,
       current_reviewer_id, rejection_reason, allowed_groups, published_at, version, created_at, updated_at`

// DocumentRepository persists documents and their review records.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a new document row in DRAFT.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Status == "" {
		doc.Status = models.DocumentStatusDraft
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}
	const query = `INSERT INTO documents
	(id, realm_id, creator_id, last_editor_id, title, description, status, current_reviewer_id, rejection_reason, allowed_groups, published_at, version, created_at, updated_at)
	VALUES (:id, :realm_id, :creator_id, :last_editor_id, :title, :description, :status, :current_reviewer_id, :rejection_reason, :allowed_groups, :published_at, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// GetByID fetches a document by identifier.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns documents matching the filter, newest first.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(`SELECT ` + documentColumns + ` FROM documents`)

	conditions := make([]string, 0, 3)
	if filter.RealmID != "" {
		args = append(args, filter.RealmID)
		conditions = append(conditions, fmt.Sprintf("realm_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CreatorID != "" {
		args = append(args, filter.CreatorID)
		conditions = append(conditions, fmt.Sprintf("creator_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// UpdateFields persists an edit guarded by an optimistic version check. The
// caller passes the already-mutated document carrying the version it loaded;
// a concurrent writer makes the predicate miss and sql.ErrNoRows is returned.
func (r *DocumentRepository) UpdateFields(ctx context.Context, doc *models.Document) error {
	const query = `UPDATE documents SET
		title = :title,
		description = :description,
		status = :status,
		current_reviewer_id = :current_reviewer_id,
		rejection_reason = :rejection_reason,
		allowed_groups = :allowed_groups,
		published_at = :published_at,
		last_editor_id = :last_editor_id,
		version = version + 1,
		updated_at = :updated_at
	WHERE id = :id AND version = :version`
	doc.UpdatedAt = time.Now().UTC()
	result, err := r.db.NamedExecContext(ctx, query, doc)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check document update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	doc.Version++
	return nil
}

// SubmitForReview assigns a reviewer and moves the document to PENDING_REVIEW.
// The status predicate makes the update a no-op when the document already left
// a submittable state; sql.ErrNoRows is returned in that case.
func (r *DocumentRepository) SubmitForReview(ctx context.Context, documentID, reviewerID string) error {
	query := fmt.Sprintf(`UPDATE documents SET
		status = $1,
		current_reviewer_id = $2,
		version = version + 1,
		updated_at = $3
	WHERE id = $4 AND status IN ('%s', '%s')`,
		models.DocumentStatusDraft, models.DocumentStatusRejected)
	result, err := r.db.ExecContext(ctx, query,
		models.DocumentStatusPendingReview, reviewerID, time.Now().UTC(), documentID)
	if err != nil {
		return fmt.Errorf("submit document for review: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check submit rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ApplyReviewParams groups the outcome of one review disposition.
type ApplyReviewParams struct {
	DocumentID      string
	Status          models.DocumentStatus
	RejectionReason *string
	PublishedAt     *time.Time
	Record          *models.ReviewRecord
}

// ApplyReview writes the document transition and its immutable review record
// in one transaction. The status predicate on the UPDATE is the single-writer
// guard: the second of two concurrent reviews affects zero rows, the
// transaction rolls back, and sql.ErrNoRows is returned.
func (r *DocumentRepository) ApplyReview(ctx context.Context, params ApplyReviewParams) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin review transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	updateQuery := fmt.Sprintf(`UPDATE documents SET
		status = $1,
		current_reviewer_id = NULL,
		rejection_reason = $2,
		published_at = $3,
		version = version + 1,
		updated_at = $4
	WHERE id = $5 AND status = '%s'`, models.DocumentStatusPendingReview)
	result, err := tx.ExecContext(ctx, updateQuery,
		params.Status, params.RejectionReason, params.PublishedAt, time.Now().UTC(), params.DocumentID)
	if err != nil {
		return fmt.Errorf("apply review transition: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check review transition rows: %w", err)
	}
	if rows == 0 {
		err = sql.ErrNoRows
		return err
	}

	record := params.Record
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.ReviewedAt.IsZero() {
		record.ReviewedAt = time.Now().UTC()
	}
	const insertQuery = `INSERT INTO review_records
	(id, document_id, reviewer_id, action, status, rejection_reason, realm_id, reviewed_at)
	VALUES (:id, :document_id, :reviewer_id, :action, :status, :rejection_reason, :realm_id, :reviewed_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, record); err != nil {
		return fmt.Errorf("insert review record: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit review transaction: %w", err)
	}
	return nil
}

// ListReviewRecords returns a document's review history, oldest first.
func (r *DocumentRepository) ListReviewRecords(ctx context.Context, documentID string) ([]models.ReviewRecord, error) {
	const query = `SELECT id, document_id, reviewer_id, action, status, rejection_reason, realm_id, reviewed_at
	FROM review_records WHERE document_id = $1 ORDER BY reviewed_at ASC`
	var records []models.ReviewRecord
	if err := r.db.SelectContext(ctx, &records, query, documentID); err != nil {
		return nil, fmt.Errorf("list review records: %w", err)
	}
	return records, nil
}
