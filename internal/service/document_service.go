package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/docflow-api/internal/dto"
	"github.com/noah-isme/docflow-api/internal/models"
	"github.com/noah-isme/docflow-api/internal/repository"
	appErrors "github.com/noah-isme/docflow-api/pkg/errors"
)

type documentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
	UpdateFields(ctx context.Context, doc *models.Document) error
	SubmitForReview(ctx context.Context, documentID, reviewerID string) error
	ApplyReview(ctx context.Context, params repository.ApplyReviewParams) error
	ListReviewRecords(ctx context.Context, documentID string) ([]models.ReviewRecord, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type notifier interface {
	Notify(ctx context.Context, notification *models.Notification) error
}

// DocumentService drives the document review workflow: creation, edits,
// submission, and review disposition, with authorization resolved per request.
type DocumentService struct {
	repo      documentStore
	resolver  RoleResolver
	notifier  notifier
	audit     auditLogger
	cache     *CacheService
	filter    *AccessFilter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDocumentService constructs the service.
func NewDocumentService(repo documentStore, resolver RoleResolver, notifier notifier, audit auditLogger, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DocumentService{
		repo:      repo,
		resolver:  resolver,
		notifier:  notifier,
		audit:     audit,
		cache:     cache,
		filter:    NewAccessFilter(),
		validator: validate,
		logger:    logger,
	}
}

// Create drafts a new document in the realm. The actor needs a "user" or
// "admin" role there.
func (s *DocumentService) Create(ctx context.Context, realmID string, req dto.CreateDocumentRequest, actor *models.AuthContext) (*models.Document, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}
	if realmID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "realm is required")
	}
	if !actor.HasRole(realmID, models.RoleUser) && !actor.IsRealmAdmin(realmID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("not authorized to create documents in realm %q", realmID))
	}

	doc := &models.Document{
		RealmID:     realmID,
		CreatorID:   actor.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      models.DocumentStatusDraft,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document")
	}

	s.emitAudit(ctx, actor.UserID, models.AuditActionDocumentCreate, doc.ID, nil, doc)
	s.invalidateRealm(ctx, realmID)
	return doc, nil
}

// List returns the documents in a realm visible to the actor. Realm admins
// skip per-document evaluation entirely.
func (s *DocumentService) List(ctx context.Context, realmID string, query dto.DocumentQuery, actor *models.AuthContext) ([]models.Document, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	if query.Status != nil && !query.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid status filter")
	}

	limit := query.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	cacheKey := s.listCacheKey(realmID, actor.UserID, query, limit, offset)
	var cached []models.Document
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		pagination := &models.Pagination{Limit: limit, Offset: offset, TotalCount: len(cached)}
		return cached, pagination, nil
	}

	docs, err := s.repo.List(ctx, models.DocumentFilter{
		RealmID:   realmID,
		Status:    query.Status,
		CreatorID: query.CreatorID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}

	visible := s.filter.Filter(actor, realmID, docs)
	if err := s.cache.Set(ctx, cacheKey, visible, 0); err != nil {
		s.logger.Warn("failed to cache document list", zap.String("key", cacheKey), zap.Error(err))
	}
	pagination := &models.Pagination{Limit: limit, Offset: offset, TotalCount: len(visible)}
	return visible, pagination, nil
}

// Get returns a single document after a visibility verdict.
func (s *DocumentService) Get(ctx context.Context, id string, actor *models.AuthContext) (*models.Document, error) {
	doc, err := s.loadDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.filter.Verdict(actor, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Update applies the enumerated per-role field updater. Creators may change
// title, description, and the group ACL while the document is DRAFT or
// REJECTED; realm admins may change any field in any state, with the workflow
// invariants re-established before persisting.
func (s *DocumentService) Update(ctx context.Context, id string, req dto.UpdateDocumentRequest, actor *models.AuthContext) (*models.Document, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	doc, err := s.loadDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	isAdmin := actor.IsRealmAdmin(doc.RealmID)
	isCreator := actor.UserID == doc.CreatorID
	if !isAdmin && !isCreator {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized to update this document")
	}

	if isAdmin {
		if err := applyAdminUpdate(doc, req); err != nil {
			return nil, err
		}
	} else {
		if err := applyCreatorUpdate(doc, req); err != nil {
			return nil, err
		}
	}
	doc.LastEditorID = &actor.UserID

	if err := s.repo.UpdateFields(ctx, doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "document was modified concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document")
	}

	s.emitAudit(ctx, actor.UserID, models.AuditActionDocumentUpdate, doc.ID, req, doc)
	s.invalidateRealm(ctx, doc.RealmID)
	return doc, nil
}

// SubmitForReview hands a DRAFT or REJECTED document to a reviewer. The
// reviewer identity is resolved against the identity store before the
// transition is attempted.
func (s *DocumentService) SubmitForReview(ctx context.Context, id string, req dto.SubmitForReviewRequest, actor *models.AuthContext) (*models.Document, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submit payload")
	}
	doc, err := s.loadDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	isCreator := actor.UserID == doc.CreatorID
	isEditor := actor.HasRole(doc.RealmID, models.RoleEditor)
	if !isCreator && !isEditor && !actor.IsRealmAdmin(doc.RealmID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized to submit this document for review")
	}
	if req.ReviewerID == actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a document cannot be submitted to its own submitter for review")
	}
	if !doc.Status.Submittable() {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("document in status %s cannot be submitted for review", doc.Status))
	}

	if _, err := s.resolver.Resolve(ctx, req.ReviewerID); err != nil {
		return nil, err
	}

	if err := s.repo.SubmitForReview(ctx, doc.ID, req.ReviewerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "document is no longer in a submittable status")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit document for review")
	}

	doc.Status = models.DocumentStatusPendingReview
	doc.CurrentReviewerID = &req.ReviewerID
	doc.Version++

	s.sendNotification(ctx, &models.Notification{
		SenderID:    &actor.UserID,
		RecipientID: req.ReviewerID,
		DocumentID:  &doc.ID,
		Type:        models.NotificationTypeForReview,
		Message:     fmt.Sprintf("Document '%s' assigned for your review in realm '%s'.", doc.Title, doc.RealmID),
		RealmID:     doc.RealmID,
	})

	s.emitAudit(ctx, actor.UserID, models.AuditActionDocumentSubmit, doc.ID, req, doc)
	s.invalidateRealm(ctx, doc.RealmID)
	return doc, nil
}

// PerformReview records an approve/reject disposition for a PENDING_REVIEW
// document. The document transition and the immutable review record commit in
// one transaction; the loser of a concurrent race gets Conflict.
func (s *DocumentService) PerformReview(ctx context.Context, id string, req dto.ReviewActionRequest, actor *models.AuthContext) (*dto.ReviewActionResult, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	doc, err := s.loadDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	isReviewer := doc.CurrentReviewerID != nil && *doc.CurrentReviewerID == actor.UserID
	if !isReviewer && !actor.IsRealmAdmin(doc.RealmID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized to review this document")
	}
	if doc.Status != models.DocumentStatusPendingReview {
		return nil, appErrors.Clone(appErrors.ErrConflict, "document is not in PENDING_REVIEW status")
	}
	if !req.Action.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "action must be APPROVE or REJECT")
	}

	var (
		newStatus        models.DocumentStatus
		rejectionReason  *string
		publishedAt      *time.Time
		notificationType models.NotificationType
		message          string
	)
	switch req.Action {
	case models.ReviewActionApprove:
		newStatus = models.DocumentStatusPublished
		now := time.Now().UTC()
		publishedAt = &now
		notificationType = models.NotificationTypeApproved
		message = fmt.Sprintf("Your document '%s' has been approved and published in realm '%s'.", doc.Title, doc.RealmID)
	case models.ReviewActionReject:
		reason := strings.TrimSpace(req.RejectionReason)
		if reason == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required when rejecting a document")
		}
		newStatus = models.DocumentStatusRejected
		rejectionReason = &reason
		notificationType = models.NotificationTypeRejected
		message = fmt.Sprintf("Your document '%s' has been rejected in realm '%s'. Reason: %s", doc.Title, doc.RealmID, reason)
	}

	record := &models.ReviewRecord{
		DocumentID:      doc.ID,
		ReviewerID:      actor.UserID,
		Action:          req.Action,
		Status:          newStatus,
		RejectionReason: rejectionReason,
		RealmID:         doc.RealmID,
	}
	err = s.repo.ApplyReview(ctx, repository.ApplyReviewParams{
		DocumentID:      doc.ID,
		Status:          newStatus,
		RejectionReason: rejectionReason,
		PublishedAt:     publishedAt,
		Record:          record,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "document is not in PENDING_REVIEW status")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply review")
	}

	doc.Status = newStatus
	doc.CurrentReviewerID = nil
	doc.RejectionReason = rejectionReason
	doc.PublishedAt = publishedAt
	doc.Version++

	s.sendNotification(ctx, &models.Notification{
		SenderID:    &actor.UserID,
		RecipientID: doc.CreatorID,
		DocumentID:  &doc.ID,
		Type:        notificationType,
		Message:     message,
		RealmID:     doc.RealmID,
	})

	s.emitAudit(ctx, actor.UserID, models.AuditActionDocumentReview, doc.ID, req, doc)
	s.invalidateRealm(ctx, doc.RealmID)
	return &dto.ReviewActionResult{Record: record, Document: doc}, nil
}

// ReviewHistory lists a document's review records, oldest first. The creator
// or anyone holding a role in the document's realm may read it.
func (s *DocumentService) ReviewHistory(ctx context.Context, id string, actor *models.AuthContext) ([]models.ReviewRecord, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	doc, err := s.loadDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.UserID != doc.CreatorID && !actor.HasAnyRole(doc.RealmID) && !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized to view this document's review history")
	}
	records, err := s.repo.ListReviewRecords(ctx, doc.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list review history")
	}
	return records, nil
}

func (s *DocumentService) loadDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("document %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}

// applyAdminUpdate sets any requested field, then re-establishes the workflow
// invariants: reviewer set iff PENDING_REVIEW, published_at set iff PUBLISHED.
func applyAdminUpdate(doc *models.Document, req dto.UpdateDocumentRequest) error {
	if req.Title != nil {
		doc.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		doc.Description = *req.Description
	}
	if req.AllowedGroups != nil {
		doc.AllowedGroups = models.NewGroupSet(*req.AllowedGroups)
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid document status %q", *req.Status))
		}
		doc.Status = *req.Status
	}
	if req.CurrentReviewerID != nil {
		doc.CurrentReviewerID = req.CurrentReviewerID
	}

	if doc.Status == models.DocumentStatusPendingReview {
		if doc.CurrentReviewerID == nil || *doc.CurrentReviewerID == "" {
			return appErrors.Clone(appErrors.ErrValidation, "PENDING_REVIEW requires a reviewer assignment")
		}
	} else {
		if req.CurrentReviewerID != nil && *req.CurrentReviewerID != "" {
			return appErrors.Clone(appErrors.ErrValidation, "a reviewer can only be assigned while PENDING_REVIEW")
		}
		doc.CurrentReviewerID = nil
	}
	if doc.Status == models.DocumentStatusPublished {
		if doc.PublishedAt == nil {
			now := time.Now().UTC()
			doc.PublishedAt = &now
		}
	} else {
		doc.PublishedAt = nil
	}
	return nil
}

// applyCreatorUpdate permits only title, description, and the group ACL, and
// only while the document is DRAFT or REJECTED.
func applyCreatorUpdate(doc *models.Document, req dto.UpdateDocumentRequest) error {
	if req.Status != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "not authorized to update field 'status'")
	}
	if req.CurrentReviewerID != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "not authorized to update field 'current_reviewer_id'")
	}
	if req.Title == nil && req.Description == nil && req.AllowedGroups == nil {
		return appErrors.Clone(appErrors.ErrValidation, "no updatable fields provided")
	}
	if !doc.Status.Editable() {
		return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("creators may only edit documents in DRAFT or REJECTED status, not %s", doc.Status))
	}
	if req.Title != nil {
		doc.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		doc.Description = *req.Description
	}
	if req.AllowedGroups != nil {
		doc.AllowedGroups = models.NewGroupSet(*req.AllowedGroups)
	}
	return nil
}

func (s *DocumentService) listCacheKey(realmID, userID string, query dto.DocumentQuery, limit, offset int) string {
	status := ""
	if query.Status != nil {
		status = string(*query.Status)
	}
	return fmt.Sprintf("docs:%s:%s:%s:%s:%d:%d", realmID, userID, status, query.CreatorID, limit, offset)
}

func (s *DocumentService) invalidateRealm(ctx context.Context, realmID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("docs:%s:*", realmID)); err != nil {
		s.logger.Warn("failed to invalidate document cache", zap.String("realm_id", realmID), zap.Error(err))
	}
}

// sendNotification delivers the workflow side effect after the document write
// has committed. Delivery failure is surfaced in logs, never rolled back into
// the already-committed transition.
func (s *DocumentService) sendNotification(ctx context.Context, notification *models.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, notification); err != nil {
		s.logger.Error("failed to deliver notification",
			zap.String("recipient_id", notification.RecipientID),
			zap.String("type", string(notification.Type)),
			zap.Error(err))
	}
}

func (s *DocumentService) emitAudit(ctx context.Context, userID, action, resourceID string, oldValues, newValues interface{}) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "document",
		ResourceID: &resourceID,
		IPAddress:  "system",
		UserAgent:  "document-service",
	}
	if oldValues != nil {
		log.OldValues, _ = json.Marshal(oldValues)
	}
	if newValues != nil {
		log.NewValues, _ = json.Marshal(newValues)
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
