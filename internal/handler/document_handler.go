package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/docflow-api/internal/dto"
	"github.com/noah-isme/docflow-api/internal/models"
	"github.com/noah-isme/docflow-api/internal/service"
	appErrors "github.com/noah-isme/docflow-api/pkg/errors"
	"github.com/noah-isme/docflow-api/pkg/response"
)

type documentService interface {
	Create(ctx context.Context, realmID string, req dto.CreateDocumentRequest, actor *models.AuthContext) (*models.Document, error)
	List(ctx context.Context, realmID string, query dto.DocumentQuery, actor *models.AuthContext) ([]models.Document, *models.Pagination, error)
	Get(ctx context.Context, id string, actor *models.AuthContext) (*models.Document, error)
	Update(ctx context.Context, id string, req dto.UpdateDocumentRequest, actor *models.AuthContext) (*models.Document, error)
	SubmitForReview(ctx context.Context, id string, req dto.SubmitForReviewRequest, actor *models.AuthContext) (*models.Document, error)
	PerformReview(ctx context.Context, id string, req dto.ReviewActionRequest, actor *models.AuthContext) (*dto.ReviewActionResult, error)
	ReviewHistory(ctx context.Context, id string, actor *models.AuthContext) ([]models.ReviewRecord, error)
}

type exportService interface {
	ReviewHistory(ctx context.Context, documentID string, format service.ExportFormat, actor *models.AuthContext) (*service.ExportResult, error)
}

// DocumentHandler exposes REST endpoints for the document review workflow.
type DocumentHandler struct {
	service documentService
	export  exportService
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(service documentService, export exportService) *DocumentHandler {
	return &DocumentHandler{service: service, export: export}
}

// Create godoc
// @Summary Draft a new document
// @Tags Documents
// @Accept json
// @Produce json
// @Param realm_id path string true "Realm ID"
// @Param payload body dto.CreateDocumentRequest true "Document payload"
// @Success 201 {object} response.Envelope
// @Router /realms/{realm_id}/documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "document service not configured"))
		return
	}
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid document payload"))
		return
	}
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	doc, err := h.service.Create(c.Request.Context(), c.Param("realm_id"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, doc, nil)
}

// List godoc
// @Summary List documents visible to the caller
// @Tags Documents
// @Produce json
// @Param realm_id path string true "Realm ID"
// @Param status query string false "Document status"
// @Param creator_id query string false "Creator ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} response.Envelope
// @Router /realms/{realm_id}/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "document service not configured"))
		return
	}
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.DocumentQuery{
		CreatorID: strings.TrimSpace(c.Query("creator_id")),
	}
	if rawStatus := c.Query("status"); rawStatus != "" {
		status := models.DocumentStatus(strings.ToUpper(strings.TrimSpace(rawStatus)))
		query.Status = &status
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
	docs, pagination, err := h.service.List(c.Request.Context(), c.Param("realm_id"), query, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, pagination)
}

// Get godoc
// @Summary Get document detail
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "document service not configured"))
		return
	}
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Update godoc
// @Summary Update document fields
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.UpdateDocumentRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Router /documents/{id} [patch]
func (h *DocumentHandler) Update(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "document service not configured"))
		return
	}
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid update payload"))
		return
	}
	doc, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// SubmitForReview godoc
// @Summary Submit a document for review
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.SubmitForReviewRequest true "Reviewer assignment"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/submit-for-review [post]
func (h *DocumentHandler) SubmitForReview(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "document service not configured"))
		return
	}
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SubmitForReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid submit payload"))
		return
	}
	doc, err := h.service.SubmitForReview(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Review godoc
// @Summary Approve or reject a pending document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.ReviewActionRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/review-action [post]
func (h *DocumentHandler) Review(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "document service not configured"))
		return
	}
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ReviewActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid review payload"))
		return
	}
	req.Action = models.ReviewAction(strings.ToUpper(strings.TrimSpace(string(req.Action))))
	result, err := h.service.PerformReview(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// History godoc
// @Summary List a document's review history
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/review-history [get]
func (h *DocumentHandler) History(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "document service not configured"))
		return
	}
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	records, err := h.service.ReviewHistory(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// ExportHistory godoc
// @Summary Download a document's review history
// @Tags Documents
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Document ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /documents/{id}/review-history/export [get]
func (h *DocumentHandler) ExportHistory(c *gin.Context) {
	if h.export == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	format := service.ExportFormat(strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv"))))
	result, err := h.export.ReviewHistory(c.Request.Context(), c.Param("id"), format, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.Filename+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
