package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/docflow-api/internal/dto"
	"github.com/noah-isme/docflow-api/internal/middleware"
	"github.com/noah-isme/docflow-api/internal/models"
	appErrors "github.com/noah-isme/docflow-api/pkg/errors"
)

type fakeNotificationSrv struct {
	notifications []models.Notification
	notification  *models.Notification
	err           error
	lastQuery     dto.NotificationQuery
	lastIsRead    bool
}

func (f *fakeNotificationSrv) List(_ context.Context, query dto.NotificationQuery, actor *models.AuthContext) ([]models.Notification, *models.Pagination, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.notifications, &models.Pagination{Limit: 100, TotalCount: len(f.notifications)}, nil
}

func (f *fakeNotificationSrv) MarkRead(_ context.Context, id string, isRead bool, actor *models.AuthContext) (*models.Notification, error) {
	f.lastIsRead = isRead
	return f.notification, f.err
}

func TestNotificationHandlerListParsesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeNotificationSrv{notifications: []models.Notification{{ID: "n1"}}}
	handler := NewNotificationHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/notifications?is_read=false&type=document_approved", nil)
	c.Set(middleware.ContextUserKey, testClaims())

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, srv.lastQuery.IsRead)
	assert.False(t, *srv.lastQuery.IsRead)
	assert.NotNil(t, srv.lastQuery.Type)
	assert.Equal(t, models.NotificationTypeApproved, *srv.lastQuery.Type)
}

func TestNotificationHandlerListRejectsBadBool(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewNotificationHandler(&fakeNotificationSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/notifications?is_read=maybe", nil)
	c.Set(middleware.ContextUserKey, testClaims())

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationHandlerMarkRead(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeNotificationSrv{notification: &models.Notification{ID: "n1", IsRead: true}}
	handler := NewNotificationHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPatch, "/notifications/n1", strings.NewReader(`{"is_read":true}`))
	c.Params = gin.Params{{Key: "id", Value: "n1"}}
	c.Set(middleware.ContextUserKey, testClaims())

	handler.MarkRead(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, srv.lastIsRead)
}

func TestNotificationHandlerMarkReadRequiresFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewNotificationHandler(&fakeNotificationSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPatch, "/notifications/n1", strings.NewReader(`{}`))
	c.Params = gin.Params{{Key: "id", Value: "n1"}}
	c.Set(middleware.ContextUserKey, testClaims())

	handler.MarkRead(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationHandlerMarkReadMapsNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeNotificationSrv{err: appErrors.Clone(appErrors.ErrNotFound, "notification n9 not found")}
	handler := NewNotificationHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPatch, "/notifications/n9", strings.NewReader(`{"is_read":true}`))
	c.Params = gin.Params{{Key: "id", Value: "n9"}}
	c.Set(middleware.ContextUserKey, testClaims())

	handler.MarkRead(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
