package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/docflow-api/internal/models"
)

func performRealmRequest(claims *models.JWTClaims, realmID string, roles ...string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/realms/"+realmID+"/documents", nil)
	c.Params = gin.Params{{Key: "realm_id", Value: realmID}}
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}

	RequireRealmRole(roles...)(c)
	if !c.IsAborted() {
		c.Status(http.StatusOK)
	}
	return rec
}

func TestRequireRealmRoleAllowsMember(t *testing.T) {
	claims := &models.JWTClaims{
		UserID:     "user-1",
		RealmRoles: map[string][]string{"realm-a": {"user"}},
	}
	rec := performRealmRequest(claims, "realm-a", models.RoleUser, models.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRealmRoleBlocksOutsider(t *testing.T) {
	claims := &models.JWTClaims{
		UserID:     "user-1",
		RealmRoles: map[string][]string{"realm-b": {"user"}},
	}
	rec := performRealmRequest(claims, "realm-a", models.RoleUser)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRealmRoleGlobalAdminBypasses(t *testing.T) {
	claims := &models.JWTClaims{UserID: "root-1", GlobalRole: "admin"}
	rec := performRealmRequest(claims, "realm-a", models.RoleUser)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRealmRoleRequiresClaims(t *testing.T) {
	rec := performRealmRequest(nil, "realm-a", models.RoleUser)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
