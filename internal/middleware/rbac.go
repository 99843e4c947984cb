package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/docflow-api/internal/models"
	appErrors "github.com/noah-isme/docflow-api/pkg/errors"
	"github.com/noah-isme/docflow-api/pkg/response"
)

// RequireRealmRole gates realm-scoped routes: the caller must hold one of the
// allowed roles in the realm named by the :realm_id path parameter. Global
// admins pass unconditionally. Fine-grained per-document checks stay in the
// service layer.
func RequireRealmRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)
		actor := claims.Context()

		realmID := c.Param("realm_id")
		if realmID == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "realm is required"))
			c.Abort()
			return
		}

		if actor.IsAdmin() {
			c.Next()
			return
		}
		if len(allowed) == 0 && actor.HasAnyRole(realmID) {
			c.Next()
			return
		}
		for _, role := range allowed {
			if actor.HasRole(realmID, role) {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
