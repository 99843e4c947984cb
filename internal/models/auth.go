package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access token payload issued by the external auth service.
// Two authorization shapes coexist in issued tokens: a realm_roles mapping
// (scope id to role list) and a flattened global_role. Both are adapted into
// the canonical AuthContext at the boundary.
type JWTClaims struct {
	UserID     string              `json:"uid"`
	Username   string              `json:"username"`
	RealmRoles map[string][]string `json:"realm_roles"`
	GlobalRole string              `json:"global_role"`
	jwt.RegisteredClaims
}

// Context adapts the token claims into the canonical authorization context.
func (c *JWTClaims) Context() *AuthContext {
	if c == nil {
		return nil
	}
	realms := make(RealmRoles, len(c.RealmRoles))
	for scope, roles := range c.RealmRoles {
		realms[scope] = NewRoleSet(roles...)
	}
	return &AuthContext{
		UserID:     c.UserID,
		Realms:     realms,
		GlobalRole: c.GlobalRole,
	}
}
