package models

import "strings"

// Role name constants. Matching is case-insensitive; these are the canonical
// lowercase forms used by the identity store.
const (
	RoleAdmin    = "admin"
	RoleUser     = "user"
	RoleReviewer = "reviewer"
	RoleEditor   = "editor"
)

// RoleSet holds the role names an identity carries inside one scope. Role
// names are normalised to lowercase on insertion.
type RoleSet map[string]struct{}

// NewRoleSet builds a set from raw role names.
func NewRoleSet(roles ...string) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set.Add(role)
	}
	return set
}

// Add inserts a role, normalising its case.
func (s RoleSet) Add(role string) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return
	}
	s[role] = struct{}{}
}

// Has reports membership with case-insensitive matching.
func (s RoleSet) Has(role string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[strings.ToLower(strings.TrimSpace(role))]
	return ok
}

// RealmRoles maps a scope (realm or group) identifier to the roles held there.
type RealmRoles map[string]RoleSet

// AuthContext is the request-scoped authorization view of one identity. It is
// rebuilt on every request and never persisted. The canonical shape is a
// scope-to-roleset mapping; the flattened global-role model used by the older
// token layout is adapted in via GlobalRole.
type AuthContext struct {
	UserID     string
	Realms     RealmRoles
	GlobalRole string
}

// HasRole reports whether the identity holds the role in the given scope.
// Scope identifiers compare exactly; role names compare case-insensitively.
func (a *AuthContext) HasRole(scope, role string) bool {
	if a == nil {
		return false
	}
	roles, ok := a.Realms[scope]
	if !ok {
		return false
	}
	return roles.Has(role)
}

// IsAdmin reports global administrator status: either the flattened global
// role is "admin" or any scope carries the "admin" role.
func (a *AuthContext) IsAdmin() bool {
	if a == nil {
		return false
	}
	if strings.EqualFold(a.GlobalRole, RoleAdmin) {
		return true
	}
	for _, roles := range a.Realms {
		if roles.Has(RoleAdmin) {
			return true
		}
	}
	return false
}

// IsRealmAdmin reports admin privileges inside one scope, including global
// administrators.
func (a *AuthContext) IsRealmAdmin(scope string) bool {
	if a == nil {
		return false
	}
	if strings.EqualFold(a.GlobalRole, RoleAdmin) {
		return true
	}
	return a.HasRole(scope, RoleAdmin)
}

// MemberOf reports group membership: the identity belongs to a group when the
// scope mapping carries any role for it. Group identifiers compare exactly.
func (a *AuthContext) MemberOf(group string) bool {
	if a == nil {
		return false
	}
	roles, ok := a.Realms[group]
	return ok && len(roles) > 0
}

// Groups returns every scope identifier the identity belongs to.
func (a *AuthContext) Groups() []string {
	if a == nil || len(a.Realms) == 0 {
		return nil
	}
	out := make([]string, 0, len(a.Realms))
	for scope, roles := range a.Realms {
		if len(roles) > 0 {
			out = append(out, scope)
		}
	}
	return out
}

// HasAnyRole reports whether the identity holds at least one role in the scope.
func (a *AuthContext) HasAnyRole(scope string) bool {
	if a == nil {
		return false
	}
	roles, ok := a.Realms[scope]
	return ok && len(roles) > 0
}
