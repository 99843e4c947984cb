package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleSetCaseInsensitive(t *testing.T) {
	set := NewRoleSet("Admin", "  USER  ")
	require.True(t, set.Has("admin"))
	require.True(t, set.Has("ADMIN"))
	require.True(t, set.Has("user"))
	require.False(t, set.Has("reviewer"))
}

func TestAuthContextHasRoleExactScope(t *testing.T) {
	actor := &AuthContext{
		UserID: "user-1",
		Realms: RealmRoles{
			"realm-a": NewRoleSet("user"),
		},
	}
	require.True(t, actor.HasRole("realm-a", "USER"))
	require.False(t, actor.HasRole("Realm-A", "user"), "scope identifiers compare exactly")
	require.False(t, actor.HasRole("realm-b", "user"))
}

func TestAuthContextIsAdmin(t *testing.T) {
	global := &AuthContext{UserID: "u1", GlobalRole: "ADMIN"}
	require.True(t, global.IsAdmin())
	require.True(t, global.IsRealmAdmin("anything"))

	scoped := &AuthContext{
		UserID: "u2",
		Realms: RealmRoles{"realm-a": NewRoleSet("admin")},
	}
	require.True(t, scoped.IsAdmin())
	require.True(t, scoped.IsRealmAdmin("realm-a"))
	require.False(t, scoped.IsRealmAdmin("realm-b"))

	plain := &AuthContext{
		UserID: "u3",
		Realms: RealmRoles{"realm-a": NewRoleSet("user")},
	}
	require.False(t, plain.IsAdmin())
}

func TestAuthContextGroups(t *testing.T) {
	actor := &AuthContext{
		UserID: "u1",
		Realms: RealmRoles{
			"realm-a": NewRoleSet("user"),
			"group-x": NewRoleSet("user"),
			"empty":   NewRoleSet(),
		},
	}
	require.True(t, actor.MemberOf("group-x"))
	require.False(t, actor.MemberOf("empty"))
	require.False(t, actor.MemberOf("group-y"))
	require.ElementsMatch(t, []string{"realm-a", "group-x"}, actor.Groups())
}

func TestJWTClaimsContextAdaptsBothShapes(t *testing.T) {
	claims := &JWTClaims{
		UserID:     "user-1",
		RealmRoles: map[string][]string{"realm-a": {"User", "Editor"}},
		GlobalRole: "admin",
	}
	actor := claims.Context()
	require.Equal(t, "user-1", actor.UserID)
	require.True(t, actor.HasRole("realm-a", "user"))
	require.True(t, actor.HasRole("realm-a", "editor"))
	require.True(t, actor.IsAdmin())
}
