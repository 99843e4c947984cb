package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/docflow-api/internal/models"
	appErrors "github.com/noah-isme/docflow-api/pkg/errors"
)

func strPtr(s string) *string {
	return &s
}

func actorWith(userID string, realms models.RealmRoles) *models.AuthContext {
	return &models.AuthContext{UserID: userID, Realms: realms}
}

func TestVerdictRealmAdminSeesEverything(t *testing.T) {
	filter := NewAccessFilter()
	admin := actorWith("admin-1", models.RealmRoles{"realm-a": models.NewRoleSet("admin")})
	doc := &models.Document{
		ID:            "doc-1",
		RealmID:       "realm-a",
		CreatorID:     "someone-else",
		Status:        models.DocumentStatusDraft,
		AllowedGroups: models.NewGroupSet([]string{"group-x"}),
	}
	require.NoError(t, filter.Verdict(admin, doc))
}

func TestVerdictCreatorSeesOwnDraft(t *testing.T) {
	filter := NewAccessFilter()
	creator := actorWith("user-1", models.RealmRoles{"realm-a": models.NewRoleSet("user")})
	doc := &models.Document{ID: "doc-1", RealmID: "realm-a", CreatorID: "user-1", Status: models.DocumentStatusDraft}
	require.NoError(t, filter.Verdict(creator, doc))
}

func TestVerdictReviewerSeesPendingOnly(t *testing.T) {
	filter := NewAccessFilter()
	reviewer := actorWith("rev-1", models.RealmRoles{"realm-a": models.NewRoleSet("reviewer")})

	pending := &models.Document{
		ID: "doc-1", RealmID: "realm-a", CreatorID: "user-1",
		Status:            models.DocumentStatusPendingReview,
		CurrentReviewerID: strPtr("rev-1"),
	}
	require.NoError(t, filter.Verdict(reviewer, pending))

	rejected := &models.Document{
		ID: "doc-1", RealmID: "realm-a", CreatorID: "user-1",
		Status: models.DocumentStatusRejected,
	}
	err := filter.Verdict(reviewer, rejected)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestVerdictPublishedGroupACL(t *testing.T) {
	filter := NewAccessFilter()
	member := actorWith("user-2", models.RealmRoles{
		"realm-a": models.NewRoleSet("user"),
		"group-x": models.NewRoleSet("user"),
	})
	outsider := actorWith("user-3", models.RealmRoles{"realm-a": models.NewRoleSet("user")})

	restricted := &models.Document{
		ID: "doc-1", RealmID: "realm-a", CreatorID: "user-1",
		Status:        models.DocumentStatusPublished,
		AllowedGroups: models.NewGroupSet([]string{"group-x"}),
	}
	require.NoError(t, filter.Verdict(member, restricted))
	require.Error(t, filter.Verdict(outsider, restricted))

	public := &models.Document{
		ID: "doc-2", RealmID: "realm-a", CreatorID: "user-1",
		Status: models.DocumentStatusPublished,
	}
	require.NoError(t, filter.Verdict(outsider, public))
}

func TestVerdictNilActorUnauthorized(t *testing.T) {
	filter := NewAccessFilter()
	doc := &models.Document{ID: "doc-1", RealmID: "realm-a", Status: models.DocumentStatusPublished}
	err := filter.Verdict(nil, doc)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestFilterAdminFastPath(t *testing.T) {
	filter := NewAccessFilter()
	admin := actorWith("admin-1", models.RealmRoles{"realm-a": models.NewRoleSet("admin")})
	docs := []models.Document{
		{ID: "doc-1", RealmID: "realm-a", CreatorID: "u1", Status: models.DocumentStatusDraft},
		{ID: "doc-2", RealmID: "realm-a", CreatorID: "u2", Status: models.DocumentStatusPendingReview, CurrentReviewerID: strPtr("u3")},
	}
	require.Len(t, filter.Filter(admin, "realm-a", docs), 2)
}

func TestFilterMixedVisibility(t *testing.T) {
	filter := NewAccessFilter()
	actor := actorWith("user-1", models.RealmRoles{
		"realm-a": models.NewRoleSet("user"),
		"group-x": models.NewRoleSet("user"),
	})
	docs := []models.Document{
		{ID: "own-draft", RealmID: "realm-a", CreatorID: "user-1", Status: models.DocumentStatusDraft},
		{ID: "other-draft", RealmID: "realm-a", CreatorID: "user-2", Status: models.DocumentStatusDraft},
		{ID: "published-acl", RealmID: "realm-a", CreatorID: "user-2", Status: models.DocumentStatusPublished, AllowedGroups: models.NewGroupSet([]string{"group-x"})},
		{ID: "published-closed", RealmID: "realm-a", CreatorID: "user-2", Status: models.DocumentStatusPublished, AllowedGroups: models.NewGroupSet([]string{"group-y"})},
		{ID: "assigned-review", RealmID: "realm-a", CreatorID: "user-2", Status: models.DocumentStatusPendingReview, CurrentReviewerID: strPtr("user-1")},
	}
	visible := filter.Filter(actor, "realm-a", docs)
	ids := make([]string, 0, len(visible))
	for _, doc := range visible {
		ids = append(ids, doc.ID)
	}
	require.ElementsMatch(t, []string{"own-draft", "published-acl", "assigned-review"}, ids)
}
