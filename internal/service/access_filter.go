package service

import (
	"github.com/noah-isme/docflow-api/internal/models"
	appErrors "github.com/noah-isme/docflow-api/pkg/errors"
)

// AccessFilter decides document visibility for an authorization context. It is
// pure: no I/O, no state.
type AccessFilter struct{}

// NewAccessFilter constructs the filter.
func NewAccessFilter() *AccessFilter {
	return &AccessFilter{}
}

// Verdict returns nil when the actor may view the document. Precedence, first
// match wins: realm admin, creator, assigned reviewer while pending, published
// document passing the group ACL. Everything else is Forbidden.
func (f *AccessFilter) Verdict(actor *models.AuthContext, doc *models.Document) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.IsRealmAdmin(doc.RealmID) {
		return nil
	}
	if doc.CreatorID == actor.UserID {
		return nil
	}
	if doc.Status == models.DocumentStatusPendingReview &&
		doc.CurrentReviewerID != nil && *doc.CurrentReviewerID == actor.UserID {
		return nil
	}
	if doc.Status == models.DocumentStatusPublished {
		if len(doc.AllowedGroups) == 0 || doc.AllowedGroups.Intersects(actor.Groups()) {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "not permitted to view this document")
}

// Filter returns the visible subset of a realm's candidate documents. Realm
// admins get the whole set back without per-document evaluation.
func (f *AccessFilter) Filter(actor *models.AuthContext, realmID string, docs []models.Document) []models.Document {
	if actor == nil {
		return nil
	}
	if actor.IsRealmAdmin(realmID) {
		return docs
	}
	visible := make([]models.Document, 0, len(docs))
	for i := range docs {
		if f.Verdict(actor, &docs[i]) == nil {
			visible = append(visible, docs[i])
		}
	}
	return visible
}
