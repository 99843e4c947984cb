package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/noah-isme/docflow-api/internal/models"
	"github.com/noah-isme/docflow-api/pkg/config"
	appErrors "github.com/noah-isme/docflow-api/pkg/errors"
)

// RoleResolver resolves the scope-to-roleset mapping an identity holds.
// Implementations must not cache across requests; roles can change at any time.
type RoleResolver interface {
	Resolve(ctx context.Context, userID string) (models.RealmRoles, error)
}

// IdentityService resolves roles against the external identity store.
type IdentityService struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewIdentityService constructs the resolver with the configured timeout.
func NewIdentityService(cfg config.IdentityConfig, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// userinfoEntry is the per-scope shape returned by the identity store.
type userinfoEntry struct {
	Role string `json:"role"`
}

// Resolve fetches the identity's roles. A missing identity maps to NotFound,
// transport failures and 5xx responses to ServiceUnavailable, and an
// unparsable body to InternalError.
func (s *IdentityService) Resolve(ctx context.Context, userID string) (models.RealmRoles, error) {
	endpoint := fmt.Sprintf("%s/userinfo?user_id=%s", s.baseURL, url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build identity request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("identity store unreachable", zap.String("user_id", userID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "identity store unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("identity %s not found", userID))
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, fmt.Sprintf("identity store returned status %d", resp.StatusCode))
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return nil, appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("unexpected identity store status %d", resp.StatusCode))
	}

	var payload map[string]userinfoEntry
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed identity response")
	}

	realms := make(models.RealmRoles, len(payload))
	for scope, entry := range payload {
		if entry.Role == "" {
			return nil, appErrors.Clone(appErrors.ErrInternal, "malformed identity response")
		}
		realms[scope] = models.NewRoleSet(entry.Role)
	}
	return realms, nil
}
