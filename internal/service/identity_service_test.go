package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/docflow-api/pkg/config"
	appErrors "github.com/noah-isme/docflow-api/pkg/errors"
)

func newIdentityService(baseURL string) *IdentityService {
	return NewIdentityService(config.IdentityConfig{BaseURL: baseURL, Timeout: 2 * time.Second}, nil)
}

func TestIdentityServiceResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/userinfo", r.URL.Path)
		require.Equal(t, "user-1", r.URL.Query().Get("user_id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"realm-a":{"role":"Admin"},"group-x":{"role":"user"}}`)) //nolint:errcheck
	}))
	defer server.Close()

	roles, err := newIdentityService(server.URL).Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	require.True(t, roles["realm-a"].Has("admin"))
	require.True(t, roles["group-x"].Has("user"))
}

func TestIdentityServiceResolveNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newIdentityService(server.URL).Resolve(context.Background(), "ghost")
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestIdentityServiceResolveUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newIdentityService(server.URL).Resolve(context.Background(), "user-1")
	require.Equal(t, appErrors.ErrServiceUnavailable.Code, appErrors.FromError(err).Code)
}

func TestIdentityServiceResolveUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := newIdentityService(server.URL).Resolve(context.Background(), "user-1")
	require.Equal(t, appErrors.ErrServiceUnavailable.Code, appErrors.FromError(err).Code)
}

func TestIdentityServiceResolveMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"realm-a":{"role":""}}`)) //nolint:errcheck
	}))
	defer server.Close()

	_, err := newIdentityService(server.URL).Resolve(context.Background(), "user-1")
	require.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
