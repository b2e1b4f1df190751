// Package session bootstraps admin identity: it verifies a bearer token
// against the platform profile endpoint, enforces the admin role, and caches
// verified principals so every gateway request does not cost a profile
// round-trip.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mymind1423/interflow-admin/internal/platform"
)

var (
	// ErrUnauthenticated means no usable token was presented.
	ErrUnauthenticated = errors.New("session: unauthenticated")
	// ErrNotAdmin means the token resolved to a profile whose role is not
	// admin. This is terminal: the cached principal is purged and the caller
	// is denied, not retried.
	ErrNotAdmin = errors.New("session: admin access required")
)

// Principal is the verified admin read model.
type Principal struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Manager resolves and caches admin principals.
type Manager struct {
	api   *platform.API
	store Store
	ttl   time.Duration
}

func NewManager(api *platform.API, store Store, ttl time.Duration) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Manager{api: api, store: store, ttl: ttl}
}

// Verify resolves token to an admin principal, from cache when possible.
// Non-admin profiles fail with ErrNotAdmin and have any cached entry
// discarded.
func (m *Manager) Verify(ctx context.Context, token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrUnauthenticated
	}
	key := cacheKey(token)

	if cached, ok, err := m.store.Get(ctx, key); err == nil && ok {
		var principal Principal
		if err := json.Unmarshal([]byte(cached), &principal); err == nil {
			return principal, nil
		}
	}
	return m.fetch(ctx, token, key)
}

// Refresh re-pulls the profile regardless of cache state, for use after a
// mutation such as a display-name change.
func (m *Manager) Refresh(ctx context.Context, token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrUnauthenticated
	}
	return m.fetch(ctx, token, cacheKey(token))
}

// Logout discards the cached principal for this token.
func (m *Manager) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return m.store.Del(ctx, cacheKey(token))
}

func (m *Manager) fetch(ctx context.Context, token, key string) (Principal, error) {
	profile, err := m.api.GetProfile(platform.WithToken(ctx, token))
	if err != nil {
		if apiErr, ok := platform.AsAPIError(err); ok && (apiErr.Status == 401 || apiErr.Status == 403) {
			_ = m.store.Del(ctx, key)
			return Principal{}, fmt.Errorf("%w: %s", ErrUnauthenticated, apiErr.Message)
		}
		return Principal{}, err
	}
	if !strings.EqualFold(profile.UserType, "admin") {
		_ = m.store.Del(ctx, key)
		return Principal{}, ErrNotAdmin
	}

	principal := Principal{ID: profile.ID, Email: profile.Email, DisplayName: profile.DisplayName}
	if encoded, err := json.Marshal(principal); err == nil {
		_ = m.store.Set(ctx, key, string(encoded), m.cacheTTL(token))
	}
	return principal, nil
}

// cacheTTL caps the configured TTL with the token's own expiry when the token
// is a JWT. The claim is decoded without verification: the platform verified
// the token, the claim only bounds how long the cache may outlive it.
func (m *Manager) cacheTTL(token string) time.Duration {
	ttl := m.ttl
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return ttl
	}
	if claims.ExpiresAt == nil {
		return ttl
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return time.Second
	}
	if remaining < ttl {
		return remaining
	}
	return ttl
}

// cacheKey hashes the token so raw bearer tokens never land in the store.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "internflow:session:" + hex.EncodeToString(sum[:])
}
