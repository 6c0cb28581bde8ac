package identity

import (
	"context"
	"time"

	"github.com/learnify/backend/logger"
	"github.com/learnify/backend/models"
)

// RoleSource fetches the user record holding the role claim.
type RoleSource interface {
	GetUser(ctx context.Context, userID string) (*User, error)
}

// RoleCache stores parsed role claims keyed by external user id.
type RoleCache interface {
	Get(ctx context.Context, userID string) (models.Role, bool, error)
	Set(ctx context.Context, userID string, role models.Role, ttl time.Duration) error
	Delete(ctx context.Context, userID string) error
}

// RoleClaim reads the role from provider metadata. Users can write their own
// unsafe metadata, so admin is honored only from public metadata, which only
// the backend API can set. A self-declared admin counts as no role.
func RoleClaim(unsafe, public Metadata) (models.Role, error) {
	if role, err := models.ParseRole(public.Role); err == nil && role == models.RoleAdmin {
		return models.RoleAdmin, nil
	}
	role, err := models.ParseRole(unsafe.Role)
	if err != nil {
		return models.RoleUnset, err
	}
	if role == models.RoleAdmin {
		return models.RoleUnset, nil
	}
	return role, nil
}

// RoleResolver reads a user's role through an optional cache.
type RoleResolver struct {
	source RoleSource
	cache  RoleCache
	ttl    time.Duration
	log    *logger.Logger
}

// NewRoleResolver accepts a nil cache, in which case every lookup hits the provider.
func NewRoleResolver(source RoleSource, cache RoleCache, ttl time.Duration, log *logger.Logger) *RoleResolver {
	return &RoleResolver{source: source, cache: cache, ttl: ttl, log: log}
}

func (r *RoleResolver) Resolve(ctx context.Context, userID string) (models.Role, error) {
	if r.cache != nil {
		role, ok, err := r.cache.Get(ctx, userID)
		if err != nil {
			r.log.Warn("role cache read failed", "user", userID, "error", err)
		} else if ok {
			return role, nil
		}
	}
	u, err := r.source.GetUser(ctx, userID)
	if err != nil {
		return models.RoleUnset, err
	}
	role, err := u.Role()
	if err != nil {
		return models.RoleUnset, err
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, userID, role, r.ttl); err != nil {
			r.log.Warn("role cache write failed", "user", userID, "error", err)
		}
	}
	return role, nil
}

// Invalidate drops a cached role after the claim changes.
func (r *RoleResolver) Invalidate(ctx context.Context, userID string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Delete(ctx, userID)
}
