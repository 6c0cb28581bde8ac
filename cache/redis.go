package cache

import (
	"context"
	"errors"
	"time"

	"github.com/learnify/backend/models"
	"github.com/redis/go-redis/v9"
)

// unsetMarker stores RoleUnset, since an empty string is indistinguishable from a miss in logs.
const unsetMarker = "unset"

// RoleCache keeps parsed role claims so the request guard does not call the
// identity provider on every request.
type RoleCache struct {
	client *redis.Client
	prefix string
}

func NewRoleCache(client *redis.Client) *RoleCache {
	return &RoleCache{client: client, prefix: "learnify:role:"}
}

// NewClient pings the server so a bad address fails at startup.
func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *RoleCache) Get(ctx context.Context, userID string) (models.Role, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return models.RoleUnset, false, nil
	}
	if err != nil {
		return models.RoleUnset, false, err
	}
	if val == unsetMarker {
		return models.RoleUnset, true, nil
	}
	role, err := models.ParseRole(val)
	if err != nil {
		// Stale or foreign value; treat as a miss so the provider is asked again.
		return models.RoleUnset, false, nil
	}
	return role, true, nil
}

func (c *RoleCache) Set(ctx context.Context, userID string, role models.Role, ttl time.Duration) error {
	val := string(role)
	if !role.IsSet() {
		val = unsetMarker
	}
	return c.client.Set(ctx, c.prefix+userID, val, ttl).Err()
}

func (c *RoleCache) Delete(ctx context.Context, userID string) error {
	return c.client.Del(ctx, c.prefix+userID).Err()
}
