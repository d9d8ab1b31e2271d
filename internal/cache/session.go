// Package cache implements the write-through session cache of authenticated
// user snapshots, keyed by username with a fixed TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chertoha/contacthub/internal/common"
	"github.com/chertoha/contacthub/internal/models"
)

// SnapshotTTL is how long a cached user snapshot lives. Entries are never
// invalidated explicitly; expiry is the only eviction.
const SnapshotTTL = time.Hour

// Store is the key-value collaborator behind the cache. Absent keys surface
// as common.ErrNotFound.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Snapshot is a derived copy of a user record, safe to serve without a
// database round-trip.
type Snapshot struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Confirmed bool   `json:"confirmed"`
	Avatar    string `json:"avatar"`
}

// SnapshotOf builds a cacheable snapshot from a user record.
func SnapshotOf(user *models.User) Snapshot {
	return Snapshot{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Confirmed: user.Confirmed,
		Avatar:    user.Avatar,
	}
}

// SessionCache stores user snapshots under "user:<username>" keys.
type SessionCache struct {
	store Store
}

func NewSessionCache(store Store) *SessionCache {
	return &SessionCache{store: store}
}

func sessionKey(username string) string {
	return "user:" + username
}

// Put writes snap unconditionally, overwriting any prior entry and
// resetting the TTL.
func (c *SessionCache) Put(ctx context.Context, username string, snap Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.store.Set(ctx, sessionKey(username), b, SnapshotTTL); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Get returns the cached snapshot for username, or common.ErrNotFound when
// the entry is absent or expired. The cache is advisory: absence says
// nothing about whether the user exists.
func (c *SessionCache) Get(ctx context.Context, username string) (*Snapshot, error) {
	b, err := c.store.Get(ctx, sessionKey(username))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	snap := &Snapshot{}
	if err := json.Unmarshal(b, snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}
