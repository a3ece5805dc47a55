// Package cache holds the write-through identity cache. Entries are JSON
// snapshots with a fixed schema so the stored form does not depend on any
// in-process object layout.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	customErrors "github.com/Daryna22/contacts-service/internal/auth/errors"
	"github.com/Daryna22/contacts-service/internal/auth/model"
	"github.com/Daryna22/contacts-service/internal/repo"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "account:"

// accountSnapshot is the serialization contract for cached accounts.
// Renaming a field here is a breaking change for live caches.
type accountSnapshot struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Confirmed    bool      `json:"confirmed"`
	Avatar       string    `json:"avatar"`
	RefreshToken string    `json:"refresh_token"`
	CreatedAt    time.Time `json:"created_at"`
}

func snapshotOf(a model.Account) accountSnapshot {
	return accountSnapshot{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Confirmed:    a.Confirmed,
		Avatar:       a.Avatar,
		RefreshToken: a.RefreshToken,
		CreatedAt:    a.CreatedAt,
	}
}

func (s accountSnapshot) account() model.Account {
	return model.Account{
		ID:           s.ID,
		Username:     s.Username,
		Email:        s.Email,
		PasswordHash: s.PasswordHash,
		Confirmed:    s.Confirmed,
		Avatar:       s.Avatar,
		RefreshToken: s.RefreshToken,
		CreatedAt:    s.CreatedAt,
	}
}

type AccountCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *AccountCache {
	return &AccountCache{client: client, ttl: ttl}
}

// GetOrLoad returns the cached account for email, populating the cache
// from load on a miss. Redis expiry enforces the TTL, so an entry past
// its TTL is a miss, never stale data. Concurrent misses may run load
// more than once; there is no single-flight guarantee.
func (c *AccountCache) GetOrLoad(ctx context.Context, email string, load repo.AccountLoader) (model.Account, error) {
	raw, err := c.client.Get(ctx, keyPrefix+email).Bytes()
	if err == nil {
		var snap accountSnapshot
		if jerr := json.Unmarshal(raw, &snap); jerr == nil {
			return snap.account(), nil
		}
		// corrupt entry: fall through and repopulate
	} else if !errors.Is(err, redis.Nil) {
		return model.Account{}, customErrors.WrapInternal(err, "cache get")
	}

	account, err := load(ctx, email)
	if err != nil {
		return model.Account{}, err
	}

	buf, err := json.Marshal(snapshotOf(account))
	if err != nil {
		return model.Account{}, customErrors.WrapInternal(err, "cache encode")
	}

	if err := c.client.Set(ctx, keyPrefix+email, buf, c.ttl).Err(); err != nil {
		return model.Account{}, customErrors.WrapInternal(err, "cache set")
	}

	return account, nil
}

// Invalidate removes the entry for email eagerly. The auth flows never
// call it; collaborators that mutate an account do.
func (c *AccountCache) Invalidate(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, keyPrefix+email).Err(); err != nil {
		return customErrors.WrapInternal(err, "cache delete")
	}
	return nil
}
