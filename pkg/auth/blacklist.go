package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Store is the subset of the Redis cache the blacklist needs
type Store interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// TokenBlacklist manages revoked JWT tokens
type TokenBlacklist struct {
	store Store
}

// NewTokenBlacklist creates a new token blacklist
func NewTokenBlacklist(store Store) *TokenBlacklist {
	return &TokenBlacklist{store: store}
}

// Add revokes token until expiration; tokens are stored hashed
func (b *TokenBlacklist) Add(ctx context.Context, token string, expiration time.Duration) error {
	if expiration <= 0 {
		return nil
	}
	return b.store.Set(ctx, b.key(token), "revoked", expiration)
}

// IsBlacklisted checks if a token is blacklisted
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	return b.store.Exists(ctx, b.key(token))
}

func (b *TokenBlacklist) key(token string) string {
	hash := sha256.Sum256([]byte(token))
	return fmt.Sprintf("jwt:blacklist:%s", hex.EncodeToString(hash[:]))
}
