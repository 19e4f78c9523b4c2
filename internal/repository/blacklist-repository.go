package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrBlacklistUnavailable = errors.New("token blacklist unavailable")

const blacklistKeyPrefix = "blacklist"

// TokenBlacklist records session tokens invalidated before their natural
// expiry. Entries carry a TTL equal to the token's remaining lifetime, so an
// entry never outlives the token it blocks and no sweep is needed.
type TokenBlacklist interface {
	Revoke(ctx context.Context, token string, userID uint, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type tokenBlacklist struct {
	redis *redis.Client
}

func NewTokenBlacklist(client *redis.Client) TokenBlacklist {
	return &tokenBlacklist{redis: client}
}

// key hashes the token so raw JWTs never sit in redis.
func (b *tokenBlacklist) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blacklistKeyPrefix + ":" + hex.EncodeToString(sum[:])
}

func (b *tokenBlacklist) Revoke(ctx context.Context, token string, userID uint, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already unusable; nothing to record.
		return nil
	}

	// Plain SET makes a duplicate revoke a no-op rather than an error.
	err := b.redis.Set(ctx, b.key(token), strconv.FormatUint(uint64(userID), 10), ttl).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBlacklistUnavailable, err)
	}
	return nil
}

func (b *tokenBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := b.redis.Exists(ctx, b.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBlacklistUnavailable, err)
	}
	return n > 0, nil
}
