package auth

import (
	"context"
	"time"

	"github.com/khushboocodes/QuickDesk/internal/cache"
)

const revokedTokenKeyPrefix = "revoked:access_token:"

// Denylist records access tokens that were logged out before expiry.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) bool
}

// TokenStore keeps the denylist in Redis. With Redis unavailable nothing is
// revoked and tokens stay valid until they expire.
type TokenStore struct {
	cache *cache.Client
}

var _ Denylist = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// Revoke denylists tokenID for ttl, the remaining lifetime of the token.
func (s *TokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsRevoked checks the denylist, failing open when Redis is unreachable.
func (s *TokenStore) IsRevoked(ctx context.Context, tokenID string) bool {
	data, _ := s.cache.Get(ctx, revokedTokenKeyPrefix+tokenID)
	return data != nil
}
