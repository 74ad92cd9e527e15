package auth

import (
	"context"
	"time"
)

// TokenBlacklist stores revoked token ids until their natural expiry.
type TokenBlacklist interface {
	Add(ctx context.Context, jti string, originalTokenExpTime time.Time) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}
