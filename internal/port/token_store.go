package port

import (
	"context"
	"time"

	"github.com/ldelacroix/stockroom/internal/core/domain"
)

// TokenStore maps opaque bearer tokens to sessions. Entries expire on
// their own after the configured TTL.
type TokenStore interface {
	Save(ctx context.Context, token string, session domain.Session, ttl time.Duration) error

	// Get returns (nil, nil) for an unknown or expired token.
	Get(ctx context.Context, token string) (*domain.Session, error)

	Delete(ctx context.Context, token string) error
}
