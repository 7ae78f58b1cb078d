package repo

import (
	"context"
	"time"
)

// RevocationRepo is the revoked-token set. Entries are keyed by jti and
// may be forgotten once expiresAt has passed.
type RevocationRepo interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error

	IsRevoked(ctx context.Context, jti string) (bool, error)
}
