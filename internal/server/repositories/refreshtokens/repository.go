// Package refreshtokens declares the repository contract for persisted
// refresh-token records. The repository is a dumb store: hashing, signature
// checks, and expiry decisions all live with the caller.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dkozyrev/classauth/internal/server/models"
)

// Repository defines operations for creating, retrieving, and revoking
// refresh-token records.
type Repository interface {
	// Create stores a new record owned by principalID whose secret hash is
	// secretHash, expiring at now+validity. Returns the persisted record.
	Create(ctx context.Context, principalID string, secretHash []byte, validity time.Duration) (*models.RefreshToken, error)

	// FindActiveByPrincipal returns every non-revoked record owned by
	// principalID. Expired records ARE included; filtering on ExpiresAt is
	// the caller's responsibility, since the caller must combine it with the
	// hash comparison anyway.
	FindActiveByPrincipal(ctx context.Context, principalID string) ([]*models.RefreshToken, error)

	// MarkRevoked flips the record's revoked flag and reports whether this
	// call performed the flip. A record that was already revoked (for
	// example by a racing rotation) yields false with a nil error, so the
	// caller can refuse to issue a duplicate rotated pair.
	MarkRevoked(ctx context.Context, id string) (bool, error)

	// RevokeAllForPrincipal revokes every non-revoked record owned by
	// principalID. Revoking zero records is not an error.
	RevokeAllForPrincipal(ctx context.Context, principalID string) error
}
