package registry

import (
	"context"
	"errors"

	"github.com/dayjobfun/dayjob/backend/go-services/internal/listing"
)

// ErrDuplicate is returned by Append when an entry already exists for the same
// (kind, postId). Publication is append-only and at-most-once per post ID.
var ErrDuplicate = errors.New("registry entry already exists")

// Repository provides registry persistence operations. Implementations must
// enforce the duplicate-key invariant at the storage layer so that concurrent
// appends of the same key resolve to exactly one success.
type Repository interface {
	Append(ctx context.Context, e *listing.RegistryEntry) error

	// Get returns (nil, nil) when no entry exists for (kind, postID).
	Get(ctx context.Context, kind listing.Kind, postID string) (*listing.RegistryEntry, error)

	// List returns up to limit entries of the given kind, most-recent-first
	// by ObservedAt with insertion-order ties.
	List(ctx context.Context, kind listing.Kind, limit int) ([]*listing.RegistryEntry, error)
}
