package ipfs

import (
	"context"
	"errors"

	"github.com/ipfs/go-cid"
)

// ErrUnavailable is returned by Get when every configured retrieval endpoint
// failed for a CID. Callers on the read path drop the affected entry; only the
// publish-time Put treats content-store failure as fatal.
var ErrUnavailable = errors.New("ipfs content unavailable")

// Store is a content-addressed JSON blob store.
type Store interface {
	// Put pins v as JSON and returns its content identifier.
	Put(ctx context.Context, v any) (string, error)

	// Get fetches the blob addressed by c and unmarshals it into out.
	Get(ctx context.Context, c string, out any) error
}

// ValidCID reports whether s parses as a CID (v0 or v1).
func ValidCID(s string) bool {
	_, err := cid.Decode(s)
	return err == nil
}
