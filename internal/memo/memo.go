package memo

import (
	"fmt"
	"strings"

	"github.com/dayjobfun/dayjob/backend/go-services/internal/listing"
)

// Tag is the application namespace marker. Memos without this prefix belong to
// other applications and are ignored during scans.
const Tag = "DAYJOB"

// Proof is the decoded tuple carried in a memo instruction. It binds an IPFS
// content identifier and a post identifier to an author-signed transaction.
type Proof struct {
	Kind   listing.Kind
	CID    string
	PostID string
}

// Build produces the memo wire string "DAYJOB:<kind>:<cid>:<postId>".
// Fields must not contain ':'; CIDs never do, and generated post IDs use '-'.
func Build(kind listing.Kind, cid, postID string) string {
	return fmt.Sprintf("%s:%s:%s:%s", Tag, kind, cid, postID)
}

// Parse decodes a memo string. It returns (nil, false) when the tag prefix is
// missing, the string does not split into exactly four non-empty fields, or the
// kind is unrecognized. It never panics on arbitrary input.
func Parse(raw string) (*Proof, bool) {
	if !strings.HasPrefix(raw, Tag+":") {
		return nil, false
	}
	parts := strings.Split(raw, ":")
	if len(parts) != 4 {
		return nil, false
	}
	kind, ok := listing.ParseKind(parts[1])
	if !ok {
		return nil, false
	}
	if parts[2] == "" || parts[3] == "" {
		return nil, false
	}
	return &Proof{Kind: kind, CID: parts[2], PostID: parts[3]}, true
}
