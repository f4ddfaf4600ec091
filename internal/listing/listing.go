package listing

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// Kind distinguishes the two board types. A JOB post is token-gated at
// publication time; TALENT profiles are open to any wallet.
type Kind string

const (
	KindJob    Kind = "JOB"
	KindTalent Kind = "TALENT"
)

// ParseKind validates a client-supplied kind string.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindJob:
		return KindJob, true
	case KindTalent:
		return KindTalent, true
	}
	return "", false
}

// RegistryEntry is the durable record of a verified publication. It is created
// exactly once per accepted event and never mutated afterwards.
type RegistryEntry struct {
	Kind       Kind   `json:"type" bson:"type"`
	CID        string `json:"cid" bson:"cid"`
	PostID     string `json:"postId" bson:"postId"`
	Signature  string `json:"signature" bson:"signature"`
	Wallet     string `json:"wallet" bson:"wallet"`
	ObservedAt int64  `json:"timestamp" bson:"timestamp"` // ms since epoch
	Slot       uint64 `json:"slot,omitempty" bson:"slot,omitempty"`
}

// JobPost is the author-authored payload for a JOB listing as stored on IPFS.
type JobPost struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	Description      string   `json:"description"`
	Salary           string   `json:"salary,omitempty"`
	CompensationType string   `json:"compensationType,omitempty"`
	Commitment       string   `json:"commitment"`
	Tags             []string `json:"tags,omitempty"`
	Contact          string   `json:"contact"`
	PostedBy         string   `json:"postedBy"`
	PostedAt         int64    `json:"postedAt"`
}

// TalentProfile is the author-authored payload for a TALENT listing.
type TalentProfile struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	Headline     string   `json:"headline"`
	Location     string   `json:"location"`
	Bio          string   `json:"bio"`
	Experience   string   `json:"experience"`
	Skills       []string `json:"skills"`
	Availability string   `json:"availability"`
	Contact      string   `json:"contact"`
	PostedBy     string   `json:"postedBy"`
	PostedAt     int64    `json:"postedAt"`
}

// Record is a hydrated listing: the IPFS content merged with the chain-derived
// registry fields. It is recomputed on every read and never persisted.
// Registry fields overwrite content fields on key collision since they are the
// ledger-verified values.
type Record map[string]any

// Merge builds a Record from raw content fields and a registry entry.
func Merge(content map[string]any, e *RegistryEntry) Record {
	out := make(Record, len(content)+6)
	for k, v := range content {
		out[k] = v
	}
	out["type"] = string(e.Kind)
	out["cid"] = e.CID
	out["postId"] = e.PostID
	out["signature"] = e.Signature
	out["wallet"] = e.Wallet
	out["timestamp"] = e.ObservedAt
	if e.Slot != 0 {
		out["slot"] = e.Slot
	}
	return out
}

// NewPostID generates a post identifier in the form <KIND>-<unix ms>-<suffix>.
// The suffix is 6 base36 characters. IDs are caller-chosen and not guaranteed
// globally unique; the registry rejects duplicates on append.
func NewPostID(kind Kind) string {
	suffix := strconv.FormatInt(rand.Int63n(36*36*36*36*36*36), 36)
	for len(suffix) < 6 {
		suffix = "0" + suffix
	}
	return fmt.Sprintf("%s-%d-%s", kind, time.Now().UnixMilli(), suffix)
}
