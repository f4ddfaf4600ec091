package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dayjobfun/dayjob/backend/go-services/internal/listing"
)

// Collection keys mirror the original KV layout: one recency ZSET per kind plus
// per-entry keys of the form "<collection>:<postId>".
var collectionKeys = map[listing.Kind]string{
	listing.KindJob:    "dayjob:jobs",
	listing.KindTalent: "dayjob:talent",
}

// RedisRepository implements Repository on Redis. The keyed SETNX write is the
// source of truth for existence; the per-kind recency ZSET (score = ObservedAt)
// is a best-effort secondary index that the audit path can rebuild. A reader
// that sees the key but not the index entry observes a stale list, never a
// phantom entry.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func collectionKey(kind listing.Kind) string {
	return collectionKeys[kind]
}

func entryKey(kind listing.Kind, postID string) string {
	return collectionKey(kind) + ":" + postID
}

func (r *RedisRepository) Append(ctx context.Context, e *listing.RegistryEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	// SETNX gives the at-most-once guarantee across process instances.
	set, err := r.client.SetNX(ctx, entryKey(e.Kind, e.PostID), b, 0).Result()
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	if !set {
		return ErrDuplicate
	}
	if err := r.client.ZAdd(ctx, collectionKey(e.Kind), redis.Z{
		Score:  float64(e.ObservedAt),
		Member: string(b),
	}).Err(); err != nil {
		return fmt.Errorf("index entry: %w", err)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, kind listing.Kind, postID string) (*listing.RegistryEntry, error) {
	b, err := r.client.Get(ctx, entryKey(kind, postID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var e listing.RegistryEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("unmarshal entry: %w", err)
	}
	return &e, nil
}

func (r *RedisRepository) List(ctx context.Context, kind listing.Kind, limit int) ([]*listing.RegistryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	raw, err := r.client.ZRevRange(ctx, collectionKey(kind), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*listing.RegistryEntry, 0, len(raw))
	for _, item := range raw {
		var e listing.RegistryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			// skip corrupt index members rather than failing the listing
			continue
		}
		out = append(out, &e)
	}
	return out, nil
}
