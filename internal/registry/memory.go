package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/dayjobfun/dayjob/backend/go-services/internal/listing"
)

// MemoryRepository is an in-memory Repository used in unit tests and for
// dependency-free local runs. Append takes the write lock for the full
// check-and-insert, which stands in for the storage-level compare-and-set of
// the real backends.
type MemoryRepository struct {
	mu      sync.RWMutex
	byKey   map[string]*listing.RegistryEntry
	ordered map[listing.Kind][]*listing.RegistryEntry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byKey:   make(map[string]*listing.RegistryEntry),
		ordered: make(map[listing.Kind][]*listing.RegistryEntry),
	}
}

func (m *MemoryRepository) Append(ctx context.Context, e *listing.RegistryEntry) error {
	key := mongoID(e.Kind, e.PostID)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byKey[key]; ok {
		return ErrDuplicate
	}
	cp := *e
	m.byKey[key] = &cp
	m.ordered[e.Kind] = append(m.ordered[e.Kind], &cp)
	return nil
}

func (m *MemoryRepository) Get(ctx context.Context, kind listing.Kind, postID string) (*listing.RegistryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byKey[mongoID(kind, postID)]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *MemoryRepository) List(ctx context.Context, kind listing.Kind, limit int) ([]*listing.RegistryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.ordered[kind]
	out := make([]*listing.RegistryEntry, len(src))
	for i, e := range src {
		cp := *e
		out[i] = &cp
	}
	// most-recent-first; stable sort keeps insertion order for equal timestamps
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ObservedAt > out[j].ObservedAt
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
