package hydrate

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dayjobfun/dayjob/backend/go-services/internal/ipfs"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/listing"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/registry"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/solana"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/verify"
	"github.com/dayjobfun/dayjob/backend/go-services/pkg/logger"
	"github.com/dayjobfun/dayjob/backend/go-services/pkg/metrics"
)

// DefaultFetchConcurrency bounds parallel IPFS fetches during hydration.
// A tuning knob, not a correctness requirement.
const DefaultFetchConcurrency = 8

// Hydrator joins registry entries with their IPFS bodies, and can rebuild the
// same records straight from the chain when the registry is suspect.
type Hydrator struct {
	repo         registry.Repository
	store        ipfs.Store
	ledger       solana.Client
	indexAddress string
	concurrency  int
	now          func() time.Time
}

func New(repo registry.Repository, store ipfs.Store, ledger solana.Client, indexAddress string) *Hydrator {
	return &Hydrator{
		repo:         repo,
		store:        store,
		ledger:       ledger,
		indexAddress: indexAddress,
		concurrency:  DefaultFetchConcurrency,
		now:          time.Now,
	}
}

// List returns hydrated records for the newest registry entries of a kind.
// Entries whose content cannot be fetched from any endpoint are dropped, never
// surfaced as an error: one expired pin must not blank the whole board.
func (h *Hydrator) List(ctx context.Context, kind listing.Kind, limit int) ([]listing.Record, error) {
	entries, err := h.repo.List(ctx, kind, limit)
	if err != nil {
		return nil, err
	}
	return h.hydrateEntries(ctx, kind, entries), nil
}

// GetByID returns the hydrated record for one post, or nil when either the
// registry entry or its content is missing.
func (h *Hydrator) GetByID(ctx context.Context, kind listing.Kind, postID string) (listing.Record, error) {
	entry, err := h.repo.Get(ctx, kind, postID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	var content map[string]any
	if err := h.store.Get(ctx, entry.CID, &content); err != nil {
		logger.Warnf("failed to hydrate %s %s from IPFS cid=%s: %v", kind, postID, entry.CID, err)
		metrics.HydrationDropped.WithLabelValues(string(kind)).Inc()
		return nil, nil
	}
	return listing.Merge(content, entry), nil
}

func (h *Hydrator) hydrateEntries(ctx context.Context, kind listing.Kind, entries []*listing.RegistryEntry) []listing.Record {
	results := make([]listing.Record, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)
	for i, entry := range entries {
		g.Go(func() error {
			var content map[string]any
			if err := h.store.Get(gctx, entry.CID, &content); err != nil {
				logger.Warnf("failed to hydrate %s from IPFS cid=%s: %v", kind, entry.CID, err)
				metrics.HydrationDropped.WithLabelValues(string(kind)).Inc()
				return nil
			}
			results[i] = listing.Merge(content, entry)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures become dropped slots

	out := make([]listing.Record, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Scan rebuilds listing records directly from the chain, bypassing the
// registry entirely. Each signature is resolved and inspected with the same
// pure proof check the write path uses; the access predicate is not re-applied
// since it gates publication, not visibility. The output is the audit/fallback
// view the cached path can be compared against.
func (h *Hydrator) Scan(ctx context.Context, kind listing.Kind, limit int) ([]listing.Record, error) {
	sigs, err := h.ledger.Scan(ctx, h.indexAddress, limit)
	if err != nil {
		return nil, err
	}

	results := make([]listing.Record, len(sigs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)
	for i, sig := range sigs {
		g.Go(func() error {
			rec := h.scanOne(gctx, kind, sig)
			if rec != nil {
				results[i] = rec
				metrics.ScanRecords.WithLabelValues(string(kind)).Inc()
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]listing.Record, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := out[i]["timestamp"].(int64)
		tj, _ := out[j]["timestamp"].(int64)
		return ti > tj
	})
	return out, nil
}

func (h *Hydrator) scanOne(ctx context.Context, kind listing.Kind, sig solana.SignatureInfo) listing.Record {
	tx, err := h.ledger.Resolve(ctx, sig.Signature)
	if err != nil || tx == nil {
		if err != nil {
			logger.Debugf("scan: resolve %s failed: %v", sig.Signature, err)
		}
		return nil
	}
	proof, wallet, err := verify.Inspect(tx)
	if err != nil {
		// transactions without a valid proof are unrelated traffic
		return nil
	}
	if proof.Kind != kind {
		return nil
	}

	var content map[string]any
	if err := h.store.Get(ctx, proof.CID, &content); err != nil {
		logger.Warnf("scan: failed to fetch IPFS content cid=%s: %v", proof.CID, err)
		metrics.HydrationDropped.WithLabelValues(string(kind)).Inc()
		return nil
	}

	observed := tx.BlockTime * 1000
	if observed == 0 {
		observed = h.now().UnixMilli()
	}
	entry := &listing.RegistryEntry{
		Kind:       proof.Kind,
		CID:        proof.CID,
		PostID:     proof.PostID,
		Signature:  sig.Signature,
		Wallet:     wallet,
		ObservedAt: observed,
		Slot:       tx.Slot,
	}
	return listing.Merge(content, entry)
}
