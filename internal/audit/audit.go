package audit

import (
	"context"
	"time"

	"github.com/dayjobfun/dayjob/backend/go-services/internal/listing"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/registry"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/solana"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/verify"
	"github.com/dayjobfun/dayjob/backend/go-services/pkg/logger"
)

// Finding is one divergence between ledger and registry.
type Finding struct {
	Kind      listing.Kind `json:"type"`
	PostID    string       `json:"postId"`
	CID       string       `json:"cid,omitempty"`
	Signature string       `json:"signature"`
	Wallet    string       `json:"wallet,omitempty"`
}

// Report summarizes one reconciliation pass over a scan window.
type Report struct {
	Kind       listing.Kind `json:"type"`
	Scanned    int          `json:"scanned"`
	Verified   int          `json:"verified"`
	StartedAt  time.Time    `json:"startedAt"`
	Duration   string       `json:"duration"`
	ChainOnly  []Finding    `json:"chainOnly"`  // proven on chain, absent from the registry
	CacheExtra []Finding    `json:"cacheExtra"` // cached but not seen in the scan window
}

// Auditor compares the registry cache against ledger ground truth. It checks
// proofs only and never fetches content: a divergent cache is a divergent
// cache whether or not the IPFS pin is still alive.
type Auditor struct {
	repo         registry.Repository
	ledger       solana.Client
	indexAddress string
}

func New(repo registry.Repository, ledger solana.Client, indexAddress string) *Auditor {
	return &Auditor{repo: repo, ledger: ledger, indexAddress: indexAddress}
}

// Run scans the most recent limit transactions on the index address,
// re-derives each proof with the same check the write path uses, and reports
// both directions of divergence. CacheExtra entries are informational: a
// cached entry older than the scan window looks extra without being wrong.
func (a *Auditor) Run(ctx context.Context, kind listing.Kind, limit int) (*Report, error) {
	started := time.Now()
	sigs, err := a.ledger.Scan(ctx, a.indexAddress, limit)
	if err != nil {
		return nil, err
	}

	report := &Report{Kind: kind, Scanned: len(sigs), StartedAt: started.UTC()}
	seen := make(map[string]bool, len(sigs))

	for _, sig := range sigs {
		tx, err := a.ledger.Resolve(ctx, sig.Signature)
		if err != nil {
			logger.Warnf("audit: resolve %s failed: %v", sig.Signature, err)
			continue
		}
		if tx == nil {
			continue
		}
		proof, wallet, err := verify.Inspect(tx)
		if err != nil {
			continue
		}
		if proof.Kind != kind {
			continue
		}
		report.Verified++
		seen[sig.Signature] = true

		cached, err := a.repo.Get(ctx, kind, proof.PostID)
		if err != nil {
			return nil, err
		}
		if cached == nil {
			report.ChainOnly = append(report.ChainOnly, Finding{
				Kind:      kind,
				PostID:    proof.PostID,
				CID:       proof.CID,
				Signature: sig.Signature,
				Wallet:    wallet,
			})
		}
	}

	cached, err := a.repo.List(ctx, kind, limit)
	if err != nil {
		return nil, err
	}
	for _, e := range cached {
		if !seen[e.Signature] {
			report.CacheExtra = append(report.CacheExtra, Finding{
				Kind:      e.Kind,
				PostID:    e.PostID,
				CID:       e.CID,
				Signature: e.Signature,
				Wallet:    e.Wallet,
			})
		}
	}

	report.Duration = time.Since(started).String()
	return report, nil
}
