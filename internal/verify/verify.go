package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dayjobfun/dayjob/backend/go-services/internal/gating"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/listing"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/memo"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/solana"
)

// Rejection reasons. Each is a distinct remediation path for the publisher:
// ledger lag, a wrong transaction, a forged claim, or a failed token gate.
var (
	ErrSignatureNotFound = errors.New("transaction signature not found on chain")
	ErrMissingProof      = errors.New("transaction has no memo instruction")
	ErrProofMismatch     = errors.New("memo content does not match claimed payload")
	ErrAuthorMismatch    = errors.New("transaction fee payer does not match claimed wallet")
	ErrAccessDenied      = errors.New("wallet does not meet token requirements")
)

// Event is a claimed publication as submitted by a client. Every field is
// untrusted until verified against the resolved transaction.
type Event struct {
	Kind      listing.Kind
	CID       string
	PostID    string
	Signature string
	Wallet    string
}

// Engine re-derives and checks the on-chain proof for claimed publications.
// Verification is synchronous and side-effect-free: persistence of the
// returned entry is the caller's job, which keeps retries safe.
type Engine struct {
	ledger solana.Client
	gate   gating.Predicate
	now    func() time.Time
}

func NewEngine(ledger solana.Client, gate gating.Predicate) *Engine {
	return &Engine{ledger: ledger, gate: gate, now: time.Now}
}

// Inspect extracts and parses the proof carried by a resolved transaction and
// identifies its author. It is the single shared check between the write-path
// Verify and the read-path chain scan, so the two can never diverge.
//
// The first memo instruction found is authoritative; a transaction carrying
// several memos is not treated as ambiguous. The author is account index 0,
// the fee payer by Solana convention.
func Inspect(tx *solana.Transaction) (*memo.Proof, string, error) {
	raw, ok := solana.FirstMemo(tx)
	if !ok {
		return nil, "", ErrMissingProof
	}
	proof, ok := memo.Parse(raw)
	if !ok {
		return nil, "", fmt.Errorf("%w: unparseable memo", ErrProofMismatch)
	}
	payer, ok := solana.FeePayer(tx)
	if !ok {
		return nil, "", fmt.Errorf("%w: transaction has no accounts", ErrAuthorMismatch)
	}
	return proof, payer, nil
}

// Verify checks a claimed publication event against ledger state and returns
// the registry entry to persist on acceptance.
//
// The engine does not retry a missing signature; the ledger is eventually
// consistent and the client is expected to resubmit after a delay.
func (e *Engine) Verify(ctx context.Context, ev *Event) (*listing.RegistryEntry, error) {
	tx, err := e.ledger.Resolve(ctx, ev.Signature)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ev.Signature, err)
	}
	if tx == nil {
		return nil, ErrSignatureNotFound
	}

	proof, payer, err := Inspect(tx)
	if err != nil {
		return nil, err
	}

	// The cost-bearing, author-signed transaction must commit to exactly the
	// claimed content and post identity.
	if proof.Kind != ev.Kind || proof.CID != ev.CID || proof.PostID != ev.PostID {
		return nil, ErrProofMismatch
	}

	if payer != ev.Wallet {
		return nil, ErrAuthorMismatch
	}
	// Stricter than fee-payer equality alone: the claimed wallet must appear
	// in the transaction's account set. Full signer-authority validation is
	// not visible through the parsed encoding.
	if !containsAccount(tx.AccountKeys, ev.Wallet) {
		return nil, ErrAuthorMismatch
	}

	// TALENT publication is open participation; only JOB posts are gated.
	if ev.Kind == listing.KindJob && !e.gate.Check(ctx, ev.Wallet) {
		return nil, ErrAccessDenied
	}

	return &listing.RegistryEntry{
		Kind:       ev.Kind,
		CID:        ev.CID,
		PostID:     ev.PostID,
		Signature:  ev.Signature,
		Wallet:     ev.Wallet,
		ObservedAt: e.now().UnixMilli(),
		Slot:       tx.Slot,
	}, nil
}

func containsAccount(keys []string, wallet string) bool {
	for _, k := range keys {
		if k == wallet {
			return true
		}
	}
	return false
}
