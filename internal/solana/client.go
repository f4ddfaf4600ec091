package solana

import "context"

// MemoProgramAddress is the SPL memo program. The parsed RPC encoding reports
// its instructions under the program name "spl-memo".
const MemoProgramAddress = "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr"

// MemoProgramName is the program label used by the jsonParsed transaction encoding.
const MemoProgramName = "spl-memo"

// Instruction is a single parsed instruction. Memo carries the attached string
// when Program is the memo program; it is empty otherwise.
type Instruction struct {
	Program string
	Memo    string
}

// Transaction is the resolved view of a confirmed transaction. AccountKeys[0]
// is the fee payer by Solana convention.
type Transaction struct {
	Signature    string
	Slot         uint64
	BlockTime    int64 // unix seconds, 0 when the node did not report it
	AccountKeys  []string
	Instructions []Instruction
}

// SignatureInfo identifies one transaction touching a scanned address.
type SignatureInfo struct {
	Signature string
	Slot      uint64
	BlockTime int64
}

// Client resolves transactions and scans address history on the ledger.
type Client interface {
	// Resolve returns (nil, nil) when the ledger has no record of the
	// signature, either because it never existed or has not propagated yet.
	Resolve(ctx context.Context, signature string) (*Transaction, error)

	// Scan returns up to limit signatures touching address, most-recent-first.
	Scan(ctx context.Context, address string, limit int) ([]SignatureInfo, error)
}

// FirstMemo returns the payload of the first memo-program instruction in tx,
// regardless of its position in the instruction list. The protocol permits one
// proof per transaction by convention; extra memo instructions are ignored.
func FirstMemo(tx *Transaction) (string, bool) {
	for _, ix := range tx.Instructions {
		if ix.Program == MemoProgramName {
			return ix.Memo, true
		}
	}
	return "", false
}

// FeePayer returns account index 0, the fee payer and by convention the
// author of a publication transaction.
func FeePayer(tx *Transaction) (string, bool) {
	if len(tx.AccountKeys) == 0 {
		return "", false
	}
	return tx.AccountKeys[0], true
}
