package solana

import "github.com/mr-tron/base58"

// ValidAddress reports whether s is a plausible Solana account address:
// base58 text decoding to exactly 32 bytes. It does not prove the account
// exists on chain.
func ValidAddress(s string) bool {
	b, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(b) == 32
}
