package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "5001", cfg.Server.Port)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, "https://api.mainnet-beta.solana.com", cfg.Solana.RPCURL)
	require.Equal(t, 1_000_000.0, cfg.Gating.RequiredAmount)
	require.Equal(t, "dayjob-pins", cfg.Mirror.Bucket)
	require.Equal(t, 60, cfg.RateLimit.WindowSeconds)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "https://api.devnet.solana.com")
	t.Setenv("DAYJOB_INDEX_ADDRESS", "IndexAddr123")
	t.Setenv("GATING_TOKEN_MINT", "Mint123")
	t.Setenv("RATE_LIMIT_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "https://api.devnet.solana.com", cfg.Solana.RPCURL)
	require.Equal(t, "IndexAddr123", cfg.Solana.IndexAddress)
	require.Equal(t, "Mint123", cfg.Gating.TokenMint)
	require.True(t, cfg.RateLimit.Enabled)
}
