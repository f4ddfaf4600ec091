package gating

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func gateServer(t *testing.T, result string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":` + result + `}`))
	}))
}

func TestTokenGate_SumsAcrossAccounts(t *testing.T) {
	srv := gateServer(t, `{"value": [
		{"account": {"data": {"parsed": {"info": {"tokenAmount": {"uiAmount": 600000.0}}}}}},
		{"account": {"data": {"parsed": {"info": {"tokenAmount": {"uiAmount": 500000.0}}}}}},
		{"account": {"data": {"parsed": {"info": {"tokenAmount": {"uiAmount": null}}}}}}
	]}`)
	defer srv.Close()

	g := NewTokenGate(srv.URL, "So11111111111111111111111111111111111111112", 1_000_000)
	bal, err := g.Balance(context.Background(), "Wallet_A")
	require.NoError(t, err)
	require.Equal(t, 1_100_000.0, bal)
	require.True(t, g.Check(context.Background(), "Wallet_A"))
}

func TestTokenGate_BelowThreshold(t *testing.T) {
	srv := gateServer(t, `{"value": [
		{"account": {"data": {"parsed": {"info": {"tokenAmount": {"uiAmount": 10.0}}}}}}
	]}`)
	defer srv.Close()

	g := NewTokenGate(srv.URL, "So11111111111111111111111111111111111111112", 1_000_000)
	require.False(t, g.Check(context.Background(), "Wallet_A"))
}

func TestTokenGate_UnconfiguredMintDenies(t *testing.T) {
	g := NewTokenGate("http://unused.invalid", "", 1_000_000)
	require.False(t, g.Check(context.Background(), "Wallet_A"))
}

func TestTokenGate_RPCFailureDenies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewTokenGate(srv.URL, "So11111111111111111111111111111111111111112", 1)
	require.False(t, g.Check(context.Background(), "Wallet_A"))
}
