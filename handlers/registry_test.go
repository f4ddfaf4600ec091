package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/dayjobfun/dayjob/backend/go-services/internal/listing"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/registry"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/solana"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/verify"
)

// real 32-byte base58 addresses; the handler validates wallet format
const (
	walletA = "So11111111111111111111111111111111111111112"
	walletB = "Vote111111111111111111111111111111111111111"
)

type fakeLedger struct {
	txs  map[string]*solana.Transaction
	sigs []solana.SignatureInfo
}

func (f *fakeLedger) Resolve(ctx context.Context, sig string) (*solana.Transaction, error) {
	return f.txs[sig], nil
}

func (f *fakeLedger) Scan(ctx context.Context, address string, limit int) ([]solana.SignatureInfo, error) {
	if limit < len(f.sigs) {
		return f.sigs[:limit], nil
	}
	return f.sigs, nil
}

type fakeGate struct{ allowed map[string]bool }

func (f *fakeGate) Check(ctx context.Context, wallet string) bool { return f.allowed[wallet] }

func memoTx(slot uint64, signer, memoStr string) *solana.Transaction {
	return &solana.Transaction{
		Slot:        slot,
		AccountKeys: []string{signer},
		Instructions: []solana.Instruction{
			{Program: solana.MemoProgramName, Memo: memoStr},
		},
	}
}

func publishRouter(ledger solana.Client, gate *fakeGate, repo registry.Repository) *gin.Engine {
	g := gin.New()
	NewRegistryHandler(verify.NewEngine(ledger, gate), repo).Register(g)
	return g
}

func postJSON(t *testing.T, g *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func validPublish() map[string]any {
	return map[string]any{
		"type":      "JOB",
		"cid":       "bafy123",
		"postId":    "JOB-1700000000-ab12cd",
		"signature": "sigXYZ",
		"wallet":    walletA,
	}
}

func TestPublish_EndToEndAccept(t *testing.T) {
	ledger := &fakeLedger{txs: map[string]*solana.Transaction{
		"sigXYZ": memoTx(25000001, walletA, "DAYJOB:JOB:bafy123:JOB-1700000000-ab12cd"),
	}}
	gate := &fakeGate{allowed: map[string]bool{walletA: true}}
	repo := registry.NewMemoryRepository()
	g := publishRouter(ledger, gate, repo)

	rw := postJSON(t, g, "/api/registry", validPublish())
	require.Equal(t, http.StatusCreated, rw.Code)

	var resp struct {
		Success bool                  `json:"success"`
		Entry   listing.RegistryEntry `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, uint64(25000001), resp.Entry.Slot)

	// the verified entry is durably readable with the exact claimed fields
	stored, err := repo.Get(context.Background(), listing.KindJob, "JOB-1700000000-ab12cd")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "bafy123", stored.CID)
	require.Equal(t, "sigXYZ", stored.Signature)
	require.Equal(t, walletA, stored.Wallet)
}

func TestPublish_RejectionReasons(t *testing.T) {
	cases := []struct {
		name       string
		tx         *solana.Transaction
		gate       map[string]bool
		wantStatus int
		wantReason string
	}{
		{
			name:       "signature not on chain",
			tx:         nil,
			wantStatus: http.StatusUnprocessableEntity,
			wantReason: "SignatureNotFound",
		},
		{
			name: "no memo instruction",
			tx: &solana.Transaction{AccountKeys: []string{walletA},
				Instructions: []solana.Instruction{{Program: "system"}}},
			wantStatus: http.StatusUnprocessableEntity,
			wantReason: "MissingProof",
		},
		{
			name:       "memo commits to different cid",
			tx:         memoTx(1, walletA, "DAYJOB:JOB:bafyOTHER:JOB-1700000000-ab12cd"),
			wantStatus: http.StatusUnprocessableEntity,
			wantReason: "ProofMismatch",
		},
		{
			name:       "signed by a different wallet",
			tx:         memoTx(1, walletB, "DAYJOB:JOB:bafy123:JOB-1700000000-ab12cd"),
			wantStatus: http.StatusUnprocessableEntity,
			wantReason: "AuthorMismatch",
		},
		{
			name:       "token gate denies",
			tx:         memoTx(1, walletA, "DAYJOB:JOB:bafy123:JOB-1700000000-ab12cd"),
			gate:       map[string]bool{},
			wantStatus: http.StatusForbidden,
			wantReason: "AccessDenied",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ledger := &fakeLedger{txs: map[string]*solana.Transaction{}}
			if tc.tx != nil {
				ledger.txs["sigXYZ"] = tc.tx
			}
			allowed := tc.gate
			if allowed == nil {
				allowed = map[string]bool{walletA: true}
			}
			g := publishRouter(ledger, &fakeGate{allowed: allowed}, registry.NewMemoryRepository())

			rw := postJSON(t, g, "/api/registry", validPublish())
			require.Equal(t, tc.wantStatus, rw.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &resp))
			require.Equal(t, tc.wantReason, resp["reason"])
		})
	}
}

func TestPublish_DuplicateConflict(t *testing.T) {
	ledger := &fakeLedger{txs: map[string]*solana.Transaction{
		"sigXYZ": memoTx(1, walletA, "DAYJOB:JOB:bafy123:JOB-1700000000-ab12cd"),
	}}
	gate := &fakeGate{allowed: map[string]bool{walletA: true}}
	g := publishRouter(ledger, gate, registry.NewMemoryRepository())

	require.Equal(t, http.StatusCreated, postJSON(t, g, "/api/registry", validPublish()).Code)

	rw := postJSON(t, g, "/api/registry", validPublish())
	require.Equal(t, http.StatusConflict, rw.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &resp))
	require.Equal(t, "DuplicateKey", resp["reason"])
}

func TestPublish_BadRequests(t *testing.T) {
	g := publishRouter(&fakeLedger{}, &fakeGate{}, registry.NewMemoryRepository())

	missing := validPublish()
	delete(missing, "cid")
	require.Equal(t, http.StatusBadRequest, postJSON(t, g, "/api/registry", missing).Code)

	badKind := validPublish()
	badKind["type"] = "GIG"
	require.Equal(t, http.StatusBadRequest, postJSON(t, g, "/api/registry", badKind).Code)

	badWallet := validPublish()
	badWallet["wallet"] = "not-a-wallet"
	require.Equal(t, http.StatusBadRequest, postJSON(t, g, "/api/registry", badWallet).Code)
}
