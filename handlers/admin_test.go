package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/dayjobfun/dayjob/backend/go-services/internal/audit"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/registry"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/solana"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/tokens"
)

const adminSecret = "test-admin-secret"

func adminToken(t *testing.T) string {
	t.Helper()
	signed, err := tokens.GenerateAdminToken(adminSecret, "ops", time.Hour)
	require.NoError(t, err)
	return signed
}

func adminRouter(ledger solana.Client, repo registry.Repository) *gin.Engine {
	g := gin.New()
	NewAdminHandler(audit.New(repo, ledger, "IndexAddr"), adminSecret).Register(g)
	return g
}

func TestAdminAudit_RequiresToken(t *testing.T) {
	g := adminRouter(&fakeLedger{}, registry.NewMemoryRepository())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/audit", nil)
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAdminAudit_ReportsChainOnlyFinding(t *testing.T) {
	// one verified publication on chain that the cache never recorded
	ledger := &fakeLedger{
		txs: map[string]*solana.Transaction{
			"sigA": memoTx(10, walletA, "DAYJOB:JOB:cid-a:JOB-1700000001-aaaaaa"),
		},
		sigs: []solana.SignatureInfo{{Signature: "sigA"}},
	}
	g := adminRouter(ledger, registry.NewMemoryRepository())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/audit?type=JOB", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)

	var resp struct {
		Reports []*audit.Report `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &resp))
	require.Len(t, resp.Reports, 1)
	require.Equal(t, 1, resp.Reports[0].Scanned)
	require.Len(t, resp.Reports[0].ChainOnly, 1)
}
