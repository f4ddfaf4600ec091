package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dayjobfun/dayjob/backend/go-services/internal/ipfs"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/solana"
	"github.com/dayjobfun/dayjob/backend/go-services/pkg/logger"
)

// BalanceChecker is the gating surface the precheck endpoint needs.
type BalanceChecker interface {
	Balance(ctx context.Context, wallet string) (float64, error)
	Required() float64
}

// PinHandler proxies listing JSON onto IPFS so clients never hold the pinning
// credential. A pin failure blocks the publish outright: without a CID there
// is nothing to anchor on chain.
type PinHandler struct {
	store ipfs.Store
	gate  BalanceChecker
}

func NewPinHandler(store ipfs.Store, gate BalanceChecker) *PinHandler {
	return &PinHandler{store: store, gate: gate}
}

func (h *PinHandler) Register(r *gin.Engine) {
	r.POST("/api/ipfs", h.pin)
	r.GET("/api/gating/:wallet", h.gating)
}

func (h *PinHandler) pin(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cid, err := h.store.Put(c.Request.Context(), payload)
	if err != nil {
		logger.Errorf("ipfs pin failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload to IPFS"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cid": cid})
}

// gating reports whether a wallet clears the JOB token gate, so the post form
// can warn before the user pays for a transaction that verification would
// reject anyway.
func (h *PinHandler) gating(c *gin.Context) {
	wallet := c.Param("wallet")
	if !solana.ValidAddress(wallet) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}
	balance, err := h.gate.Balance(c.Request.Context(), wallet)
	if err != nil {
		logger.Warnf("gating precheck failed for %s: %v", wallet, err)
		// closed gate, not an error: the snapshot is best-effort
		c.JSON(http.StatusOK, gin.H{"hasAccess": false, "balance": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"hasAccess": balance >= h.gate.Required(),
		"balance":   balance,
	})
}
