package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dayjobfun/dayjob/backend/go-services/internal/listing"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/registry"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/solana"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/verify"
	"github.com/dayjobfun/dayjob/backend/go-services/pkg/logger"
	"github.com/dayjobfun/dayjob/backend/go-services/pkg/metrics"
)

// RegistryHandler serves the publication write path: claimed events come in,
// only ledger-verified entries are persisted.
type RegistryHandler struct {
	engine *verify.Engine
	repo   registry.Repository
}

func NewRegistryHandler(engine *verify.Engine, repo registry.Repository) *RegistryHandler {
	return &RegistryHandler{engine: engine, repo: repo}
}

func (h *RegistryHandler) Register(r *gin.Engine) {
	r.POST("/api/registry", h.publish)
}

type publishRequest struct {
	Type      string `json:"type"`
	CID       string `json:"cid"`
	PostID    string `json:"postId"`
	Signature string `json:"signature"`
	Wallet    string `json:"wallet"`
}

func (h *RegistryHandler) publish(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, ok := listing.ParseKind(req.Type)
	if !ok || req.CID == "" || req.PostID == "" || req.Signature == "" || req.Wallet == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}
	if !solana.ValidAddress(req.Wallet) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}

	entry, err := h.engine.Verify(c.Request.Context(), &verify.Event{
		Kind:      kind,
		CID:       req.CID,
		PostID:    req.PostID,
		Signature: req.Signature,
		Wallet:    req.Wallet,
	})
	if err != nil {
		status, reason := rejectionStatus(err)
		metrics.VerifyResults.WithLabelValues(reason).Inc()
		logger.Infof("publication rejected: %s post=%s sig=%s: %v", kind, req.PostID, req.Signature, err)
		c.JSON(status, gin.H{"error": err.Error(), "reason": reason})
		return
	}
	metrics.VerifyResults.WithLabelValues("accepted").Inc()

	if err := h.repo.Append(c.Request.Context(), entry); err != nil {
		if errors.Is(err, registry.ErrDuplicate) {
			metrics.RegistryWrites.WithLabelValues(string(kind), "duplicate").Inc()
			c.JSON(http.StatusConflict, gin.H{"error": "post already registered", "reason": "DuplicateKey"})
			return
		}
		metrics.RegistryWrites.WithLabelValues(string(kind), "error").Inc()
		logger.Errorf("registry append failed for %s %s: %v", kind, req.PostID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write registry entry"})
		return
	}
	metrics.RegistryWrites.WithLabelValues(string(kind), "ok").Inc()
	logger.Infof("registered %s %s by %s (slot %d)", kind, entry.PostID, entry.Wallet, entry.Slot)

	c.JSON(http.StatusCreated, gin.H{"success": true, "entry": entry})
}

// rejectionStatus maps a verification failure to an HTTP status and a stable
// reason tag. Each reason is a different remediation path for the caller, so
// the tag is part of the API contract.
func rejectionStatus(err error) (int, string) {
	switch {
	case errors.Is(err, verify.ErrSignatureNotFound):
		return http.StatusUnprocessableEntity, "SignatureNotFound"
	case errors.Is(err, verify.ErrMissingProof):
		return http.StatusUnprocessableEntity, "MissingProof"
	case errors.Is(err, verify.ErrProofMismatch):
		return http.StatusUnprocessableEntity, "ProofMismatch"
	case errors.Is(err, verify.ErrAuthorMismatch):
		return http.StatusUnprocessableEntity, "AuthorMismatch"
	case errors.Is(err, verify.ErrAccessDenied):
		return http.StatusForbidden, "AccessDenied"
	default:
		// resolver/transport failure, not a protocol rejection
		return http.StatusBadGateway, "ResolverUnavailable"
	}
}
