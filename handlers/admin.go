package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dayjobfun/dayjob/backend/go-services/internal/audit"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/listing"
	"github.com/dayjobfun/dayjob/backend/go-services/pkg/logger"
	"github.com/dayjobfun/dayjob/backend/go-services/pkg/middleware"
)

// AdminHandler exposes operator-only reconciliation between the registry
// cache and ledger ground truth.
type AdminHandler struct {
	auditor *audit.Auditor
	secret  string
}

func NewAdminHandler(auditor *audit.Auditor, jwtSecret string) *AdminHandler {
	return &AdminHandler{auditor: auditor, secret: jwtSecret}
}

func (h *AdminHandler) Register(r *gin.Engine) {
	grp := r.Group("/api/admin", middleware.AdminAuthMiddleware(h.secret))
	grp.POST("/audit", h.runAudit)
}

func (h *AdminHandler) runAudit(c *gin.Context) {
	limit := parseLimit(c, defaultScanLimit)

	kinds := []listing.Kind{listing.KindJob, listing.KindTalent}
	if raw := c.Query("type"); raw != "" {
		kind, ok := listing.ParseKind(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid `type` query param"})
			return
		}
		kinds = []listing.Kind{kind}
	}

	reports := make([]*audit.Report, 0, len(kinds))
	for _, kind := range kinds {
		report, err := h.auditor.Run(c.Request.Context(), kind, limit)
		if err != nil {
			logger.Errorf("audit run for %s failed: %v", kind, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "audit failed", "type": kind})
			return
		}
		logger.Infof("audit %s: scanned=%d verified=%d chainOnly=%d cacheExtra=%d",
			kind, report.Scanned, report.Verified, len(report.ChainOnly), len(report.CacheExtra))
		reports = append(reports, report)
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}
