package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dayjobfun/dayjob/backend/go-services/internal/hydrate"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/listing"
	"github.com/dayjobfun/dayjob/backend/go-services/pkg/logger"
)

const (
	defaultListLimit = 60
	defaultScanLimit = 50
	maxLimit         = 100
)

// ListingsHandler serves the hydrated read paths: cached board listings,
// single-post detail, and the direct-chain scan fallback.
type ListingsHandler struct {
	hydrator *hydrate.Hydrator
}

func NewListingsHandler(h *hydrate.Hydrator) *ListingsHandler {
	return &ListingsHandler{hydrator: h}
}

func (h *ListingsHandler) Register(r *gin.Engine) {
	r.GET("/api/jobs", h.list(listing.KindJob))
	r.GET("/api/jobs/:id", h.get(listing.KindJob))
	r.GET("/api/talent", h.list(listing.KindTalent))
	r.GET("/api/talent/:id", h.get(listing.KindTalent))
	r.GET("/api/scan", h.scan)
}

func parseLimit(c *gin.Context, def int) int {
	raw := c.Query("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

func (h *ListingsHandler) list(kind listing.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := h.hydrator.List(c.Request.Context(), kind, parseLimit(c, defaultListLimit))
		if err != nil {
			logger.Errorf("failed to list %s registry entries: %v", kind, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read registry"})
			return
		}
		if records == nil {
			records = []listing.Record{}
		}
		c.JSON(http.StatusOK, records)
	}
}

func (h *ListingsHandler) get(kind listing.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, err := h.hydrator.GetByID(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			logger.Errorf("failed to fetch %s %s: %v", kind, c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read registry"})
			return
		}
		if record == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

func (h *ListingsHandler) scan(c *gin.Context) {
	kind, ok := listing.ParseKind(c.Query("type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid `type` query param"})
		return
	}
	records, err := h.hydrator.Scan(c.Request.Context(), kind, parseLimit(c, defaultScanLimit))
	if err != nil {
		logger.Errorf("chain scan for %s failed: %v", kind, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "chain scan failed"})
		return
	}
	if records == nil {
		records = []listing.Record{}
	}
	c.JSON(http.StatusOK, records)
}
