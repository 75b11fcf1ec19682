package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"opnamecore/internal/domain/models"
	"opnamecore/internal/repository/mongodb"
	"opnamecore/internal/service/analysis"
)

// HistoryHandler serves the completed-count ledger and the trend analysis
// derived from it.
type HistoryHandler struct {
	ledger   mongodb.HistoryLedger
	analyzer *analysis.Analyzer
	logger   *zap.Logger
}

// NewHistoryHandler constructs the HTTP handler adapter.
func NewHistoryHandler(ledger mongodb.HistoryLedger, analyzer *analysis.Analyzer, logger *zap.Logger) *HistoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryHandler{ledger: ledger, analyzer: analyzer, logger: logger}
}

// List returns every history record, newest first.
func (h *HistoryHandler) List(c *gin.Context) {
	records, err := h.ledger.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

type deleteHistoryRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// Delete permanently removes the given records.
func (h *HistoryHandler) Delete(c *gin.Context) {
	var req deleteHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.ledger.DeleteByIDs(c.Request.Context(), req.IDs); err != nil {
		h.logger.Error("failed to delete history records", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete history records"})
		return
	}

	c.Status(http.StatusOK)
}

type analyzeRequest struct {
	Items []models.SOWorkingItem `json:"items" binding:"required"`
}

// Analyze runs the trend analyzer over the provided item set and the full
// stored history.
func (h *HistoryHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	records, err := h.ledger.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load history for analysis", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, h.analyzer.Analyze(req.Items, records))
}
