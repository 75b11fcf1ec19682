package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"opnamecore/internal/domain/models"
	"opnamecore/internal/service/opname"
	"opnamecore/internal/service/reconcile"
)

// OpnameHandler adapts the session lifecycle and reconciliation operations
// to HTTP for the cashier UI.
type OpnameHandler struct {
	sessions *opname.Service
	engine   *reconcile.Engine
	drafts   *opname.DraftSaver
	logger   *zap.Logger
}

// NewOpnameHandler constructs the HTTP handler adapter.
func NewOpnameHandler(sessions *opname.Service, engine *reconcile.Engine, drafts *opname.DraftSaver, logger *zap.Logger) *OpnameHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpnameHandler{sessions: sessions, engine: engine, drafts: drafts, logger: logger}
}

type startSessionRequest struct {
	Type models.SOType `json:"type" binding:"required"`
}

// Start creates a new opname session.
func (h *OpnameHandler) Start(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := h.sessions.Start(c.Request.Context(), req.Type)
	if err != nil {
		if errors.Is(err, models.ErrSessionConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "a session is already active, discard it first"})
			return
		}
		h.logger.Error("failed to start session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}

	c.JSON(http.StatusCreated, session)
}

// Current returns the active session, or 204 when none exists.
func (h *OpnameHandler) Current(c *gin.Context) {
	session, err := h.sessions.Current(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to read session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read session"})
		return
	}
	if session == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, session)
}

type saveDraftRequest struct {
	Items    []models.SOWorkingItem `json:"items"`
	LastStep models.SOStep          `json:"last_step" binding:"required"`
}

// SaveDraft accepts a draft payload for debounced persistence.
func (h *OpnameHandler) SaveDraft(c *gin.Context) {
	var req saveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.drafts.Submit(req.Items, req.LastStep)
	c.Status(http.StatusAccepted)
}

// Discard deletes the active session. Safe to call when none exists.
func (h *OpnameHandler) Discard(c *gin.Context) {
	if err := h.sessions.Discard(c.Request.Context()); err != nil {
		h.logger.Error("failed to discard session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to discard session"})
		return
	}
	c.Status(http.StatusOK)
}

// Refresh re-reads system quantities for the draft, keeping physical counts.
func (h *OpnameHandler) Refresh(c *gin.Context) {
	h.drafts.Flush()

	items, err := h.sessions.RefreshDraft(c.Request.Context())
	if err != nil {
		if errors.Is(err, models.ErrNoActiveSession) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
			return
		}
		h.logger.Error("failed to refresh draft", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to refresh draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

type finalizeRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	UserName string `json:"user_name" binding:"required"`
}

// Finalize completes the active session. Pending draft edits are flushed
// first so the record reflects the latest counts.
func (h *OpnameHandler) Finalize(c *gin.Context) {
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.drafts.Flush()

	record, err := h.sessions.Complete(c.Request.Context(), req.UserID, req.UserName)
	if err != nil {
		if errors.Is(err, models.ErrNoActiveSession) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
			return
		}
		h.logger.Error("finalize failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "finalize failed, session kept for retry"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// Summary computes the reconciliation aggregates over the current draft.
// With ?view=mismatch the returned items are the minus-then-plus partition;
// otherwise they are in plain display order.
func (h *OpnameHandler) Summary(c *gin.Context) {
	h.drafts.Flush()

	session, err := h.sessions.Current(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to read session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read session"})
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
		return
	}

	summary, err := h.engine.Summarize(c.Request.Context(), session.WorkingItems)
	if err != nil {
		h.logger.Error("failed to summarize draft", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to summarize draft"})
		return
	}

	items := reconcile.SortForDisplay(session.WorkingItems)
	if c.Query("view") == "mismatch" {
		items = reconcile.MismatchGroups(session.WorkingItems)
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary, "items": items})
}
