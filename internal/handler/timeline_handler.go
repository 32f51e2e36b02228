package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifeflow/internal/model"
	"lifeflow/internal/remote"
	"lifeflow/internal/timeline"
)

// LifeEntryStore is the slice of the remote client timeline writes go
// through. Timeline writes are not queued: entries have no local-first
// ordering to protect, so the call is synchronous.
type LifeEntryStore interface {
	CreateLifeEntry(ctx context.Context, content string) (*model.LifeEntry, error)
	UpdateLifeEntry(ctx context.Context, entryID, content string) error
	DeleteLifeEntry(ctx context.Context, entryID string) error
}

type TimelineHandler struct {
	cursor *timeline.Cursor
	store  LifeEntryStore
	logger *zap.Logger
}

func NewTimelineHandler(cursor *timeline.Cursor, store LifeEntryStore, logger *zap.Logger) *TimelineHandler {
	return &TimelineHandler{cursor: cursor, store: store, logger: logger}
}

func (h *TimelineHandler) GetTimeline(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items":    h.cursor.Snapshot(),
		"has_next": h.cursor.HasNextPage(),
	})
}

func (h *TimelineHandler) NextPage(c *gin.Context) {
	if err := h.cursor.FetchNextPage(c.Request.Context()); err != nil {
		h.logger.Error("NextPage: fetch failed", zap.Error(err))
		c.JSON(remoteStatus(err), gin.H{"error": "failed to load more entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":    h.cursor.Snapshot(),
		"has_next": h.cursor.HasNextPage(),
	})
}

type lifeEntryRequest struct {
	Content string `json:"content"`
}

func (h *TimelineHandler) CreateEntry(c *gin.Context) {
	var req lifeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content required"})
		return
	}

	entry, err := h.store.CreateLifeEntry(c.Request.Context(), req.Content)
	if err != nil {
		h.logger.Error("CreateEntry: remote create failed", zap.Error(err))
		c.JSON(remoteStatus(err), gin.H{"error": "failed to create entry"})
		return
	}

	h.cursor.Push(entry)
	h.logger.Info("CreateEntry: success", zap.String("entry_id", entry.ID))
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

func (h *TimelineHandler) UpdateEntry(c *gin.Context) {
	entryID := c.Param("id")

	var req lifeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content required"})
		return
	}

	if err := h.store.UpdateLifeEntry(c.Request.Context(), entryID, req.Content); err != nil {
		h.logger.Error("UpdateEntry: remote update failed",
			zap.String("entry_id", entryID),
			zap.Error(err),
		)
		c.JSON(remoteStatus(err), gin.H{"error": "failed to update entry"})
		return
	}

	// Refresh the loaded copy in place, keeping its timeline position.
	for _, loaded := range h.cursor.Snapshot() {
		if loaded.ID == entryID {
			loaded.Content = req.Content
			loaded.UpdatedAt = time.Now()
			h.cursor.Update(loaded)
			break
		}
	}

	h.logger.Info("UpdateEntry: success", zap.String("entry_id", entryID))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *TimelineHandler) DeleteEntry(c *gin.Context) {
	entryID := c.Param("id")

	if err := h.store.DeleteLifeEntry(c.Request.Context(), entryID); err != nil {
		h.logger.Error("DeleteEntry: remote delete failed",
			zap.String("entry_id", entryID),
			zap.Error(err),
		)
		c.JSON(remoteStatus(err), gin.H{"error": "failed to delete entry"})
		return
	}

	h.cursor.Remove(entryID)
	h.logger.Info("DeleteEntry: success", zap.String("entry_id", entryID))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// remoteStatus maps a persistence failure to the status surfaced to the
// view layer. Remote rejections pass the upstream status through; anything
// else is a gateway-side failure.
func remoteStatus(err error) int {
	var perr *remote.PersistenceError
	if errors.As(err, &perr) && perr.Status >= 400 && perr.Status < 500 {
		return perr.Status
	}
	return http.StatusBadGateway
}
