package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifeflow/internal/collection"
	"lifeflow/internal/model"
	"lifeflow/internal/notify"
	"lifeflow/internal/reminder"
	"lifeflow/internal/selection"
	"lifeflow/internal/syncer"
)

// BoardHandler serves the task board snapshot and routes mutations through
// the optimistic queue.
type BoardHandler struct {
	board  *syncer.Board
	queue  *syncer.Queue
	toasts *notify.Center
	logger *zap.Logger
}

func NewBoardHandler(board *syncer.Board, queue *syncer.Queue, toasts *notify.Center, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{board: board, queue: queue, toasts: toasts, logger: logger}
}

func (h *BoardHandler) GetBoard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tasks": h.board.TasksSnapshot(),
		"lists": h.board.ListsSnapshot(),
	})
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (h *BoardHandler) ReorderTasks(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("ReorderTasks: invalid body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	snap := h.board.TasksSnapshot()
	if req.From < 0 || req.From >= len(snap) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from index out of range"})
		return
	}
	taskID := snap[req.From].ID

	if err := h.queue.Apply(c.Request.Context(), taskID, syncer.MoveTask{From: req.From, To: req.To}); err != nil {
		h.rejected(c, "ReorderTasks", err)
		return
	}

	h.logger.Info("ReorderTasks: applied",
		zap.String("task_id", taskID),
		zap.Int("from", req.From),
		zap.Int("to", req.To),
	)
	c.JSON(http.StatusAccepted, gin.H{"tasks": h.board.TasksSnapshot()})
}

type recategorizeRequest struct {
	// ListID is the selection-control value: empty means uncategorized.
	ListID string `json:"list_id"`
}

func (h *BoardHandler) RecategorizeTask(c *gin.Context) {
	taskID := c.Param("id")

	var req recategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("RecategorizeTask: invalid body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	listID := selection.FromSelection(req.ListID)
	if err := h.queue.Apply(c.Request.Context(), taskID, syncer.SetList{ListID: listID}); err != nil {
		h.rejected(c, "RecategorizeTask", err)
		return
	}

	h.logger.Info("RecategorizeTask: applied",
		zap.String("task_id", taskID),
		zap.String("selection", req.ListID),
	)
	c.JSON(http.StatusAccepted, gin.H{"status": "ok"})
}

type editTaskRequest struct {
	Title         *string `json:"title"`
	Content       *string `json:"content"`
	ReminderTime  *string `json:"reminder_time"`
	ClearReminder bool    `json:"clear_reminder"`
}

func (h *BoardHandler) EditTask(c *gin.Context) {
	taskID := c.Param("id")

	var req editTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("EditTask: invalid body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	patch := syncer.TaskPatch{
		Title:         req.Title,
		Content:       req.Content,
		ClearReminder: req.ClearReminder,
	}
	if req.ReminderTime != nil {
		at, err := time.Parse(time.RFC3339, *req.ReminderTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reminder_time"})
			return
		}
		patch.ReminderTime = &at
	}

	if err := h.queue.Apply(c.Request.Context(), taskID, syncer.EditTask{Patch: patch}); err != nil {
		h.rejected(c, "EditTask", err)
		return
	}

	h.logger.Info("EditTask: applied", zap.String("task_id", taskID))
	c.JSON(http.StatusAccepted, gin.H{"status": "ok"})
}

type checkinRequest struct {
	TimezoneOffset int `json:"timezone_offset"`
}

func (h *BoardHandler) CheckinTask(c *gin.Context) {
	taskID := c.Param("id")

	var req checkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("CheckinTask: invalid body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if err := h.queue.Apply(c.Request.Context(), taskID, syncer.Checkin{TimezoneOffsetMinutes: req.TimezoneOffset}); err != nil {
		h.rejected(c, "CheckinTask", err)
		return
	}

	task, ok := h.board.GetTask(taskID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	if reminder.IsMilestone(task.CurrentStreak) {
		h.toasts.Show(reminder.MilestoneMessage(task.Title, task.CurrentStreak), notify.KindSuccess)
	}

	h.logger.Info("CheckinTask: applied",
		zap.String("task_id", taskID),
		zap.Int("current_streak", task.CurrentStreak),
	)
	c.JSON(http.StatusAccepted, gin.H{"task": task})
}

func (h *BoardHandler) DeleteTask(c *gin.Context) {
	taskID := c.Param("id")

	if err := h.queue.Apply(c.Request.Context(), taskID, syncer.DeleteTask{}); err != nil {
		h.rejected(c, "DeleteTask", err)
		return
	}

	h.logger.Info("DeleteTask: applied", zap.String("task_id", taskID))
	c.JSON(http.StatusAccepted, gin.H{"status": "ok"})
}

func (h *BoardHandler) DailyRing(c *gin.Context) {
	offsetRaw := c.DefaultQuery("timezone_offset", "0")
	offset, err := strconv.Atoi(offsetRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timezone_offset"})
		return
	}

	ring := h.board.DailyRingFor(dailyRingDate(offset))
	c.JSON(http.StatusOK, gin.H{"ring": ring})
}

func (h *BoardHandler) GetToast(c *gin.Context) {
	toast := h.toasts.Current()
	if toast == nil {
		c.JSON(http.StatusOK, gin.H{"toast": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"toast": toast})
}

func (h *BoardHandler) DismissToast(c *gin.Context) {
	h.toasts.Hide()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func dailyRingDate(tzOffsetMinutes int) time.Time {
	return model.LocalDate(time.Now(), tzOffsetMinutes)
}

// rejected maps a synchronous queue rejection to a client error. Structural
// rejections never reach persistence, so they are always the caller's fault.
func (h *BoardHandler) rejected(c *gin.Context, op string, err error) {
	h.logger.Warn(op+": rejected", zap.Error(err))
	if errors.Is(err, collection.ErrIndexOutOfRange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index out of range"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
