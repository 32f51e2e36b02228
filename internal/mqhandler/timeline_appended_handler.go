package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	mqcontracts "lifeflow/contracts/mq"
	"lifeflow/internal/model"
	"lifeflow/internal/timeline"
	"lifeflow/pkg/util"
)

// TimelineAppendedHandler merges a server-pushed life entry into the loaded
// timeline. The cursor's idempotent merge drops re-deliveries that survived
// dedup.
type TimelineAppendedHandler struct {
	cursor  *timeline.Cursor
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewTimelineAppendedHandler(cursor *timeline.Cursor, deduper *util.Deduper, logger *zap.Logger) *TimelineAppendedHandler {
	return &TimelineAppendedHandler{
		cursor:  cursor,
		deduper: deduper,
		logger:  logger,
	}
}

func (h *TimelineAppendedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.TimelineAppendedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal TimelineAppendedPayload", zap.Error(err))
		return err
	}

	if h.deduper != nil && !h.deduper.AcquireOnce(ctx, "timeline_appended", p.EventID) {
		return nil
	}

	entry := &model.LifeEntry{
		ID:        p.EntryID,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.CreatedAt,
	}

	merged := h.cursor.Push(entry)
	h.logger.Info("Handling timeline.appended event",
		zap.String("event_id", p.EventID),
		zap.String("entry_id", p.EntryID),
		zap.Bool("merged", merged),
	)
	return nil
}
