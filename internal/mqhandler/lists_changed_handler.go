package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	mqcontracts "lifeflow/contracts/mq"
	"lifeflow/internal/model"
	"lifeflow/internal/syncer"
	"lifeflow/pkg/util"
)

// ListFetcher is the slice of the remote client this handler refreshes
// through.
type ListFetcher interface {
	ListLists(ctx context.Context) ([]*model.CardList, error)
}

// ListsChangedHandler reacts to a server-side change of the card lists:
// it refetches the list collection and reconciles any mutations that were
// flagged against a list the client had not loaded.
type ListsChangedHandler struct {
	fetcher ListFetcher
	board   *syncer.Board
	queue   *syncer.Queue
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewListsChangedHandler(fetcher ListFetcher, board *syncer.Board, queue *syncer.Queue, deduper *util.Deduper, logger *zap.Logger) *ListsChangedHandler {
	return &ListsChangedHandler{
		fetcher: fetcher,
		board:   board,
		queue:   queue,
		deduper: deduper,
		logger:  logger,
	}
}

func (h *ListsChangedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.ListsChangedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal ListsChangedPayload", zap.Error(err))
		return err
	}

	if h.deduper != nil && !h.deduper.AcquireOnce(ctx, "lists_changed", p.EventID) {
		return nil
	}

	h.logger.Info("Handling lists.changed event",
		zap.String("event_id", p.EventID),
		zap.Time("changed_at", p.ChangedAt),
	)

	lists, err := h.fetcher.ListLists(ctx)
	if err != nil {
		isRetryable, errType := util.IsRetryableError(err)
		h.logger.Error("Failed to refetch lists",
			zap.Bool("retryable", isRetryable),
			zap.String("error_type", errType),
			zap.Error(err),
		)
		if isRetryable {
			// Requeue and let the broker redeliver.
			return err
		}
		return nil
	}

	if err := h.board.HydrateLists(lists); err != nil {
		h.logger.Error("Failed to hydrate lists", zap.Error(err))
		return err
	}

	resolved, cleared := h.queue.ReconcileStale()
	h.logger.Info("Lists refreshed",
		zap.Int("list_count", len(lists)),
		zap.Int("stale_resolved", resolved),
		zap.Int("stale_cleared", cleared),
	)
	return nil
}
