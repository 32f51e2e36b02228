package syncer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"lifeflow/internal/notify"
	"lifeflow/pkg/metrics"
)

// Queue applies mutations optimistically and reconciles them against the
// persistence collaborator. Mutations for the same entity are serialized: a
// second mutation is not dispatched until the prior one's outcome is known,
// so a stale response can never clobber a later edit. Distinct entities
// persist concurrently with no ordering between them.
type Queue struct {
	board     *Board
	persister Persister
	toasts    *notify.Center
	logger    *zap.Logger

	mu       sync.Mutex
	pending  map[string][]*job
	inflight map[string]bool
	stale    map[string]string // taskID -> unresolved list id
	closed   bool

	wg sync.WaitGroup
}

type job struct {
	entityID string
	kind     string
	applied  *Applied
}

func NewQueue(board *Board, persister Persister, toasts *notify.Center, logger *zap.Logger) *Queue {
	return &Queue{
		board:     board,
		persister: persister,
		toasts:    toasts,
		logger:    logger,
		pending:   make(map[string][]*job),
		inflight:  make(map[string]bool),
		stale:     make(map[string]string),
	}
}

// Apply computes the new local state synchronously, then enqueues the
// persistence request. Readers observe the optimistic state as soon as Apply
// returns; confirmation or rollback arrives as a later discrete event.
// Structural errors (bad index, unknown entity) reject the mutation with no
// effect.
func (q *Queue) Apply(ctx context.Context, entityID string, m Mutation) error {
	applied, err := m.Apply(q.board, entityID)
	if err != nil {
		q.logger.Warn("Mutation rejected",
			zap.String("entity_id", entityID),
			zap.String("kind", m.Kind()),
			zap.Error(err),
		)
		return err
	}

	if applied.Stale {
		q.logger.Warn("Mutation references an unloaded list, flagging for reconciliation",
			zap.String("entity_id", entityID),
			zap.String("list_id", applied.StaleListID),
		)
		metrics.StaleReferenceCount.Inc()
	}

	q.mu.Lock()
	if applied.Stale {
		q.stale[entityID] = applied.StaleListID
	}
	q.pending[entityID] = append(q.pending[entityID], &job{
		entityID: entityID,
		kind:     m.Kind(),
		applied:  applied,
	})
	if !q.inflight[entityID] && !q.closed {
		q.inflight[entityID] = true
		q.wg.Add(1)
		go q.dispatch(ctx, entityID)
	}
	q.mu.Unlock()

	q.logger.Debug("Mutation applied optimistically",
		zap.String("entity_id", entityID),
		zap.String("kind", m.Kind()),
	)
	return nil
}

// dispatch drains the entity's FIFO one outcome at a time.
func (q *Queue) dispatch(ctx context.Context, entityID string) {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		jobs := q.pending[entityID]
		if len(jobs) == 0 {
			q.inflight[entityID] = false
			q.mu.Unlock()
			return
		}
		j := jobs[0]
		q.pending[entityID] = jobs[1:]
		q.mu.Unlock()

		err := j.applied.Persist(ctx, q.persister)
		if err != nil {
			// Rollback always succeeds; the user is informed, not asked
			// to retry.
			j.applied.Revert()
			q.logger.Error("Persistence failed, rolled back",
				zap.String("entity_id", j.entityID),
				zap.String("kind", j.kind),
				zap.Error(err),
			)
			metrics.IncrementMutation(j.kind, "rolled_back")
			q.toasts.Show("Could not save your change, it has been undone", notify.KindError)
			continue
		}

		metrics.IncrementMutation(j.kind, "confirmed")
		q.logger.Debug("Mutation confirmed",
			zap.String("entity_id", j.entityID),
			zap.String("kind", j.kind),
		)
	}
}

// StaleRefs returns the currently flagged unresolved references.
func (q *Queue) StaleRefs() map[string]string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make(map[string]string, len(q.stale))
	for k, v := range q.stale {
		out[k] = v
	}
	return out
}

// ReconcileStale re-checks flagged references after the list collection has
// been refreshed. References that now resolve are unflagged; references
// still missing are cleared to uncategorized locally and surfaced as an
// info toast. Returns (resolved, cleared).
func (q *Queue) ReconcileStale() (int, int) {
	q.mu.Lock()
	flagged := make(map[string]string, len(q.stale))
	for k, v := range q.stale {
		flagged[k] = v
	}
	q.mu.Unlock()

	resolved, cleared := 0, 0
	for taskID, listID := range flagged {
		if q.board.ListExists(listID) {
			resolved++
		} else {
			q.board.ClearTaskList(taskID)
			cleared++
			q.logger.Warn("Stale list reference cleared",
				zap.String("task_id", taskID),
				zap.String("list_id", listID),
			)
		}
		q.mu.Lock()
		delete(q.stale, taskID)
		q.mu.Unlock()
	}

	if cleared > 0 {
		q.toasts.Show("Some tasks referenced a deleted list and are now uncategorized", notify.KindInfo)
	}
	return resolved, cleared
}

// Close stops accepting dispatches and waits for in-flight persistence to
// settle.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wg.Wait()
}
