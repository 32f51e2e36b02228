package syncer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lifeflow/internal/model"
	"lifeflow/internal/notify"
	"lifeflow/internal/remote"
)

// fakePersister records calls and lets tests control each outcome.
type fakePersister struct {
	mu    sync.Mutex
	calls []string

	// errFor maps an operation name to the error it returns.
	errFor map[string]error
	// gate, when set, blocks every call until released.
	gate chan struct{}
	// started receives the operation name as each call begins.
	started chan string
}

func newFakePersister() *fakePersister {
	return &fakePersister{errFor: make(map[string]error)}
}

func (f *fakePersister) record(op string) error {
	if f.started != nil {
		f.started <- op
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.calls = append(f.calls, op)
	err := f.errFor[op]
	f.mu.Unlock()
	return err
}

func (f *fakePersister) callNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakePersister) UpdateTaskList(ctx context.Context, taskID string, listID *string) error {
	return f.record("UpdateTaskList:" + taskID)
}

func (f *fakePersister) UpdateTaskFields(ctx context.Context, taskID string, fields map[string]interface{}) error {
	return f.record("UpdateTaskFields:" + taskID)
}

func (f *fakePersister) ReorderTasks(ctx context.Context, orders []remote.SortOrderUpdate) error {
	return f.record("ReorderTasks")
}

func (f *fakePersister) DeleteTask(ctx context.Context, taskID string) error {
	return f.record("DeleteTask:" + taskID)
}

func (f *fakePersister) CheckinTask(ctx context.Context, taskID string, tz int) (*model.TaskCard, error) {
	return nil, f.record("CheckinTask:" + taskID)
}

func newTestQueue(t *testing.T, b *Board, p Persister) (*Queue, *notify.Center) {
	t.Helper()
	toasts := notify.NewCenter(time.Minute, zap.NewNop())
	return NewQueue(b, p, toasts, zap.NewNop()), toasts
}

func TestOptimisticStateVisibleBeforeConfirmation(t *testing.T) {
	b := testBoard(t, "A", "B", "C")
	p := newFakePersister()
	p.gate = make(chan struct{})
	q, _ := newTestQueue(t, b, p)

	require.NoError(t, q.Apply(context.Background(), "A", MoveTask{From: 0, To: 2}))

	// The persistence call has not returned, but readers already see the
	// new order.
	assert.Equal(t, []string{"B", "C", "A"}, taskIDs(b.TasksSnapshot()))

	close(p.gate)
	q.Close()
	assert.Equal(t, []string{"ReorderTasks"}, p.callNames())
}

func TestRollbackOnPersistenceError(t *testing.T) {
	b := testBoard(t, "A", "B", "C")
	p := newFakePersister()
	p.errFor["ReorderTasks"] = &remote.PersistenceError{Op: "ReorderTasks", Status: 503}
	q, toasts := newTestQueue(t, b, p)

	require.NoError(t, q.Apply(context.Background(), "A", MoveTask{From: 0, To: 2}))
	q.Close()

	// Local state is back to the pre-mutation snapshot and the user was
	// notified.
	assert.Equal(t, []string{"A", "B", "C"}, taskIDs(b.TasksSnapshot()))
	toast := toasts.Current()
	require.NotNil(t, toast)
	assert.Equal(t, notify.KindError, toast.Kind)
}

func TestStructuralErrorRejectedSynchronously(t *testing.T) {
	b := testBoard(t, "A", "B")
	p := newFakePersister()
	q, _ := newTestQueue(t, b, p)

	err := q.Apply(context.Background(), "A", MoveTask{From: 0, To: 9})
	require.Error(t, err)
	q.Close()

	// Nothing was applied and nothing was dispatched.
	assert.Equal(t, []string{"A", "B"}, taskIDs(b.TasksSnapshot()))
	assert.Empty(t, p.callNames())
}

func TestSameEntityMutationsSerialized(t *testing.T) {
	b := testBoard(t, "A", "B", "C")
	p := newFakePersister()
	p.gate = make(chan struct{}, 2)
	p.started = make(chan string, 2)
	q, _ := newTestQueue(t, b, p)

	title1, title2 := "first", "second"
	require.NoError(t, q.Apply(context.Background(), "A", EditTask{Patch: TaskPatch{Title: &title1}}))
	require.NoError(t, q.Apply(context.Background(), "A", EditTask{Patch: TaskPatch{Title: &title2}}))

	// Exactly one call may be in flight for the entity.
	<-p.started
	select {
	case op := <-p.started:
		t.Fatalf("second mutation dispatched before first settled: %s", op)
	case <-time.After(50 * time.Millisecond):
	}

	p.gate <- struct{}{}
	<-p.started
	p.gate <- struct{}{}
	q.Close()

	assert.Equal(t, []string{"UpdateTaskFields:A", "UpdateTaskFields:A"}, p.callNames())
}

func TestDistinctEntitiesPersistConcurrently(t *testing.T) {
	b := testBoard(t, "A", "B")
	p := newFakePersister()
	p.gate = make(chan struct{})
	p.started = make(chan string, 2)
	q, _ := newTestQueue(t, b, p)

	titleA, titleB := "a", "b"
	require.NoError(t, q.Apply(context.Background(), "A", EditTask{Patch: TaskPatch{Title: &titleA}}))
	require.NoError(t, q.Apply(context.Background(), "B", EditTask{Patch: TaskPatch{Title: &titleB}}))

	// Both calls start without either completing.
	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case op := <-p.started:
			seen[op] = true
		case <-time.After(time.Second):
			t.Fatal("expected two concurrent dispatches")
		}
	}
	assert.True(t, seen["UpdateTaskFields:A"])
	assert.True(t, seen["UpdateTaskFields:B"])

	close(p.gate)
	q.Close()
}

func TestSetListRollback(t *testing.T) {
	b := testBoard(t, "A")
	p := newFakePersister()
	p.errFor["UpdateTaskList:A"] = &remote.PersistenceError{Op: "UpdateTaskList", Status: 500}
	q, _ := newTestQueue(t, b, p)

	work := "work"
	require.NoError(t, b.HydrateLists([]*model.CardList{{ID: "work", Name: "Work", Color: model.DefaultListColor}}))
	require.NoError(t, q.Apply(context.Background(), "A", SetList{ListID: &work}))
	q.Close()

	got, _ := b.GetTask("A")
	assert.Nil(t, got.ListID, "failed association must roll back to uncategorized")
}

func TestStaleReferenceFlaggedAndReconciled(t *testing.T) {
	b := testBoard(t, "A", "B")
	require.NoError(t, b.HydrateLists(nil))
	p := newFakePersister()
	q, toasts := newTestQueue(t, b, p)

	ghost := "ghost"
	later := "later"
	require.NoError(t, q.Apply(context.Background(), "A", SetList{ListID: &ghost}))
	require.NoError(t, q.Apply(context.Background(), "B", SetList{ListID: &later}))
	q.Close()

	refs := q.StaleRefs()
	assert.Equal(t, map[string]string{"A": "ghost", "B": "later"}, refs)

	// The refresh brings "later" into existence but not "ghost".
	require.NoError(t, b.HydrateLists([]*model.CardList{{ID: "later", Name: "Later", Color: model.DefaultListColor}}))
	resolved, cleared := q.ReconcileStale()
	assert.Equal(t, 1, resolved)
	assert.Equal(t, 1, cleared)
	assert.Empty(t, q.StaleRefs())

	gotA, _ := b.GetTask("A")
	assert.Nil(t, gotA.ListID, "unresolvable reference cleared to uncategorized")
	gotB, _ := b.GetTask("B")
	require.NotNil(t, gotB.ListID)
	assert.Equal(t, "later", *gotB.ListID)

	require.NotNil(t, toasts.Current())
}

func TestCheckinPersistsAndConfirms(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	b := NewBoard()
	require.NoError(t, b.HydrateTasks([]*model.TaskCard{testHabit("h", 0, nil)}))
	p := newFakePersister()
	q, _ := newTestQueue(t, b, p)

	require.NoError(t, q.Apply(context.Background(), "h", Checkin{Now: now}))
	q.Close()

	got, _ := b.GetTask("h")
	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, []string{"CheckinTask:h"}, p.callNames())
}

func TestCheckinRollbackRestoresStreak(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	yesterday := model.LocalDate(now, 0).AddDate(0, 0, -1)
	b := NewBoard()
	require.NoError(t, b.HydrateTasks([]*model.TaskCard{testHabit("h", 4, &yesterday)}))
	p := newFakePersister()
	p.errFor["CheckinTask:h"] = &remote.PersistenceError{Op: "CheckinTask", Status: 502}
	q, _ := newTestQueue(t, b, p)

	require.NoError(t, q.Apply(context.Background(), "h", Checkin{Now: now}))
	q.Close()

	got, _ := b.GetTask("h")
	assert.Equal(t, 4, got.CurrentStreak)
	require.NotNil(t, got.LastCheckinDate)
	assert.True(t, model.SameDay(*got.LastCheckinDate, yesterday))
}
