package mqhandler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "lifeflow/contracts/mq"
	"lifeflow/internal/model"
	"lifeflow/internal/notify"
	"lifeflow/internal/remote"
	"lifeflow/internal/syncer"
	"lifeflow/internal/timeline"
)

type fakeListFetcher struct {
	lists []*model.CardList
	err   error
	calls int
}

func (f *fakeListFetcher) ListLists(ctx context.Context) ([]*model.CardList, error) {
	f.calls++
	return f.lists, f.err
}

type noopPersister struct{}

func (noopPersister) UpdateTaskList(ctx context.Context, taskID string, listID *string) error {
	return nil
}
func (noopPersister) UpdateTaskFields(ctx context.Context, taskID string, fields map[string]interface{}) error {
	return nil
}
func (noopPersister) ReorderTasks(ctx context.Context, orders []remote.SortOrderUpdate) error {
	return nil
}
func (noopPersister) DeleteTask(ctx context.Context, taskID string) error { return nil }
func (noopPersister) CheckinTask(ctx context.Context, taskID string, tz int) (*model.TaskCard, error) {
	return nil, nil
}

func payload(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestListsChangedRefreshesAndReconciles(t *testing.T) {
	b := syncer.NewBoard()
	require.NoError(t, b.HydrateTasks([]*model.TaskCard{
		{ID: "t1", Title: "task", CreatedAt: time.Now(), UpdatedAt: time.Now()},
	}))
	require.NoError(t, b.HydrateLists(nil))

	toasts := notify.NewCenter(time.Minute, zap.NewNop())
	q := syncer.NewQueue(b, noopPersister{}, toasts, zap.NewNop())
	defer q.Close()

	// A recategorization against a list the client never loaded.
	ghost := "later"
	require.NoError(t, q.Apply(context.Background(), "t1", syncer.SetList{ListID: &ghost}))

	f := &fakeListFetcher{lists: []*model.CardList{
		{ID: "later", Name: "Later", Color: model.DefaultListColor, CreatedAt: time.Now()},
	}}
	h := NewListsChangedHandler(f, b, q, nil, zap.NewNop())

	err := h.Handle(context.Background(), payload(t, mqcontracts.ListsChangedPayload{
		EventID:   "evt-1",
		ChangedAt: time.Now(),
	}))
	require.NoError(t, err)

	assert.Equal(t, 1, f.calls)
	assert.True(t, b.ListExists("later"))
	assert.Empty(t, q.StaleRefs())
}

func TestListsChangedFetchFailureRetryDecision(t *testing.T) {
	b := syncer.NewBoard()
	toasts := notify.NewCenter(time.Minute, zap.NewNop())
	q := syncer.NewQueue(b, noopPersister{}, toasts, zap.NewNop())
	defer q.Close()

	// A 5xx is transient: the event is requeued for redelivery.
	f := &fakeListFetcher{err: &remote.PersistenceError{Op: "ListLists", Status: 503}}
	h := NewListsChangedHandler(f, b, q, nil, zap.NewNop())
	err := h.Handle(context.Background(), payload(t, mqcontracts.ListsChangedPayload{EventID: "evt-2"}))
	require.Error(t, err)

	// A 4xx rejection cannot succeed on retry: the event is dropped.
	f.err = &remote.PersistenceError{Op: "ListLists", Status: 403}
	err = h.Handle(context.Background(), payload(t, mqcontracts.ListsChangedPayload{EventID: "evt-3"}))
	require.NoError(t, err)
}

func TestListsChangedRejectsMalformedPayload(t *testing.T) {
	b := syncer.NewBoard()
	toasts := notify.NewCenter(time.Minute, zap.NewNop())
	q := syncer.NewQueue(b, noopPersister{}, toasts, zap.NewNop())
	defer q.Close()

	h := NewListsChangedHandler(&fakeListFetcher{}, b, q, nil, zap.NewNop())
	err := h.Handle(context.Background(), json.RawMessage(`{broken`))
	require.Error(t, err)
}

type staticFetcher struct{ page *timeline.Page }

func (f staticFetcher) FetchTimelinePage(ctx context.Context, cursor string, pageSize int) (*timeline.Page, error) {
	return f.page, nil
}

func TestTimelineAppendedPushesEntry(t *testing.T) {
	c := timeline.NewCursor(staticFetcher{page: &timeline.Page{}}, 10, zap.NewNop())
	h := NewTimelineAppendedHandler(c, nil, zap.NewNop())

	created := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	err := h.Handle(context.Background(), payload(t, mqcontracts.TimelineAppendedPayload{
		EventID:   "evt-3",
		EntryID:   "e1",
		Content:   "went for a run",
		CreatedAt: created,
	}))
	require.NoError(t, err)

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "e1", snap[0].ID)
	assert.Equal(t, "went for a run", snap[0].Content)

	// A redelivery that slipped past dedup is still a no-op.
	err = h.Handle(context.Background(), payload(t, mqcontracts.TimelineAppendedPayload{
		EventID: "evt-4",
		EntryID: "e1",
		Content: "went for a run",
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}
