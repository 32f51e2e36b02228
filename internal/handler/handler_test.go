package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lifeflow/internal/model"
	"lifeflow/internal/notify"
	"lifeflow/internal/remote"
	"lifeflow/internal/syncer"
	"lifeflow/internal/timeline"
)

func init() {
	gin.SetMode(gin.TestMode)
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

func boardFixture(t *testing.T, ids ...string) (*syncer.Board, *syncer.Queue, *notify.Center) {
	t.Helper()
	b := syncer.NewBoard()
	tasks := make([]*model.TaskCard, len(ids))
	for i, id := range ids {
		tasks[i] = &model.TaskCard{
			ID:        id,
			Title:     "task " + id,
			SortOrder: i,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
	}
	require.NoError(t, b.HydrateTasks(tasks))
	require.NoError(t, b.HydrateLists(nil))
	toasts := notify.NewCenter(time.Minute, zap.NewNop())
	q := syncer.NewQueue(b, noopPersister{}, toasts, zap.NewNop())
	t.Cleanup(q.Close)
	return b, q, toasts
}

func boardRouter(h *BoardHandler) *gin.Engine {
	r := gin.New()
	r.GET("/board", h.GetBoard)
	r.POST("/tasks/reorder", h.ReorderTasks)
	r.PUT("/tasks/:id/list", h.RecategorizeTask)
	r.PATCH("/tasks/:id", h.EditTask)
	r.POST("/tasks/:id/checkin", h.CheckinTask)
	r.DELETE("/tasks/:id", h.DeleteTask)
	r.GET("/stats/daily-ring", h.DailyRing)
	r.GET("/toast", h.GetToast)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReorderEndpoint(t *testing.T) {
	b, q, toasts := boardFixture(t, "A", "B", "C", "D")
	h := NewBoardHandler(b, q, toasts, zap.NewNop())
	r := boardRouter(h)

	w := doJSON(t, r, http.MethodPost, "/tasks/reorder", gin.H{"from": 0, "to": 2})
	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		Tasks []*model.TaskCard `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	ids := make([]string, len(resp.Tasks))
	for i, task := range resp.Tasks {
		ids[i] = task.ID
	}
	assert.Equal(t, []string{"B", "C", "A", "D"}, ids)
}

func TestReorderEndpointOutOfRange(t *testing.T) {
	b, q, toasts := boardFixture(t, "A", "B")
	h := NewBoardHandler(b, q, toasts, zap.NewNop())
	r := boardRouter(h)

	w := doJSON(t, r, http.MethodPost, "/tasks/reorder", gin.H{"from": 0, "to": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/tasks/reorder", gin.H{"from": 9, "to": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecategorizeEndpointEmptySelection(t *testing.T) {
	b, q, toasts := boardFixture(t, "A")
	require.NoError(t, b.HydrateLists([]*model.CardList{
		{ID: "work", Name: "Work", Color: model.DefaultListColor, CreatedAt: time.Now()},
	}))
	h := NewBoardHandler(b, q, toasts, zap.NewNop())
	r := boardRouter(h)

	w := doJSON(t, r, http.MethodPut, "/tasks/A/list", gin.H{"list_id": "work"})
	assert.Equal(t, http.StatusAccepted, w.Code)
	got, _ := b.GetTask("A")
	require.NotNil(t, got.ListID)
	assert.Equal(t, "work", *got.ListID)

	// Empty selection means uncategorized.
	w = doJSON(t, r, http.MethodPut, "/tasks/A/list", gin.H{"list_id": ""})
	assert.Equal(t, http.StatusAccepted, w.Code)
	got, _ = b.GetTask("A")
	assert.Nil(t, got.ListID)
}

func TestCheckinEndpointMilestoneToast(t *testing.T) {
	now := time.Now().UTC()
	yesterday := model.LocalDate(now, 0).AddDate(0, 0, -1)

	b := syncer.NewBoard()
	require.NoError(t, b.HydrateTasks([]*model.TaskCard{{
		ID:              "h",
		Title:           "Morning run",
		IsHabit:         true,
		CurrentStreak:   6,
		LongestStreak:   6,
		LastCheckinDate: &yesterday,
		CreatedAt:       now,
		UpdatedAt:       now,
	}}))
	toasts := notify.NewCenter(time.Minute, zap.NewNop())
	q := syncer.NewQueue(b, noopPersister{}, toasts, zap.NewNop())
	t.Cleanup(q.Close)

	h := NewBoardHandler(b, q, toasts, zap.NewNop())
	r := boardRouter(h)

	w := doJSON(t, r, http.MethodPost, "/tasks/h/checkin", gin.H{"timezone_offset": 0})
	assert.Equal(t, http.StatusAccepted, w.Code)

	// Streak 7 is a milestone: the user gets a celebration toast.
	toast := toasts.Current()
	require.NotNil(t, toast)
	assert.Equal(t, notify.KindSuccess, toast.Kind)
	assert.Contains(t, toast.Message, "7-day streak")
}

func TestEditEndpointRejectsBlankTitle(t *testing.T) {
	b, q, toasts := boardFixture(t, "A")
	h := NewBoardHandler(b, q, toasts, zap.NewNop())
	r := boardRouter(h)

	w := doJSON(t, r, http.MethodPatch, "/tasks/A", gin.H{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	got, _ := b.GetTask("A")
	assert.Equal(t, "task A", got.Title)
}

type fakeEntryStore struct {
	created []string
	deleted []string
	err     error
}

func (f *fakeEntryStore) CreateLifeEntry(ctx context.Context, content string) (*model.LifeEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, content)
	return &model.LifeEntry{ID: "new", Content: content, CreatedAt: time.Now()}, nil
}

func (f *fakeEntryStore) UpdateLifeEntry(ctx context.Context, entryID, content string) error {
	return f.err
}

func (f *fakeEntryStore) DeleteLifeEntry(ctx context.Context, entryID string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, entryID)
	return nil
}

type emptyFetcher struct{}

func (emptyFetcher) FetchTimelinePage(ctx context.Context, cursor string, pageSize int) (*timeline.Page, error) {
	return &timeline.Page{}, nil
}

func timelineRouter(h *TimelineHandler) *gin.Engine {
	r := gin.New()
	r.GET("/timeline", h.GetTimeline)
	r.POST("/life-entries", h.CreateEntry)
	r.DELETE("/life-entries/:id", h.DeleteEntry)
	return r
}

func TestCreateEntryEndpoint(t *testing.T) {
	c := timeline.NewCursor(emptyFetcher{}, 10, zap.NewNop())
	store := &fakeEntryStore{}
	h := NewTimelineHandler(c, store, zap.NewNop())
	r := timelineRouter(h)

	w := doJSON(t, r, http.MethodPost, "/life-entries", gin.H{"content": "learned to juggle"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{"learned to juggle"}, store.created)
	assert.Equal(t, 1, c.Len())

	w = doJSON(t, r, http.MethodPost, "/life-entries", gin.H{"content": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteEntryEndpointRemoteFailure(t *testing.T) {
	c := timeline.NewCursor(emptyFetcher{}, 10, zap.NewNop())
	require.True(t, c.Push(&model.LifeEntry{ID: "e1", Content: "x", CreatedAt: time.Now()}))

	store := &fakeEntryStore{err: &remote.PersistenceError{Op: "DeleteLifeEntry", Status: 503}}
	h := NewTimelineHandler(c, store, zap.NewNop())
	r := timelineRouter(h)

	w := doJSON(t, r, http.MethodDelete, "/life-entries/e1", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, 1, c.Len(), "entry stays until the remote confirms the delete")

	store.err = nil
	w = doJSON(t, r, http.MethodDelete, "/life-entries/e1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, c.Len())
}
