// Package syncer holds the in-memory board state and the optimistic
// mutation queue that keeps it reconciled with the remote persistence
// collaborator.
package syncer

import (
	"fmt"
	"sync"
	"time"

	"lifeflow/internal/collection"
	"lifeflow/internal/model"
	"lifeflow/internal/remote"
)

// Board owns the ordered task and list collections for one user scope.
// Renderers consume snapshots; every mutation flows through the queue.
type Board struct {
	mu    sync.RWMutex
	tasks *collection.Collection[*model.TaskCard]
	lists *collection.Collection[*model.CardList]
}

func NewBoard() *Board {
	return &Board{
		tasks: collection.New[*model.TaskCard](),
		lists: collection.New[*model.CardList](),
	}
}

// HydrateTasks replaces the task collection wholesale, e.g. on startup or a
// full refresh.
func (b *Board) HydrateTasks(tasks []*model.TaskCard) error {
	fresh, err := collection.FromSlice(tasks)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.tasks = fresh
	b.mu.Unlock()
	return nil
}

// HydrateLists replaces the list collection wholesale.
func (b *Board) HydrateLists(lists []*model.CardList) error {
	fresh, err := collection.FromSlice(lists)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.lists = fresh
	b.mu.Unlock()
	return nil
}

// TasksSnapshot returns cloned task cards in display order.
func (b *Board) TasksSnapshot() []*model.TaskCard {
	b.mu.RLock()
	defer b.mu.RUnlock()

	items := b.tasks.Snapshot()
	out := make([]*model.TaskCard, len(items))
	for i, t := range items {
		out[i] = t.Clone()
	}
	return out
}

// ListsSnapshot returns the card lists in display order.
func (b *Board) ListsSnapshot() []*model.CardList {
	b.mu.RLock()
	defer b.mu.RUnlock()

	items := b.lists.Snapshot()
	out := make([]*model.CardList, len(items))
	for i, l := range items {
		c := *l
		out[i] = &c
	}
	return out
}

// ListExists reports whether a list id is currently loaded.
func (b *Board) ListExists(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lists.Contains(id)
}

// GetTask returns a clone of one task card.
func (b *Board) GetTask(id string) (*model.TaskCard, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	t, ok := b.tasks.Get(id)
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// MoveTask relocates a task between positions, renumbers the persisted
// sort_order to match, and returns the batch payload for persistence plus a
// revert closure restoring the exact previous order.
func (b *Board) MoveTask(from, to int) ([]remote.SortOrderUpdate, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prevOrder := b.tasks.Snapshot()
	prevSort := make(map[string]int, len(prevOrder))
	for _, t := range prevOrder {
		prevSort[t.ID] = t.SortOrder
	}

	if err := b.tasks.Move(from, to); err != nil {
		return nil, nil, err
	}

	current := b.tasks.Snapshot()
	orders := make([]remote.SortOrderUpdate, len(current))
	for i, t := range current {
		t.SortOrder = i
		orders[i] = remote.SortOrderUpdate{ID: t.ID, SortOrder: i}
	}

	revert := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		// SetOrder cannot fail here: the id set is unchanged by a move.
		_ = b.tasks.SetOrder(prevOrder)
		for _, t := range prevOrder {
			t.SortOrder = prevSort[t.ID]
		}
	}
	return orders, revert, nil
}

// SetTaskList updates a task's category association. The association is
// applied even when the referenced list is not loaded; stale reports that
// case so the caller can flag it for reconciliation.
func (b *Board) SetTaskList(taskID string, listID *string) (revert func(), stale bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	task, ok := b.tasks.Get(taskID)
	if !ok {
		return nil, false, fmt.Errorf("task %q not found", taskID)
	}

	prev := task.ListID
	prevUpdated := task.UpdatedAt
	task.ListID = copyStringPtr(listID)
	task.UpdatedAt = time.Now()

	stale = listID != nil && !b.lists.Contains(*listID)

	revert = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		task.ListID = prev
		task.UpdatedAt = prevUpdated
	}
	return revert, stale, nil
}

// TaskPatch carries the optional fields of a task edit.
type TaskPatch struct {
	Title         *string
	Content       *string
	ReminderTime  *time.Time
	ClearReminder bool
}

// PatchTask applies an edit and returns the previous card for rollback.
func (b *Board) PatchTask(taskID string, patch TaskPatch) (*model.TaskCard, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	task, ok := b.tasks.Get(taskID)
	if !ok {
		return nil, fmt.Errorf("task %q not found", taskID)
	}

	prev := task.Clone()

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Content != nil {
		task.Content = *patch.Content
	}
	// clear_reminder takes precedence over a new reminder time.
	if patch.ClearReminder {
		task.ReminderTime = nil
	} else if patch.ReminderTime != nil {
		t := *patch.ReminderTime
		task.ReminderTime = &t
	}
	task.UpdatedAt = time.Now()

	if err := task.Validate(); err != nil {
		*task = *prev
		return nil, err
	}
	return prev, nil
}

// CheckinTask records a habit checkin for today in the user's timezone and
// updates the streak counters. A same-day repeat leaves the card untouched.
func (b *Board) CheckinTask(taskID string, timezoneOffsetMinutes int, now time.Time) (prev *model.TaskCard, alreadyToday bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	task, ok := b.tasks.Get(taskID)
	if !ok {
		return nil, false, fmt.Errorf("task %q not found", taskID)
	}

	today := model.LocalDate(now, timezoneOffsetMinutes)
	if task.LastCheckinDate != nil && model.SameDay(*task.LastCheckinDate, today) {
		return task.Clone(), true, nil
	}

	prev = task.Clone()

	streak := model.CalculateStreak(task.LastCheckinDate, task.CurrentStreak, today)
	task.CurrentStreak = streak
	task.LastCheckinDate = &today
	if streak > task.LongestStreak {
		task.LongestStreak = streak
	}
	task.UpdatedAt = now

	return prev, false, nil
}

// SoftDeleteTask marks a task deleted without removing it.
func (b *Board) SoftDeleteTask(taskID string) (*model.TaskCard, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	task, ok := b.tasks.Get(taskID)
	if !ok {
		return nil, fmt.Errorf("task %q not found", taskID)
	}

	prev := task.Clone()
	task.IsDeleted = true
	task.UpdatedAt = time.Now()
	return prev, nil
}

// RestoreTask rolls a task back to a snapshot taken before a mutation.
func (b *Board) RestoreTask(snapshot *model.TaskCard) {
	b.mu.Lock()
	defer b.mu.Unlock()

	task, ok := b.tasks.Get(snapshot.ID)
	if !ok {
		return
	}
	*task = *snapshot.Clone()
}

// ClearTaskList drops a task's category association locally.
func (b *Board) ClearTaskList(taskID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	task, ok := b.tasks.Get(taskID)
	if !ok {
		return
	}
	task.ListID = nil
}

// DailyRing is the habit completion summary for one date.
type DailyRing struct {
	Date            time.Time `json:"date"`
	TotalHabits     int       `json:"total_habits"`
	CompletedHabits int       `json:"completed_habits"`
	Percentage      float64   `json:"percentage"`
}

// DailyRingFor computes the habit completion ring for a date.
func (b *Board) DailyRingFor(date time.Time) DailyRing {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ring := DailyRing{Date: date}
	for _, t := range b.tasks.Snapshot() {
		if !t.IsHabit || t.IsDeleted {
			continue
		}
		ring.TotalHabits++
		if t.LastCheckinDate != nil && model.SameDay(*t.LastCheckinDate, date) {
			ring.CompletedHabits++
		}
	}
	if ring.TotalHabits > 0 {
		ring.Percentage = float64(ring.CompletedHabits) / float64(ring.TotalHabits) * 100
	}
	return ring
}

func copyStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
