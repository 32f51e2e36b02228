package syncer

import (
	"context"
	"time"

	"lifeflow/internal/model"
	"lifeflow/internal/remote"
)

// Persister is the slice of the remote client the queue dispatches against.
type Persister interface {
	UpdateTaskList(ctx context.Context, taskID string, listID *string) error
	UpdateTaskFields(ctx context.Context, taskID string, fields map[string]interface{}) error
	ReorderTasks(ctx context.Context, orders []remote.SortOrderUpdate) error
	DeleteTask(ctx context.Context, taskID string) error
	CheckinTask(ctx context.Context, taskID string, timezoneOffsetMinutes int) (*model.TaskCard, error)
}

// Mutation is one user-initiated change. Apply runs synchronously against
// the board and hands back the deferred persistence step plus the rollback
// closure; rollback is not fallible.
type Mutation interface {
	Kind() string
	Apply(b *Board, entityID string) (*Applied, error)
}

// Applied is the residue of a locally-applied mutation.
type Applied struct {
	Revert  func()
	Persist func(ctx context.Context, p Persister) error
	// Stale marks a category reference that did not resolve against the
	// loaded lists. The mutation still applies; reconciliation happens
	// after the next list refresh.
	Stale bool
	// StaleListID is the unresolved reference, when Stale is set.
	StaleListID string
}

// MoveTask relocates the entity from one position to another within the
// board's task order.
type MoveTask struct {
	From int
	To   int
}

func (MoveTask) Kind() string { return "move_task" }

func (m MoveTask) Apply(b *Board, entityID string) (*Applied, error) {
	orders, revert, err := b.MoveTask(m.From, m.To)
	if err != nil {
		return nil, err
	}
	return &Applied{
		Revert: revert,
		Persist: func(ctx context.Context, p Persister) error {
			return p.ReorderTasks(ctx, orders)
		},
	}, nil
}

// SetList associates the task with a list, or clears the association when
// ListID is nil.
type SetList struct {
	ListID *string
}

func (SetList) Kind() string { return "set_list" }

func (m SetList) Apply(b *Board, entityID string) (*Applied, error) {
	revert, stale, err := b.SetTaskList(entityID, m.ListID)
	if err != nil {
		return nil, err
	}
	listID := copyStringPtr(m.ListID)
	applied := &Applied{
		Revert: revert,
		Persist: func(ctx context.Context, p Persister) error {
			return p.UpdateTaskList(ctx, entityID, listID)
		},
		Stale: stale,
	}
	if stale {
		applied.StaleListID = *m.ListID
	}
	return applied, nil
}

// EditTask updates the card's editable fields.
type EditTask struct {
	Patch TaskPatch
}

func (EditTask) Kind() string { return "edit_task" }

func (m EditTask) Apply(b *Board, entityID string) (*Applied, error) {
	prev, err := b.PatchTask(entityID, m.Patch)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if m.Patch.Title != nil {
		fields["title"] = *m.Patch.Title
	}
	if m.Patch.Content != nil {
		fields["content"] = *m.Patch.Content
	}
	if m.Patch.ClearReminder {
		fields["clear_reminder"] = true
	} else if m.Patch.ReminderTime != nil {
		fields["reminder_time"] = m.Patch.ReminderTime.Format(time.RFC3339)
	}

	return &Applied{
		Revert: func() {
			b.RestoreTask(prev)
		},
		Persist: func(ctx context.Context, p Persister) error {
			return p.UpdateTaskFields(ctx, entityID, fields)
		},
	}, nil
}

// Checkin records a habit checkin for the current local day.
type Checkin struct {
	TimezoneOffsetMinutes int
	Now                   time.Time
}

func (Checkin) Kind() string { return "checkin" }

func (m Checkin) Apply(b *Board, entityID string) (*Applied, error) {
	now := m.Now
	if now.IsZero() {
		now = time.Now()
	}

	prev, alreadyToday, err := b.CheckinTask(entityID, m.TimezoneOffsetMinutes, now)
	if err != nil {
		return nil, err
	}

	revert := func() {}
	if !alreadyToday {
		revert = func() {
			b.RestoreTask(prev)
		}
	}
	tz := m.TimezoneOffsetMinutes
	return &Applied{
		Revert: revert,
		Persist: func(ctx context.Context, p Persister) error {
			// The server applies the same same-day idempotence.
			_, err := p.CheckinTask(ctx, entityID, tz)
			return err
		},
	}, nil
}

// DeleteTask soft-deletes the card.
type DeleteTask struct{}

func (DeleteTask) Kind() string { return "delete_task" }

func (m DeleteTask) Apply(b *Board, entityID string) (*Applied, error) {
	prev, err := b.SoftDeleteTask(entityID)
	if err != nil {
		return nil, err
	}
	return &Applied{
		Revert: func() {
			b.RestoreTask(prev)
		},
		Persist: func(ctx context.Context, p Persister) error {
			return p.DeleteTask(ctx, entityID)
		},
	}, nil
}
