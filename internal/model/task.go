package model

import (
	"fmt"
	"strings"
	"time"
)

// TaskCard is a task or habit card owned by the board.
type TaskCard struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	ListID          *string    `json:"list_id"` // nil = uncategorized
	IsHabit         bool       `json:"is_habit"`
	ReminderTime    *time.Time `json:"reminder_time"`
	CurrentStreak   int        `json:"current_streak"`
	LongestStreak   int        `json:"longest_streak"`
	LastCheckinDate *time.Time `json:"last_checkin_date"` // date precision, midnight UTC
	SortOrder       int        `json:"sort_order"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	IsDeleted       bool       `json:"is_deleted"`
}

func (t *TaskCard) EntityID() string { return t.ID }

// Validate checks the fields a create/update must satisfy.
func (t *TaskCard) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task title cannot be empty or whitespace only")
	}
	if t.CurrentStreak < 0 || t.LongestStreak < 0 {
		return fmt.Errorf("streak counts cannot be negative")
	}
	return nil
}

// Clone returns a deep copy, used for optimistic snapshots.
func (t *TaskCard) Clone() *TaskCard {
	c := *t
	if t.ListID != nil {
		v := *t.ListID
		c.ListID = &v
	}
	if t.ReminderTime != nil {
		v := *t.ReminderTime
		c.ReminderTime = &v
	}
	if t.LastCheckinDate != nil {
		v := *t.LastCheckinDate
		c.LastCheckinDate = &v
	}
	return &c
}
