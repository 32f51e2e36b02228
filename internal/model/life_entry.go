package model

import "time"

// LifeEntry is one record on the append-only life timeline.
type LifeEntry struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsDeleted bool      `json:"is_deleted"`
}

func (e *LifeEntry) EntityID() string { return e.ID }
