package mq

import "time"

// Routing keys published by the remote persistence collaborator.
const (
	RoutingKeyListsChanged     = "lists.changed"
	RoutingKeyTimelineAppended = "timeline.appended"
)

type ListsChangedPayload struct {
	EventID   string    `json:"event_id"`
	ChangedAt time.Time `json:"changed_at"`
}

type TimelineAppendedPayload struct {
	EventID   string    `json:"event_id"`
	EntryID   string    `json:"entry_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
