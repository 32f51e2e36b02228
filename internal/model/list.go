package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const maxListNameLength = 100

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// DefaultListColor matches the server-side default.
const DefaultListColor = "#3B82F6"

// CardList is a user-defined grouping that tasks may optionally reference.
type CardList struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *CardList) EntityID() string { return l.ID }

// Validate checks name and color constraints.
func (l *CardList) Validate() error {
	name := strings.TrimSpace(l.Name)
	if name == "" {
		return fmt.Errorf("list name cannot be empty or whitespace only")
	}
	if len([]rune(name)) > maxListNameLength {
		return fmt.Errorf("list name cannot exceed %d characters", maxListNameLength)
	}
	if !colorPattern.MatchString(l.Color) {
		return fmt.Errorf("list color must be a 6-hex-digit code, got %q", l.Color)
	}
	if l.SortOrder < 0 {
		return fmt.Errorf("list sort_order cannot be negative")
	}
	return nil
}
