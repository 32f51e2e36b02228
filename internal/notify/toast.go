// Package notify owns the single-slot toast used to surface transient
// outcomes to the user. Showing a toast replaces whatever is currently
// displayed; it auto-dismisses after the configured duration unless hidden
// or replaced first.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"lifeflow/pkg/metrics"
)

// Kind classifies a toast for rendering.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Toast is the current toast content, if any.
type Toast struct {
	Message string    `json:"message"`
	Kind    Kind      `json:"kind"`
	ShownAt time.Time `json:"shown_at"`
}

const DefaultDismissAfter = 4 * time.Second

// Center is the owned notification service injected into the mutation queue
// and reminder scanner.
type Center struct {
	mu           sync.Mutex
	current      *Toast
	generation   uint64
	dismissAfter time.Duration
	timer        *time.Timer
	logger       *zap.Logger
}

func NewCenter(dismissAfter time.Duration, logger *zap.Logger) *Center {
	if dismissAfter <= 0 {
		dismissAfter = DefaultDismissAfter
	}
	return &Center{
		dismissAfter: dismissAfter,
		logger:       logger,
	}
}

// Show replaces the current toast and arms the auto-dismiss timer.
func (c *Center) Show(message string, kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	gen := c.generation
	c.current = &Toast{
		Message: message,
		Kind:    kind,
		ShownAt: time.Now(),
	}

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.dismissAfter, func() {
		c.expire(gen)
	})

	c.logger.Info("Toast shown",
		zap.String("kind", string(kind)),
		zap.String("message", message),
	)
	metrics.IncrementToast(string(kind))
}

// Hide clears the current toast immediately.
func (c *Center) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.current = nil
}

// Current returns a copy of the displayed toast, or nil when the slot is
// empty.
func (c *Center) Current() *Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil
	}
	t := *c.current
	return &t
}

// expire clears the toast only if it is still the one the timer was armed
// for; a newer toast keeps its own timer.
func (c *Center) expire(generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation {
		return
	}
	c.current = nil
	c.timer = nil
}
