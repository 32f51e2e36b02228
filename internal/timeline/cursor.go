// Package timeline incrementally loads the append-only life-entry
// collection through cursor pagination.
package timeline

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"lifeflow/internal/collection"
	"lifeflow/internal/model"
	"lifeflow/pkg/metrics"
)

// Fetcher is the slice of the remote client the cursor reads through.
type Fetcher interface {
	FetchTimelinePage(ctx context.Context, cursor string, pageSize int) (*Page, error)
}

// Page is one fetched slice of the timeline. NextCursor nil means the
// timeline is exhausted.
type Page struct {
	Items      []*model.LifeEntry `json:"items"`
	NextCursor *string            `json:"next_cursor"`
}

// Cursor grows one life-entry collection page by page. Fetches are
// single-flight: a call while a fetch is in flight is a no-op. Entries are
// merged idempotently, so a re-sent or overlapping page never duplicates an
// id. Entries arrive newest-first; pages append, pushed entries prepend.
type Cursor struct {
	fetcher  Fetcher
	pageSize int
	logger   *zap.Logger

	mu       sync.Mutex
	entries  *collection.Collection[*model.LifeEntry]
	next     string
	hasNext  bool
	inflight bool
	closed   bool
	// generation fences in-flight responses: a response fetched before a
	// Reset or Close must be discarded, not applied.
	generation uint64
}

const DefaultPageSize = 20

func NewCursor(fetcher Fetcher, pageSize int, logger *zap.Logger) *Cursor {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Cursor{
		fetcher:  fetcher,
		pageSize: pageSize,
		logger:   logger,
		entries:  collection.New[*model.LifeEntry](),
		hasNext:  true,
	}
}

// HasNextPage reports whether another page may exist.
func (c *Cursor) HasNextPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasNext && !c.closed
}

// Snapshot returns the loaded entries, newest first.
func (c *Cursor) Snapshot() []*model.LifeEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.entries.Snapshot()
	out := make([]*model.LifeEntry, len(items))
	for i, e := range items {
		copied := *e
		out[i] = &copied
	}
	return out
}

// Len returns the number of loaded entries.
func (c *Cursor) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// FetchNextPage loads one more page. It is a no-op when a fetch is already
// in flight for this cursor, when the timeline is exhausted, or after Close.
func (c *Cursor) FetchNextPage(ctx context.Context) error {
	c.mu.Lock()
	if c.inflight || !c.hasNext || c.closed {
		c.mu.Unlock()
		return nil
	}
	c.inflight = true
	cursor := c.next
	generation := c.generation
	c.mu.Unlock()

	page, err := c.fetcher.FetchTimelinePage(ctx, cursor, c.pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight = false

	// The consuming scope went away or was reset while the request was in
	// flight: suppress the result entirely.
	if c.closed || c.generation != generation {
		metrics.IncrementTimelinePage("discarded")
		c.logger.Debug("Discarded stale timeline page",
			zap.Uint64("generation", generation),
		)
		return nil
	}
	if ctx.Err() != nil {
		metrics.IncrementTimelinePage("discarded")
		return nil
	}
	if err != nil {
		metrics.IncrementTimelinePage("failed")
		c.logger.Warn("Timeline page fetch failed", zap.Error(err))
		return err
	}

	added := c.mergeLocked(page.Items, false)

	if page.NextCursor == nil || len(page.Items) < c.pageSize {
		c.hasNext = false
	}
	if page.NextCursor != nil {
		c.next = *page.NextCursor
	}

	metrics.IncrementTimelinePage("success")
	c.logger.Debug("Timeline page merged",
		zap.Int("received", len(page.Items)),
		zap.Int("added", added),
		zap.Bool("has_next", c.hasNext),
	)
	return nil
}

// Push merges one server-pushed entry at the head of the timeline. A
// duplicate id is dropped.
func (c *Cursor) Push(entry *model.LifeEntry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	return c.mergeLocked([]*model.LifeEntry{entry}, true) == 1
}

// Update replaces a loaded entry in place, keeping its position. Returns
// false when the entry is not loaded.
func (c *Cursor) Update(entry *model.LifeEntry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.entries.Contains(entry.ID) {
		return false
	}
	return c.entries.Replace(entry) == nil
}

// Remove drops an entry, e.g. after a hard delete. Timeline deletion is
// physical, unlike the task board's soft delete.
func (c *Cursor) Remove(entryID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.RemoveByID(entryID)
}

// Reset empties the cursor and starts pagination over. Any in-flight fetch
// result is discarded when it lands.
func (c *Cursor) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.entries = collection.New[*model.LifeEntry]()
	c.next = ""
	c.hasNext = true
}

// Close tears the cursor down; late responses are discarded.
func (c *Cursor) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.generation++
}

// mergeLocked appends (or prepends) entries, dropping duplicate ids.
// Callers hold c.mu.
func (c *Cursor) mergeLocked(items []*model.LifeEntry, prepend bool) int {
	added := 0
	for _, entry := range items {
		if c.entries.Contains(entry.ID) {
			metrics.TimelineDuplicateCount.Inc()
			continue
		}
		var err error
		if prepend {
			err = c.entries.InsertAt(entry, added)
		} else {
			err = c.entries.Insert(entry)
		}
		if err == nil {
			added++
		}
	}
	return added
}
