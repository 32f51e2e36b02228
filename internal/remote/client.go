// Package remote is the client for the persistence collaborator, a REST API
// that owns the system of record. The sync service never writes durable
// state itself; every mutation ends up here.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"lifeflow/internal/model"
	"lifeflow/internal/timeline"
	"lifeflow/pkg/circuitbreaker"
	"lifeflow/pkg/logger"
	"lifeflow/pkg/metrics"
	"lifeflow/pkg/trace"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *tokenSource
	breaker    *circuitbreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewClient(baseURL, jwtSecret, deviceID string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tokens:  newTokenSource(jwtSecret, deviceID),
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		logger:  logger,
	}
}

// SortOrderUpdate assigns a persisted display order to one entity.
type SortOrderUpdate struct {
	ID        string `json:"id"`
	SortOrder int    `json:"sort_order"`
}

// ListLists fetches all card lists, ordered by sort_order.
func (c *Client) ListLists(ctx context.Context) ([]*model.CardList, error) {
	var out struct {
		Lists []*model.CardList `json:"lists"`
	}
	if err := c.doJSON(ctx, "ListLists", http.MethodGet, "/lists", nil, &out); err != nil {
		return nil, err
	}
	return out.Lists, nil
}

// ListTasks fetches all live task cards.
func (c *Client) ListTasks(ctx context.Context) ([]*model.TaskCard, error) {
	var out struct {
		Tasks []*model.TaskCard `json:"tasks"`
	}
	if err := c.doJSON(ctx, "ListTasks", http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// UpdateTaskList persists a task's category association. A nil listID means
// uncategorized.
func (c *Client) UpdateTaskList(ctx context.Context, taskID string, listID *string) error {
	body := map[string]interface{}{"list_id": listID}
	path := "/tasks/" + url.PathEscape(taskID)
	return c.doJSON(ctx, "UpdateTaskList", http.MethodPut, path, body, nil)
}

// UpdateTaskFields persists edited task fields.
func (c *Client) UpdateTaskFields(ctx context.Context, taskID string, fields map[string]interface{}) error {
	path := "/tasks/" + url.PathEscape(taskID)
	return c.doJSON(ctx, "UpdateTaskFields", http.MethodPut, path, fields, nil)
}

// ReorderTasks persists the display order for a whole scope in one batch.
func (c *Client) ReorderTasks(ctx context.Context, orders []SortOrderUpdate) error {
	body := map[string]interface{}{"orders": orders}
	return c.doJSON(ctx, "ReorderTasks", http.MethodPost, "/tasks/reorder", body, nil)
}

// DeleteTask soft-deletes a task card.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	path := "/tasks/" + url.PathEscape(taskID)
	return c.doJSON(ctx, "DeleteTask", http.MethodDelete, path, nil, nil)
}

// CheckinTask records a habit checkin; the server answers with the updated
// card.
func (c *Client) CheckinTask(ctx context.Context, taskID string, timezoneOffsetMinutes int) (*model.TaskCard, error) {
	body := map[string]interface{}{"timezone_offset": timezoneOffsetMinutes}
	path := "/tasks/" + url.PathEscape(taskID) + "/checkin"
	var out model.TaskCard
	if err := c.doJSON(ctx, "CheckinTask", http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchTimelinePage reads one page of life entries. An empty cursor starts
// from the newest entry; NextCursor is nil once the timeline is exhausted.
func (c *Client) FetchTimelinePage(ctx context.Context, cursor string, pageSize int) (*timeline.Page, error) {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	q.Set("page_size", strconv.Itoa(pageSize))

	var out timeline.Page
	if err := c.doJSON(ctx, "FetchTimelinePage", http.MethodGet, "/life-entries?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateLifeEntry appends a new entry to the timeline.
func (c *Client) CreateLifeEntry(ctx context.Context, content string) (*model.LifeEntry, error) {
	body := map[string]interface{}{"content": content}
	var out model.LifeEntry
	if err := c.doJSON(ctx, "CreateLifeEntry", http.MethodPost, "/life-entries", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLifeEntry edits an entry's content.
func (c *Client) UpdateLifeEntry(ctx context.Context, entryID, content string) error {
	body := map[string]interface{}{"content": content}
	path := "/life-entries/" + url.PathEscape(entryID)
	return c.doJSON(ctx, "UpdateLifeEntry", http.MethodPut, path, body, nil)
}

// DeleteLifeEntry removes an entry from the timeline.
func (c *Client) DeleteLifeEntry(ctx context.Context, entryID string) error {
	path := "/life-entries/" + url.PathEscape(entryID)
	return c.doJSON(ctx, "DeleteLifeEntry", http.MethodDelete, path, nil, nil)
}

// doJSON performs one call under breaker protection and maps every failure
// to a PersistenceError.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body interface{}, out interface{}) error {
	start := time.Now()

	err := c.breaker.Execute(func() error {
		var reader *bytes.Reader
		if body != nil {
			b, err := json.Marshal(body)
			if err != nil {
				return &PersistenceError{Op: op, Err: err}
			}
			reader = bytes.NewReader(b)
		} else {
			reader = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return &PersistenceError{Op: op, Err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		if traceID := trace.FromContext(ctx); traceID != "" {
			req.Header.Set(trace.HeaderName(), traceID)
		}

		token, err := c.tokens.Token()
		if err != nil {
			return &PersistenceError{Op: op, Err: fmt.Errorf("failed to mint device token: %w", err)}
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &PersistenceError{Op: op, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return &PersistenceError{Op: op, Status: resp.StatusCode}
		}

		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return &PersistenceError{Op: op, Err: err}
			}
		}
		return nil
	})

	status := "success"
	if err != nil {
		status = "failed"
		logger.WithTrace(ctx, c.logger).Warn("Remote call failed",
			zap.String("operation", op),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
	}
	metrics.RecordRemoteCallLatency(op, status, time.Since(start))

	if err != nil && !IsPersistenceError(err) {
		// Breaker rejections surface as plain errors.
		return &PersistenceError{Op: op, Err: err}
	}
	return err
}
