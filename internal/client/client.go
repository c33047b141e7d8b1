package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"ulemsee/internal/models"
)

const maxQuestionLength = 2000

// Client talks to the Ule Msee API. Asking goes through the retry policy;
// the other operations make a single call.
type Client struct {
	transport *transport
	policy    Policy
}

type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	timeout    time.Duration
	policy     Policy
}

func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

// WithTimeout bounds every individual call. Defaults to 30s.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

func WithRetryPolicy(p Policy) Option {
	return func(o *clientOptions) { o.policy = p }
}

func New(baseURL string, opts ...Option) *Client {
	o := clientOptions{timeout: DefaultTimeout, policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		transport: newTransport(baseURL, o.httpClient, o.timeout),
		policy:    o.policy,
	}
}

// CheckHealth reports whether the server answers /health with "healthy".
// It never fails; any error counts as unhealthy.
func (c *Client) CheckHealth(ctx context.Context) bool {
	var health models.HealthResponse
	if err := c.transport.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return false
	}
	return health.Status == "healthy"
}

func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var health models.HealthResponse
	if err := c.transport.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *Client) Status(ctx context.Context) (*models.StatusResponse, error) {
	var status models.StatusResponse
	if err := c.transport.do(ctx, http.MethodGet, "/", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Ask(ctx context.Context, question string) (*models.QuestionResponse, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return nil, validationError("Question cannot be empty")
	}
	if utf8.RuneCountInString(q) > maxQuestionLength {
		return nil, validationError(fmt.Sprintf("Question must be at most %d characters", maxQuestionLength))
	}

	return Retry(ctx, c.policy, func(ctx context.Context) (*models.QuestionResponse, error) {
		var resp models.QuestionResponse
		if err := c.transport.do(ctx, http.MethodPost, "/api/question", models.QuestionRequest{Question: q}, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
}

// ListHistory returns up to limit entries, newest first (limit <= 0 uses the
// server default). When the server cannot be reached it returns an empty list.
func (c *Client) ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	path := "/api/history"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}

	var items []models.HistoryEntry
	if err := c.transport.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		if cErr, ok := asError(err); ok && cErr.Status == 0 {
			return []models.HistoryEntry{}, nil
		}
		return nil, err
	}
	if items == nil {
		items = []models.HistoryEntry{}
	}
	return items, nil
}

func (c *Client) DeleteHistoryItem(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return validationError("History item id is required")
	}
	return c.transport.do(ctx, http.MethodDelete, "/api/history/"+url.PathEscape(id), nil, nil)
}

// ClearHistory removes every entry and returns the server's status message.
func (c *Client) ClearHistory(ctx context.Context) (string, error) {
	var status models.StatusResponse
	if err := c.transport.do(ctx, http.MethodDelete, "/api/history", nil, &status); err != nil {
		return "", err
	}
	return status.Status, nil
}
