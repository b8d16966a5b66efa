// Package sheet implements the remote store client for the spreadsheet-backed
// HTTP endpoint. The endpoint owns persistence: it prepends its own creation
// timestamp on writes and serialises concurrent writers with a short
// best-effort lock, so the client never retries and never trusts optimistic
// local state.
package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/packing-tracker/internal/record"
	"github.com/eugenenazirov/packing-tracker/internal/storage"
)

// ErrRemoteStatus is returned when the endpoint answers with status "error".
var ErrRemoteStatus = errors.New("remote store reported failure")

const statusSuccess = "success"

// Client talks to the remote sheet endpoint.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

var _ storage.Store = (*Client)(nil)

// ClientOption configures Client behaviour.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client, primarily for tests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.client = httpClient
	}
}

// NewClient constructs a Client for the given endpoint URL.
func NewClient(endpoint string, logger *zap.Logger, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type readResponse struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	Data    [][]string `json:"data"`
}

type writeRequest struct {
	Action string `json:"action"`
	Values []any  `json:"values"`
}

type writeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// List fetches all rows from the endpoint and maps them into records.
func (c *Client) List(ctx context.Context) ([]record.PackingRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build read request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var body readResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode read response: %w", err)
	}
	if body.Status != statusSuccess {
		return nil, fmt.Errorf("%w: %s", ErrRemoteStatus, body.Message)
	}

	records := make([]record.PackingRecord, 0, len(body.Data))
	for i, row := range body.Data {
		records = append(records, rowToRecord(i, row))
	}

	c.logger.Debug("fetched records from remote store", zap.Int("count", len(records)))
	return records, nil
}

// Append posts one record to the endpoint. The store assigns the creation
// timestamp itself; callers re-fetch the full list rather than patching
// local state.
func (c *Client) Append(ctx context.Context, rec record.PackingRecord) error {
	payload, err := json.Marshal(writeRequest{Action: "add", Values: recordToRow(rec)})
	if err != nil {
		return fmt.Errorf("encode write request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build write request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var body writeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode write response: %w", err)
	}
	if body.Status != statusSuccess {
		return fmt.Errorf("%w: %s", ErrRemoteStatus, body.Message)
	}

	return nil
}
