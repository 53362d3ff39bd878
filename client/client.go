package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	bankerrors "github.com/mezonai/sawlet/errors"
	"github.com/mezonai/sawlet/jsonx"
	"github.com/mezonai/sawlet/logx"
	"github.com/mezonai/sawlet/monitoring"
)

const (
	DefaultURL     = "http://127.0.0.1:8008"
	DefaultTimeout = 10 * time.Second
)

type Config struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Client talks to the validator's REST API.
type Client struct {
	cfg  Config
	http *http.Client
	log  *logx.Logger
}

func NewClient(cfg Config, log *logx.Logger) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

func (c *Client) URL() string {
	return c.cfg.URL
}

// SubmitBatches posts a serialized BatchList and returns the status link.
// A transport failure leaves acceptance unknown: the batch may still commit,
// so callers should track batchID instead of resubmitting.
func (c *Client) SubmitBatches(ctx context.Context, batchList []byte, batchID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+"/batches", bytes.NewReader(batchList))
	if err != nil {
		return "", fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		monitoring.RecordSubmission("unknown")
		c.log.Warnf("Submit of batch %s failed in transport: %v", batchID, err)
		return "", &bankerrors.SubmissionError{BatchID: batchID, AcceptanceUnknown: true, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		monitoring.RecordSubmission("unknown")
		return "", &bankerrors.SubmissionError{BatchID: batchID, StatusCode: resp.StatusCode, AcceptanceUnknown: true, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		monitoring.RecordSubmission("rejected")
		return "", &bankerrors.SubmissionError{
			BatchID:    batchID,
			StatusCode: resp.StatusCode,
			Err:        errors.New(errorMessage(resp.StatusCode, body)),
		}
	}

	monitoring.RecordSubmission("accepted")
	var out submitResponse
	if err := jsonx.Unmarshal(body, &out); err != nil {
		// accepted all the same; the link is informational
		c.log.Warnf("Unreadable submit response for batch %s: %v", batchID, err)
	}
	return out.Link, nil
}

// BatchStatus returns the validator's view of one batch.
// A batch the validator has never heard of reports UNKNOWN.
func (c *Client) BatchStatus(ctx context.Context, batchID string) (*BatchStatus, error) {
	var out batchStatusResponse
	found, err := c.getJSON(ctx, "/batch_statuses", url.Values{"id": {batchID}}, &out)
	if err != nil {
		return nil, err
	}
	if !found || len(out.Data) == 0 {
		return &BatchStatus{ID: batchID, Status: StatusUnknown}, nil
	}
	return &out.Data[0], nil
}

// Receipts returns the receipts recorded for txID, or none if it is not committed.
func (c *Client) Receipts(ctx context.Context, txID string) ([]Receipt, error) {
	var out receiptsResponse
	if _, err := c.getJSON(ctx, "/receipts", url.Values{"id": {txID}}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// State returns the raw value at addr, or nil if the address is unset.
func (c *Client) State(ctx context.Context, addr string) ([]byte, error) {
	var out stateResponse
	found, err := c.getJSON(ctx, "/state/"+url.PathEscape(addr), nil, &out)
	if err != nil || !found {
		return nil, err
	}
	return out.Data, nil
}

// getJSON decodes a 200 response into out. It reports found=false on 404.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) (bool, error) {
	target := c.cfg.URL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read %s response: %w", path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("GET %s: %s", path, errorMessage(resp.StatusCode, body))
	}

	if err := jsonx.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("decode %s response: %w", path, err)
	}
	return true, nil
}

func errorMessage(status int, body []byte) string {
	var e errorResponse
	if err := jsonx.Unmarshal(body, &e); err == nil && (e.Error.Message != "" || e.Error.Title != "") {
		if e.Error.Title == "" {
			return fmt.Sprintf("http %d: %s", status, e.Error.Message)
		}
		return fmt.Sprintf("http %d: %s: %s", status, e.Error.Title, e.Error.Message)
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		text = http.StatusText(status)
	}
	return fmt.Sprintf("http %d: %s", status, text)
}
