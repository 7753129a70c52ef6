// Package content provides a client for the content service's ingest and
// crawler-query-bank endpoints.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/chek-app/crawler/internal/model"
)

// Client defines the content-service operations used by the crawler.
type Client interface {
	// IngestExternalPost validates and upserts a normalized post.
	IngestExternalPost(ctx context.Context, item model.Item) (IngestStatus, error)
	// UpsertQueries seeds keywords into the query bank for a platform.
	UpsertQueries(ctx context.Context, platform model.Platform, queries []string) error
	// SampleQueries draws up to limit adaptively-weighted keywords.
	SampleQueries(ctx context.Context, platform model.Platform, limit int) ([]string, error)
	// ReportQueries sends per-keyword rewards back to the query bank.
	ReportQueries(ctx context.Context, platform model.Platform, rewards []model.QueryReward) error
}

// IngestStatus is the remote upsert outcome for a single item.
type IngestStatus string

const (
	IngestOk      IngestStatus = "ok"
	IngestSkipped IngestStatus = "skipped"
	IngestFailed  IngestStatus = "failed"
)

// Option configures the content client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL     string
	ingestToken string
	http        *http.Client
}

// NewClient creates a content-service client.
func NewClient(baseURL, ingestToken string, opts ...Option) Client {
	c := &httpClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		ingestToken: strings.TrimSpace(ingestToken),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the content service's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// postJSON POSTs a JSON body to path and returns the envelope's data
// field. Transient failures (429, 5xx) are retried with exponential
// backoff; the last error surfaces to the caller after retries are
// exhausted. HTTP non-2xx and envelope success:false are errors.
func (c *httpClient) postJSON(ctx context.Context, path string, reqBody any) (json.RawMessage, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, eris.Wrap(err, "content: marshal request")
	}

	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, eris.Wrap(err, "content: create request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Ingest-Token", c.ingestToken)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = eris.Wrap(err, "content: request failed")
			if attempt < maxAttempts {
				if err := sleep(ctx, backoff); err != nil {
					return nil, err
				}
				backoff *= 2
				continue
			}
			return nil, lastErr
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, eris.Wrap(readErr, "content: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("content: status %d: %s", resp.StatusCode, snippet(body))
			if err := sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, eris.Errorf("content: status %d: %s", resp.StatusCode, snippet(body))
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, eris.Errorf("content: invalid response envelope: %s", snippet(body))
		}
		if !env.Success {
			code := env.Code
			if code == "" {
				code = "ERROR"
			}
			msg := env.Message
			if msg == "" {
				msg = "unknown error"
			}
			return nil, eris.Errorf("content: %s: %s", code, msg)
		}
		return env.Data, nil
	}

	return nil, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func snippet(body []byte) string {
	const max = 500
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
