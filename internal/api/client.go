package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/penguingram/messenger/internal/logging"
	"go.uber.org/zap"
)

// UserIDHeader carries the caller's identity on authenticated requests.
const UserIDHeader = "X-User-Id"

const maxBodySize = 64 << 20

// Client issues requests against the messenger backend. It holds no
// per-user state; every authenticated call takes the caller's user id.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// New creates a Client. A nil httpClient gets one with cfg.Timeout.
func New(cfg Config, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: httpClient, log: logging.OrNop(log).Named("api")}
}

type request struct {
	op       string
	method   string
	endpoint string
	userID   string // empty for unauthenticated calls
	query    url.Values
	body     any
}

// do issues exactly one request and decodes the JSON body into out,
// whatever the HTTP status.
func (c *Client) do(ctx context.Context, r request, out any) error {
	target := c.cfg.resolve(r.endpoint)
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", r.op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", r.op, err)
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if r.userID != "" {
		req.Header.Set(UserIDHeader, r.userID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("op", r.op),
			zap.String("method", r.method),
			zap.String("url", target),
			zap.Error(err),
		)
		return &NetworkError{Op: r.op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &NetworkError{Op: r.op, Err: err}
	}
	c.log.Debug("request",
		zap.String("op", r.op),
		zap.String("method", r.method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Op: r.op, Status: resp.StatusCode, Err: err}
	}
	return nil
}
