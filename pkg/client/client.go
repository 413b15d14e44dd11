// Package client is the Go client for the candles API. It implements
// the creation flow's backend contract and keeps a local candle cache
// in sync with what the session creates and deletes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lumenmap/candles/internal/domain/model"
	"github.com/lumenmap/candles/internal/flow"
	"github.com/lumenmap/candles/pkg/errs"
	"github.com/lumenmap/candles/pkg/logger"
)

// Client talks to one candles server on behalf of one anonymous
// session. Not safe for concurrent use before IssueSession; fine
// afterwards.
type Client struct {
	baseURL  string
	http     *http.Client
	token    string
	pageSize int
	log      logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithPageSize sets the page size used for full reloads.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 30 * time.Second},
		pageSize: 500,
		log:      logger.Named("client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (int, string, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, "", errs.Wrap("client.do", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return 0, "", errs.Wrap("client.do", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", errs.Wrap("client.do", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		var envelope errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return resp.StatusCode, envelope.Error.Code, nil
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, "", errs.Wrap("client.do", err)
		}
	}
	return resp.StatusCode, "", nil
}

type sessionResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// IssueSession obtains an anonymous session and remembers its token
// for all subsequent calls. Returns the anonymous subject.
func (c *Client) IssueSession(ctx context.Context, challengeToken string) (string, error) {
	var resp sessionResponse
	status, code, err := c.do(ctx, http.MethodPost, "/session",
		map[string]string{"challenge_token": challengeToken}, &resp)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", errs.NewKind("client.issue_session",
			fmt.Errorf("%w: status %d code %s", ErrRequestRefused, status, code))
	}
	c.token = resp.Token
	return resp.UserID, nil
}

type listResponse struct {
	Candles []model.Candle `json:"candles"`
}

// ListAll reloads the full candle collection by concatenating pages
// until a short page signals the end. There is no incremental sync;
// callers reload, then track their own creations and deletions.
func (c *Client) ListAll(ctx context.Context) ([]model.Candle, error) {
	var all []model.Candle
	after := ""
	for {
		path := fmt.Sprintf("/candles/?limit=%d", c.pageSize)
		if after != "" {
			path += "&after=" + after
		}
		var page listResponse
		status, code, err := c.do(ctx, http.MethodGet, path, nil, &page)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, errs.NewKind("client.list",
				fmt.Errorf("%w: status %d code %s", ErrRequestRefused, status, code))
		}
		all = append(all, page.Candles...)
		if len(page.Candles) < c.pageSize {
			return all, nil
		}
		after = page.Candles[len(page.Candles)-1].ID
	}
}

type createRequest struct {
	Emotion     string  `json:"emotion"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	ViewerLocal string  `json:"viewer_local,omitempty"`
}

// CreateCandle submits a candle. Rate-limit refusals come back as
// flow.ErrRateLimited so the creation flow can classify them.
func (c *Client) CreateCandle(ctx context.Context, emotionName string, pos model.Position, viewerLocal time.Time) (model.Candle, error) {
	req := createRequest{Emotion: emotionName, Lat: pos.Lat, Lon: pos.Lon}
	if !viewerLocal.IsZero() {
		req.ViewerLocal = viewerLocal.Format(time.RFC3339)
	}

	var created model.Candle
	status, code, err := c.do(ctx, http.MethodPost, "/candles/", req, &created)
	if err != nil {
		return model.Candle{}, err
	}
	switch {
	case status == http.StatusCreated:
		return created, nil
	case status == http.StatusTooManyRequests || code == "rate_limited":
		return model.Candle{}, flow.ErrRateLimited
	default:
		return model.Candle{}, errs.NewKind("client.create",
			fmt.Errorf("%w: status %d code %s", ErrRequestRefused, status, code))
	}
}

// DeleteCandle removes one of the session's own candles.
func (c *Client) DeleteCandle(ctx context.Context, id string) error {
	status, code, err := c.do(ctx, http.MethodDelete, "/candles/"+id, nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return errs.NewKind("client.delete",
			fmt.Errorf("%w: status %d code %s", ErrRequestRefused, status, code))
	}
	return nil
}

// LogRejection reports a refused submission. Fire-and-forget: failures
// are logged locally and swallowed.
func (c *Client) LogRejection(ctx context.Context, reason, emotionName string, pos model.Position) {
	_, _, err := c.do(ctx, http.MethodPost, "/rejections", map[string]interface{}{
		"reason":  reason,
		"emotion": emotionName,
		"lat":     pos.Lat,
		"lon":     pos.Lon,
	}, nil)
	if err != nil {
		c.log.Debug(ctx, "rejection report failed", logger.Error(err))
	}
}
