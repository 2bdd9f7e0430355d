// Package api is the REST transport for the Pulse catalog service.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pulseadmin/internal/logging"

	"github.com/google/uuid"
)

// TokenSource supplies the bearer token. *session.Session implements it.
type TokenSource interface {
	Token() (string, bool)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client // overrides Timeout when set
}

// Client calls the remote API. It holds no per-request state and is safe
// for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	tokens     TokenSource
}

// New creates a Client. tokens may be nil for a client that only logs in.
func New(opts Options, tokens TokenSource) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "pulse-admin"
	}

	return &Client{baseURL: base, userAgent: ua, httpClient: hc, tokens: tokens}, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Close drops idle keep-alive connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// request is one outgoing call.
type request struct {
	op          string
	method      string
	url         string
	body        io.Reader
	contentType string
	auth        bool
}

// do sends r and returns the response on 2xx. The caller closes the body.
func (c *Client) do(ctx context.Context, r request) (*http.Response, string, error) {
	reqID := uuid.NewString()
	log := logging.Get(logging.CategoryAPI).With("req", reqID)

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, r.body)
	if err != nil {
		return nil, reqID, fmt.Errorf("%s: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", reqID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.auth {
		token, ok := "", false
		if c.tokens != nil {
			token, ok = c.tokens.Token()
		}
		if !ok {
			log.Warn("%s: no session token, not sending", r.op)
			return nil, reqID, fmt.Errorf("%s: %w", r.op, ErrUnauthorized)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	log.Debug("%s %s", r.method, r.url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Debug("%s: %v", r.op, ctxErr)
			return nil, reqID, ctxErr
		}
		log.Error("%s failed after %s: %v", r.op, time.Since(start), err)
		return nil, reqID, &NetworkError{Op: r.op, Err: err}
	}
	log.Info("%s %s -> %d (%s)", r.method, r.url, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		rerr := decodeError(r.op, resp, reqID)
		if errors.Is(rerr, ErrUnauthorized) {
			log.Warn("%s: %v", r.op, rerr)
		} else {
			log.Error("%s: %v", r.op, rerr)
		}
		return nil, reqID, rerr
	}
	return resp, reqID, nil
}
