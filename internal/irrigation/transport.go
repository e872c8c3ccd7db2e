package irrigation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Transport issues requests against the backend and decodes JSON responses.
// Paths are relative to the configured base URL and start with a slash.
type Transport interface {
	Get(ctx context.Context, path string, dest any) error
	Post(ctx context.Context, path string, body, dest any) error
}

// Ensure HTTPTransport implements Transport at compile time.
var _ Transport = (*HTTPTransport)(nil)

const (
	defaultUserAgent = "furrow/0.1"
	maxErrorBody     = 512
)

// HTTPTransport talks to the backend over net/http.
type HTTPTransport struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *slog.Logger
	requestID func() string
}

// Option customises an HTTPTransport.
type Option func(*HTTPTransport)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTransport) {
		if c != nil {
			t.http = c
		}
	}
}

// WithTimeout bounds every request. Zero leaves the client without a timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *HTTPTransport) {
		if d > 0 {
			// Copy so a client shared through WithHTTPClient is left untouched.
			c := *t.http
			c.Timeout = d
			t.http = &c
		}
	}
}

// WithLogger routes per-request logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *HTTPTransport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(t *HTTPTransport) {
		if ua = strings.TrimSpace(ua); ua != "" {
			t.userAgent = ua
		}
	}
}

// NewHTTPTransport builds a transport rooted at baseURL. Any path on the base
// URL is kept as a prefix for every request.
func NewHTTPTransport(baseURL string, opts ...Option) (*HTTPTransport, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	t := &HTTPTransport{
		baseURL:   base,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
		logger:    slog.New(slog.DiscardHandler),
		requestID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// BaseURL returns the normalised base URL.
func (t *HTTPTransport) BaseURL() string {
	return t.baseURL.String()
}

// Get issues a GET request and decodes the response into dest.
func (t *HTTPTransport) Get(ctx context.Context, path string, dest any) error {
	return t.do(ctx, http.MethodGet, path, nil, dest)
}

// Post issues a POST request with body encoded as JSON and decodes the
// response into dest.
func (t *HTTPTransport) Post(ctx context.Context, path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return t.do(ctx, http.MethodPost, path, payload, dest)
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, payload []byte, dest any) error {
	reqURL := t.resolve(path)

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	id := t.requestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("X-Request-ID", id)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := t.http.Do(req)
	if err != nil {
		t.logger.Warn("request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", id),
			slog.Duration("elapsed", time.Since(start)),
			slog.Any("err", err))
		return fmt.Errorf("%w: execute request: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	t.logger.Info("request completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", id),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrDecode, err)
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: decode response: trailing data after JSON value", ErrDecode)
	}
	return nil
}

func (t *HTTPTransport) resolve(path string) string {
	u := *t.baseURL
	u.Path = t.baseURL.Path + path
	u.RawPath = ""
	return u.String()
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
