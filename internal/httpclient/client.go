// Package httpclient is the authenticated transport to the task API. It
// attaches the stored bearer token to every request and reacts to
// responses that show the session is no longer valid.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"taskboard/internal/errors"
	"taskboard/internal/logging"
	"taskboard/internal/metrics"
)

const maxResponseBytes = 4 << 20

// TokenSource is the persisted session the client reads from and clears.
type TokenSource interface {
	GetToken(ctx context.Context) (string, bool, error)
	ClearToken(ctx context.Context) error
	ClearUser(ctx context.Context) error
}

// Navigator moves the application to another route.
type Navigator interface {
	CurrentPath() string
	Navigate(ctx context.Context, target string) error
}

// AuthHandling tracks whether an invalid-session sequence is running.
type AuthHandling int32

const (
	Idle AuthHandling = iota
	InProgress
)

func (a AuthHandling) String() string {
	if a == InProgress {
		return "in_progress"
	}
	return "idle"
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second; 0 disables limiting
	RateBurst int
	LoginPath string // defaults to /login

	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    metrics.Recorder
}

// Client sends JSON requests to the task API.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	limiter   *rate.Limiter
	loginPath string
	logger    *slog.Logger
	metrics   metrics.Recorder

	authState atomic.Int32

	mu        sync.RWMutex
	navigator Navigator
	listeners []func(context.Context)
}

// New creates a Client reading tokens from tokens.
func New(opts Options, tokens TokenSource) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.NewInvalidInputError("base_url", opts.BaseURL, "must be an absolute http(s) URL")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}

	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		http:      httpClient,
		tokens:    tokens,
		limiter:   limiter,
		loginPath: loginPath,
		logger:    logging.OrDiscard(opts.Logger).With("component", "httpclient"),
		metrics:   metrics.OrNop(opts.Metrics),
	}, nil
}

// SetNavigator sets where the client sends the user after an invalid
// session. Without a navigator the client only clears stored state.
func (c *Client) SetNavigator(n Navigator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.navigator = n
}

// OnInvalidSession registers fn to run after stored credentials are
// cleared and before navigation.
func (c *Client) OnInvalidSession(fn func(context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// AuthState reports whether an invalid-session sequence is running.
func (c *Client) AuthState() AuthHandling {
	return AuthHandling(c.authState.Load())
}

// Get sends a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Do sends one request. body is encoded as JSON when non-nil; out, when
// non-nil, receives the decoded 2xx response. Failures are returned as
// *errors.AppError: AuthInvalid, Remote, Network, Timeout or Decode.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.NewTimeoutError(op+" (rate limited)", err)
		}
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordNetworkError(method)
		c.logger.Debug("request failed", "op", op, "error", err)
		return classifyTransportError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.metrics.RecordRequest(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return classifyTransportError(op, err)
	}

	c.logger.Debug("response", "op", op, "status", resp.StatusCode, "request_id", req.Header.Get("X-Request-ID"))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := newStatusError(resp.StatusCode, data)
		if IsAuthFailure(resp.StatusCode, data) {
			c.handleInvalidSession(ctx, resp.StatusCode)
			return errors.NewAuthInvalidError(op, statusErr)
		}
		return errors.NewRemoteError(op, resp.StatusCode, statusErr)
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.NewDecodeError("response to "+op, io.ErrUnexpectedEOF)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewDecodeError("response to "+op, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.NewInvalidInputError("body", nil, err.Error())
		}
		reader = bytes.NewReader(payload)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.NewInvalidInputError("request", path, err.Error())
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, ok, err := c.tokens.GetToken(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		// Set replaces any Authorization header already present.
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// handleInvalidSession clears the stored session, notifies listeners and
// sends the user to login. Concurrent failures while a sequence is
// running are ignored.
func (c *Client) handleInvalidSession(ctx context.Context, status int) {
	c.metrics.RecordAuthFailure(status)

	if !c.authState.CompareAndSwap(int32(Idle), int32(InProgress)) {
		c.logger.Debug("invalid session already being handled", "status", status)
		return
	}
	defer c.authState.Store(int32(Idle))

	c.logger.Info("session rejected by server; clearing credentials", "status", status)

	if err := c.tokens.ClearToken(ctx); err != nil {
		c.logger.Warn("failed to clear stored token", "error", err)
	}
	if err := c.tokens.ClearUser(ctx); err != nil {
		c.logger.Warn("failed to clear stored user", "error", err)
	}

	c.mu.RLock()
	listeners := append([]func(context.Context){}, c.listeners...)
	nav := c.navigator
	c.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx)
	}

	if nav == nil {
		return
	}
	current := nav.CurrentPath()
	if pathOnly(current) == c.loginPath {
		return
	}

	c.metrics.RecordLoginRedirect()
	target := c.loginPath
	if current != "" {
		target += "?" + url.Values{"redirect": {current}}.Encode()
	}
	if err := nav.Navigate(ctx, target); err != nil {
		c.logger.Warn("navigation to login failed", "target", target, "error", err)
	}
}

func pathOnly(fullPath string) string {
	if i := strings.IndexAny(fullPath, "?#"); i >= 0 {
		return fullPath[:i]
	}
	return fullPath
}

func classifyTransportError(op string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError(op, err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewTimeoutError(op, err)
	}
	return errors.NewNetworkError(op, err)
}
