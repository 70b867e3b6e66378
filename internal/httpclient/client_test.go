package httpclient

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/errors"
)

type memTokens struct {
	mu       sync.Mutex
	token    string
	hasUser  bool
	getErr   error
	clearLog []string
}

func (m *memTokens) GetToken(context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	return m.token, m.token != "", nil
}

func (m *memTokens) ClearToken(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.clearLog = append(m.clearLog, "token")
	return nil
}

func (m *memTokens) ClearUser(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasUser = false
	m.clearLog = append(m.clearLog, "user")
	return nil
}

func (m *memTokens) current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

type recordingNav struct {
	mu      sync.Mutex
	path    string
	targets []string
	events  *[]string
	err     error
}

func (n *recordingNav) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *recordingNav) Navigate(_ context.Context, target string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
	if n.events != nil {
		*n.events = append(*n.events, "navigate")
	}
	if n.err != nil {
		return n.err
	}
	n.path = target
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL, Timeout: 2 * time.Second}, tokens)
	require.NoError(t, err)
	return c
}

func statusHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestDo_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID, gotAccept string
	tokens := &memTokens{token: "abc"}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`[]`))
	}, tokens)

	var out []map[string]any
	require.NoError(t, c.Get(context.Background(), "/api/tasks", &out))

	assert.Equal(t, "Bearer abc", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "application/json", gotAccept)
}

func TestDo_NoTokenNoHeader(t *testing.T) {
	var sawAuth bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusCreated)
	}, &memTokens{})

	require.NoError(t, c.Post(context.Background(), "/api/users/register", map[string]string{"username": "ann"}, nil))
	assert.False(t, sawAuth)
}

func TestDo_TokenReadErrorIsReturned(t *testing.T) {
	boom := stderrors.New("db locked")
	c := newTestClient(t, statusHandler(200, `{}`), &memTokens{getErr: boom})

	err := c.Get(context.Background(), "/api/tasks", nil)
	assert.ErrorIs(t, err, boom)
}

func TestDo_DecodesJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"echo":"hi"}`))
	}, &memTokens{})

	var out struct{ Echo string }
	require.NoError(t, c.Post(context.Background(), "/echo", map[string]string{"msg": "hi"}, &out))
	assert.Equal(t, "hi", out.Echo)
}

func TestDo_MalformedSuccessBody(t *testing.T) {
	c := newTestClient(t, statusHandler(200, `{"user":`), &memTokens{})

	var out map[string]any
	err := c.Get(context.Background(), "/api/tasks", &out)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeDecode))

	c = newTestClient(t, statusHandler(200, ``), &memTokens{})
	err = c.Get(context.Background(), "/api/tasks", &out)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeDecode))
}

func TestDo_RemoteError(t *testing.T) {
	tokens := &memTokens{token: "abc"}
	c := newTestClient(t, statusHandler(409, `{"error":"username already taken"}`), tokens)

	err := c.Post(context.Background(), "/api/users/register", map[string]string{}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeRemote))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 409, se.StatusCode)
	assert.Equal(t, "username already taken", se.Message)
	assert.Equal(t, "abc", tokens.current(), "non-auth failures keep the token")
}

func TestDo_401ClearsSessionAndRedirects(t *testing.T) {
	var events []string
	tokens := &memTokens{token: "stale", hasUser: true}
	nav := &recordingNav{path: "/main", events: &events}

	c := newTestClient(t, statusHandler(401, `{"error":"invalid token"}`), tokens)
	c.SetNavigator(nav)
	c.OnInvalidSession(func(context.Context) {
		assert.Empty(t, tokens.current(), "store is cleared before listeners run")
		events = append(events, "listener")
	})

	err := c.Get(context.Background(), "/api/tasks", nil)

	require.Error(t, err)
	assert.True(t, errors.IsAuthInvalid(err))
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 401, se.StatusCode)

	assert.Empty(t, tokens.current())
	assert.Equal(t, []string{"token", "user"}, tokens.clearLog)
	assert.Equal(t, []string{"listener", "navigate"}, events)
	assert.Equal(t, []string{"/login?redirect=%2Fmain"}, nav.targets)
	assert.Equal(t, Idle, c.AuthState())
}

func TestDo_401KeepsFullPathInRedirect(t *testing.T) {
	nav := &recordingNav{path: "/tasks/new?title=x"}
	c := newTestClient(t, statusHandler(401, ``), &memTokens{token: "t"})
	c.SetNavigator(nav)

	_ = c.Get(context.Background(), "/api/tasks", nil)

	require.Len(t, nav.targets, 1)
	assert.Equal(t, "/login?redirect=%2Ftasks%2Fnew%3Ftitle%3Dx", nav.targets[0])
}

func TestDo_401BeforeFirstNavigation(t *testing.T) {
	nav := &recordingNav{}
	c := newTestClient(t, statusHandler(401, ``), &memTokens{token: "t"})
	c.SetNavigator(nav)

	_ = c.Get(context.Background(), "/api/tasks", nil)

	assert.Equal(t, []string{"/login"}, nav.targets)
}

func TestDo_401OnLoginRouteDoesNotNavigate(t *testing.T) {
	tokens := &memTokens{token: "t"}
	nav := &recordingNav{path: "/login?redirect=%2Fmain"}
	c := newTestClient(t, statusHandler(401, `{"error":"invalid credentials"}`), tokens)
	c.SetNavigator(nav)

	err := c.Post(context.Background(), "/api/users/login", map[string]string{}, nil)

	assert.True(t, errors.IsAuthInvalid(err))
	assert.Empty(t, nav.targets)
	assert.Empty(t, tokens.current())
}

func TestDo_403Classification(t *testing.T) {
	t.Run("token expired invalidates", func(t *testing.T) {
		tokens := &memTokens{token: "t"}
		nav := &recordingNav{path: "/main"}
		c := newTestClient(t, statusHandler(403, `{"code":"TokenExpiredError","message":"jwt expired"}`), tokens)
		c.SetNavigator(nav)

		err := c.Get(context.Background(), "/api/tasks", nil)
		assert.True(t, errors.IsAuthInvalid(err))
		assert.Empty(t, tokens.current())
		assert.Len(t, nav.targets, 1)
	})

	t.Run("plain forbidden is remote", func(t *testing.T) {
		tokens := &memTokens{token: "t"}
		nav := &recordingNav{path: "/main"}
		c := newTestClient(t, statusHandler(403, `{"error":"forbidden"}`), tokens)
		c.SetNavigator(nav)

		err := c.Get(context.Background(), "/api/tasks", nil)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeRemote))
		assert.Equal(t, "t", tokens.current())
		assert.Empty(t, nav.targets)
	})
}

func TestDo_NoNavigatorStillClears(t *testing.T) {
	tokens := &memTokens{token: "t"}
	c := newTestClient(t, statusHandler(401, ``), tokens)

	err := c.Get(context.Background(), "/api/tasks", nil)
	assert.True(t, errors.IsAuthInvalid(err))
	assert.Empty(t, tokens.current())
}

// blockingNav parks the first Navigate call until release is closed.
type blockingNav struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (n *blockingNav) CurrentPath() string { return "/main" }

func (n *blockingNav) Navigate(context.Context, string) error {
	if n.calls.Add(1) == 1 {
		close(n.entered)
		<-n.release
	}
	return nil
}

func TestDo_ConcurrentFailuresNavigateOnce(t *testing.T) {
	nav := &blockingNav{entered: make(chan struct{}), release: make(chan struct{})}
	var listenerCalls atomic.Int32
	c := newTestClient(t, statusHandler(401, `{"error":"invalid token"}`), &memTokens{token: "t"})
	c.SetNavigator(nav)
	c.OnInvalidSession(func(context.Context) { listenerCalls.Add(1) })

	firstErr := make(chan error, 1)
	go func() {
		firstErr <- c.Get(context.Background(), "/api/tasks", nil)
	}()

	<-nav.entered
	assert.Equal(t, InProgress, c.AuthState())

	// A second failure while the first sequence is parked in navigation.
	err := c.Get(context.Background(), "/api/tasks", nil)
	assert.True(t, errors.IsAuthInvalid(err), "callers always see the original failure")

	close(nav.release)
	assert.True(t, errors.IsAuthInvalid(<-firstErr))

	assert.Equal(t, int32(1), nav.calls.Load())
	assert.Equal(t, int32(1), listenerCalls.Load())
	assert.Equal(t, Idle, c.AuthState())
}

type panickingNav struct{ calls int }

func (n *panickingNav) CurrentPath() string { return "/main" }
func (n *panickingNav) Navigate(context.Context, string) error {
	n.calls++
	panic("navigation exploded")
}

func TestDo_StateReleasedWhenNavigationPanics(t *testing.T) {
	nav := &panickingNav{}
	c := newTestClient(t, statusHandler(401, ``), &memTokens{token: "t"})
	c.SetNavigator(nav)

	call := func() (recovered any) {
		defer func() { recovered = recover() }()
		_ = c.Get(context.Background(), "/api/tasks", nil)
		return nil
	}

	assert.NotNil(t, call())
	assert.Equal(t, Idle, c.AuthState())

	assert.NotNil(t, call(), "a later failure runs the full sequence again")
	assert.Equal(t, 2, nav.calls)
}

func TestDo_StateReleasedWhenNavigationFails(t *testing.T) {
	nav := &recordingNav{path: "/main", err: stderrors.New("no such route")}
	c := newTestClient(t, statusHandler(401, ``), &memTokens{token: "t"})
	c.SetNavigator(nav)

	err := c.Get(context.Background(), "/api/tasks", nil)
	assert.True(t, errors.IsAuthInvalid(err))
	assert.Equal(t, Idle, c.AuthState())

	_ = c.Get(context.Background(), "/api/tasks", nil)
	assert.Len(t, nav.targets, 2)
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: baseURL, Timeout: time.Second}, &memTokens{})
	require.NoError(t, err)

	err = c.Get(context.Background(), "/api/tasks", nil)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNetwork))
}

func TestDo_Timeout(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}, &memTokens{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.Get(ctx, "/api/tasks", nil)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeTimeout))
}

func TestDo_RateLimited(t *testing.T) {
	srv := httptest.NewServer(statusHandler(200, `{}`))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, Timeout: time.Second, RateLimit: 0.001, RateBurst: 1}, &memTokens{})
	require.NoError(t, err)

	require.NoError(t, c.Get(context.Background(), "/a", nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = c.Get(ctx, "/b", nil)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeTimeout))
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, u := range []string{"", "localhost:3000", "ftp://example.com", "http://"} {
		_, err := New(Options{BaseURL: u}, &memTokens{})
		assert.Error(t, err, u)
	}
}

func TestDo_BaseURLWithPathPrefix(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL + "/v1/", Timeout: time.Second}, &memTokens{})
	require.NoError(t, err)
	require.NoError(t, c.Get(context.Background(), "api/tasks", nil))
	assert.Equal(t, "/v1/api/tasks", gotPath)
}
