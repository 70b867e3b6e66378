package cli

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/config"
	"taskboard/internal/mockapi"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testEnv is a mock server plus a private session directory. Every run
// call is a fresh process as far as the client is concerned.
type testEnv struct {
	server *httptest.Server
	clock  *fakeClock
	dbDir  string
	env    map[string]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := &fakeClock{now: time.Now()}
	srv := mockapi.New(mockapi.Options{
		Secret:     []byte("cli-test-secret"),
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
		Now:        clock.Now,
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &testEnv{
		server: ts,
		clock:  clock,
		dbDir:  t.TempDir(),
		env:    map[string]string{},
	}
}

type runResult struct {
	stdout string
	stderr string
	err    error
}

func (e *testEnv) runWithInput(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer

	root := NewRootCommand(RootOptions{
		Loader: config.NewLoader().WithConfigFile("").WithEnvFile(""),
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(key string) string { return e.env[key] },
	})

	full := append([]string{"--base-url", e.server.URL, "--db-dir", e.dbDir}, args...)
	root.Command().SetArgs(full)
	err := root.Execute()

	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func (e *testEnv) run(t *testing.T, args ...string) runResult {
	t.Helper()
	return e.runWithInput(t, "", args...)
}

// signIn registers and logs in username with a fixed password
func (e *testEnv) signIn(t *testing.T, username string) {
	t.Helper()
	res := e.run(t, "register", username, "--password", "secret-pass")
	require.NoError(t, res.err)
	res = e.run(t, "login", username, "--password", "secret-pass")
	require.NoError(t, res.err)
}

// newApp builds an App directly so tests can inspect its router
func (e *testEnv) newApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := config.NewConfig()
	cfg.API.BaseURL = e.server.URL
	cfg.Storage.Dir = e.dbDir

	var stdout bytes.Buffer
	app, err := NewApp(cfg, AppOptions{
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
		Getenv: func(key string) string { return e.env[key] },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app, &stdout
}
