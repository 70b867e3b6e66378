// Package session holds the in-memory session and dashboard, backed by
// the persisted token store.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"taskboard/internal/api"
	"taskboard/internal/domain"
	"taskboard/internal/errors"
	"taskboard/internal/logging"
	"taskboard/internal/metrics"
)

// ErrNoSession matches (with errors.Is) the error returned by operations
// that need a session when there is none.
var ErrNoSession = errors.NewNotAuthenticatedError("session")

// TokenStore is the persisted half of the session.
type TokenStore interface {
	GetToken(ctx context.Context) (string, bool, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
	GetUser(ctx context.Context) (*domain.User, bool, error)
	SetUser(ctx context.Context, user *domain.User) error
	Clear(ctx context.Context) error
}

// Snapshot is a consistent copy of the store's state.
type Snapshot struct {
	State          domain.SessionState
	Tasks          []*domain.Task
	Counters       domain.StatusCounters
	LoadingMain    bool
	LastRefreshAt  time.Time
	LastRefreshErr error
}

// Store owns the session state. Its lock is never held across a call to
// the API or the token store.
type Store struct {
	api     api.API
	tokens  TokenStore
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time

	mu             sync.Mutex
	state          domain.SessionState
	generation     uint64
	tasks          []*domain.Task
	counters       domain.StatusCounters
	inFlight       int
	lastRefreshAt  time.Time
	lastRefreshErr error
}

// New creates an unauthenticated Store. Call Hydrate to pick up a
// persisted session.
func New(a api.API, tokens TokenStore, logger *slog.Logger, rec metrics.Recorder) *Store {
	return &Store{
		api:     a,
		tokens:  tokens,
		logger:  logging.OrDiscard(logger).With("component", "session"),
		metrics: metrics.OrNop(rec),
		now:     time.Now,
		state:   domain.Unauthenticated{},
	}
}

// Register creates an account. It does not log in.
func (s *Store) Register(ctx context.Context, username, password string) error {
	return s.api.Register(ctx, username, password)
}

// Login authenticates, persists the token and user, and loads the
// dashboard. A dashboard failure is logged and does not fail the login.
func (s *Store) Login(ctx context.Context, username, password string) error {
	res, err := s.api.Login(ctx, username, password)
	if err != nil {
		return err
	}

	user := res.User
	if err := s.tokens.SetToken(ctx, res.Token); err != nil {
		return err
	}
	if err := s.tokens.SetUser(ctx, &user); err != nil {
		_ = s.tokens.ClearToken(ctx)
		return err
	}

	s.mu.Lock()
	s.state = domain.Authenticated{Token: res.Token, User: user}
	s.clearDashboardLocked()
	s.generation++
	s.mu.Unlock()

	s.logger.Info("logged in", "username", user.Username)

	if err := s.FetchMain(ctx); err != nil {
		s.logger.Warn("dashboard load after login failed", "error", err)
	}
	return nil
}

// Logout drops the session in memory and in storage. It is safe to call
// when already logged out. The in-memory reset always happens.
func (s *Store) Logout(ctx context.Context) error {
	s.Reset(ctx)
	return s.tokens.Clear(ctx)
}

// Reset drops the in-memory session without touching storage. It is
// registered as the HTTP client's invalid-session listener.
func (s *Store) Reset(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.Unauthenticated{}
	s.clearDashboardLocked()
	s.generation++
}

func (s *Store) clearDashboardLocked() {
	s.tasks = nil
	s.counters = domain.StatusCounters{}
	s.lastRefreshAt = time.Time{}
	s.lastRefreshErr = nil
}

// Hydrate loads a persisted session when none is held in memory. A
// stored token without a readable user is discarded. It reports whether
// the store is authenticated afterwards.
func (s *Store) Hydrate(ctx context.Context) bool {
	if s.IsAuthenticated() {
		return true
	}

	token, ok, err := s.tokens.GetToken(ctx)
	if err != nil {
		s.logger.Warn("could not read stored token", "error", err)
		return false
	}
	if !ok {
		return false
	}

	user, ok, err := s.tokens.GetUser(ctx)
	if err != nil {
		s.logger.Warn("could not read stored user", "error", err)
		return false
	}
	if !ok {
		s.logger.Info("discarding stored token without a user record")
		if err := s.tokens.ClearToken(ctx); err != nil {
			s.logger.Warn("could not clear stray token", "error", err)
		}
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, already := s.state.(domain.Authenticated); !already {
		s.state = domain.Authenticated{Token: token, User: *user}
		s.generation++
	}
	return true
}

// FetchMain reloads the task list and recomputes the counters. On failure
// the previous dashboard is kept and the session is left alone; the error
// is returned and recorded as the last refresh result. Results that
// arrive after the session changed are discarded.
func (s *Store) FetchMain(ctx context.Context) error {
	s.mu.Lock()
	if _, ok := s.state.(domain.Authenticated); !ok {
		s.mu.Unlock()
		return errors.NewNotAuthenticatedError("fetch dashboard")
	}
	gen := s.generation
	s.inFlight++
	s.mu.Unlock()

	defer s.endFetch()

	tasks, err := s.api.ListTasks(ctx)
	return s.applyFetch(gen, tasks, err)
}

func (s *Store) endFetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
}

func (s *Store) applyFetch(gen uint64, tasks []*domain.Task, err error) error {
	s.metrics.RecordRefresh(err == nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("discarding dashboard result for a previous session")
		return err
	}

	s.lastRefreshAt = s.now()
	s.lastRefreshErr = err
	if err != nil {
		return err
	}

	s.tasks = tasks
	s.counters = domain.CountByStatus(tasks)
	return nil
}

// CreateTask creates a task and appends the server's copy to the local
// list. The counters are not touched; they reflect the last full refresh.
func (s *Store) CreateTask(ctx context.Context, task domain.NewTask) (*domain.Task, error) {
	s.mu.Lock()
	if _, ok := s.state.(domain.Authenticated); !ok {
		s.mu.Unlock()
		return nil, errors.NewNotAuthenticatedError("create task")
	}
	gen := s.generation
	s.mu.Unlock()

	created, err := s.api.CreateTask(ctx, task)
	if err != nil {
		s.logger.Warn("create task failed", "error", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation {
		s.tasks = append(s.tasks, created)
	}
	return created, nil
}

// State returns the current session state.
func (s *Store) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated reports whether a token is held in memory.
func (s *Store) IsAuthenticated() bool {
	return domain.IsAuthenticated(s.State())
}

// Token returns the in-memory token.
func (s *Store) Token() (string, bool) {
	if auth, ok := s.State().(domain.Authenticated); ok {
		return auth.Token, true
	}
	return "", false
}

// User returns the in-memory user.
func (s *Store) User() (domain.User, bool) {
	if auth, ok := s.State().(domain.Authenticated); ok {
		return auth.User, true
	}
	return domain.User{}, false
}

// Tasks returns a copy of the task list.
func (s *Store) Tasks() []*domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTasks(s.tasks)
}

// Counters returns the counters from the last successful refresh.
func (s *Store) Counters() domain.StatusCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}

// IsLoadingMain reports whether a dashboard fetch is in flight.
func (s *Store) IsLoadingMain() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// Snapshot returns a copy of everything the views display.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:          s.state,
		Tasks:          copyTasks(s.tasks),
		Counters:       s.counters,
		LoadingMain:    s.inFlight > 0,
		LastRefreshAt:  s.lastRefreshAt,
		LastRefreshErr: s.lastRefreshErr,
	}
}

func copyTasks(tasks []*domain.Task) []*domain.Task {
	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		c := *t
		out = append(out, &c)
	}
	return out
}
