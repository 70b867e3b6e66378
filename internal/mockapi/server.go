// Package mockapi is an in-memory task backend for local development and
// end-to-end tests. It speaks the same wire format as the real server,
// including its mixed 401/403 auth failures.
package mockapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/logging"
	"taskboard/internal/validation"
)

// Options configures a Server
type Options struct {
	Secret     []byte        // HS256 signing key; required
	TokenTTL   time.Duration // defaults to 24h
	BcryptCost int           // defaults to bcrypt.DefaultCost
	Now        func() time.Time
	Logger     *slog.Logger
}

// Server serves /api/users/* and /api/tasks from memory
type Server struct {
	opts    Options
	store   *memoryStore
	tasks   *validation.TaskValidator
	creds   *validation.CredentialsValidator
	logger  *slog.Logger
	now     func() time.Time
	handler http.Handler
}

// New builds a server with an empty store
func New(opts Options) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		opts:   opts,
		store:  newMemoryStore(),
		tasks:  validation.NewTaskValidator(),
		creds:  validation.NewCredentialsValidator(),
		logger: logging.OrDiscard(opts.Logger).With("component", "mockapi"),
		now:    opts.Now,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users/register", s.handleRegister)
		r.Post("/users/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireBearer)
			r.Get("/tasks", s.handleListTasks)
			r.Post("/tasks", s.handleCreateTask)
		})
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", r.Header.Get("X-Request-ID"),
			"duration", time.Since(start),
		)
	})
}
