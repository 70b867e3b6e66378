// Package router is the in-process navigation layer. Commands navigate to
// the route that backs them and guards decide whether they may.
package router

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"taskboard/internal/errors"
	"taskboard/internal/logging"
)

const defaultMaxRedirects = 10

// ErrTooManyRedirects is returned when guards or static redirects loop.
var ErrTooManyRedirects = stderrors.New("too many redirects")

// Location is a resolved navigation target.
type Location struct {
	Route    Route
	Path     string
	Query    url.Values
	FullPath string
}

// Guard runs before every navigation. A non-empty redirect aborts the
// navigation and starts a new one to that target; an error aborts it.
type Guard func(ctx context.Context, to, from Location) (redirect string, err error)

// Router resolves targets against a route table and tracks the current
// location. Its lock is never held while guards run, so a guard (or
// anything it calls) may navigate. A navigation started while another is
// pending supersedes it: the older one neither commits nor redirects.
type Router struct {
	routes       map[string]Route
	maxRedirects int
	logger       *slog.Logger

	mu      sync.RWMutex
	guards  []Guard
	current Location
	history []string
	seq     uint64
}

// New creates a Router over routes.
func New(routes []Route, logger *slog.Logger) *Router {
	table := make(map[string]Route, len(routes))
	for _, r := range routes {
		table[r.Path] = r
	}
	return &Router{
		routes:       table,
		maxRedirects: defaultMaxRedirects,
		logger:       logging.OrDiscard(logger).With("component", "router"),
	}
}

// BeforeEach registers a guard. Guards run in registration order.
func (r *Router) BeforeEach(g Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guards = append(r.guards, g)
}

// Navigate moves to target, following static and guard redirects.
func (r *Router) Navigate(ctx context.Context, target string) error {
	original := target

	r.mu.Lock()
	r.seq++
	id := r.seq
	r.mu.Unlock()

	for hop := 0; ; hop++ {
		if hop > r.maxRedirects {
			return fmt.Errorf("navigate to %s: %w", original, ErrTooManyRedirects)
		}

		to, err := r.resolve(target)
		if err != nil {
			return err
		}

		r.mu.RLock()
		from := r.current
		guards := append([]Guard(nil), r.guards...)
		r.mu.RUnlock()

		redirect, err := runGuards(ctx, guards, to, from)
		if err != nil {
			return err
		}
		if r.superseded(id) {
			r.logger.Debug("navigation superseded", "to", to.FullPath, "current", r.CurrentPath())
			return nil
		}
		if redirect != "" {
			r.logger.Debug("guard redirected", "to", to.FullPath, "redirect", redirect)
			target = redirect
			continue
		}

		r.mu.Lock()
		if r.seq != id {
			r.mu.Unlock()
			r.logger.Debug("navigation superseded", "to", to.FullPath)
			return nil
		}
		r.current = to
		r.history = append(r.history, to.FullPath)
		r.mu.Unlock()

		r.logger.Debug("navigated", "path", to.FullPath)
		return nil
	}
}

func (r *Router) superseded(id uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seq != id
}

func runGuards(ctx context.Context, guards []Guard, to, from Location) (string, error) {
	for _, g := range guards {
		redirect, err := g(ctx, to, from)
		if err != nil || redirect != "" {
			return redirect, err
		}
	}
	return "", nil
}

// resolve parses target and follows static redirects.
func (r *Router) resolve(target string) (Location, error) {
	for hop := 0; hop <= r.maxRedirects; hop++ {
		u, err := url.Parse(target)
		if err != nil {
			return Location{}, errors.NewInvalidInputError("route", target, err.Error())
		}
		path := u.Path
		if path == "" {
			path = PathRoot
		}
		if len(path) > 1 {
			path = strings.TrimRight(path, "/")
		}

		route, ok := r.routes[path]
		if !ok {
			return Location{}, errors.NewNotFoundError("route", path)
		}
		if route.Redirect != "" {
			target = route.Redirect
			if u.RawQuery != "" && !strings.Contains(target, "?") {
				target += "?" + u.RawQuery
			}
			continue
		}

		query := u.Query()
		return Location{
			Route:    route,
			Path:     path,
			Query:    query,
			FullPath: fullPath(path, query),
		}, nil
	}
	return Location{}, fmt.Errorf("resolve %s: %w", target, ErrTooManyRedirects)
}

func fullPath(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// CurrentPath returns the full path (with query) of the current location,
// or "" before the first navigation.
func (r *Router) CurrentPath() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current.FullPath
}

// Current returns the current location.
func (r *Router) Current() Location {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// History returns every committed full path, oldest first.
func (r *Router) History() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.history...)
}

// LoginRedirect builds the login target that returns to from afterwards.
func LoginRedirect(loginPath, from string) string {
	return loginPath + "?" + url.Values{"redirect": {from}}.Encode()
}

// RedirectTarget returns the redirect query value of loc, or fallback when
// it is missing or not an in-app path.
func RedirectTarget(loc Location, fallback string) string {
	target := loc.Query.Get("redirect")
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return fallback
	}
	return target
}
