package router

import (
	"context"
	"log/slog"

	"taskboard/internal/logging"
)

// SessionState is what the auth guard needs from the session store.
type SessionState interface {
	IsAuthenticated() bool
	Hydrate(ctx context.Context) bool
	IsLoadingMain() bool
	FetchMain(ctx context.Context) error
}

// AuthGuard syncs the session with storage, refreshes the dashboard when
// a session exists, and sends unauthenticated users of protected routes
// to login. A failed refresh never blocks navigation.
func AuthGuard(s SessionState, loginPath string, logger *slog.Logger) Guard {
	logger = logging.OrDiscard(logger).With("component", "auth_guard")

	return func(ctx context.Context, to, _ Location) (string, error) {
		if !s.IsAuthenticated() {
			s.Hydrate(ctx)
		}

		// check-then-act: two navigations may both start a fetch
		if s.IsAuthenticated() && !s.IsLoadingMain() {
			if err := s.FetchMain(ctx); err != nil {
				logger.Debug("dashboard refresh failed during navigation", "to", to.FullPath, "error", err)
			}
		}

		if to.Route.RequiresAuth && !s.IsAuthenticated() {
			return LoginRedirect(loginPath, to.FullPath), nil
		}
		return "", nil
	}
}
