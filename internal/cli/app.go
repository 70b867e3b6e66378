package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"taskboard/internal/api"
	"taskboard/internal/config"
	"taskboard/internal/errors"
	"taskboard/internal/httpclient"
	"taskboard/internal/logging"
	"taskboard/internal/metrics"
	"taskboard/internal/repository/sqlite"
	"taskboard/internal/router"
	"taskboard/internal/services"
	"taskboard/internal/session"
	"taskboard/internal/tokenstore"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// AppOptions carries the process-level dependencies of an App
type AppOptions struct {
	Logger     *slog.Logger
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	HTTPClient *http.Client
	Getenv     func(string) string
}

// App wires the client stack together for one process
type App struct {
	config   *config.Config
	logger   *slog.Logger
	repo     sqlite.Repository
	tokens   *tokenstore.Store
	registry *prometheus.Registry
	client   *httpclient.Client
	session  *session.Store
	router   *router.Router
	services *services.ServiceContainer
	display  *Display

	stdin  *bufio.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

// NewApp opens local storage and builds the HTTP client, session store
// and router for cfg.
func NewApp(cfg *config.Config, opts AppOptions) (*App, error) {
	logger := logging.OrDiscard(opts.Logger)

	repo, err := config.CreateRepository(cfg)
	if err != nil {
		return nil, errors.NewStorageError("open session storage", err)
	}

	tokens := tokenstore.New(repo, logger)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	client, err := httpclient.New(httpclient.Options{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		RateLimit:  cfg.API.RateLimit,
		RateBurst:  cfg.API.RateBurst,
		LoginPath:  router.PathLogin,
		HTTPClient: opts.HTTPClient,
		Logger:     logger,
		Metrics:    collector,
	}, tokens)
	if err != nil {
		repo.Close()
		return nil, err
	}

	store := session.New(api.New(client, cfg), tokens, logger, collector)

	rt := router.New(router.DefaultRoutes(), logger)
	rt.BeforeEach(router.AuthGuard(store, router.PathLogin, logger))

	client.SetNavigator(rt)
	client.OnInvalidSession(store.Reset)

	app := &App{
		config:   cfg,
		logger:   logger,
		repo:     repo,
		tokens:   tokens,
		registry: registry,
		client:   client,
		session:  store,
		router:   rt,
		services: services.NewServiceContainer(),
		display:  NewDisplay(cfg.Display),
		stdin:    bufio.NewReader(orReader(opts.Stdin, os.Stdin)),
		stdout:   orWriter(opts.Stdout, os.Stdout),
		stderr:   orWriter(opts.Stderr, os.Stderr),
		getenv:   opts.Getenv,
	}
	if app.getenv == nil {
		app.getenv = os.Getenv
	}
	return app, nil
}

// Close writes the metrics textfile, when configured, and closes storage
func (a *App) Close() error {
	metricsErr := metrics.WriteTextfile(a.config.Metrics.TextfilePath, a.registry)
	if metricsErr != nil {
		a.logger.Warn("metrics export failed", "error", metricsErr)
	}
	if err := a.repo.Close(); err != nil {
		return errors.NewStorageError("close session storage", err)
	}
	return nil
}

// navigate moves to target and returns the route the navigation settled on
func (a *App) navigate(ctx context.Context, target string) (router.Location, error) {
	if err := a.router.Navigate(ctx, target); err != nil {
		return router.Location{}, err
	}
	return a.router.Current(), nil
}

// requireRoute navigates to a protected route and fails when the guard
// sent us to login instead.
func (a *App) requireRoute(ctx context.Context, target, operation string) error {
	loc, err := a.navigate(ctx, target)
	if err != nil {
		return err
	}
	if loc.Route.Path == router.PathLogin || !a.session.IsAuthenticated() {
		return errors.NewNotAuthenticatedError(operation)
	}
	return nil
}

// readPassword returns flagValue, then TB_PASSWORD, then one line of stdin
func (a *App) readPassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := a.getenv("TB_PASSWORD"); env != "" {
		return env, nil
	}

	fmt.Fprint(a.stderr, "Password: ")
	line, err := a.stdin.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func orReader(r io.Reader, fallback io.Reader) io.Reader {
	if r == nil {
		return fallback
	}
	return r
}

func orWriter(w io.Writer, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
