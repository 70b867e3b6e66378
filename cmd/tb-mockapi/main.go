package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"taskboard/internal/logging"
	"taskboard/internal/mockapi"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		addr      string
		secret    string
		tokenTTL  time.Duration
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:   "tb-mockapi",
		Short: "Run an in-memory task server for local development",
		Long: `Run an in-memory task server speaking the taskboard API.

Data lives in memory and is lost on exit. The signing secret comes from
--secret or TB_MOCKAPI_SECRET; a .env file in the working directory is read first.`,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(".env"); err == nil {
				if err := godotenv.Load(".env"); err != nil {
					return fmt.Errorf("failed to load .env: %w", err)
				}
			}
			if secret == "" {
				secret = os.Getenv("TB_MOCKAPI_SECRET")
			}
			if secret == "" {
				return errors.New("a signing secret is required (--secret or TB_MOCKAPI_SECRET)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.Setup(os.Stderr, logging.Options{Level: logLevel, Format: logFormat})
			return serve(cmd.Context(), addr, mockapi.Options{
				Secret:   []byte(secret),
				TokenTTL: tokenTTL,
				Logger:   logger,
			}, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", ":3000", "Listen address")
	flags.StringVar(&secret, "secret", "", "HS256 signing secret")
	flags.DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "Lifetime of issued tokens")
	flags.StringVar(&logLevel, "log-level", "info", "Log level")
	flags.StringVar(&logFormat, "log-format", "text", "Log format, text or json")

	return cmd
}

func serve(parent context.Context, addr string, opts mockapi.Options, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           mockapi.New(opts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mock api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
