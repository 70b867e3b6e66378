package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"taskboard/internal/config"
	"taskboard/internal/logging"
)

// RootOptions carries what the root command needs from the process
type RootOptions struct {
	Loader     *config.Loader
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	HTTPClient *http.Client
	Getenv     func(string) string
}

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	opts   RootOptions
	config *config.Config
	logger *slog.Logger
	app    *App
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(opts RootOptions) *RootCommand {
	if opts.Loader == nil {
		opts.Loader = config.NewLoader()
	}
	opts.Stdout = orWriter(opts.Stdout, os.Stdout)
	opts.Stderr = orWriter(opts.Stderr, os.Stderr)

	root := &RootCommand{opts: opts}

	root.cmd = &cobra.Command{
		Use:   "tb",
		Short: "A command-line client for the task board",
		Long: `Taskboard (tb) is a command-line client for a task board server.

EXAMPLES:
  tb register alice                        # Create an account
  tb login alice                           # Sign in and show the dashboard
  tb tasks                                 # List tasks with status counters
  tb tasks --status todo --sort due        # Filter and order the list
  tb tasks --format csv > tasks.csv        # Export to CSV
  tb tasks add "Write report" --due 2025-07-01 --priority 2
  tb status                                # Show the stored session
  tb logout                                # Sign out

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > .env file > config file > defaults

  The config file is TB_CONFIG_FILE or ~/.taskboard/config.yaml.

  API Configuration:
    TB_API_BASE_URL                        Server base URL (default: http://localhost:3000)
    TB_API_TIMEOUT                         Request timeout (default: 15s)
    TB_API_RATE_LIMIT                      Requests per second, 0 disables (default: 10)
    TB_API_RATE_BURST                      Burst size (default: 5)

  Storage Configuration:
    TB_DB_DIR                              Session directory (default: ~/.taskboard)
    TB_DB_FILENAME                         Session database (default: session.db)
    TB_DB_QUERY_TIMEOUT                    Query timeout (default: 5s)
    TB_DB_WRITE_TIMEOUT                    Write timeout (default: 5s)

  Display Configuration:
    TB_TIME_DISPLAY_FORMAT                 Time format (default: 2006-01-02 15:04)
    TB_DISPLAY_STRIP_HTML                  Strip markup from server text (default: true)

  Logging and Metrics:
    TB_LOG_LEVEL                           debug, info, warn, error (default: warn)
    TB_LOG_FORMAT                          text or json (default: text)
    TB_DEBUG                               Force debug logging
    TB_METRICS_FILE                        Write Prometheus metrics here on exit

  Credentials:
    TB_PASSWORD                            Used when --password is not given`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.loadConfig()
		},
	}

	root.cmd.SetIn(orReader(opts.Stdin, os.Stdin))
	root.cmd.SetOut(opts.Stdout)
	root.cmd.SetErr(opts.Stderr)

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Command returns the underlying cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Execute runs the root command and releases the app afterwards
func (r *RootCommand) Execute() error {
	return r.ExecuteContext(context.Background())
}

// ExecuteContext is Execute with a parent context
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	err := r.cmd.ExecuteContext(ctx)
	if r.app != nil {
		if closeErr := r.app.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.app = nil
	}
	return err
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	// API configuration
	flags.String("base-url", "", "Server base URL (overrides TB_API_BASE_URL)")
	flags.Duration("api-timeout", 0, "Request timeout (overrides TB_API_TIMEOUT)")

	// Storage configuration
	flags.String("db-dir", "", "Session directory (overrides TB_DB_DIR)")
	flags.String("db-filename", "", "Session database filename (overrides TB_DB_FILENAME)")

	// Display configuration
	flags.String("time-format", "", "Time display format (overrides TB_TIME_DISPLAY_FORMAT)")

	// Application configuration
	flags.Duration("timeout", 0, "Command timeout (overrides TB_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable verbose output (overrides TB_APP_VERBOSE)")

	// Logging and metrics
	flags.String("log-level", "", "Log level (overrides TB_LOG_LEVEL)")
	flags.String("log-format", "", "Log format, text or json (overrides TB_LOG_FORMAT)")
	flags.String("metrics-file", "", "Metrics textfile path (overrides TB_METRICS_FILE)")
}

// overridesFromFlags collects the flags that were set explicitly
func (r *RootCommand) overridesFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	o := &config.ConfigOverrides{}

	stringFlag := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	durationFlag := func(name string) *time.Duration {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetDuration(name)
		return &v
	}

	o.BaseURL = stringFlag("base-url")
	o.APITimeout = durationFlag("api-timeout")
	o.DBDir = stringFlag("db-dir")
	o.DBFilename = stringFlag("db-filename")
	o.TimeFormat = stringFlag("time-format")
	o.Timeout = durationFlag("timeout")
	o.LogLevel = stringFlag("log-level")
	o.LogFormat = stringFlag("log-format")
	o.MetricsFile = stringFlag("metrics-file")
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		o.Verbose = &v
	}
	return o
}

// loadConfig runs the configuration cascade and sets up logging
func (r *RootCommand) loadConfig() error {
	cfg, err := r.opts.Loader.LoadWithOverrides(r.overridesFromFlags())
	if err != nil {
		return err
	}
	r.config = cfg
	r.logger = logging.Setup(r.opts.Stderr, logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	return nil
}

// getApp builds the App on first use
func (r *RootCommand) getApp() (*App, error) {
	if r.app != nil {
		return r.app, nil
	}
	if r.config == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	app, err := NewApp(r.config, AppOptions{
		Logger:     r.logger,
		Stdin:      r.cmd.InOrStdin(),
		Stdout:     r.opts.Stdout,
		Stderr:     r.opts.Stderr,
		HTTPClient: r.opts.HTTPClient,
		Getenv:     r.opts.Getenv,
	})
	if err != nil {
		return nil, err
	}
	r.app = app
	return app, nil
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

// run executes a command handler with the app timeout applied
func (r *RootCommand) run(cmd *cobra.Command, args []string, build func(*App) Command) error {
	app, err := r.getApp()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
	defer cancel()

	return build(app).Execute(ctx, args)
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	var registerPassword string
	registerCmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Long: `Create an account on the task server. This does not log in.

The password is read from --password, then TB_PASSWORD, then one line of stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, args, func(app *App) Command {
				return NewRegisterCommand(app, registerPassword)
			})
		},
	}
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Account password")

	var loginPassword, loginRedirect string
	loginCmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in and show the dashboard",
		Long: `Sign in, store the session locally and show the dashboard summary.

The password is read from --password, then TB_PASSWORD, then one line of stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, args, func(app *App) Command {
				return NewLoginCommand(app, loginPassword, loginRedirect)
			})
		},
	}
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	loginCmd.Flags().StringVar(&loginRedirect, "redirect", "", "Route to open after signing in (default /main)")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, args, func(app *App) Command {
				return NewLogoutCommand(app)
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Long:  "Show the stored user, whether a token is present and when it expires. Does not contact the server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, args, func(app *App) Command {
				return NewStatusCommand(app)
			})
		},
	}

	var tasksOpts TasksOptions
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks",
		Long: `Refresh and list your tasks with status counters.

Filters apply to the list only; counters always describe every task.

Examples:
  tb tasks                          # All tasks
  tb tasks --status in_progress     # Only tasks in progress
  tb tasks --search report          # Title or description contains "report"
  tb tasks --overdue --sort due     # Open tasks past their due date
  tb tasks --format json            # Machine-readable output`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, args, func(app *App) Command {
				return NewTasksCommand(app, tasksOpts)
			})
		},
	}
	tasksCmd.Flags().StringVar(&tasksOpts.Format, "format", "", "Output format: table, json or csv (overrides TB_LIST_DEFAULT_FORMAT)")
	tasksCmd.Flags().StringVar(&tasksOpts.Status, "status", "", "Only show tasks with this status")
	tasksCmd.Flags().StringVar(&tasksOpts.Search, "search", "", "Only show tasks whose title or description contains this text")
	tasksCmd.Flags().StringVar(&tasksOpts.Sort, "sort", "", "Order: server, priority, due, created or title")
	tasksCmd.Flags().BoolVar(&tasksOpts.Overdue, "overdue", false, "Only show open tasks past their due date")

	var addOpts AddTaskOptions
	addCmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Long: `Create a task. Words after "add" form the title.

Due dates accept YYYY-MM-DD (end of that day), "YYYY-MM-DD HH:MM" or RFC 3339.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, args, func(app *App) Command {
				return NewAddTaskCommand(app, addOpts)
			})
		},
	}
	addCmd.Flags().StringVar(&addOpts.Description, "description", "", "Task description")
	addCmd.Flags().StringVar(&addOpts.Status, "status", "", "Initial status: todo, in_progress or done (default todo)")
	addCmd.Flags().IntVar(&addOpts.Priority, "priority", 0, "Priority from 0 to 3")
	addCmd.Flags().StringVar(&addOpts.Due, "due", "", "Due date")
	tasksCmd.AddCommand(addCmd)

	r.cmd.AddCommand(
		registerCmd,
		loginCmd,
		logoutCmd,
		statusCmd,
		tasksCmd,
	)
}
