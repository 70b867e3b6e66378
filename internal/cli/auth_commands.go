package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskboard/internal/errors"
	"taskboard/internal/router"
)

// RegisterCommand handles the register command
type RegisterCommand struct {
	app      *App
	password string
}

// NewRegisterCommand creates a new register command handler
func NewRegisterCommand(app *App, password string) *RegisterCommand {
	return &RegisterCommand{app: app, password: password}
}

// Execute registers args[0]. It does not log in.
func (c *RegisterCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("username", args, "usage: tb register <username>")
	}
	username := args[0]

	if _, err := c.app.navigate(ctx, router.PathRegister); err != nil {
		return err
	}

	password, err := c.app.readPassword(c.password)
	if err != nil {
		return err
	}

	if err := c.app.session.Register(ctx, username, password); err != nil {
		return err
	}

	fmt.Fprintf(c.app.stdout, "Registered %s. Run 'tb login %s' to sign in.\n", username, username)
	return nil
}

// LoginCommand handles the login command
type LoginCommand struct {
	app      *App
	password string
	redirect string
}

// NewLoginCommand creates a new login command handler. redirect is where
// to go after a successful login; empty means the dashboard.
func NewLoginCommand(app *App, password, redirect string) *LoginCommand {
	return &LoginCommand{app: app, password: password, redirect: redirect}
}

// Execute logs in as args[0] and shows the dashboard summary
func (c *LoginCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("username", args, "usage: tb login <username>")
	}

	target := router.PathLogin
	if c.redirect != "" {
		target = router.LoginRedirect(router.PathLogin, c.redirect)
	}
	loc, err := c.app.navigate(ctx, target)
	if err != nil {
		return err
	}
	// a rejected stored session lands on a bare login route mid-navigation
	if c.redirect != "" && loc.Query.Get("redirect") == "" {
		if loc, err = c.app.navigate(ctx, target); err != nil {
			return err
		}
	}

	password, err := c.app.readPassword(c.password)
	if err != nil {
		return err
	}

	if err := c.app.session.Login(ctx, args[0], password); err != nil {
		// the server answers bad credentials with a 401
		if errors.IsAuthInvalid(err) {
			return errors.WrapError(err, errors.ErrorTypeInvalidInput, "invalid username or password")
		}
		return err
	}

	if _, err := c.app.navigate(ctx, router.RedirectTarget(loc, router.PathMain)); err != nil {
		return err
	}

	snapshot := c.app.session.Snapshot()
	user, _ := c.app.session.User()
	summary := c.app.services.ReportingService.Summarize(snapshot.Tasks, snapshot.Counters, timeNow())
	c.app.display.WriteSummary(c.app.stdout, user, summary)
	if snapshot.LastRefreshErr != nil {
		fmt.Fprintf(c.app.stderr, "Warning: could not load tasks: %s\n", errors.GetUserMessage(snapshot.LastRefreshErr))
	}
	return nil
}

// LogoutCommand handles the logout command
type LogoutCommand struct {
	app *App
}

// NewLogoutCommand creates a new logout command handler
func NewLogoutCommand(app *App) *LogoutCommand {
	return &LogoutCommand{app: app}
}

// Execute drops the session and returns to the login route
func (c *LogoutCommand) Execute(ctx context.Context, args []string) error {
	if err := c.app.session.Logout(ctx); err != nil {
		return err
	}
	if _, err := c.app.navigate(ctx, router.PathLogin); err != nil {
		return err
	}
	fmt.Fprintln(c.app.stdout, "Logged out.")
	return nil
}

// StatusCommand handles the status command
type StatusCommand struct {
	app *App
}

// NewStatusCommand creates a new status command handler
func NewStatusCommand(app *App) *StatusCommand {
	return &StatusCommand{app: app}
}

// Execute prints the persisted session without contacting the server
func (c *StatusCommand) Execute(ctx context.Context, args []string) error {
	out := c.app.stdout

	if !c.app.session.IsAuthenticated() {
		c.app.session.Hydrate(ctx)
	}

	user, ok := c.app.session.User()
	if !ok {
		fmt.Fprintln(out, "Not logged in.")
		return nil
	}

	fmt.Fprintf(out, "User:    %s\n", c.app.display.Clean(user.Username))
	if user.ID != nil {
		fmt.Fprintf(out, "User ID: %d\n", *user.ID)
	}
	fmt.Fprintln(out, "Token:   present")

	token, _ := c.app.session.Token()
	if exp, ok := tokenExpiry(token); ok {
		state := "valid"
		if !exp.After(timeNow()) {
			state = "expired"
		}
		fmt.Fprintf(out, "Expires: %s (%s)\n", exp.Local().Format(c.app.config.Display.TimeFormat), state)
	}

	route := c.app.router.CurrentPath()
	if route == "" {
		route = "-"
	}
	fmt.Fprintf(out, "Route:   %s\n", route)
	return nil
}

// tokenExpiry reads the exp claim of a JWT without verifying it. The
// server is the only authority on validity; this is informational.
func tokenExpiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
