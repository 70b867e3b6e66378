package cli

import "context"

// Command represents a CLI command handler
type Command interface {
	Execute(ctx context.Context, args []string) error
}

var (
	_ Command = (*RegisterCommand)(nil)
	_ Command = (*LoginCommand)(nil)
	_ Command = (*LogoutCommand)(nil)
	_ Command = (*StatusCommand)(nil)
	_ Command = (*TasksCommand)(nil)
	_ Command = (*AddTaskCommand)(nil)
)
