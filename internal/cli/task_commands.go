package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/errors"
	"taskboard/internal/router"
	"taskboard/internal/services"
	"taskboard/internal/validation"
)

// TasksOptions holds the flags of the tasks command
type TasksOptions struct {
	Format  string
	Status  string
	Search  string
	Sort    string
	Overdue bool
}

// TasksCommand handles the tasks command
type TasksCommand struct {
	app  *App
	opts TasksOptions
}

// NewTasksCommand creates a new tasks command handler
func NewTasksCommand(app *App, opts TasksOptions) *TasksCommand {
	if opts.Format == "" {
		opts.Format = app.config.Commands.ListDefaultFormat
	}
	if opts.Format == "" {
		opts.Format = FormatTable
	}
	return &TasksCommand{app: app, opts: opts}
}

// criteria converts the flags into search criteria
func (c *TasksCommand) criteria() (services.SearchCriteria, services.SortOrder, error) {
	criteria := services.SearchCriteria{TextFilter: strings.TrimSpace(c.opts.Search)}

	switch c.opts.Format {
	case FormatTable, FormatJSON, FormatCSV:
	default:
		return criteria, "", errors.NewInvalidInputError("format", c.opts.Format, "must be one of table, json, csv")
	}

	if c.opts.Status != "" {
		status, err := domain.ParseTaskStatus(c.opts.Status)
		if err != nil {
			return criteria, "", errors.NewInvalidInputError("status", c.opts.Status, "must be one of todo, in_progress, done")
		}
		criteria.Status = &status
	}

	if c.opts.Overdue {
		now := timeNow()
		criteria.OverdueAt = &now
	}

	order, ok := services.ParseSortOrder(c.opts.Sort)
	if !ok {
		return criteria, "", errors.NewInvalidInputError("sort", c.opts.Sort, "must be one of server, priority, due, created, title")
	}
	return criteria, order, nil
}

// Execute opens the dashboard and prints the task list
func (c *TasksCommand) Execute(ctx context.Context, args []string) error {
	criteria, order, err := c.criteria()
	if err != nil {
		return err
	}

	if err := c.app.requireRoute(ctx, router.PathMain, "list tasks"); err != nil {
		return err
	}

	snapshot := c.app.session.Snapshot()
	search := c.app.services.SearchService
	tasks := search.SortTasks(search.SearchTasks(snapshot.Tasks, criteria), order)

	if snapshot.LastRefreshErr != nil {
		fmt.Fprintf(c.app.stderr, "Warning: task list may be stale: %s\n", errors.GetUserMessage(snapshot.LastRefreshErr))
	}

	if c.opts.Format == FormatTable {
		user, _ := c.app.session.User()
		summary := c.app.services.ReportingService.Summarize(snapshot.Tasks, snapshot.Counters, timeNow())
		c.app.display.WriteSummary(c.app.stdout, user, summary)
		fmt.Fprintln(c.app.stdout)
	}

	return c.app.display.WriteTasks(c.app.stdout, tasks, c.opts.Format)
}

// AddTaskOptions holds the flags of the tasks add command
type AddTaskOptions struct {
	Description string
	Status      string
	Priority    int
	Due         string
}

// AddTaskCommand handles the tasks add command
type AddTaskCommand struct {
	app  *App
	opts AddTaskOptions
}

// NewAddTaskCommand creates a new tasks add command handler
func NewAddTaskCommand(app *App, opts AddTaskOptions) *AddTaskCommand {
	return &AddTaskCommand{app: app, opts: opts}
}

// dueLayouts are the accepted --due formats. Date-only values mean the
// end of that day in local time.
var dueLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

func parseDue(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			t = t.AddDate(0, 0, 1).Add(-time.Second)
		}
		return &t, nil
	}

	ve := validation.NewValidationError()
	ve.AddInvalidFormatError("due", s, "YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC 3339")
	return nil, ve
}

// newTask builds creation input from the title and flags
func (c *AddTaskCommand) newTask(title string) (domain.NewTask, error) {
	task := domain.NewTaskWithTitle(title)
	task.Priority = c.opts.Priority

	if c.opts.Description != "" {
		desc := c.opts.Description
		task.Description = &desc
	}

	if c.opts.Status != "" {
		task.Status = domain.TaskStatus(c.opts.Status)
	}

	due, err := parseDue(c.opts.Due)
	if err != nil {
		return task, err
	}
	task.DueAt = due
	return task, nil
}

// Execute creates a task titled with the joined args
func (c *AddTaskCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("title", "", "usage: tb tasks add <title>")
	}

	task, err := c.newTask(strings.Join(args, " "))
	if err != nil {
		return err
	}

	if err := c.app.requireRoute(ctx, router.PathNewTask, "create task"); err != nil {
		return err
	}

	created, err := c.app.session.CreateTask(ctx, task)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.app.stdout, "Created task:")
	c.app.display.WriteTask(c.app.stdout, created)
	return nil
}
