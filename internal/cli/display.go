package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"taskboard/internal/config"
	"taskboard/internal/domain"
	"taskboard/internal/errors"
	"taskboard/internal/services"
)

// Output formats for task lists
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// Display renders server data for the terminal. Text from the server is
// stripped of markup before it is printed.
type Display struct {
	policy     *bluemonday.Policy
	stripHTML  bool
	timeFormat string
}

// NewDisplay creates a Display from the display settings
func NewDisplay(cfg config.DisplayConfig) *Display {
	return &Display{
		policy:     bluemonday.StrictPolicy(),
		stripHTML:  cfg.StripHTML,
		timeFormat: cfg.TimeFormat,
	}
}

// Clean strips tags from s and decodes the entities the sanitizer leaves behind
func (d *Display) Clean(s string) string {
	if !d.stripHTML {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(d.policy.Sanitize(s)))
}

func (d *Display) formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format(d.timeFormat)
}

// taskView is the JSON and CSV shape of a task
type taskView struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    int     `json:"priority"`
	DueAt       *string `json:"due_at"`
	CreatedAt   string  `json:"created_at"`
}

func (d *Display) view(task *domain.Task) taskView {
	v := taskView{
		ID:        task.ID,
		Title:     d.Clean(task.Title),
		Status:    string(task.Status),
		Priority:  task.Priority,
		CreatedAt: task.CreatedAt.UTC().Format(time.RFC3339),
	}
	if task.Description != nil {
		desc := d.Clean(*task.Description)
		v.Description = &desc
	}
	if task.DueAt != nil {
		due := task.DueAt.UTC().Format(time.RFC3339)
		v.DueAt = &due
	}
	return v
}

// WriteTasks writes tasks in the given format
func (d *Display) WriteTasks(w io.Writer, tasks []*domain.Task, format string) error {
	switch format {
	case "", FormatTable:
		return d.writeTable(w, tasks)
	case FormatJSON:
		return d.writeJSON(w, tasks)
	case FormatCSV:
		return d.writeCSV(w, tasks)
	default:
		return errors.NewInvalidInputError("format", format, "must be one of table, json, csv")
	}
}

func (d *Display) writeTable(w io.Writer, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE")
	for _, task := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
			task.ID, task.Status, task.Priority, d.formatTime(task.DueAt), d.Clean(task.Title))
	}
	return tw.Flush()
}

func (d *Display) writeJSON(w io.Writer, tasks []*domain.Task) error {
	views := make([]taskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, d.view(task))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}

func (d *Display) writeCSV(w io.Writer, tasks []*domain.Task) error {
	writer := csv.NewWriter(w)

	header := []string{"ID", "Title", "Status", "Priority", "Due At", "Created At", "Description"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, task := range tasks {
		v := d.view(task)
		row := []string{
			strconv.FormatInt(v.ID, 10),
			v.Title,
			v.Status,
			strconv.Itoa(v.Priority),
			derefOr(v.DueAt, ""),
			v.CreatedAt,
			derefOr(v.Description, ""),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteTask prints one task in detail
func (d *Display) WriteTask(w io.Writer, task *domain.Task) {
	fmt.Fprintf(w, "Task #%d: %s\n", task.ID, d.Clean(task.Title))
	fmt.Fprintf(w, "  Status:   %s\n", task.Status)
	fmt.Fprintf(w, "  Priority: %d\n", task.Priority)
	fmt.Fprintf(w, "  Due:      %s\n", d.formatTime(task.DueAt))
	if task.Description != nil {
		fmt.Fprintf(w, "  Notes:    %s\n", d.Clean(*task.Description))
	}
}

// WriteSummary prints the dashboard header
func (d *Display) WriteSummary(w io.Writer, user domain.User, summary *services.DashboardSummary) {
	c := summary.Counters
	fmt.Fprintf(w, "Signed in as %s\n", d.Clean(user.Username))
	fmt.Fprintf(w, "Tasks: %d todo, %d in progress, %d done (%d total)\n",
		c.Todo, c.InProgress, c.Done, c.Total())
	if summary.Overdue > 0 {
		fmt.Fprintf(w, "Overdue: %d\n", summary.Overdue)
	}
	if summary.HighPriorityOpen > 0 {
		fmt.Fprintf(w, "High priority open: %d\n", summary.HighPriorityOpen)
	}
	if summary.NextDue != nil {
		fmt.Fprintf(w, "Next due: %s (%s)\n", d.Clean(summary.NextDue.Title), d.formatTime(summary.NextDue.DueAt))
	}
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
