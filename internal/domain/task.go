package domain

import (
	"fmt"
	"time"
)

// TaskStatus is the workflow state of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// AllStatuses lists every valid status in display order
var AllStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

// ParseTaskStatus converts s into a TaskStatus
func ParseTaskStatus(s string) (TaskStatus, error) {
	for _, status := range AllStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// IsValid reports whether the status is one of the known values.
func (s TaskStatus) IsValid() bool {
	_, err := ParseTaskStatus(string(s))
	return err == nil
}

const (
	MinPriority = 0
	MaxPriority = 3
)

// Task is a task as returned by the server.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description *string
	Status      TaskStatus
	Priority    int
	DueAt       *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// String returns the task title for display purposes.
func (t Task) String() string {
	return t.Title
}

// NewTask is the input for creating a task.
type NewTask struct {
	Title       string
	Description *string
	Status      TaskStatus
	Priority    int
	DueAt       *time.Time
}

// NewTaskWithTitle returns creation input with the default status and priority.
func NewTaskWithTitle(title string) NewTask {
	return NewTask{
		Title:  title,
		Status: StatusTodo,
	}
}
