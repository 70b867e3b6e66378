package api

import (
	"fmt"
	"strings"
	"time"

	"taskboard/internal/domain"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User *loginUser `json:"user"`
}

type loginUser struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	ID       *int64 `json:"id,omitempty"`
}

type taskPayload struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    int     `json:"priority"`
	DueAt       *string `json:"due_at"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    int     `json:"priority"`
	DueAt       *string `json:"due_at"`
}

// timestampLayouts are tried in order; the server has been seen to send
// SQL-style timestamps as well as RFC 3339.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// toDomain converts a wire task. Empty timestamps become zero values;
// anything unparseable is an error.
func (p taskPayload) toDomain() (*domain.Task, error) {
	status, err := domain.ParseTaskStatus(p.Status)
	if err != nil {
		return nil, fmt.Errorf("task %d: %w", p.ID, err)
	}

	task := &domain.Task{
		ID:          p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		Description: p.Description,
		Status:      status,
		Priority:    p.Priority,
	}

	if p.DueAt != nil && strings.TrimSpace(*p.DueAt) != "" {
		due, err := parseTimestamp(*p.DueAt)
		if err != nil {
			return nil, fmt.Errorf("task %d due_at: %w", p.ID, err)
		}
		task.DueAt = &due
	}
	if p.CreatedAt != "" {
		if task.CreatedAt, err = parseTimestamp(p.CreatedAt); err != nil {
			return nil, fmt.Errorf("task %d created_at: %w", p.ID, err)
		}
	}
	if p.UpdatedAt != "" {
		if task.UpdatedAt, err = parseTimestamp(p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("task %d updated_at: %w", p.ID, err)
		}
	}
	return task, nil
}

func newCreateTaskRequest(t domain.NewTask) createTaskRequest {
	req := createTaskRequest{
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    t.Priority,
	}
	if t.DueAt != nil {
		due := t.DueAt.UTC().Format(time.RFC3339)
		req.DueAt = &due
	}
	return req
}
