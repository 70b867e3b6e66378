// Package api binds the task server's HTTP endpoints to typed calls.
package api

import (
	"context"
	"fmt"
	"strings"

	"taskboard/internal/config"
	"taskboard/internal/domain"
	"taskboard/internal/errors"
	"taskboard/internal/validation"
)

const (
	PathRegister = "/api/users/register"
	PathLogin    = "/api/users/login"
	PathTasks    = "/api/tasks"
)

// API defines the remote operations the client uses.
type API interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	ListTasks(ctx context.Context) ([]*domain.Task, error)
	CreateTask(ctx context.Context, task domain.NewTask) (*domain.Task, error)
}

// LoginResult is a validated login response.
type LoginResult struct {
	Token string
	User  domain.User
}

// Transport sends JSON requests. *httpclient.Client satisfies it.
type Transport interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

type apiImpl struct {
	transport            Transport
	taskValidator        *validation.TaskValidator
	credentialsValidator *validation.CredentialsValidator
}

// New creates an API over transport. cfg supplies the validation rules and may be nil.
func New(transport Transport, cfg *config.Config) API {
	return &apiImpl{
		transport:            transport,
		taskValidator:        validation.NewTaskValidatorWithConfig(cfg),
		credentialsValidator: validation.NewCredentialsValidator(),
	}
}

func (a *apiImpl) Register(ctx context.Context, username, password string) error {
	if err := a.credentialsValidator.ValidateCredentials(username, password); err != nil {
		return err
	}
	req := credentialsRequest{Username: strings.TrimSpace(username), Password: password}
	return a.transport.Post(ctx, PathRegister, req, nil)
}

func (a *apiImpl) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if err := a.credentialsValidator.ValidateCredentials(username, password); err != nil {
		return nil, err
	}

	var resp loginResponse
	req := credentialsRequest{Username: strings.TrimSpace(username), Password: password}
	if err := a.transport.Post(ctx, PathLogin, req, &resp); err != nil {
		return nil, err
	}

	switch {
	case resp.User == nil:
		return nil, errors.NewDecodeError("login response", fmt.Errorf("missing user object"))
	case strings.TrimSpace(resp.User.Token) == "":
		return nil, errors.NewDecodeError("login response", fmt.Errorf("missing user.token"))
	case strings.TrimSpace(resp.User.Username) == "":
		return nil, errors.NewDecodeError("login response", fmt.Errorf("missing user.username"))
	}

	return &LoginResult{
		Token: resp.User.Token,
		User:  domain.User{ID: resp.User.ID, Username: resp.User.Username},
	}, nil
}

func (a *apiImpl) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	var payloads []taskPayload
	if err := a.transport.Get(ctx, PathTasks, &payloads); err != nil {
		return nil, err
	}

	tasks := make([]*domain.Task, 0, len(payloads))
	for _, p := range payloads {
		task, err := p.toDomain()
		if err != nil {
			return nil, errors.NewDecodeError("task list", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (a *apiImpl) CreateTask(ctx context.Context, task domain.NewTask) (*domain.Task, error) {
	task = a.taskValidator.NormalizeNewTask(task)
	if err := a.taskValidator.ValidateNewTask(task); err != nil {
		return nil, err
	}

	var payload taskPayload
	if err := a.transport.Post(ctx, PathTasks, newCreateTaskRequest(task), &payload); err != nil {
		return nil, err
	}

	created, err := payload.toDomain()
	if err != nil {
		return nil, errors.NewDecodeError("created task", err)
	}
	return created, nil
}
