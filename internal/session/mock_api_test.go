package session

import (
	"context"
	"sync"

	"taskboard/internal/api"
	"taskboard/internal/domain"
)

// mockAPI implements api.API for testing. Hooks, when set, replace the
// canned behaviour.
type mockAPI struct {
	mu sync.Mutex

	loginResult *api.LoginResult
	loginErr    error
	registerErr error

	tasks     []*domain.Task
	listErr   error
	listHook  func(ctx context.Context) ([]*domain.Task, error)
	listCalls int

	createErr   error
	createCalls int
	nextID      int64
}

func (m *mockAPI) Register(context.Context, string, string) error {
	return m.registerErr
}

func (m *mockAPI) Login(context.Context, string, string) (*api.LoginResult, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.loginResult, nil
}

func (m *mockAPI) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	m.mu.Lock()
	m.listCalls++
	hook := m.listHook
	tasks, err := m.tasks, m.listErr
	m.mu.Unlock()

	if hook != nil {
		return hook(ctx)
	}
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Task, len(tasks))
	copy(out, tasks)
	return out, nil
}

func (m *mockAPI) CreateTask(_ context.Context, nt domain.NewTask) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	return &domain.Task{ID: 100 + m.nextID, Title: nt.Title, Status: nt.Status, Priority: nt.Priority}, nil
}

func (m *mockAPI) setList(tasks []*domain.Task, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks, m.listErr = tasks, err
}
