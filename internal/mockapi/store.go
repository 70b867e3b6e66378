package mockapi

import (
	"sort"
	"strings"
	"sync"
	"time"
)

type user struct {
	ID           int64
	Username     string
	PasswordHash string
}

type task struct {
	ID          int64
	UserID      int64
	Title       string
	Description *string
	Status      string
	Priority    int
	DueAt       *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// memoryStore holds users and tasks for the lifetime of the server
type memoryStore struct {
	mu         sync.RWMutex
	users      map[string]*user // keyed by lower-cased username
	tasks      []*task
	nextUserID int64
	nextTaskID int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:      make(map[string]*user),
		nextUserID: 1,
		nextTaskID: 1,
	}
}

// addUser returns false when the username is taken
func (s *memoryStore) addUser(username, passwordHash string) (*user, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(username)
	if _, exists := s.users[key]; exists {
		return nil, false
	}
	u := &user{ID: s.nextUserID, Username: username, PasswordHash: passwordHash}
	s.users[key] = u
	s.nextUserID++
	return u, true
}

func (s *memoryStore) findUser(username string) (*user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[strings.ToLower(username)]
	return u, ok
}

func (s *memoryStore) addTask(t *task) *task {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextTaskID
	s.nextTaskID++
	s.tasks = append(s.tasks, t)
	cp := *t
	return &cp
}

// tasksFor returns copies of the user's tasks, newest first
func (s *memoryStore) tasksFor(userID int64) []*task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*task, 0)
	for _, t := range s.tasks {
		if t.UserID == userID {
			cp := *t
			result = append(result, &cp)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ID > result[j].ID
	})
	return result
}
