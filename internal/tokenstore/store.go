// Package tokenstore persists the session token and user record in the
// local key-value store.
package tokenstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"taskboard/internal/domain"
	"taskboard/internal/errors"
	"taskboard/internal/logging"
)

const (
	TokenKey = "token"
	UserKey  = "user"
)

// KV is the subset of the local repository the store needs
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store reads and writes the persisted session
type Store struct {
	kv     KV
	logger *slog.Logger
}

// New creates a Store backed by kv
func New(kv KV, logger *slog.Logger) *Store {
	return &Store{kv: kv, logger: logging.OrDiscard(logger).With("component", "tokenstore")}
}

// isAbsent reports values that must never be treated as a stored token
func isAbsent(v string) bool {
	return strings.TrimSpace(v) == "" || v == "null" || v == "undefined"
}

// GetToken returns the stored token. Missing, blank and sentinel values
// all read back as absent.
func (s *Store) GetToken(ctx context.Context) (string, bool, error) {
	v, found, err := s.kv.Get(ctx, TokenKey)
	if err != nil {
		return "", false, err
	}
	if !found || isAbsent(v) {
		return "", false, nil
	}
	return v, true, nil
}

// SetToken stores token as given. Anything that would read back as absent
// deletes the key instead.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if isAbsent(token) {
		return s.kv.Delete(ctx, TokenKey)
	}
	return s.kv.Set(ctx, TokenKey, token)
}

// ClearToken removes the stored token
func (s *Store) ClearToken(ctx context.Context) error {
	return s.kv.Delete(ctx, TokenKey)
}

// GetUser returns the stored user. A record that cannot be decoded is
// logged and reported as absent.
func (s *Store) GetUser(ctx context.Context) (*domain.User, bool, error) {
	v, found, err := s.kv.Get(ctx, UserKey)
	if err != nil {
		return nil, false, err
	}
	if !found || isAbsent(v) {
		return nil, false, nil
	}

	var user domain.User
	if err := json.Unmarshal([]byte(v), &user); err != nil {
		s.logger.Warn("ignoring unreadable user record", "error", errors.NewDecodeError("stored user", err))
		return nil, false, nil
	}
	if strings.TrimSpace(user.Username) == "" {
		s.logger.Warn("ignoring user record without username")
		return nil, false, nil
	}
	return &user, true, nil
}

// SetUser stores user as JSON. A nil user deletes the record; a user
// without a username is refused and leaves the stored record untouched.
func (s *Store) SetUser(ctx context.Context, user *domain.User) error {
	if user == nil {
		return s.kv.Delete(ctx, UserKey)
	}
	if strings.TrimSpace(user.Username) == "" {
		return errors.NewInvalidInputError("username", user.Username, "stored user must have a username")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return errors.NewStorageError("encode user", err)
	}
	return s.kv.Set(ctx, UserKey, string(data))
}

// ClearUser removes the stored user
func (s *Store) ClearUser(ctx context.Context) error {
	return s.kv.Delete(ctx, UserKey)
}

// Clear removes both the token and the user. Both deletes are attempted;
// the first failure is returned.
func (s *Store) Clear(ctx context.Context) error {
	tokenErr := s.ClearToken(ctx)
	userErr := s.ClearUser(ctx)
	if tokenErr != nil {
		return tokenErr
	}
	return userErr
}
