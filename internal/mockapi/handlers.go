package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/validation"
)

const maxBodyBytes = 1 << 20

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userBody struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type loginUserBody struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	ID       int64  `json:"id"`
}

type loginBody struct {
	User loginUserBody `json:"user"`
}

type errorBody struct {
	Error string `json:"error"`
}

type codedErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type createTaskBody struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    int     `json:"priority"`
	DueAt       *string `json:"due_at"`
}

type taskBody struct {
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

func newTaskBody(t *task) taskBody {
	body := taskBody{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if t.DueAt != nil {
		due := t.DueAt.UTC().Format(time.RFC3339)
		body.DueAt = &due
	}
	return body
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

func validationMessage(err error) string {
	var ve *validation.ValidationError
	if errors.As(err, &ve) {
		return ve.GetUserFriendlyMessage()
	}
	return err.Error()
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := decodeBody(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request payload"})
		return
	}
	body.Username = strings.TrimSpace(body.Username)
	if err := s.creds.ValidateCredentials(body.Username, body.Password); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: validationMessage(err)})
		return
	}

	hash, err := hashPassword(body.Password, s.opts.BcryptCost)
	if err != nil {
		s.logger.Error("hash password", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to register user"})
		return
	}

	u, ok := s.store.addUser(body.Username, hash)
	if !ok {
		writeJSON(w, http.StatusConflict, errorBody{Error: "username already exists"})
		return
	}

	s.logger.Info("user registered", "user_id", u.ID, "username", u.Username)
	writeJSON(w, http.StatusCreated, userBody{ID: u.ID, Username: u.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := decodeBody(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request payload"})
		return
	}

	u, ok := s.store.findUser(strings.TrimSpace(body.Username))
	if !ok || !verifyPassword(u.PasswordHash, body.Password) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
		return
	}

	token, err := s.issueToken(u)
	if err != nil {
		s.logger.Error("sign token", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to generate token"})
		return
	}

	writeJSON(w, http.StatusOK, loginBody{User: loginUserBody{Token: token, Username: u.Username, ID: u.ID}})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	tasks := s.store.tasksFor(userID)
	bodies := make([]taskBody, 0, len(tasks))
	for _, t := range tasks {
		bodies = append(bodies, newTaskBody(t))
	}
	writeJSON(w, http.StatusOK, bodies)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var body createTaskBody
	if err := decodeBody(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request payload"})
		return
	}

	input := domain.NewTask{
		Title:       body.Title,
		Description: body.Description,
		Status:      domain.TaskStatus(body.Status),
		Priority:    body.Priority,
	}
	if body.DueAt != nil && strings.TrimSpace(*body.DueAt) != "" {
		due, err := time.Parse(time.RFC3339, strings.TrimSpace(*body.DueAt))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "due_at must be an RFC 3339 timestamp"})
			return
		}
		input.DueAt = &due
	}

	input = s.tasks.NormalizeNewTask(input)
	if err := s.tasks.ValidateNewTask(input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: validationMessage(err)})
		return
	}

	now := s.now()
	created := s.store.addTask(&task{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Status:      string(input.Status),
		Priority:    input.Priority,
		DueAt:       input.DueAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	writeJSON(w, http.StatusCreated, newTaskBody(created))
}
