package validation

import (
	"time"

	"taskboard/internal/config"
	"taskboard/internal/domain"
)

// TaskValidator provides validation for task creation input
type TaskValidator struct {
	validator *Validator
	now       func() time.Time
}

// NewTaskValidator creates a task validator with the default rules
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{validator: NewValidator(), now: time.Now}
}

// NewTaskValidatorWithConfig creates a task validator with the rules in cfg
func NewTaskValidatorWithConfig(cfg *config.Config) *TaskValidator {
	return &TaskValidator{validator: NewValidatorWithConfig(cfg), now: time.Now}
}

// ValidateTitle validates a task title
func (tv *TaskValidator) ValidateTitle(title string) error {
	validationError := NewValidationError()
	tv.validateTitle(validationError, title)
	return validationError.OrNil()
}

func (tv *TaskValidator) validateTitle(ve *ValidationError, title string) {
	trimmed := tv.validator.TrimAndValidateString(title)
	if !tv.validator.IsNonEmptyString(trimmed) {
		ve.AddRequiredError("title")
		return
	}
	if !tv.validator.IsValidTitleLength(trimmed) {
		ve.AddInvalidLengthError("title", trimmed, tv.validator.TitleMinLength(), tv.validator.TitleMaxLength())
	}
	if tv.validator.HasControlCharacters(trimmed) {
		ve.AddInvalidCharacterError("title", trimmed)
	}
}

// ValidateNewTask validates every field of task creation input
func (tv *TaskValidator) ValidateNewTask(task domain.NewTask) error {
	validationError := NewValidationError()

	tv.validateTitle(validationError, task.Title)

	if task.Description != nil && !tv.validator.IsValidDescriptionLength(*task.Description) {
		validationError.AddInvalidLengthError("description", *task.Description, 0, tv.validator.DescriptionMaxLength())
	}

	if !task.Status.IsValid() {
		validationError.AddInvalidValueError("status", task.Status, "must be one of todo, in_progress, done")
	}

	if !tv.validator.IsValidPriority(task.Priority, domain.MinPriority, domain.MaxPriority) {
		validationError.AddInvalidRangeError("priority", task.Priority, "must be between 0 and 3")
	}

	if task.DueAt != nil && !tv.validator.IsReasonableDate(*task.DueAt, tv.now()) {
		validationError.AddInvalidRangeError("due_at", *task.DueAt, "must be within ten years of today")
	}

	return validationError.OrNil()
}

// NormalizeNewTask returns task with a trimmed title and an empty
// description dropped. It does not validate.
func (tv *TaskValidator) NormalizeNewTask(task domain.NewTask) domain.NewTask {
	task.Title = tv.validator.TrimAndValidateString(task.Title)
	if task.Description != nil && !tv.validator.IsNonEmptyString(*task.Description) {
		task.Description = nil
	}
	if task.Status == "" {
		task.Status = domain.StatusTodo
	}
	return task
}
