package validation

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"taskboard/internal/config"
)

// Validator provides common validation utilities
type Validator struct {
	rules config.ValidationConfig
}

// NewValidator creates a validator using the default rules
func NewValidator() *Validator {
	return &Validator{rules: config.NewConfig().Validation}
}

// NewValidatorWithConfig creates a validator using the rules in cfg
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	if cfg == nil {
		return NewValidator()
	}
	return &Validator{rules: cfg.Validation}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if the trimmed rune count is within [min, max]
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	return length >= min && length <= max
}

// IsValidTitleLength checks a task title against the configured limits
func (v *Validator) IsValidTitleLength(title string) bool {
	return v.IsValidStringLength(title, v.rules.TitleMinLength, v.rules.TitleMaxLength)
}

// IsValidDescriptionLength checks a task description against the configured limit
func (v *Validator) IsValidDescriptionLength(description string) bool {
	return utf8.RuneCountInString(description) <= v.rules.DescriptionMaxLength
}

// HasControlCharacters reports whether s contains any control character
func (v *Validator) HasControlCharacters(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

// IsValidPriority checks that p lies in the task priority range
func (v *Validator) IsValidPriority(p, min, max int) bool {
	return p >= min && p <= max
}

// IsReasonableDate checks if a date is within ten years either side of now
func (v *Validator) IsReasonableDate(t time.Time, now time.Time) bool {
	return t.After(now.AddDate(-10, 0, 0)) && t.Before(now.AddDate(10, 0, 0))
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}

// TitleMinLength returns the configured minimum title length
func (v *Validator) TitleMinLength() int { return v.rules.TitleMinLength }

// TitleMaxLength returns the configured maximum title length
func (v *Validator) TitleMaxLength() int { return v.rules.TitleMaxLength }

// DescriptionMaxLength returns the configured maximum description length
func (v *Validator) DescriptionMaxLength() int { return v.rules.DescriptionMaxLength }
