package validation

// CredentialsValidator checks username and password input before it is
// sent to the server. The server owns the real rules; this only rejects
// input that can never succeed.
type CredentialsValidator struct {
	validator *Validator
}

const maxCredentialLength = 256

// NewCredentialsValidator creates a credentials validator
func NewCredentialsValidator() *CredentialsValidator {
	return &CredentialsValidator{validator: NewValidator()}
}

// ValidateCredentials validates a username and password pair
func (cv *CredentialsValidator) ValidateCredentials(username, password string) error {
	validationError := NewValidationError()

	if !cv.validator.IsNonEmptyString(username) {
		validationError.AddRequiredError("username")
	} else {
		if !cv.validator.IsValidStringLength(username, 1, maxCredentialLength) {
			validationError.AddInvalidLengthError("username", username, 1, maxCredentialLength)
		}
		if cv.validator.HasControlCharacters(username) {
			validationError.AddInvalidCharacterError("username", username)
		}
	}

	// passwords are not trimmed; whitespace may be significant
	if password == "" {
		validationError.AddRequiredError("password")
	} else if len(password) > maxCredentialLength {
		validationError.AddInvalidLengthError("password", nil, 1, maxCredentialLength)
	}

	return validationError.OrNil()
}
