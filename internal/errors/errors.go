package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when a request carries no valid session.
	ErrUnauthenticated = errors.New("Unauthorized")
	// ErrForbidden is returned when the caller's role does not allow the operation.
	ErrForbidden = errors.New("Forbidden")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("Invalid email or password")
	// ErrEmailExists is returned when a user with the same email exists.
	ErrEmailExists = errors.New("Email already exists")
	// ErrIncorrectPassword is returned when the current password does not verify.
	ErrIncorrectPassword = errors.New("Incorrect current password")
	// ErrWeakPassword is returned when a new password fails the complexity rule.
	ErrWeakPassword = errors.New("Password does not meet complexity requirements")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("User not found")
	// ErrStoreNotFound is returned when a store is not found.
	ErrStoreNotFound = errors.New("Store not found")
	// ErrRatingNotFound is returned when a rating is not found.
	ErrRatingNotFound = errors.New("Rating not found")
	// ErrAlreadyRated is returned when the user already rated the store.
	ErrAlreadyRated = errors.New("You have already rated this store")
	// ErrNotRatingAuthor is returned when someone other than the author edits a rating.
	ErrNotRatingAuthor = errors.New("Forbidden")
)

// ValidationError carries the message of the first failing input rule.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

var errorMappings = []struct {
	err    error
	status int
	code   string
}{
	{ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrNotRatingAuthor, http.StatusForbidden, "FORBIDDEN"},
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrStoreNotFound, http.StatusNotFound, "STORE_NOT_FOUND"},
	{ErrRatingNotFound, http.StatusNotFound, "RATING_NOT_FOUND"},
	{ErrEmailExists, http.StatusBadRequest, "EMAIL_EXISTS"},
	{ErrAlreadyRated, http.StatusBadRequest, "ALREADY_RATED"},
	{ErrIncorrectPassword, http.StatusBadRequest, "INCORRECT_PASSWORD"},
	{ErrWeakPassword, http.StatusBadRequest, "WEAK_PASSWORD"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Conflicts are reported
// as 400 to keep the client contract.
func MapErrorToHTTP(err error) *HTTPError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return NewHTTPError(http.StatusBadRequest, validationErr.Message, "VALIDATION_ERROR")
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
