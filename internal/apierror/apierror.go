// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}

// Challenge is the body written when an unauthenticated (or anonymously
// rejected) request hits a protected route. Shape is part of the public
// contract: status, error, message, path.
type Challenge struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

func NewChallenge(status int, reason, path string) *Challenge {
	return &Challenge{
		Status:  status,
		Error:   "Unauthorized",
		Message: "Access denied. Authentication required: " + reason,
		Path:    path,
	}
}
