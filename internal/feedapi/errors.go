package feedapi

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned before any I/O when a request cannot be sent
var ErrInvalidRequest = errors.New("invalid feed request")

// APIError is returned when the feed endpoint answers with a non-2xx status
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("error code: %d", e.StatusCode)
}

// IsAPIError checks if an error is an APIError
func IsAPIError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}
