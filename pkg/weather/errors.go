package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned when a location search is attempted with a blank query.
	ErrEmptyQuery = errors.New("location name cannot be empty")

	// ErrCircuitOpen is returned while the circuit breaker rejects calls.
	ErrCircuitOpen = errors.New("weather service temporarily unavailable")
)

// APIError describes a non-200 response from the weather API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API request failed with status: %d (%s)", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API request failed with status: %d", e.StatusCode)
}

// retryable reports whether the failure says something about service health
// rather than about the request itself.
func (e *APIError) retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
