package exchange

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAPI is wrapped by every error the exchange itself reported.
var ErrAPI = errors.New("exchange api error")

// APIError is a failed exchange call: a non-2xx status or success=false in the envelope.
type APIError struct {
	Status  int
	Message string
	Path    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Path, e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return ErrAPI }

// Retryable reports whether the same request may succeed later.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}
