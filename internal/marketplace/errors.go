package marketplace

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrNotFound = errors.New("record not found")

// APIError is a non-2xx or success:false answer from the marketplace.
type APIError struct {
	Status  int
	Message string
	Method  string
	Path    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("marketplace %s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// ErrorMessage returns the marketplace's own message when err carries one,
// the fallback otherwise.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusCode maps an error to the status the console should answer with.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status < 300 {
			return http.StatusBadRequest // success:false on a 2xx
		}
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
	}
	return http.StatusBadGateway
}
