package provider

import (
	"fmt"
	"net/http"
)

// maxErrorBodyBytes caps how much of an error response is kept for the
// message.
const maxErrorBodyBytes = 512

// StatusError is a non-success HTTP response from the backend. It exposes
// the status code so error classification can use it directly instead of
// inspecting the message.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("provider returned status %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("provider returned status %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// StatusCode returns the HTTP status of the failed response.
func (e *StatusError) StatusCode() int {
	return e.Code
}
