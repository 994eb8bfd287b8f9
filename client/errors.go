package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound marks a 404 from the backend, e.g. operating on a workflow
// that was deleted out from under the editor.
var ErrNotFound = errors.New("resource not found")

// ErrInvalidTarget marks a target value rejected by local validation before
// any request was issued.
var ErrInvalidTarget = errors.New("invalid target format")

// APIError is a non-2xx backend response. Message carries the backend's own
// error text when the response body provided one, or a generic fallback.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// newAPIError builds an APIError from a response body. The backend reports
// errors as {"detail": ...} (and some proxies as {"message": ...} or
// {"error": ...}); anything unparseable falls back to a generic message.
func newAPIError(statusCode int, body []byte) *APIError {
	msg := "request failed"
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Detail != "":
			msg = payload.Detail
		case payload.Message != "":
			msg = payload.Message
		case payload.Error != "":
			msg = payload.Error
		}
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}
