package client

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2/utils"
)

// APIError is a transport or server failure. Status is zero when the
// request never produced an HTTP response.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the failure is worth retrying: transport errors
// and 5xx responses are, client errors are not.
func (e *APIError) Temporary() bool {
	return e.Status == 0 || e.Status >= 500
}

type errorBody struct {
	Error string `json:"error"`
}

// serverError builds an APIError for a non-2xx response, preferring the
// server's own error field over the status text.
func serverError(endpoint string, status int, body []byte) *APIError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && strings.TrimSpace(eb.Error) != "" {
		return &APIError{Endpoint: endpoint, Status: status, Message: eb.Error}
	}

	msg := utils.StatusMessage(status)
	if msg == "" {
		msg = "request failed"
	}
	return &APIError{Endpoint: endpoint, Status: status, Message: msg}
}

// transportError builds an APIError for a request that never got a response.
func transportError(endpoint string, errs []error) *APIError {
	err := errors.Join(errs...)
	return &APIError{Endpoint: endpoint, Message: err.Error(), Err: err}
}

func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return false
}
