package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx response from the API.
type Error struct {
	StatusCode int
	Message    string
	Method     string
	Endpoint   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("API Error (%d): %s", e.StatusCode, e.Message)
}

// StatusOf returns the HTTP status of err if it wraps an *Error, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool { return StatusOf(err) == http.StatusNotFound }

// IsUnauthorized reports whether err is a 401 or 403 from the API.
func IsUnauthorized(err error) bool {
	s := StatusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

// IsConflict reports whether err means the resource already exists, either
// as a 409 or as an "already exists" message.
func IsConflict(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusConflict ||
		strings.Contains(strings.ToLower(apiErr.Message), "already exists")
}

// messageKeys are tried in order when pulling a message out of an error body.
var messageKeys = []string{"message", "errorMessage", "underlyingErrorMessage", "error"}

// errorMessage extracts a human message from an error response body, falling
// back to a generic one when the body is absent or not JSON.
func errorMessage(body []byte, status int) string {
	if msg := firstMessage(body, messageKeys...); msg != "" {
		return msg
	}
	return fmt.Sprintf("HTTP %d error", status)
}

// firstMessage returns the first non-empty string found under keys in a JSON
// object body, or the body itself when it is a JSON string.
func firstMessage(body []byte, keys ...string) string {
	if len(body) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(body, &asString); err == nil {
		return asString
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
