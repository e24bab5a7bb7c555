package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"embedctl/internal/validation"
	"embedctl/pkg/logging"
)

const (
	defaultTestFailure = "Connection test failed"
	defaultTestSuccess = "Connection test successful"
)

// TestTarget selects what TestConnection exercises: a saved connection or
// an unsaved draft.
type TestTarget interface {
	endpoint() string
	body() any
}

type savedTarget string

func (s savedTarget) endpoint() string { return connectionPath(string(s)) + "/test" }
func (s savedTarget) body() any        { return nil }

type draftTarget struct {
	in validation.ConnectionConfigInput
}

func (d draftTarget) endpoint() string { return "/connections/test" }
func (d draftTarget) body() any        { return newConnectionPayload(d.in) }

// Saved targets the stored connection with the given name or id.
func Saved(identifier string) TestTarget { return savedTarget(identifier) }

// Draft targets a connection definition that has not been created yet.
func Draft(in validation.ConnectionConfigInput) TestTarget { return draftTarget{in: in} }

// TestConnection asks the API to reach the database behind target. It never
// returns an error: transport failures and non-2xx responses come back as a
// failed TestResult.
func (c *Client) TestConnection(ctx context.Context, target TestTarget) TestResult {
	status, data, err := c.send(ctx, http.MethodPost, target.endpoint(), target.body())
	if err != nil {
		logging.Debug("api", "Connection test failed with error: %v", err)
		cause := transportCause(err)
		return TestResult{Success: false, Message: cause, Error: cause}
	}

	if !successful(status) {
		logging.Debug("api", "API Error Response (%d): %s", status, string(data))
		msg := firstMessage(data, "underlyingErrorMessage", "errorMessage", "message", "error")
		if msg == "" {
			msg = defaultTestFailure
		}
		return TestResult{Success: false, Message: msg, Error: msg}
	}

	logging.Debug("api", "API Response: %s", redact(data))
	msg := firstMessage(data, "message")
	if msg == "" {
		msg = defaultTestSuccess
	}
	return TestResult{Success: true, Message: msg}
}

// transportCause strips the method and URL from a transport error. The URL
// of a saved test carries the connection name, which must not leak into
// failure classification.
func transportCause(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err.Error()
	}
	return err.Error()
}
