package client

import (
	"errors"
	"fmt"

	"github.com/penguingram/messenger/internal/api"
)

// ValidationError reports missing or invalid local input. No request is
// issued when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// RemoteError reports a response whose payload signals failure: an
// {"error": ...} body or a missing expected field.
type RemoteError struct {
	Op      string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func remote(op, msg, fallback string) error {
	if msg == "" {
		msg = fallback
	}
	return &RemoteError{Op: op, Message: msg}
}

// describe builds the notification text for a failed action.
func describe(action string, err error) string {
	var (
		verr *ValidationError
		rerr *RemoteError
		nerr *api.NetworkError
	)
	switch {
	case errors.As(err, &verr):
		return fmt.Sprintf("%s: %s", action, verr.Reason)
	case errors.As(err, &rerr):
		return fmt.Sprintf("%s: %s", action, rerr.Message)
	case errors.As(err, &nerr):
		return action + ": the server is unreachable"
	default:
		return action
	}
}
