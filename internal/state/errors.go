package state

import (
	"errors"
	"strings"

	"github.com/easyloft/easyloft-client/internal/api"
)

// ActionError is returned by a store action whose failure was recorded.
// Message is the text the store exposed for it at that moment.
type ActionError struct {
	Action  string
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *ActionError) Unwrap() error { return e.Err }

// Message returns the user-facing text for an error returned by a store
// action. Errors that never reached a store are flattened the same way.
func Message(err error) string {
	var actErr *ActionError
	if errors.As(err, &actErr) {
		return actErr.Message
	}
	return messageFor(err, "")
}

// messageFor flattens err into the single string stores expose. The server's
// own message wins; an unparseable error body reads "server error"; a status
// error with an empty payload falls back to the action's fallback; anything
// else uses the normalized transport message.
func messageFor(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.ServerMessage != "" {
			return reqErr.ServerMessage
		}
		if reqErr.Malformed {
			return reqErr.Message
		}
		if reqErr.Kind == api.KindStatus {
			return fallback
		}
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}
