package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorKind classifies a RequestError.
type ErrorKind int

const (
	// KindNetwork covers failures before a response arrived (dial, timeout, cancel).
	KindNetwork ErrorKind = iota
	// KindStatus covers non-2xx responses.
	KindStatus
	// KindDecode covers 2xx responses whose body could not be decoded.
	KindDecode
	// KindEncode covers request bodies that could not be encoded.
	KindEncode
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindEncode:
		return "encode"
	default:
		return "unknown"
	}
}

const genericServerError = "server error"

// RequestError is the single error type returned by Client. Error returns the
// normalized Message; the other fields keep the structure for callers that
// want it.
type RequestError struct {
	Kind   ErrorKind
	Method string
	Path   string
	Status int
	// ServerMessage is the message field of the error payload, empty when the
	// server sent none.
	ServerMessage string
	// Malformed is set when a non-2xx body could not be parsed as an error
	// payload; Message is then the generic server error text.
	Malformed bool
	Message   string
	Err       error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// statusError builds a KindStatus error from a non-2xx response body.
func statusError(method, path string, status int, body []byte) *RequestError {
	reqErr := &RequestError{Kind: KindStatus, Method: method, Path: path, Status: status}

	var payload struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		reqErr.Malformed = true
		reqErr.Message = genericServerError
		reqErr.Err = fmt.Errorf("api %s %s returned status %d", method, path, status)
		return reqErr
	}

	reqErr.ServerMessage = parseMessage(payload.Message)
	reqErr.Message = reqErr.ServerMessage
	if reqErr.Message == "" {
		reqErr.Message = fmt.Sprintf("request failed with status %d", status)
	}
	reqErr.Err = fmt.Errorf("api %s %s returned status %d", method, path, status)
	return reqErr
}

// parseMessage accepts either a string or a list of strings, the latter being
// what validation failures return.
func parseMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single)
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		parts := make([]string, 0, len(many))
		for _, m := range many {
			if m = strings.TrimSpace(m); m != "" {
				parts = append(parts, m)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}
