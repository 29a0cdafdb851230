package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// The error kinds every call is classified into. Match them with errors.Is.
var (
	ErrNetwork        = errors.New("network error")
	ErrRemote         = errors.New("remote error")
	ErrSessionExpired = errors.New("session expired")
	ErrValidation     = errors.New("invalid input")
)

// Error is the canonical failure of a backend call. Status is zero for errors that never got a
// response.
type Error struct {
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Validation wraps a client-side form error so it is classified like any other call failure.
func Validation(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrValidation, Message: err.Error(), Err: err}
}

// Message returns the human-readable text of err, or fallback when the failure carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" && !errors.Is(e.Kind, ErrNetwork) {
		return e.Message
	}
	return fallback
}

func networkError(err error) error {
	return &Error{Kind: ErrNetwork, Err: err}
}

func remoteError(status int, body []byte) error {
	return &Error{Kind: ErrRemote, Status: status, Message: extractMessage(body)}
}

// extractMessage reads the failure text of an error body. Depending on the endpoint it is found
// under "message" or "error", the latter sometimes being an object with its own message.
func extractMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	for _, key := range []string{"message", "error"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return ""
}
