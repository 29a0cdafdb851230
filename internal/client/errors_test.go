package client

import (
	"errors"
	"testing"
)

func TestMessage(t *testing.T) {
	const fallback = "Failed to create event"
	cases := []struct {
		name     string
		err      error
		expected string
	}{
		{"server message", &Error{Kind: ErrRemote, Status: 400, Message: "venue busy"}, "venue busy"},
		{"no message", &Error{Kind: ErrRemote, Status: 500}, fallback},
		{"network", networkError(errors.New("connection refused")), fallback},
		{"validation", Validation(errors.New("empty email")), "empty email"},
		{"foreign error", errors.New("boom"), fallback},
		{"nil", nil, fallback},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Message(c.err, fallback); got != c.expected {
				t.Errorf("expected %q, got %q", c.expected, got)
			}
		})
	}
}

func TestExtractMessage(t *testing.T) {
	cases := map[string]string{
		`{"message":"a"}`:             "a",
		`{"error":"b"}`:               "b",
		`{"message":"","error":"c"}`:  "c",
		`{"error":{"message":"d"}}`:   "d",
		`{"message":"   "}`:           "",
		`{}`:                          "",
		`[]`:                          "",
		``:                            "",
		`{"success":false,"data":{}}`: "",
	}
	for body, expected := range cases {
		if got := extractMessage([]byte(body)); got != expected {
			t.Errorf("%s: expected %q, got %q", body, expected, got)
		}
	}
}
