// Package api maps the backend's REST endpoints onto typed calls made through the remote resource
// client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/sidereusnuntius/campus/internal/client"
)

var ErrUnsupported = errors.New("operation not supported")

// Doer is the subset of the remote resource client the endpoints need.
type Doer interface {
	Do(ctx context.Context, r client.Request) ([]byte, error)
}

type API struct {
	c Doer
}

func New(c Doer) *API {
	return &API{c: c}
}

func (a *API) call(ctx context.Context, r client.Request, key string, out any) error {
	body, err := a.c.Do(ctx, r)
	if err != nil || out == nil {
		return err
	}
	return decode(body, key, out)
}

// decode reads a response that may be the bare value, an object wrapping it under key, or an
// envelope wrapping either of those under "data".
func decode(body []byte, key string, out any) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return &client.Error{Kind: client.ErrRemote, Message: "empty response"}
	}

	if body[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err == nil {
			if raw, ok := envelope[key]; ok && key != "" {
				return decode(raw, "", out)
			}
			if raw, ok := envelope["data"]; ok {
				return decode(raw, key, out)
			}
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &client.Error{Kind: client.ErrRemote, Message: "malformed response", Err: err}
	}
	return nil
}
