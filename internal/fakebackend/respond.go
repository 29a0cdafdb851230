package fakebackend

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

type obj map[string]any

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("unable to marshal response")
	}
}

// The backend is inconsistent about where it puts error texts; each style below is used by a
// different group of routes.

func message(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, obj{"message": msg})
}

func errorString(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, obj{"error": msg})
}

func errorObject(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, obj{"error": obj{"message": msg}})
}

func failure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, obj{"success": false, "error": msg})
}

func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// patch applies the fields of body over entity. The id can never be patched.
func patch[T any](entity *T, body map[string]json.RawMessage) error {
	delete(body, "id")
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, entity)
}
