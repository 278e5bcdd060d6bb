package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError maps a classified error onto an HTTP response. Internal
// errors are logged with their cause and surfaced with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = Wrap(KindInternal, "internal server error", err)
	}
	msg := e.Msg
	if e.Kind == KindInternal {
		slog.Error("request failed", "error", err)
		msg = "internal server error"
	}
	WriteJSON(w, status(e.Kind), map[string]string{"message": msg})
}
