package middleware

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError answers htmx and JSON callers with the envelope and everyone else
// with plain text.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	if IsHTMX(r.Context()) || WantsJSON(r) {
		WriteJSON(w, status, ErrorResponse{Error: code, Message: msg})
		return
	}
	http.Error(w, msg, status)
}

// WriteJSON encodes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WantsJSON reports a JSON body or a JSON Accept header.
func WantsJSON(r *http.Request) bool {
	if mediaType(r.Header.Get("Content-Type")) == "application/json" {
		return true
	}
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		if mediaType(part) == "application/json" {
			return true
		}
	}
	return false
}

func mediaType(v string) string {
	mt, _, err := mime.ParseMediaType(strings.TrimSpace(v))
	if err != nil {
		return ""
	}
	return mt
}
