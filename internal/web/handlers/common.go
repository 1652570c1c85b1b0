package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/kozaktomas/photo-labeler/internal/constants"
	"github.com/kozaktomas/photo-labeler/internal/labelstore"
	"github.com/kozaktomas/photo-labeler/internal/session"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// errUnsupportedMediaType rejects bodies that are not declared as JSON. Browsers
// only send cross-origin application/json after a CORS preflight.
var errUnsupportedMediaType = errors.New("content type must be application/json")

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusForError maps session and label store errors to an HTTP status.
func statusForError(err error) int {
	switch {
	case errors.Is(err, labelstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, labelstore.ErrIndex):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoFile),
		errors.Is(err, session.ErrEmptyList),
		errors.Is(err, session.ErrAllLabeled),
		errors.Is(err, session.ErrNoPhotos):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a size-limited JSON request body into target. The request
// must carry Content-Type application/json.
func decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errUnsupportedMediaType
	}
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxRequestBody)
	return json.NewDecoder(r.Body).Decode(target)
}

// respondDecodeError reports a decodeBody failure.
func respondDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errUnsupportedMediaType) {
		respondError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}
	respondError(w, http.StatusBadRequest, errInvalidRequestBody)
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
