package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/MagicGod/shly/internal/review"
)

// ConsumerHeader carries the identity of the caller.
const ConsumerHeader = "X-Consumer-ID"

// Helper functions for common HTTP responses

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// writeJSONStatus writes a JSON response with an explicit status code.
func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeReviewError maps engine errors to responses. Stale actions are not
// errors for the caller and answer 200 with status "ignored".
func writeReviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, review.ErrIdentityMismatch):
		writeError(w, http.StatusForbidden, "not your session")
	case errors.Is(err, review.ErrStaleAction):
		writeJSON(w, map[string]string{"status": "ignored"})
	case errors.Is(err, review.ErrUnknownAction):
		writeError(w, http.StatusBadRequest, "unknown action")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// consumerID returns the caller identity from the header, falling back to
// the "consumer" query parameter for clients that cannot set headers
// (EventSource).
func consumerID(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(ConsumerHeader)); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get("consumer"))
}

// requireMethod writes 405 and returns false unless r uses method.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// parseLimit parses a limit string and returns a valid limit value.
//
// Returns 0 for empty strings or invalid values.
func parseLimit(limitStr string) int {
	if limitStr == "" {
		return 0
	}
	if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
		return limit
	}
	return 0
}
