package http

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// APIResponse is the wire shape shared by every endpoint:
// {message, data} on success, {error, retryAfter?} on failure.
type APIResponse struct {
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	Data       any    `json:"data,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// WriteJSON writes an arbitrary JSON response with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Log-free best effort; encoding errors are not surfaced to clients
	_ = json.NewEncoder(w).Encode(body)
}

// WriteSuccess writes a {message, data} response
func WriteSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	WriteJSON(w, statusCode, APIResponse{Message: message, Data: data})
}

// WriteError writes an {error} response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, APIResponse{Error: message})
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message)
}

func WriteServiceUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusServiceUnavailable, message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}

// WriteRateLimited writes a 429 response carrying the retry hint both as
// a Retry-After header and a retryAfter body field.
func WriteRateLimited(w http.ResponseWriter, retryAfter int) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	WriteJSON(w, http.StatusTooManyRequests, APIResponse{
		Error:      "Too many requests. Please try again later.",
		RetryAfter: retryAfter,
	})
}
