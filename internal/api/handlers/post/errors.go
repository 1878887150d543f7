package post

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"Postboard/internal/core/posts"
)

// maxBodyBytes bounds request bodies; post content is at most 10000 characters
const maxBodyBytes = 100 * 1024

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// postResponse is the envelope for endpoints that return a post
type postResponse struct {
	Post *posts.Post `json:"post"`
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(errorResponse{
		Error:   errorType,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// writeJSON writes v as a JSON response body
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// decodeBody decodes a size-limited JSON body into v, writing the error response on failure
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge",
				"Request body too large (max 100KB)")
			return false
		}
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return false
	}
	return true
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, posts.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "AuthenticationRequired", "Authentication required")

	case errors.Is(err, posts.ErrForbidden):
		writeError(w, http.StatusForbidden, "NotAuthorized",
			"You are not authorized to modify this post")

	case posts.IsNotFound(err):
		writeError(w, http.StatusNotFound, "PostNotFound", "Post not found")

	case posts.IsValidationError(err):
		var valErr *posts.ValidationError
		errors.As(err, &valErr)
		writeError(w, http.StatusBadRequest, "InvalidContent", valErr.Message)

	case errors.Is(err, posts.ErrInvalidContent):
		writeError(w, http.StatusBadRequest, "InvalidContent", err.Error())

	case errors.Is(err, posts.ErrInvalidDirection):
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())

	case posts.IsConflict(err):
		writeError(w, http.StatusConflict, "Conflict",
			"The post was modified concurrently, please retry")

	default:
		// Don't leak internal error details to clients
		slog.Error("unexpected error in post handler",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "InternalServerError",
			"An internal error occurred")
	}
}
