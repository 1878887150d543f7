package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Postboard/internal/api/middleware"
	"Postboard/internal/core/posts"
)

// UpdateHandler handles post content updates
type UpdateHandler struct {
	service posts.Service
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(service posts.Service) *UpdateHandler {
	return &UpdateHandler{
		service: service,
	}
}

// HandleUpdate handles PATCH /post/{id}
//
// Request body: { "content": "..." }
// Response: 204, no body
func (h *UpdateHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req posts.UpdatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.service.UpdatePost(r.Context(), middleware.GetUserID(r), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
