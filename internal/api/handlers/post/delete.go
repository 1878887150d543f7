package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Postboard/internal/api/middleware"
	"Postboard/internal/core/posts"
)

// DeleteHandler handles post deletion requests
type DeleteHandler struct {
	service posts.Service
}

// NewDeleteHandler creates a new handler for deleting posts
func NewDeleteHandler(service posts.Service) *DeleteHandler {
	return &DeleteHandler{
		service: service,
	}
}

// DeletePostOutput is intentionally empty
type DeletePostOutput struct{}

// HandleDelete handles DELETE /post/{id}
// Response: 200 {}
func (h *DeleteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeletePost(r.Context(), middleware.GetUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, DeletePostOutput{})
}
