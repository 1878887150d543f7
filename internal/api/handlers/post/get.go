package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Postboard/internal/core/posts"
)

// GetHandler handles single post reads
type GetHandler struct {
	service posts.Service
}

// NewGetHandler creates a new get handler
func NewGetHandler(service posts.Service) *GetHandler {
	return &GetHandler{
		service: service,
	}
}

// HandleGet handles GET /post/{id}
func (h *GetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, postResponse{Post: post})
}
