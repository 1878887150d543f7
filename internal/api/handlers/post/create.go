package post

import (
	"net/http"

	"Postboard/internal/api/middleware"
	"Postboard/internal/core/posts"
)

// CreateHandler handles post creation requests
type CreateHandler struct {
	service posts.Service
}

// NewCreateHandler creates a new create handler
func NewCreateHandler(service posts.Service) *CreateHandler {
	return &CreateHandler{
		service: service,
	}
}

// HandleCreate handles POST /post
//
// Request body: { "content": "..." }
// Response: 201 { "post": {...} }
func (h *CreateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req posts.CreatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	post, err := h.service.CreatePost(r.Context(), middleware.GetUserID(r), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, postResponse{Post: post})
}
