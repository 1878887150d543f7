package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Postboard/internal/api/middleware"
	"Postboard/internal/core/posts"
)

// VoteHandler handles upvote and downvote requests
type VoteHandler struct {
	service posts.Service
}

// NewVoteHandler creates a new vote handler
func NewVoteHandler(service posts.Service) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

// HandleUpvote handles PUT /post/upvote/{id}
func (h *VoteHandler) HandleUpvote(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, posts.DirectionUp)
}

// HandleDownvote handles PUT /post/downvote/{id}
func (h *VoteHandler) HandleDownvote(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, posts.DirectionDown)
}

func (h *VoteHandler) vote(w http.ResponseWriter, r *http.Request, dir posts.Direction) {
	post, err := h.service.Vote(r.Context(), middleware.GetUserID(r), chi.URLParam(r, "id"), dir)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, postResponse{Post: post})
}
