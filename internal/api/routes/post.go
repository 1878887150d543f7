package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Postboard/internal/api/handlers/post"
	"Postboard/internal/api/middleware"
	"Postboard/internal/core/posts"
)

// RegisterPostRoutes registers the post CRUD and voting endpoints on the router.
// Every route requires authentication.
func RegisterPostRoutes(r chi.Router, service posts.Service, authMiddleware *middleware.AuthMiddleware) {
	createHandler := post.NewCreateHandler(service)
	getHandler := post.NewGetHandler(service)
	updateHandler := post.NewUpdateHandler(service)
	deleteHandler := post.NewDeleteHandler(service)
	voteHandler := post.NewVoteHandler(service)

	r.Route("/post", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Post("/", createHandler.HandleCreate)
		r.Get("/{id}", getHandler.HandleGet)
		r.Patch("/{id}", updateHandler.HandleUpdate)
		r.Delete("/{id}", deleteHandler.HandleDelete)

		// Any authenticated user, the author included, may vote
		r.Put("/upvote/{id}", voteHandler.HandleUpvote)
		r.Put("/downvote/{id}", voteHandler.HandleDownvote)
	})
}

// RegisterHealthRoutes registers the liveness endpoint
func RegisterHealthRoutes(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
