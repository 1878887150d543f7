package memory

import (
	"context"
	"fmt"
	"sync"

	"Postboard/internal/core/posts"
)

// PostRepository is an in-process posts.Repository.
// Each entry is a private snapshot guarded by its version; callers only ever
// receive copies, so the arena is the single owner of mutable state.
type PostRepository struct {
	posts map[string]*posts.Post
	mu    sync.RWMutex
}

// NewPostRepository creates an empty in-memory post repository
func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[string]*posts.Post)}
}

// Create stores a new post with version 1
func (r *PostRepository) Create(ctx context.Context, post *posts.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if post == nil || post.ID == "" {
		return fmt.Errorf("post id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[post.ID]; exists {
		return fmt.Errorf("post already exists: %s", post.ID)
	}
	post.Version = 1
	r.posts[post.ID] = post.Clone()
	return nil
}

// GetByID returns a copy of the stored post
func (r *PostRepository) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.posts[id]
	if !ok {
		return nil, posts.ErrNotFound
	}
	return stored.Clone(), nil
}

// CompareAndSet replaces the stored post if its version matches expectedVersion.
// ID, AuthorID and CreatedAt are kept from the stored copy.
func (r *PostRepository) CompareAndSet(ctx context.Context, expectedVersion int64, post *posts.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[post.ID]
	if !ok {
		return posts.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return posts.ErrVersionConflict
	}

	next := post.Clone()
	next.AuthorID = stored.AuthorID
	next.CreatedAt = stored.CreatedAt
	next.Version = stored.Version + 1
	r.posts[post.ID] = next

	post.Version = next.Version
	return nil
}

// Delete removes the post if its version matches expectedVersion
func (r *PostRepository) Delete(ctx context.Context, id string, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[id]
	if !ok {
		return posts.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return posts.ErrVersionConflict
	}
	delete(r.posts, id)
	return nil
}

// Len returns the number of stored posts
func (r *PostRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.posts)
}
