package posts

import "context"

// Service defines the authorized CRUD and voting surface for posts.
// Every mutation runs as a conditional read-modify-write against the Repository.
type Service interface {
	// CreatePost creates a post owned by actorID with empty vote ledgers
	CreatePost(ctx context.Context, actorID string, req CreatePostRequest) (*Post, error)

	// GetPost returns a post by id. Any authenticated caller may read any post.
	GetPost(ctx context.Context, postID string) (*Post, error)

	// UpdatePost replaces the content of a post. Only the author may update.
	// Success is signaled by a nil error alone.
	UpdatePost(ctx context.Context, actorID, postID string, req UpdatePostRequest) error

	// DeletePost removes a post. Only the author may delete.
	DeletePost(ctx context.Context, actorID, postID string) error

	// Vote applies actorID's vote in direction dir and returns the updated post.
	// Any authenticated user, the author included, may vote. Version conflicts
	// are retried; ErrConflict is returned once retries are exhausted.
	Vote(ctx context.Context, actorID, postID string, dir Direction) (*Post, error)

	// Upvote is Vote with DirectionUp
	Upvote(ctx context.Context, actorID, postID string) (*Post, error)

	// Downvote is Vote with DirectionDown
	Downvote(ctx context.Context, actorID, postID string) (*Post, error)
}

// Repository is the durable keyed store for posts.
// Writes are conditional on the version the caller last read.
type Repository interface {
	// Create inserts a new post. The repository assigns Version 1.
	Create(ctx context.Context, post *Post) error

	// GetByID returns the stored post or ErrNotFound
	GetByID(ctx context.Context, id string) (*Post, error)

	// CompareAndSet replaces the stored post only if its version still equals
	// expectedVersion. Returns ErrVersionConflict for a stale snapshot and
	// ErrNotFound if the post no longer exists. On success post.Version holds
	// the new stored version.
	CompareAndSet(ctx context.Context, expectedVersion int64, post *Post) error

	// Delete removes the post only if its version still equals expectedVersion.
	// Returns ErrVersionConflict or ErrNotFound.
	Delete(ctx context.Context, id string, expectedVersion int64) error
}

// Cache is an optional read-through cache in front of the Repository.
// Implementations must treat every error as non-fatal for the caller.
//
// A read may load a post, lose the race to a write, and only then fill the
// cache. Fills are therefore conditional: Set must not replace a newer version
// recorded by Invalidate, and must not fill at all after Tombstone.
type Cache interface {
	// Get returns the cached post, or nil on a miss
	Get(ctx context.Context, id string) (*Post, error)

	// Set caches post unless the cache already holds a newer version of it or
	// the post was tombstoned
	Set(ctx context.Context, post *Post) error

	// Invalidate drops the cached copy and refuses later fills older than version
	Invalidate(ctx context.Context, id string, version int64) error

	// Tombstone drops the cached copy of a deleted post and refuses every fill
	// until the marker expires
	Tombstone(ctx context.Context, id string) error
}
