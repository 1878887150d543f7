package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"Postboard/internal/core/posts"
)

type postgresPostRepo struct {
	db *sql.DB
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *sql.DB) posts.Repository {
	return &postgresPostRepo{db: db}
}

// Create inserts a new post with version 1
func (r *postgresPostRepo) Create(ctx context.Context, post *posts.Post) error {
	query := `
		INSERT INTO posts (
			id, author_id, content,
			upvoters, downvoters,
			version, created_at, updated_at
		) VALUES (
			$1, $2, $3,
			$4, $5,
			1, $6, $7
		)
		RETURNING version, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx, query,
		post.ID, post.AuthorID, post.Content,
		pq.Array(votersOf(post.Votes.UpVotes)), pq.Array(votersOf(post.Votes.DownVotes)),
		post.CreatedAt, post.UpdatedAt,
	).Scan(&post.Version, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "chk_content_not_empty") {
			return posts.NewValidationError("content", "content is required")
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

// GetByID retrieves a post by id
func (r *postgresPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	query := `
		SELECT
			id, author_id, content,
			upvoters, downvoters,
			version, created_at, updated_at
		FROM posts
		WHERE id = $1
	`

	var (
		post       posts.Post
		upvoters   []string
		downvoters []string
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.AuthorID, &post.Content,
		pq.Array(&upvoters), pq.Array(&downvoters),
		&post.Version, &post.CreatedAt, &post.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}

	post.Votes = posts.Votes{
		UpVotes:   posts.NewLedger(upvoters...),
		DownVotes: posts.NewLedger(downvoters...),
	}

	return &post, nil
}

// CompareAndSet writes content and voter sets if the stored version is still expectedVersion.
// author_id and created_at are never written after insert.
func (r *postgresPostRepo) CompareAndSet(ctx context.Context, expectedVersion int64, post *posts.Post) error {
	query := `
		UPDATE posts
		SET content = $3,
			upvoters = $4,
			downvoters = $5,
			updated_at = $6,
			version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version
	`

	var newVersion int64
	err := r.db.QueryRowContext(
		ctx, query,
		post.ID, expectedVersion, post.Content,
		pq.Array(votersOf(post.Votes.UpVotes)), pq.Array(votersOf(post.Votes.DownVotes)),
		post.UpdatedAt,
	).Scan(&newVersion)

	if errors.Is(err, sql.ErrNoRows) {
		return r.missOrConflict(ctx, post.ID)
	}
	if err != nil {
		if strings.Contains(err.Error(), "chk_voters_exclusive") {
			return fmt.Errorf("refusing to store overlapping voter sets for post %s: %w", post.ID, err)
		}
		return fmt.Errorf("failed to update post: %w", err)
	}

	post.Version = newVersion
	return nil
}

// Delete removes a post if the stored version is still expectedVersion
func (r *postgresPostRepo) Delete(ctx context.Context, id string, expectedVersion int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1 AND version = $2`, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return r.missOrConflict(ctx, id)
	}

	return nil
}

// missOrConflict tells apart a vanished post from a stale version after a
// conditional statement matched no rows
func (r *postgresPostRepo) missOrConflict(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check post existence: %w", err)
	}
	if !exists {
		return posts.ErrNotFound
	}
	return posts.ErrVersionConflict
}

// votersOf never returns nil so pq encodes an empty array instead of NULL
func votersOf(l posts.Ledger) []string {
	if l.Users == nil {
		return []string{}
	}
	return l.Users
}
