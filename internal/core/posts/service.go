package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"Postboard/internal/metrics"
)

type postService struct {
	repo     Repository
	cache    Cache
	metrics  *metrics.Metrics
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	retry    RetryPolicy
}

// Option configures the post service
type Option func(*postService)

// WithLogger sets the service logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *postService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCache puts a read-through cache in front of the repository
func WithCache(cache Cache) Option {
	return func(s *postService) { s.cache = cache }
}

// WithMetrics records operation counters
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *postService) { s.metrics = m }
}

// WithRetryPolicy overrides DefaultRetryPolicy
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *postService) { s.retry = p }
}

// WithValidator overrides the request validator
func WithValidator(v *validator.Validate) Option {
	return func(s *postService) {
		if v != nil {
			s.validate = v
		}
	}
}

// WithClock overrides time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *postService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the post id generator, for tests
func WithIDGenerator(newID func() string) Option {
	return func(s *postService) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService creates a new post service
func NewService(repo Repository, opts ...Option) Service {
	s := &postService{
		repo:     repo,
		validate: NewValidator(),
		logger:   slog.Default(),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		retry:    DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePost creates a new post owned by actorID
func (s *postService) CreatePost(ctx context.Context, actorID string, req CreatePostRequest) (*Post, error) {
	if err := validateActor(actorID); err != nil {
		return nil, err
	}
	if err := normalizeContent(s.validate, &req, &req.Content); err != nil {
		s.metrics.ObserveMutation("create", "invalid")
		return nil, err
	}

	now := s.now().UTC()
	post := &Post{
		ID:        s.newID(),
		Content:   req.Content,
		AuthorID:  actorID,
		Votes:     EmptyVotes(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			"error", err,
			"actor", actorID)
		s.metrics.ObserveMutation("create", "error")
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.logger.Info("post created",
		"post", post.ID,
		"actor", actorID)
	s.metrics.ObserveMutation("create", "ok")

	return post, nil
}

// GetPost returns a post, consulting the cache first when one is configured
func (s *postService) GetPost(ctx context.Context, postID string) (*Post, error) {
	if postID == "" {
		return nil, ErrNotFound
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, postID)
		if err != nil {
			s.logger.Warn("post cache read failed",
				"error", err,
				"post", postID)
		} else if cached != nil {
			s.metrics.ObserveCacheLookup(true)
			return cached, nil
		}
		s.metrics.ObserveCacheLookup(false)
	}

	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, post); err != nil {
			s.logger.Warn("post cache write failed",
				"error", err,
				"post", postID)
		}
	}

	return post, nil
}

// UpdatePost replaces the content of a post owned by actorID
func (s *postService) UpdatePost(ctx context.Context, actorID, postID string, req UpdatePostRequest) error {
	if err := validateActor(actorID); err != nil {
		return err
	}
	if err := normalizeContent(s.validate, &req, &req.Content); err != nil {
		s.metrics.ObserveMutation("update", "invalid")
		return err
	}

	_, err := s.mutate(ctx, "update", postID, func(current *Post) (*Post, error) {
		if !current.IsOwnedBy(actorID) {
			return nil, ErrForbidden
		}
		if current.Content == req.Content {
			return nil, nil
		}
		next := current.Clone()
		next.Content = req.Content
		return next, nil
	})
	if err != nil {
		s.logMutationError("update", actorID, postID, err)
		return err
	}

	s.logger.Info("post updated",
		"post", postID,
		"actor", actorID)
	return nil
}

// DeletePost removes a post owned by actorID
func (s *postService) DeletePost(ctx context.Context, actorID, postID string) error {
	if err := validateActor(actorID); err != nil {
		return err
	}

	err := withConflictRetry(ctx, s.retry, s.conflictHook("delete", postID), func(ctx context.Context) error {
		current, err := s.load(ctx, postID)
		if err != nil {
			return err
		}
		if !current.IsOwnedBy(actorID) {
			return ErrForbidden
		}
		if err := s.repo.Delete(ctx, postID, current.Version); err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrVersionConflict) {
				return err
			}
			return fmt.Errorf("failed to delete post: %w", err)
		}
		return nil
	})
	if err != nil {
		s.metrics.ObserveMutation("delete", outcomeOf(err))
		s.logMutationError("delete", actorID, postID, err)
		return err
	}

	s.tombstone(ctx, postID)
	s.metrics.ObserveMutation("delete", "ok")
	s.logger.Info("post deleted",
		"post", postID,
		"actor", actorID)
	return nil
}

// Vote applies actorID's vote through ApplyVote and persists the new ledgers
func (s *postService) Vote(ctx context.Context, actorID, postID string, dir Direction) (*Post, error) {
	if err := validateActor(actorID); err != nil {
		return nil, err
	}
	if !dir.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}

	changed := false
	post, err := s.mutate(ctx, "vote", postID, func(current *Post) (*Post, error) {
		votes := ApplyVote(current.Votes, actorID, dir)
		if VoteStateOf(current.Votes, actorID) == VoteStateOf(votes, actorID) {
			changed = false
			return nil, nil
		}
		changed = true
		next := current.Clone()
		next.Votes = votes
		return next, nil
	})
	if err != nil {
		s.logMutationError("vote", actorID, postID, err)
		return nil, err
	}

	s.metrics.ObserveVote(string(dir), changed)
	s.logger.Info("vote applied",
		"post", postID,
		"voter", actorID,
		"direction", dir,
		"changed", changed,
		"upvotes", post.Votes.UpVotes.Count,
		"downvotes", post.Votes.DownVotes.Count)

	return post, nil
}

// Upvote is Vote with DirectionUp
func (s *postService) Upvote(ctx context.Context, actorID, postID string) (*Post, error) {
	return s.Vote(ctx, actorID, postID, DirectionUp)
}

// Downvote is Vote with DirectionDown
func (s *postService) Downvote(ctx context.Context, actorID, postID string) (*Post, error) {
	return s.Vote(ctx, actorID, postID, DirectionDown)
}

// mutate loads the post, lets modify derive the next state and writes it back
// conditionally on the loaded version, retrying on version conflicts. modify
// returning (nil, nil) means there is nothing to write; the loaded post is returned.
func (s *postService) mutate(ctx context.Context, operation, postID string, modify func(current *Post) (*Post, error)) (*Post, error) {
	var (
		result  *Post
		written bool
	)
	err := withConflictRetry(ctx, s.retry, s.conflictHook(operation, postID), func(ctx context.Context) error {
		current, err := s.load(ctx, postID)
		if err != nil {
			return err
		}

		next, err := modify(current)
		if err != nil {
			return err
		}
		if next == nil {
			result = current
			return nil
		}

		next.UpdatedAt = s.now().UTC()
		if err := s.repo.CompareAndSet(ctx, current.Version, next); err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrVersionConflict) {
				return err
			}
			return fmt.Errorf("failed to store post: %w", err)
		}
		result = next
		written = true
		return nil
	})
	if err != nil {
		s.metrics.ObserveMutation(operation, outcomeOf(err))
		return nil, err
	}

	if written {
		s.invalidate(ctx, postID, result.Version)
	}
	s.metrics.ObserveMutation(operation, "ok")
	return result, nil
}

// load reads the authoritative copy from the repository, bypassing the cache
func (s *postService) load(ctx context.Context, postID string) (*Post, error) {
	if postID == "" {
		return nil, ErrNotFound
	}
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	return post, nil
}

// invalidate evicts the cached copy after a write that produced version
func (s *postService) invalidate(ctx context.Context, postID string, version int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, postID, version); err != nil {
		s.logger.Warn("post cache invalidation failed",
			"error", err,
			"post", postID,
			"version", version)
	}
}

// tombstone keeps a post that no longer exists out of the cache
func (s *postService) tombstone(ctx context.Context, postID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Tombstone(ctx, postID); err != nil {
		s.logger.Warn("post cache tombstone failed",
			"error", err,
			"post", postID)
	}
}

func (s *postService) conflictHook(operation, postID string) func(int) {
	return func(attempt int) {
		s.metrics.ObserveConflict(operation)
		s.logger.Warn("version conflict, retrying",
			"operation", operation,
			"post", postID,
			"attempt", attempt)
	}
}

func (s *postService) logMutationError(operation, actorID, postID string, err error) {
	switch {
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNotFound), IsValidationError(err):
		s.logger.Debug("post mutation rejected",
			"operation", operation,
			"post", postID,
			"actor", actorID,
			"error", err)
	case errors.Is(err, ErrConflict):
		s.logger.Warn("post mutation gave up after conflicts",
			"operation", operation,
			"post", postID,
			"actor", actorID)
	default:
		s.logger.Error("post mutation failed",
			"operation", operation,
			"post", postID,
			"actor", actorID,
			"error", err)
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
