// Package service contains the business logic of the bloglist.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → decodes requests, writes responses
//	Service (business layer) → validates, enforces ownership, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services accept plain Go values and return domain errors from apperror.
// They never see an *http.Request and never pick a status code.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/metrics"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/repository"
)

// BlogListCache holds the full list between writes. cache.BlogCache
// implements it; nil disables caching.
type BlogListCache interface {
	Blogs() ([]model.Blog, bool)
	SetBlogs(blogs []model.Blog) error
	Invalidate()
}

// CreateBlogInput is a new blog as submitted. A nil Likes means "not sent"
// and is stored as 0.
type CreateBlogInput struct {
	Title  string
	Author string
	URL    string
	Likes  *int
}

// UpdateBlogInput is a partial update: nil fields are left unchanged.
type UpdateBlogInput struct {
	Title  *string
	Author *string
	URL    *string
	Likes  *int
}

type BlogService struct {
	blogs   repository.BlogRepository
	users   repository.UserRepository
	cache   BlogListCache
	metrics *metrics.Manager
	logger  *slog.Logger

	// cacheMu guards generation, which every invalidation bumps. A list read
	// is only cached if no write invalidated the cache while it ran.
	cacheMu    sync.Mutex
	generation uint64
}

func NewBlogService(
	blogs repository.BlogRepository,
	users repository.UserRepository,
	cache BlogListCache,
	m *metrics.Manager,
	logger *slog.Logger,
) *BlogService {
	return &BlogService{
		blogs:   blogs,
		users:   users,
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
}

// List returns every blog in insertion order, from the cache when it is warm.
func (s *BlogService) List(ctx context.Context) ([]model.Blog, error) {
	if s.cache != nil {
		if blogs, ok := s.cache.Blogs(); ok {
			return blogs, nil
		}
	}

	gen := s.currentGeneration()
	blogs, err := s.blogs.List(ctx)
	if err != nil {
		s.logger.Error("failed to list blogs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/blog: listing blogs: %w", err)
	}

	s.storeList(gen, blogs)
	return blogs, nil
}

func (s *BlogService) currentGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.generation
}

// storeList caches blogs unless the cache was invalidated after gen was read.
func (s *BlogService) storeList(gen uint64, blogs []model.Blog) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.generation != gen {
		s.logger.Debug("blog list changed during read, not caching")
		return
	}
	if err := s.cache.SetBlogs(blogs); err != nil {
		s.logger.Warn("blog list not cached", slog.String("error", err.Error()))
	}
}

// Get returns one blog or an apperror.ErrNotFound.
func (s *BlogService) Get(ctx context.Context, id string) (*model.Blog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "blog id is required")
	}
	return s.blogs.GetByID(ctx, id)
}

// Create stores a blog owned by the caller.
//
// The caller's token is already verified, but the account behind it may have
// been removed since it was issued; that case is an authentication failure,
// not a missing resource.
func (s *BlogService) Create(ctx context.Context, caller auth.Identity, in CreateBlogInput) (*model.Blog, error) {
	if err := ValidateNewBlog(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("token user no longer exists")
		}
		return nil, fmt.Errorf("service/blog: loading creator %s: %w", caller.UserID, err)
	}

	blog := &model.Blog{
		Title:   strings.TrimSpace(in.Title),
		Author:  strings.TrimSpace(in.Author),
		URL:     strings.TrimSpace(in.URL),
		Creator: user.AsCreator(),
	}
	if in.Likes != nil {
		blog.Likes = *in.Likes
	}

	if err := s.blogs.Create(ctx, blog); err != nil {
		s.logger.Error("failed to create blog",
			slog.String("title", blog.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/blog: creating blog: %w", err)
	}
	s.invalidate()
	s.metrics.BlogCreated()

	s.logger.Info("blog created",
		slog.String("id", blog.ID),
		slog.String("user", user.Username),
	)
	return blog, nil
}

// Update applies the fields present in in. There is no ownership check:
// any client may like a blog.
func (s *BlogService) Update(ctx context.Context, id string, in UpdateBlogInput) (*model.Blog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "blog id is required")
	}
	if err := ValidateBlogPatch(in); err != nil {
		return nil, err
	}

	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		blog.Title = strings.TrimSpace(*in.Title)
	}
	if in.Author != nil {
		blog.Author = strings.TrimSpace(*in.Author)
	}
	if in.URL != nil {
		blog.URL = strings.TrimSpace(*in.URL)
	}
	if in.Likes != nil {
		blog.Likes = *in.Likes
	}

	if err := s.blogs.Update(ctx, blog); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update blog",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/blog: updating blog %s: %w", id, err)
	}
	s.invalidate()

	s.logger.Debug("blog updated", slog.String("id", id), slog.Int("likes", blog.Likes))
	return blog, nil
}

// Delete removes a blog. Only its creator may do so.
func (s *BlogService) Delete(ctx context.Context, caller auth.Identity, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "blog id is required")
	}

	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if blog.CreatorID() != caller.UserID {
		s.logger.Warn("blog delete refused",
			slog.String("id", id),
			slog.String("caller", caller.Username),
		)
		return apperror.Forbidden("only the creator can delete a blog")
	}

	if err := s.blogs.Delete(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service/blog: deleting blog %s: %w", id, err)
	}
	s.invalidate()
	s.metrics.BlogDeleted()

	s.logger.Info("blog deleted", slog.String("id", id), slog.String("user", caller.Username))
	return nil
}

func (s *BlogService) Count(ctx context.Context) (int, error) {
	n, err := s.blogs.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("service/blog: counting blogs: %w", err)
	}
	return n, nil
}

// Invalidate drops the cached list. The testing API calls it after a reset.
func (s *BlogService) Invalidate() { s.invalidate() }

func (s *BlogService) invalidate() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.generation++
	if s.cache != nil {
		s.cache.Invalidate()
	}
}
