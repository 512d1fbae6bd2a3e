package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/metrics"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/repository"
)

// RegisterInput is a sign-up request.
type RegisterInput struct {
	Username string
	Name     string
	Password string
}

type UserService struct {
	users     repository.UserRepository
	blogs     repository.BlogRepository
	passwords *auth.PasswordService
	metrics   *metrics.Manager
	logger    *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	blogs repository.BlogRepository,
	passwords *auth.PasswordService,
	m *metrics.Manager,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		blogs:     blogs,
		passwords: passwords,
		metrics:   m,
		logger:    logger,
	}
}

// Register creates an account.
//
// DUPLICATES:
// A taken username is reported as a validation error on the "username"
// field. Two concurrent sign-ups can both pass that check; the loser hits
// the unique index and gets the repository's ErrConflict instead.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := ValidateRegistration(in); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(in.Username)

	_, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, apperror.ValidationFailed("username", "username must be unique")
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("service/user: checking username %q: %w", username, err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/user: %w", err)
	}

	user := &model.User{
		Username:     username,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Blogs:        []model.BlogSummary{},
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/user: creating user %q: %w", username, err)
	}
	s.metrics.UserRegistered()

	s.logger.Info("user registered", slog.String("userID", user.ID), slog.String("username", username))
	return user, nil
}

// List returns every user with the blogs they created. Blogs whose creator
// is gone are not attributed to anyone.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/user: listing users: %w", err)
	}

	blogs, err := s.blogs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/user: listing blogs: %w", err)
	}

	byCreator := make(map[string][]model.BlogSummary)
	for i := range blogs {
		if id := blogs[i].CreatorID(); id != "" {
			byCreator[id] = append(byCreator[id], blogs[i].Summary())
		}
	}

	for i := range users {
		users[i].Blogs = byCreator[users[i].ID]
		if users[i].Blogs == nil {
			users[i].Blogs = []model.BlogSummary{}
		}
	}
	return users, nil
}
