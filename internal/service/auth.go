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
	"github.com/sakif/bloglist/internal/repository"
)

// TokenIssuer signs session tokens. *auth.TokenService implements it.
type TokenIssuer interface {
	Generate(userID, username string) (string, error)
}

// errBadCredentials is the only login failure clients ever see, whether the
// username or the password was wrong.
var errBadCredentials = apperror.Unauthorized("invalid username or password")

// LoginResult is what the frontend stores under loggedBloglistUser.
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type AuthService struct {
	users     repository.UserRepository
	tokens    TokenIssuer
	passwords *auth.PasswordService
	metrics   *metrics.Manager
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens TokenIssuer,
	passwords *auth.PasswordService,
	m *metrics.Manager,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		metrics:   m,
		logger:    logger,
	}
}

// Login checks username and password and issues a token.
//
// TIMING:
// An unknown username still pays for one bcrypt comparison (BurnCompare), so
// response time does not reveal which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.metrics.LoginFailed()
		return nil, errBadCredentials
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/auth: looking up %q: %w", username, err)
		}
		s.passwords.BurnCompare(password)
		s.metrics.LoginFailed()
		s.logger.Info("login failed", slog.String("username", username), slog.String("reason", "unknown user"))
		return nil, errBadCredentials
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.metrics.LoginFailed()
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("password check failed",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		} else {
			s.logger.Info("login failed", slog.String("username", username), slog.String("reason", "wrong password"))
		}
		return nil, errBadCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.metrics.LoginSucceeded()
	s.logger.Info("user logged in", slog.String("userID", user.ID), slog.String("username", user.Username))

	return &LoginResult{
		Token:    token,
		Username: user.Username,
		Name:     user.Name,
	}, nil
}
