package service

import (
	"fmt"
	"strings"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
)

// Field limits. Handlers run the same checks in their request binders, so a
// bad payload is rejected before any service call.
const (
	MaxTitleLength  = 300
	MaxAuthorLength = 200
	MaxURLLength    = 2048

	MinUsernameLength = 3
	MaxUsernameLength = 64
	MinPasswordLength = 3
	MaxNameLength     = 200
)

// ValidateTitle checks a trimmed title.
func ValidateTitle(title string) error {
	if title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	return nil
}

func ValidateAuthor(author string) error {
	if len(author) > MaxAuthorLength {
		return apperror.ValidationFailed("author",
			fmt.Sprintf("author must be %d characters or less", MaxAuthorLength))
	}
	return nil
}

// ValidateURL only requires a non-empty value: the frontend accepts any
// link text a user pastes, so no URL parsing happens here.
func ValidateURL(url string) error {
	if url == "" {
		return apperror.ValidationFailed("url", "url is required")
	}
	if len(url) > MaxURLLength {
		return apperror.ValidationFailed("url",
			fmt.Sprintf("url must be %d characters or less", MaxURLLength))
	}
	return nil
}

func ValidateLikes(likes int) error {
	if likes < 0 {
		return apperror.ValidationFailed("likes", "likes must not be negative")
	}
	return nil
}

// ValidateNewBlog checks a create payload. likes may be nil (defaults to 0).
func ValidateNewBlog(in CreateBlogInput) error {
	if err := ValidateTitle(strings.TrimSpace(in.Title)); err != nil {
		return err
	}
	if err := ValidateAuthor(strings.TrimSpace(in.Author)); err != nil {
		return err
	}
	if err := ValidateURL(strings.TrimSpace(in.URL)); err != nil {
		return err
	}
	if in.Likes != nil {
		return ValidateLikes(*in.Likes)
	}
	return nil
}

// ValidateBlogPatch checks only the fields present in a partial update.
func ValidateBlogPatch(in UpdateBlogInput) error {
	if in.Title != nil {
		if err := ValidateTitle(strings.TrimSpace(*in.Title)); err != nil {
			return err
		}
	}
	if in.Author != nil {
		if err := ValidateAuthor(strings.TrimSpace(*in.Author)); err != nil {
			return err
		}
	}
	if in.URL != nil {
		if err := ValidateURL(strings.TrimSpace(*in.URL)); err != nil {
			return err
		}
	}
	if in.Likes != nil {
		return ValidateLikes(*in.Likes)
	}
	return nil
}

// ValidateRegistration checks a new account. Uniqueness is checked later
// against the repository.
func ValidateRegistration(in RegisterInput) error {
	username := strings.TrimSpace(in.Username)
	switch {
	case username == "":
		return apperror.ValidationFailed("username", "username is required")
	case len(username) < MinUsernameLength:
		return apperror.ValidationFailed("username",
			fmt.Sprintf("username must be at least %d characters long", MinUsernameLength))
	case len(username) > MaxUsernameLength:
		return apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}

	if len(strings.TrimSpace(in.Name)) > MaxNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", MaxNameLength))
	}

	switch {
	case in.Password == "":
		return apperror.ValidationFailed("password", "password is required")
	case len(in.Password) < MinPasswordLength:
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters long", MinPasswordLength))
	case len(in.Password) > auth.MaxPasswordBytes:
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
	}
	return nil
}
