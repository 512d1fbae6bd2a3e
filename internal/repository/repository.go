// Package repository declares the persistence contracts the services depend on.
//
// Implementations live in sub-packages (sqlite, postgres). Services only ever
// see these interfaces, so the storage engine is chosen in one place (server.New).
package repository

import (
	"context"

	"github.com/sakif/bloglist/internal/model"
)

// BlogRepository stores blogs. Reads return blogs with Creator filled in.
type BlogRepository interface {
	// Create assigns ID and timestamps, then inserts. blog.Creator must be set.
	Create(ctx context.Context, blog *model.Blog) error
	GetByID(ctx context.Context, id string) (*model.Blog, error)
	// List returns every blog in insertion order.
	List(ctx context.Context) ([]model.Blog, error)
	// Update writes title, author, url and likes of an existing blog.
	Update(ctx context.Context, blog *model.Blog) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// UserRepository stores user accounts.
type UserRepository interface {
	// CreateUser assigns ID and timestamps, then inserts. A duplicate
	// username yields an apperror.ErrConflict.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// ListUsers returns every user in registration order, without blogs.
	ListUsers(ctx context.Context) ([]model.User, error)
}

// Store is everything a storage backend provides to the server.
type Store interface {
	BlogRepository
	UserRepository
	// Reset deletes all blogs and users. Only the testing API calls it.
	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
