package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/model"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// In-memory stand-ins for the repository interfaces. They keep insertion
// order in a slice, like the SQL backends do with rowid/serial columns, and
// copy values in and out so tests can't mutate stored state by accident.

type fakeBlogRepo struct {
	blogs  []model.Blog
	nextID int
	// set to a non-nil error to simulate a database failure
	listErr   error
	createErr error
	listCalls int
	// afterList runs once the rows are read, before List returns
	afterList func()
}

func newFakeBlogRepo() *fakeBlogRepo {
	return &fakeBlogRepo{}
}

func (f *fakeBlogRepo) Create(_ context.Context, blog *model.Blog) error {
	if f.createErr != nil {
		return f.createErr
	}
	if blog.Creator == nil {
		return fmt.Errorf("fake: creator is required")
	}
	f.nextID++
	blog.ID = fmt.Sprintf("blog-%d", f.nextID)
	stored := *blog
	creator := *blog.Creator
	stored.Creator = &creator
	f.blogs = append(f.blogs, stored)
	return nil
}

func (f *fakeBlogRepo) GetByID(_ context.Context, id string) (*model.Blog, error) {
	for i := range f.blogs {
		if f.blogs[i].ID == id {
			b := f.blogs[i]
			return &b, nil
		}
	}
	return nil, apperror.NotFound("blog", id)
}

func (f *fakeBlogRepo) List(_ context.Context) ([]model.Blog, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Blog, len(f.blogs))
	copy(out, f.blogs)
	if f.afterList != nil {
		hook := f.afterList
		f.afterList = nil
		hook()
	}
	return out, nil
}

func (f *fakeBlogRepo) Update(_ context.Context, blog *model.Blog) error {
	for i := range f.blogs {
		if f.blogs[i].ID == blog.ID {
			creator := f.blogs[i].Creator
			f.blogs[i] = *blog
			f.blogs[i].Creator = creator
			return nil
		}
	}
	return apperror.NotFound("blog", blog.ID)
}

func (f *fakeBlogRepo) Delete(_ context.Context, id string) error {
	for i := range f.blogs {
		if f.blogs[i].ID == id {
			f.blogs = append(f.blogs[:i], f.blogs[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("blog", id)
}

func (f *fakeBlogRepo) Count(_ context.Context) (int, error) {
	return len(f.blogs), nil
}

type fakeUserRepo struct {
	users  []model.User
	nextID int
	// conflictOnCreate simulates losing a registration race
	conflictOnCreate bool
	lookupErr        error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if f.conflictOnCreate {
		return apperror.Conflict("user", user.Username)
	}
	for _, u := range f.users {
		if u.Username == user.Username {
			return apperror.Conflict("user", user.Username)
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for i := range f.users {
		if f.users[i].Username == username {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (f *fakeUserRepo) ListUsers(_ context.Context) ([]model.User, error) {
	out := make([]model.User, len(f.users))
	copy(out, f.users)
	return out, nil
}

// fakeCache records calls so tests can check invalidation.
type fakeCache struct {
	blogs       []model.Blog
	warm        bool
	invalidated int
}

func (c *fakeCache) Blogs() ([]model.Blog, bool) { return c.blogs, c.warm }

func (c *fakeCache) SetBlogs(blogs []model.Blog) error {
	c.blogs = blogs
	c.warm = true
	return nil
}

func (c *fakeCache) Invalidate() {
	c.blogs = nil
	c.warm = false
	c.invalidated++
}

// =========================================================================
// HELPERS
// =========================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPasswords() *auth.PasswordService {
	return auth.NewPasswordServiceForTest(4) // bcrypt.MinCost keeps tests fast
}

// seedUser stores a user with a real bcrypt hash of password.
func seedUser(t *testing.T, users *fakeUserRepo, username, name, password string) *model.User {
	t.Helper()
	hash, err := testPasswords().Hash(password)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	u := &model.User{Username: username, Name: name, PasswordHash: hash}
	if err := users.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func identityOf(u *model.User) auth.Identity {
	return auth.Identity{UserID: u.ID, Username: u.Username}
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }
