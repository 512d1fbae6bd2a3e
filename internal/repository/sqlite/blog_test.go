package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/model"
)

// TESTING WITH IN-MEMORY SQLITE:
// ":memory:" creates a fresh database that exists only during the test.
// Each test gets its own, so tests never see each other's rows.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestBlog inserts a blog owned by creator and fails the test on error.
func createTestBlog(t *testing.T, db *DB, creator *model.User, title string) *model.Blog {
	t.Helper()
	blog := &model.Blog{
		Title:   title,
		Author:  gofakeit.Name(),
		URL:     gofakeit.URL(),
		Likes:   gofakeit.Number(0, 100),
		Creator: creator.AsCreator(),
	}
	if err := db.Create(context.Background(), blog); err != nil {
		t.Fatalf("failed to create test blog: %v", err)
	}
	return blog
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "mluukkai")

	blog := &model.Blog{
		Title:   "React patterns",
		Author:  "Michael Chan",
		URL:     "https://reactpatterns.com/",
		Creator: owner.AsCreator(),
	}

	if err := db.Create(context.Background(), blog); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if blog.ID == "" {
		t.Error("Create() did not set blog.ID")
	}
	if blog.CreatedAt.IsZero() {
		t.Error("Create() did not set blog.CreatedAt")
	}
}

func TestCreate_RequiresCreator(t *testing.T) {
	db := newTestDB(t)

	err := db.Create(context.Background(), &model.Blog{Title: "t", URL: "u"})
	if err == nil {
		t.Fatal("Create() should reject a blog without a creator")
	}
}

func TestCreate_UnknownCreator(t *testing.T) {
	db := newTestDB(t)

	// foreign_keys is on for every connection, so a dangling user_id fails
	blog := &model.Blog{Title: "t", URL: "u", Creator: &model.Creator{ID: "ghost"}}
	if err := db.Create(context.Background(), blog); err == nil {
		t.Fatal("Create() should fail for a creator that does not exist")
	}
}

func TestCreate_VerifyPersistence(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "hellas")
	original := createTestBlog(t, db, owner, "Go To Statement Considered Harmful")

	found, err := db.GetByID(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if found.Title != original.Title {
		t.Errorf("Title = %q, want %q", found.Title, original.Title)
	}
	if found.URL != original.URL {
		t.Errorf("URL = %q, want %q", found.URL, original.URL)
	}
	if found.Likes != original.Likes {
		t.Errorf("Likes = %d, want %d", found.Likes, original.Likes)
	}
	if found.Creator == nil || found.Creator.Username != "hellas" {
		t.Errorf("Creator = %+v, want username hellas", found.Creator)
	}
}

// =========================================================================
// GET BY ID TESTS
// =========================================================================

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestList_Empty(t *testing.T) {
	db := newTestDB(t)

	blogs, err := db.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	// Must be an empty slice, not nil: it encodes as [] rather than null
	if blogs == nil || len(blogs) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", blogs)
	}
}

func TestList_InsertionOrderWithCreators(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	first := createTestBlog(t, db, alice, "first")
	second := createTestBlog(t, db, bob, "second")
	third := createTestBlog(t, db, alice, "third")

	blogs, err := db.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(blogs) != 3 {
		t.Fatalf("List() returned %d blogs, want 3", len(blogs))
	}

	wantIDs := []string{first.ID, second.ID, third.ID}
	for i, b := range blogs {
		if b.ID != wantIDs[i] {
			t.Errorf("blogs[%d].ID = %q, want %q", i, b.ID, wantIDs[i])
		}
		if b.Creator == nil {
			t.Errorf("blogs[%d] has no creator", i)
		}
	}
	if blogs[1].Creator.Username != "bob" {
		t.Errorf("blogs[1].Creator.Username = %q, want bob", blogs[1].Creator.Username)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUpdate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	original := createTestBlog(t, db, owner, "original title")

	original.Likes = 42
	original.Title = "new title"
	if err := db.Update(context.Background(), original); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.GetByID(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("GetByID() after update error = %v", err)
	}
	if found.Likes != 42 {
		t.Errorf("Likes after update = %d, want 42", found.Likes)
	}
	if found.Title != "new title" {
		t.Errorf("Title after update = %q, want %q", found.Title, "new title")
	}
	// Ownership is not part of an update
	if found.CreatorID() != owner.ID {
		t.Errorf("CreatorID after update = %q, want %q", found.CreatorID(), owner.ID)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Update(context.Background(), &model.Blog{ID: "nonexistent", Title: "t", URL: "u"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestUpdate_NegativeLikesRejectedByStore(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	blog := createTestBlog(t, db, owner, "title")

	blog.Likes = -1
	if err := db.Update(context.Background(), blog); err == nil {
		t.Fatal("Update() should fail the likes >= 0 CHECK constraint")
	}
}

// =========================================================================
// DELETE / COUNT / RESET TESTS
// =========================================================================

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	blog := createTestBlog(t, db, owner, "to delete")

	if err := db.Delete(context.Background(), blog.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := db.GetByID(context.Background(), blog.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete: error = %v, want ErrNotFound", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Delete(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestCountAndReset(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner")
	for i := 0; i < 3; i++ {
		createTestBlog(t, db, owner, gofakeit.BookTitle())
	}

	n, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}

	if err := db.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	n, _ = db.Count(ctx)
	if n != 0 {
		t.Errorf("Count() after reset = %d, want 0", n)
	}
	users, _ := db.ListUsers(ctx)
	if len(users) != 0 {
		t.Errorf("ListUsers() after reset returned %d users, want 0", len(users))
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}
