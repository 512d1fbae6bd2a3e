package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/model"
)

// selectBlogs joins the creator so every read returns a populated Blog.
// LEFT JOIN: a blog whose creator was removed still lists, with user = null.
const selectBlogs = `
	SELECT b.id, b.title, b.author, b.url, b.likes, b.created_at, b.updated_at,
	       u.id, u.username, u.name
	FROM blogs b
	LEFT JOIN users u ON u.id = b.user_id`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlog(row rowScanner) (model.Blog, error) {
	var (
		b                      model.Blog
		userID, username, name sql.NullString
	)
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.URL, &b.Likes, &b.CreatedAt, &b.UpdatedAt,
		&userID, &username, &name,
	)
	if err != nil {
		return model.Blog{}, err
	}
	if userID.Valid {
		b.Creator = &model.Creator{ID: userID.String, Username: username.String, Name: name.String}
	}
	return b, nil
}

// Create inserts a new blog.
//
// The ID is an xid: 20 chars, URL-safe, and sortable by creation time.
// We take a pointer so the caller's blog gets the generated ID and timestamps.
func (db *DB) Create(ctx context.Context, blog *model.Blog) error {
	if blog.Creator == nil {
		return fmt.Errorf("sqlite: creating blog: creator is required")
	}

	blog.ID = xid.New().String()
	now := time.Now().UTC()
	blog.CreatedAt = now
	blog.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO blogs (id, title, author, url, likes, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		blog.ID,
		blog.Title,
		blog.Author,
		blog.URL,
		blog.Likes,
		blog.Creator.ID,
		blog.CreatedAt,
		blog.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating blog: %w", err)
	}

	return nil
}

// GetByID retrieves a single blog. sql.ErrNoRows becomes apperror.NotFound.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Blog, error) {
	b, err := scanBlog(db.conn.QueryRowContext(ctx, selectBlogs+` WHERE b.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("blog", id)
		}
		return nil, fmt.Errorf("sqlite: getting blog %s: %w", id, err)
	}
	return &b, nil
}

// List returns all blogs in insertion order.
//
// rowid is SQLite's implicit, monotonically assigned row key, so ordering by
// it is ordering by insertion even when two blogs share a timestamp.
func (db *DB) List(ctx context.Context) ([]model.Blog, error) {
	rows, err := db.conn.QueryContext(ctx, selectBlogs+` ORDER BY b.rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing blogs: %w", err)
	}
	// CRITICAL: rows holds a pooled connection until closed
	defer rows.Close()

	blogs := make([]model.Blog, 0)
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning blog row: %w", err)
		}
		blogs = append(blogs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating blogs: %w", err)
	}

	return blogs, nil
}

// Update writes the mutable fields of an existing blog.
// id, user_id and created_at are never changed.
func (db *DB) Update(ctx context.Context, blog *model.Blog) error {
	blog.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE blogs
		 SET title = ?, author = ?, url = ?, likes = ?, updated_at = ?
		 WHERE id = ?`,
		blog.Title,
		blog.Author,
		blog.URL,
		blog.Likes,
		blog.UpdatedAt,
		blog.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating blog %s: %w", blog.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("blog", blog.ID)
	}

	return nil
}

// Delete removes a blog by its ID.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM blogs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting blog %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("blog", id)
	}

	return nil
}

// Count returns the number of stored blogs.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM blogs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting blogs: %w", err)
	}
	return n, nil
}
