package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/xid"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/model"
)

const selectBlogs = `
	SELECT b.id, b.title, b.author, b.url, b.likes, b.created_at, b.updated_at,
	       u.id, u.username, u.name
	FROM blogs b
	LEFT JOIN users u ON u.id = b.user_id`

func scanBlog(row pgx.Row) (model.Blog, error) {
	var (
		b                      model.Blog
		userID, username, name *string
	)
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.URL, &b.Likes, &b.CreatedAt, &b.UpdatedAt,
		&userID, &username, &name,
	)
	if err != nil {
		return model.Blog{}, err
	}
	if userID != nil {
		b.Creator = &model.Creator{ID: *userID}
		if username != nil {
			b.Creator.Username = *username
		}
		if name != nil {
			b.Creator.Name = *name
		}
	}
	return b, nil
}

func (db *DB) Create(ctx context.Context, blog *model.Blog) error {
	if blog.Creator == nil {
		return fmt.Errorf("postgres: creating blog: creator is required")
	}

	blog.ID = xid.New().String()
	now := time.Now().UTC()
	blog.CreatedAt = now
	blog.UpdatedAt = now

	_, err := db.pool.Exec(ctx,
		`INSERT INTO blogs (id, title, author, url, likes, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		blog.ID, blog.Title, blog.Author, blog.URL, blog.Likes, blog.Creator.ID,
		blog.CreatedAt, blog.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: creating blog: %w", err)
	}
	return nil
}

func (db *DB) GetByID(ctx context.Context, id string) (*model.Blog, error) {
	b, err := scanBlog(db.pool.QueryRow(ctx, selectBlogs+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("blog", id)
		}
		return nil, fmt.Errorf("postgres: getting blog %s: %w", id, err)
	}
	return &b, nil
}

func (db *DB) List(ctx context.Context) ([]model.Blog, error) {
	rows, err := db.pool.Query(ctx, selectBlogs+` ORDER BY b.seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing blogs: %w", err)
	}
	defer rows.Close()

	blogs := make([]model.Blog, 0)
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scanning blog row: %w", err)
		}
		blogs = append(blogs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating blogs: %w", err)
	}
	return blogs, nil
}

func (db *DB) Update(ctx context.Context, blog *model.Blog) error {
	blog.UpdatedAt = time.Now().UTC()

	tag, err := db.pool.Exec(ctx,
		`UPDATE blogs SET title = $1, author = $2, url = $3, likes = $4, updated_at = $5
		 WHERE id = $6`,
		blog.Title, blog.Author, blog.URL, blog.Likes, blog.UpdatedAt, blog.ID,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating blog %s: %w", blog.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("blog", blog.ID)
	}
	return nil
}

func (db *DB) Delete(ctx context.Context, id string) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting blog %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("blog", id)
	}
	return nil
}

func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM blogs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: counting blogs: %w", err)
	}
	return n, nil
}
