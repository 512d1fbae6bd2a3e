// Package cache keeps the serialized blog list in an in-process freecache so
// repeated GET /api/blogs calls skip the database.
//
// Every write path (create, update, delete, reset) must call Invalidate;
// entries also expire after a short TTL as a backstop.
package cache

import (
	"encoding/json"
	"fmt"

	"github.com/coocood/freecache"

	"github.com/sakif/bloglist/internal/model"
)

const (
	megabyte = 1024 * 1024

	blogListKey = "blogs:all"

	// DefaultExpireSeconds bounds how stale a list can be if an
	// invalidation is ever missed.
	DefaultExpireSeconds = 60
)

type BlogCache struct {
	cache  *freecache.Cache
	expire int
}

// New creates a cache of sizeMB megabytes. freecache enforces a 512KB minimum.
func New(sizeMB int) *BlogCache {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	return &BlogCache{
		cache:  freecache.NewCache(sizeMB * megabyte),
		expire: DefaultExpireSeconds,
	}
}

// Blogs returns the cached list and whether it was present.
func (c *BlogCache) Blogs() ([]model.Blog, bool) {
	data, err := c.cache.Get([]byte(blogListKey))
	if err != nil {
		return nil, false
	}

	var blogs []model.Blog
	if err := json.Unmarshal(data, &blogs); err != nil {
		c.Invalidate()
		return nil, false
	}
	return blogs, true
}

// SetBlogs stores the list. A list larger than freecache's per-entry limit
// (1/1024 of the cache size) is rejected with an error and simply not cached.
func (c *BlogCache) SetBlogs(blogs []model.Blog) error {
	data, err := json.Marshal(blogs)
	if err != nil {
		return fmt.Errorf("cache: encoding blogs: %w", err)
	}
	if err := c.cache.Set([]byte(blogListKey), data, c.expire); err != nil {
		return fmt.Errorf("cache: storing blogs: %w", err)
	}
	return nil
}

func (c *BlogCache) Invalidate() {
	c.cache.Del([]byte(blogListKey))
}

// HitRate reports the lifetime hit ratio, for logs.
func (c *BlogCache) HitRate() float64 {
	return c.cache.HitRate()
}
