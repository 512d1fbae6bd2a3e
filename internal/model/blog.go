// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Blog is one saved reference to a blog post.
//
// The `json:"..."` tags define the wire format of the REST API:
//
//	{"id":"cv37rs3pp9olc6atsptg","title":"...","author":"...","url":"...","likes":0,
//	 "user":{"id":"...","username":"mluukkai","name":"Matti Luukkainen"}}
//
// Likes is an int (never a pointer); a missing value in a create request
// becomes the zero value, which is exactly the default we want.
type Blog struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	URL       string    `json:"url"`
	Likes     int       `json:"likes"`
	Creator   *Creator  `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Creator is the public identity of the user who added a blog.
// Repositories fill it from a JOIN on the users table when reading.
type Creator struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// CreatorID returns the owning user's ID, or "" if the blog has no creator.
func (b *Blog) CreatorID() string {
	if b.Creator == nil {
		return ""
	}
	return b.Creator.ID
}

// BlogSummary is the short form of a blog embedded in a user listing.
type BlogSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
}

// Summary converts a Blog to the form embedded under a user.
func (b *Blog) Summary() BlogSummary {
	return BlogSummary{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		URL:    b.URL,
		Likes:  b.Likes,
	}
}
