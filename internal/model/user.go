// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// WHY `json:"-"` ON PasswordHash?
// The hash must never leave the server. The "-" tag makes encoding/json skip
// the field entirely, so even a handler that accidentally writes a *User
// can't leak it.
type User struct {
	ID           string        `json:"id"        db:"id"`
	Username     string        `json:"username"  db:"username"`
	Name         string        `json:"name"      db:"name"`
	PasswordHash string        `json:"-"         db:"password_hash"`
	Blogs        []BlogSummary `json:"blogs"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" db:"updated_at"`
}

// AsCreator returns the public identity embedded in blogs this user created.
func (u *User) AsCreator() *Creator {
	return &Creator{ID: u.ID, Username: u.Username, Name: u.Name}
}
