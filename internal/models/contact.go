package models

import "time"

// Contact represents a single addressable recipient.
type Contact struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Tags      string    `json:"tags"` // comma-separated, free text
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactFilter for filtering contacts
type ContactFilter struct {
	Search string
	Tag    string
	Limit  int
	Offset int
}
