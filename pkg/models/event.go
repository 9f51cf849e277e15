package models

import "time"

// Event is one analytics row. AnonID is a client-generated identifier
// that survives sign-out; UserID is set only for authenticated sessions.
type Event struct {
	ID         int64     `json:"id"`
	AnonID     string    `json:"anon_id"`
	UserID     string    `json:"user_id,omitempty"`
	Name       string    `json:"event_name"`
	BookTitle  string    `json:"book_title,omitempty"`
	BookAuthor string    `json:"book_author,omitempty"`
	BookRating *int      `json:"book_rating,omitempty"`
	BookStatus string    `json:"book_status,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
