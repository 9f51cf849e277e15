package sync

import "time"

// BookEvent is pushed to every connected sync client whenever a user's
// shelves change.
type BookEvent struct {
	Type   string    `json:"type"` // "book.update" or "book.delete"
	UserID string    `json:"user_id"`
	BookID string    `json:"book_id"`
	Title  string    `json:"title,omitempty"`
	Status string    `json:"status,omitempty"`
	At     time.Time `json:"at"`
}
