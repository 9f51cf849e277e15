package models

import "time"

// ReadItem is a book the user has finished, with a 1-5 star rating.
type ReadItem struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Rating           int       `json:"rating"`
	DateRead         time.Time `json:"dateRead"`
	Author           string    `json:"author,omitempty"`
	ShortDescription string    `json:"shortDescription,omitempty"`
	Categories       []string  `json:"categories,omitempty"`
}

// ToReadItem is a book the user intends to read. Unrated.
type ToReadItem struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	DateAdded        time.Time `json:"dateAdded"`
	Author           string    `json:"author,omitempty"`
	ShortDescription string    `json:"shortDescription,omitempty"`
	Categories       []string  `json:"categories,omitempty"`
}

// Library is the serialized shape of the two user lists. This is the
// payload stored under the local-store list key and the import/export
// JSON format.
type Library struct {
	ReadBooks   []ReadItem   `json:"readBooks"`
	ToReadBooks []ToReadItem `json:"toReadBooks"`
}

// Book statuses as stored in the books table.
const (
	StatusRead   = "read"
	StatusToRead = "to_read"
)

// BookRow is one row of the server-side books table, keyed by
// (user_id, id). Read and to-read items share the table and are
// distinguished by Status.
type BookRow struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Title            string     `json:"title"`
	Status           string     `json:"status"`
	Rating           *int       `json:"rating,omitempty"`
	DateRead         *time.Time `json:"date_read,omitempty"`
	DateAdded        *time.Time `json:"date_added,omitempty"`
	Author           string     `json:"author,omitempty"`
	ShortDescription string     `json:"short_description,omitempty"`
	Categories       []string   `json:"categories,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
