package books

import (
	"time"

	"leafnote/pkg/models"
)

// SplitRows translates remote rows into the two local list shapes.
// Rows with an unknown status are skipped. Missing dates fall back to
// the row's created_at so ordering stays stable.
func SplitRows(rows []models.BookRow) models.Library {
	lib := models.Library{
		ReadBooks:   make([]models.ReadItem, 0, len(rows)),
		ToReadBooks: make([]models.ToReadItem, 0, len(rows)),
	}

	for _, row := range rows {
		switch row.Status {
		case models.StatusRead:
			rating := 0
			if row.Rating != nil {
				rating = *row.Rating
			}
			dateRead := row.CreatedAt
			if row.DateRead != nil {
				dateRead = *row.DateRead
			}
			lib.ReadBooks = append(lib.ReadBooks, models.ReadItem{
				ID:               row.ID,
				Title:            row.Title,
				Rating:           rating,
				DateRead:         dateRead,
				Author:           row.Author,
				ShortDescription: row.ShortDescription,
				Categories:       row.Categories,
			})
		case models.StatusToRead:
			dateAdded := row.CreatedAt
			if row.DateAdded != nil {
				dateAdded = *row.DateAdded
			}
			lib.ToReadBooks = append(lib.ToReadBooks, models.ToReadItem{
				ID:               row.ID,
				Title:            row.Title,
				DateAdded:        dateAdded,
				Author:           row.Author,
				ShortDescription: row.ShortDescription,
				Categories:       row.Categories,
			})
		}
	}
	return lib
}

// RowFromRead maps a read item to its table row shape.
func RowFromRead(userID string, it models.ReadItem) models.BookRow {
	dateRead := it.DateRead
	if dateRead.IsZero() {
		dateRead = time.Now().UTC()
	}
	rating := it.Rating
	return models.BookRow{
		ID:               it.ID,
		UserID:           userID,
		Title:            it.Title,
		Status:           models.StatusRead,
		Rating:           &rating,
		DateRead:         &dateRead,
		Author:           it.Author,
		ShortDescription: it.ShortDescription,
		Categories:       it.Categories,
	}
}

// RowFromToRead maps a to-read item to its table row shape.
func RowFromToRead(userID string, it models.ToReadItem) models.BookRow {
	dateAdded := it.DateAdded
	if dateAdded.IsZero() {
		dateAdded = time.Now().UTC()
	}
	return models.BookRow{
		ID:               it.ID,
		UserID:           userID,
		Title:            it.Title,
		Status:           models.StatusToRead,
		DateAdded:        &dateAdded,
		Author:           it.Author,
		ShortDescription: it.ShortDescription,
		Categories:       it.Categories,
	}
}
