// Package transfer implements the CSV and JSON import/export formats.
// Imports are all-or-nothing: a malformed file is rejected without
// touching existing state.
package transfer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"leafnote/pkg/models"
)

var csvHeader = []string{"status", "id", "title", "rating", "date"}

// ExportCSV renders both lists, read rows first. Rating is blank for
// to-read rows; encoding/csv handles title quoting.
func ExportCSV(lib models.Library) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, it := range lib.ReadBooks {
		row := []string{
			models.StatusRead,
			it.ID,
			it.Title,
			strconv.Itoa(it.Rating),
			it.DateRead.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	for _, it := range lib.ToReadBooks {
		row := []string{
			models.StatusToRead,
			it.ID,
			it.Title,
			"",
			it.DateAdded.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportCSV parses the export shape back into a library. Unknown
// headers, bad statuses, missing titles or invalid ratings reject the
// whole file. Missing ids and dates are regenerated.
func ImportCSV(data []byte) (models.Library, error) {
	lib := models.Library{
		ReadBooks:   []models.ReadItem{},
		ToReadBooks: []models.ToReadItem{},
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return lib, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return lib, fmt.Errorf("empty file")
	}

	header := records[0]
	if !headerMatches(header) {
		return lib, fmt.Errorf("unrecognized csv header: %v", header)
	}

	now := time.Now().UTC()
	for i, row := range records[1:] {
		if len(row) < len(csvHeader) {
			return lib, fmt.Errorf("row %d: expected %d fields, got %d", i+2, len(csvHeader), len(row))
		}

		status := strings.TrimSpace(row[0])
		id := strings.TrimSpace(row[1])
		title := strings.TrimSpace(row[2])
		rawRating := strings.TrimSpace(row[3])
		rawDate := strings.TrimSpace(row[4])

		if title == "" {
			return lib, fmt.Errorf("row %d: title required", i+2)
		}
		if id == "" {
			id = uuid.NewString()
		}

		date := now
		if rawDate != "" {
			parsed, err := time.Parse(time.RFC3339, rawDate)
			if err != nil {
				return lib, fmt.Errorf("row %d: bad date %q", i+2, rawDate)
			}
			date = parsed
		}

		switch status {
		case models.StatusRead:
			rating, err := strconv.Atoi(rawRating)
			if err != nil || rating < 1 || rating > 5 {
				return lib, fmt.Errorf("row %d: read rows need a rating 1-5", i+2)
			}
			lib.ReadBooks = append(lib.ReadBooks, models.ReadItem{
				ID:       id,
				Title:    title,
				Rating:   rating,
				DateRead: date,
			})
		case models.StatusToRead:
			if rawRating != "" {
				return lib, fmt.Errorf("row %d: to_read rows must leave rating blank", i+2)
			}
			lib.ToReadBooks = append(lib.ToReadBooks, models.ToReadItem{
				ID:        id,
				Title:     title,
				DateAdded: date,
			})
		default:
			return lib, fmt.Errorf("row %d: unknown status %q", i+2, status)
		}
	}

	return lib, nil
}

func headerMatches(row []string) bool {
	if len(row) != len(csvHeader) {
		return false
	}
	for i, h := range csvHeader {
		if strings.TrimSpace(strings.ToLower(row[i])) != h {
			return false
		}
	}
	return true
}
