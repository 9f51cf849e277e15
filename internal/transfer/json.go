package transfer

import (
	"encoding/json"
	"fmt"

	"leafnote/pkg/models"
)

// rawLibrary distinguishes "array absent" from "array empty" so the
// importer can reject payloads that are valid JSON but not our shape.
type rawLibrary struct {
	ReadBooks   *[]models.ReadItem   `json:"readBooks"`
	ToReadBooks *[]models.ToReadItem `json:"toReadBooks"`
}

// ExportJSON renders the library in the {readBooks, toReadBooks} shape.
func ExportJSON(lib models.Library) ([]byte, error) {
	if lib.ReadBooks == nil {
		lib.ReadBooks = []models.ReadItem{}
	}
	if lib.ToReadBooks == nil {
		lib.ToReadBooks = []models.ToReadItem{}
	}
	b, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal library: %w", err)
	}
	return b, nil
}

// ImportJSON parses a {readBooks, toReadBooks} payload. A payload
// carrying neither array is rejected outright.
func ImportJSON(data []byte) (models.Library, error) {
	lib := models.Library{
		ReadBooks:   []models.ReadItem{},
		ToReadBooks: []models.ToReadItem{},
	}

	var raw rawLibrary
	if err := json.Unmarshal(data, &raw); err != nil {
		return lib, fmt.Errorf("parse json: %w", err)
	}
	if raw.ReadBooks == nil && raw.ToReadBooks == nil {
		return lib, fmt.Errorf("invalid file format: expected readBooks or toReadBooks")
	}

	if raw.ReadBooks != nil {
		for i, it := range *raw.ReadBooks {
			if it.Title == "" {
				return lib, fmt.Errorf("readBooks[%d]: title required", i)
			}
		}
		lib.ReadBooks = *raw.ReadBooks
	}
	if raw.ToReadBooks != nil {
		for i, it := range *raw.ToReadBooks {
			if it.Title == "" {
				return lib, fmt.Errorf("toReadBooks[%d]: title required", i)
			}
		}
		lib.ToReadBooks = *raw.ToReadBooks
	}
	return lib, nil
}
