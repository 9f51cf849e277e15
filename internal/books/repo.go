package books

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"leafnote/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// execer is the slice of *sql.DB and *sql.Tx the write paths need.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Upsert writes one row with the full enrichment fields.
func (r *Repo) Upsert(ctx context.Context, row models.BookRow) error {
	return upsertRow(ctx, r.DB, row)
}

func upsertRow(ctx context.Context, ex execer, row models.BookRow) error {
	categories, err := marshalCategories(row.Categories)
	if err != nil {
		return err
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO books (id, user_id, title, status, rating, date_read, date_added, author, short_description, categories)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			title = excluded.title,
			status = excluded.status,
			rating = excluded.rating,
			date_read = excluded.date_read,
			date_added = excluded.date_added,
			author = excluded.author,
			short_description = excluded.short_description,
			categories = excluded.categories
	`, row.ID, row.UserID, row.Title, row.Status, nullInt(row.Rating),
		nullTime(row.DateRead), nullTime(row.DateAdded),
		nullStr(row.Author), nullStr(row.ShortDescription), categories)
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}
	return nil
}

// UpsertMinimal is the retry path used when the enriched upsert is
// rejected: required fields only.
func (r *Repo) UpsertMinimal(ctx context.Context, row models.BookRow) error {
	return upsertRowMinimal(ctx, r.DB, row)
}

func upsertRowMinimal(ctx context.Context, ex execer, row models.BookRow) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO books (id, user_id, title, status, rating, date_read, date_added)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			title = excluded.title,
			status = excluded.status,
			rating = excluded.rating,
			date_read = excluded.date_read,
			date_added = excluded.date_added
	`, row.ID, row.UserID, row.Title, row.Status, nullInt(row.Rating),
		nullTime(row.DateRead), nullTime(row.DateAdded))
	if err != nil {
		return fmt.Errorf("upsert book minimal: %w", err)
	}
	return nil
}

// Save tries the enriched upsert once and retries with the minimal
// field set on failure. The second error is returned to the caller,
// who is expected to log it and keep the in-memory item regardless.
func (r *Repo) Save(ctx context.Context, row models.BookRow) error {
	if err := r.Upsert(ctx, row); err != nil {
		return r.UpsertMinimal(ctx, row)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM books
		WHERE user_id = ? AND id = ?
	`, userID, id)
	if err != nil {
		return false, fmt.Errorf("delete book: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ReplaceAllForUser swaps a user's rows for the given set inside one
// transaction. A row that fails both the enriched and the minimal
// upsert rolls the whole replace back, so an import can never leave a
// half-replaced shelf behind.
func (r *Repo) ReplaceAllForUser(ctx context.Context, userID string, rows []models.BookRow) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM books WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete user books: %w", err)
	}
	for _, row := range rows {
		if err := upsertRow(ctx, tx, row); err != nil {
			if err := upsertRowMinimal(ctx, tx, row); err != nil {
				return err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// ListByUser returns all rows for the identity, newest created first.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]models.BookRow, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, title, status, rating, date_read, date_added, author, short_description, categories, created_at
		FROM books
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := make([]models.BookRow, 0, 16)
	for rows.Next() {
		row, err := scanBookRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, userID, id string) (*models.BookRow, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, title, status, rating, date_read, date_added, author, short_description, categories, created_at
		FROM books
		WHERE user_id = ? AND id = ?
	`, userID, id)

	got, err := scanBookRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &got, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBookRow(s scanner) (models.BookRow, error) {
	var (
		row        models.BookRow
		rating     sql.NullInt64
		dateRead   sql.NullTime
		dateAdded  sql.NullTime
		author     sql.NullString
		shortDesc  sql.NullString
		categories sql.NullString
		created    time.Time
	)

	if err := s.Scan(&row.ID, &row.UserID, &row.Title, &row.Status,
		&rating, &dateRead, &dateAdded, &author, &shortDesc, &categories, &created); err != nil {
		if err == sql.ErrNoRows {
			return models.BookRow{}, err
		}
		return models.BookRow{}, fmt.Errorf("scan book row: %w", err)
	}

	if rating.Valid {
		n := int(rating.Int64)
		row.Rating = &n
	}
	if dateRead.Valid {
		t := dateRead.Time
		row.DateRead = &t
	}
	if dateAdded.Valid {
		t := dateAdded.Time
		row.DateAdded = &t
	}
	row.Author = author.String
	row.ShortDescription = shortDesc.String
	if categories.Valid && categories.String != "" {
		_ = json.Unmarshal([]byte(categories.String), &row.Categories)
	}
	row.CreatedAt = created
	return row, nil
}

func marshalCategories(categories []string) (sql.NullString, error) {
	if len(categories) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(categories)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal categories: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
