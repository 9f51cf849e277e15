// Package events records lightweight product analytics. Writes are
// best-effort: a failed insert is logged by the caller and never
// surfaces to the user flow that produced it.
package events

import (
	"context"
	"database/sql"
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

func (r *Repo) Insert(ctx context.Context, ev models.Event) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO events (anon_id, user_id, event_name, book_title, book_author, book_rating, book_status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ev.AnonID, nullStr(ev.UserID), ev.Name, nullStr(ev.BookTitle),
		nullStr(ev.BookAuthor), nullInt(ev.BookRating), nullStr(ev.BookStatus))
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListSince returns every event created on or after the cutoff, oldest
// first. The weekly report builder consumes this.
func (r *Repo) ListSince(ctx context.Context, since time.Time) ([]models.Event, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, anon_id, user_id, event_name, book_title, book_author, book_rating, book_status, created_at
		FROM events
		WHERE created_at >= ?
		ORDER BY created_at ASC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := make([]models.Event, 0, 64)
	for rows.Next() {
		var (
			ev     models.Event
			userID sql.NullString
			title  sql.NullString
			author sql.NullString
			rating sql.NullInt64
			status sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.AnonID, &userID, &ev.Name,
			&title, &author, &rating, &status, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.UserID = userID.String
		ev.BookTitle = title.String
		ev.BookAuthor = author.String
		ev.BookStatus = status.String
		if rating.Valid {
			n := int(rating.Int64)
			ev.BookRating = &n
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// FirstSeen maps each anon_id to the timestamp of its earliest event
// ever, which is how the report tells new visitors from returning ones.
func (r *Repo) FirstSeen(ctx context.Context) (map[string]time.Time, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT anon_id, MIN(created_at)
		FROM events
		GROUP BY anon_id
	`)
	if err != nil {
		return nil, fmt.Errorf("first seen: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var (
			anonID string
			ts     time.Time
		)
		if err := rows.Scan(&anonID, &ts); err != nil {
			return nil, fmt.Errorf("scan first seen: %w", err)
		}
		out[anonID] = ts
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
