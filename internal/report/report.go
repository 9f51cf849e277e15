// Package report builds the weekly engagement summary from the
// analytics table and mails it with CSV attachments.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"leafnote/pkg/models"
)

const windowDays = 7

// EventSource is the slice of the events repo the builder reads.
type EventSource interface {
	ListSince(ctx context.Context, since time.Time) ([]models.Event, error)
	FirstSeen(ctx context.Context) (map[string]time.Time, error)
}

type Builder struct {
	Events EventSource
}

func NewBuilder(events EventSource) *Builder {
	return &Builder{Events: events}
}

// Report is one week of activity. A visitor is "new" when their first
// event ever falls inside the window, "returning" otherwise.
type Report struct {
	WindowStart time.Time
	WindowEnd   time.Time

	TotalEvents    int
	ActiveVisitors int
	NewVisitors    int
	Returning      int
	SignedIn       int

	EventCounts map[string]int

	UserCSV []byte
	BookCSV []byte
}

type userStat struct {
	anonID   string
	userID   string
	events   int
	lastSeen time.Time
}

type bookStat struct {
	title     string
	author    string
	events    int
	ratingSum int
	rated     int
}

// Build aggregates the last seven days of events.
func (b *Builder) Build(ctx context.Context, now time.Time) (*Report, error) {
	start := now.AddDate(0, 0, -windowDays)

	evs, err := b.Events.ListSince(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	firstSeen, err := b.Events.FirstSeen(ctx)
	if err != nil {
		return nil, fmt.Errorf("load first seen: %w", err)
	}

	rep := &Report{
		WindowStart: start,
		WindowEnd:   now,
		TotalEvents: len(evs),
		EventCounts: make(map[string]int),
	}

	users := make(map[string]*userStat)
	books := make(map[string]*bookStat)
	signedIn := make(map[string]struct{})

	for _, ev := range evs {
		rep.EventCounts[ev.Name]++

		u, ok := users[ev.AnonID]
		if !ok {
			u = &userStat{anonID: ev.AnonID}
			users[ev.AnonID] = u
		}
		u.events++
		if ev.UserID != "" {
			u.userID = ev.UserID
			signedIn[ev.UserID] = struct{}{}
		}
		if ev.CreatedAt.After(u.lastSeen) {
			u.lastSeen = ev.CreatedAt
		}

		if ev.BookTitle != "" {
			key := strings.ToLower(ev.BookTitle)
			s, ok := books[key]
			if !ok {
				s = &bookStat{title: ev.BookTitle, author: ev.BookAuthor}
				books[key] = s
			}
			s.events++
			if s.author == "" {
				s.author = ev.BookAuthor
			}
			if ev.BookRating != nil {
				s.ratingSum += *ev.BookRating
				s.rated++
			}
		}
	}

	rep.ActiveVisitors = len(users)
	rep.SignedIn = len(signedIn)
	for anonID := range users {
		if first, ok := firstSeen[anonID]; ok && first.Before(start) {
			rep.Returning++
		} else {
			rep.NewVisitors++
		}
	}

	rep.UserCSV, err = renderUserCSV(users)
	if err != nil {
		return nil, err
	}
	rep.BookCSV, err = renderBookCSV(books)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// Summary renders the plain-text email body.
func (r *Report) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Leafnote weekly report, %s to %s\n\n",
		r.WindowStart.Format("2006-01-02"), r.WindowEnd.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Events:            %d\n", r.TotalEvents)
	fmt.Fprintf(&sb, "Active visitors:   %d\n", r.ActiveVisitors)
	fmt.Fprintf(&sb, "  new:             %d\n", r.NewVisitors)
	fmt.Fprintf(&sb, "  returning:       %d\n", r.Returning)
	fmt.Fprintf(&sb, "Signed-in users:   %d\n", r.SignedIn)

	if len(r.EventCounts) > 0 {
		sb.WriteString("\nTop events:\n")
		for _, name := range sortedByCount(r.EventCounts) {
			fmt.Fprintf(&sb, "  %-24s %d\n", name, r.EventCounts[name])
		}
	}
	return sb.String()
}

func sortedByCount(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

func renderUserCSV(users map[string]*userStat) ([]byte, error) {
	stats := make([]*userStat, 0, len(users))
	for _, u := range users {
		stats = append(stats, u)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].events != stats[j].events {
			return stats[i].events > stats[j].events
		}
		return stats[i].anonID < stats[j].anonID
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"anon_id", "user_id", "events", "last_seen"}); err != nil {
		return nil, fmt.Errorf("write user csv: %w", err)
	}
	for _, u := range stats {
		row := []string{u.anonID, u.userID, strconv.Itoa(u.events), u.lastSeen.UTC().Format(time.RFC3339)}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write user csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush user csv: %w", err)
	}
	return buf.Bytes(), nil
}

func renderBookCSV(books map[string]*bookStat) ([]byte, error) {
	stats := make([]*bookStat, 0, len(books))
	for _, s := range books {
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].events != stats[j].events {
			return stats[i].events > stats[j].events
		}
		return stats[i].title < stats[j].title
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"title", "author", "events", "avg_rating"}); err != nil {
		return nil, fmt.Errorf("write book csv: %w", err)
	}
	for _, s := range stats {
		avg := ""
		if s.rated > 0 {
			avg = strconv.FormatFloat(float64(s.ratingSum)/float64(s.rated), 'f', 1, 64)
		}
		if err := w.Write([]string{s.title, s.author, strconv.Itoa(s.events), avg}); err != nil {
			return nil, fmt.Errorf("write book csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush book csv: %w", err)
	}
	return buf.Bytes(), nil
}
