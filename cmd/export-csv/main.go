package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"leafnote/internal/books"
	"leafnote/internal/transfer"
	"leafnote/pkg/database"
)

// Admin tool: dump one user's shelves straight from the database in
// the standard CSV exchange format.
func main() {
	var (
		userID = flag.String("user", "", "user id to export")
		out    = flag.String("out", "data/books.csv", "output CSV path")
	)
	flag.Parse()

	if *userID == "" {
		log.Fatal("user is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	repo := books.NewRepo(db)
	rows, err := repo.ListByUser(ctx, *userID)
	if err != nil {
		log.Fatalf("list books failed: %v", err)
	}

	lib := books.SplitRows(rows)
	data, err := transfer.ExportCSV(lib)
	if err != nil {
		log.Fatalf("render csv failed: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}

	log.Printf("exported %d read, %d to-read rows to %s", len(lib.ReadBooks), len(lib.ToReadBooks), *out)
}
