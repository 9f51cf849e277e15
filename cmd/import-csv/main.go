package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"leafnote/internal/books"
	"leafnote/internal/transfer"
	"leafnote/pkg/database"
	"leafnote/pkg/models"
)

// Admin tool: replace one user's shelves with a CSV file. The file is
// parsed in full before any row is written, so a malformed file leaves
// the table untouched.
func main() {
	var (
		userID = flag.String("user", "", "user id to import into")
		in     = flag.String("in", "data/books.csv", "input CSV path")
	)
	flag.Parse()

	if *userID == "" {
		log.Fatal("user is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data, err := os.ReadFile(*in)
	if err != nil {
		log.Fatalf("read %s: %v", *in, err)
	}

	lib, err := transfer.ImportCSV(data)
	if err != nil {
		log.Fatalf("import rejected: %v", err)
	}

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	rows := make([]models.BookRow, 0, len(lib.ReadBooks)+len(lib.ToReadBooks))
	for _, it := range lib.ReadBooks {
		rows = append(rows, books.RowFromRead(*userID, it))
	}
	for _, it := range lib.ToReadBooks {
		rows = append(rows, books.RowFromToRead(*userID, it))
	}

	repo := books.NewRepo(db)
	if err := repo.ReplaceAllForUser(ctx, *userID, rows); err != nil {
		log.Fatalf("replace shelves failed: %v", err)
	}

	log.Printf("imported %d read, %d to-read rows from %s", len(lib.ReadBooks), len(lib.ToReadBooks), *in)
}
