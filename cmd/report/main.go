package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"leafnote/internal/events"
	"leafnote/internal/report"
	"leafnote/pkg/database"
	"leafnote/pkg/utils"
)

// Builds the weekly engagement report and mails it. Meant to run from
// cron; use -dry-run to print the summary without sending.
func main() {
	dryRun := flag.Bool("dry-run", false, "print the summary instead of mailing it")
	flag.Parse()

	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	builder := report.NewBuilder(events.NewRepo(db))
	rep, err := builder.Build(ctx, time.Now().UTC())
	if err != nil {
		log.Fatalf("build report failed: %v", err)
	}

	if *dryRun {
		fmt.Print(rep.Summary())
		return
	}

	mailer := report.NewMailer(utils.LoadReportConfig())
	if err := mailer.Send(ctx, rep); err != nil {
		log.Fatalf("send report failed: %v", err)
	}
	log.Println("weekly report sent")
}
