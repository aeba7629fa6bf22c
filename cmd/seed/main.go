package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"regatta-server/internal/config"
	"regatta-server/internal/repository"
	"regatta-server/internal/services"
	"regatta-server/pkg/database"
	"regatta-server/pkg/logging"
	"regatta-server/pkg/metrics"
)

func main() {
	// Parse command-line flags
	skipNotices := flag.Bool("skip-notices", false, "Skip seeding the notice board")
	skipDocuments := flag.Bool("skip-documents", false, "Skip seeding the document list")
	skipCompetitors := flag.Bool("skip-competitors", false, "Skip seeding the entry list")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("regatta-seed", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[SEED_START] Seeding regatta demo data", logging.Fields{
		"db_host": cfg.Database.Host,
		"db_name": cfg.Database.Database,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("regatta_seed")

	// Initialize database
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[SEED_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	repo := repository.NewBoardRepository(db, logger, metricsCollector)

	now := time.Now().UTC()
	start := time.Now()

	var notices, documents, competitors, failed int

	if !*skipNotices {
		for _, notice := range services.DemoNotices(now) {
			notice.ID = 0
			if err := repo.CreateNotice(ctx, notice); err != nil {
				logger.Error(ctx, "[SEED_NOTICE_ERROR] Failed to insert notice", logging.Fields{
					"title": notice.Title,
				}, err)
				failed++
				continue
			}
			notices++
		}
	}

	if !*skipDocuments {
		for _, doc := range services.DemoDocuments(now) {
			doc.ID = 0
			if err := repo.CreateDocument(ctx, doc); err != nil {
				logger.Error(ctx, "[SEED_DOCUMENT_ERROR] Failed to insert document", logging.Fields{
					"title": doc.Title,
				}, err)
				failed++
				continue
			}
			documents++
		}
	}

	if !*skipCompetitors {
		for _, competitor := range services.DemoCompetitors(now) {
			competitor.ID = 0
			if err := repo.UpsertCompetitor(ctx, competitor); err != nil {
				logger.Error(ctx, "[SEED_COMPETITOR_ERROR] Failed to upsert competitor", logging.Fields{
					"sail_number": competitor.SailNumber,
				}, err)
				failed++
				continue
			}
			competitors++
		}
	}

	duration := time.Since(start)

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("SEED SUMMARY")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Notices:     %d\n", notices)
	fmt.Printf("Documents:   %d\n", documents)
	fmt.Printf("Competitors: %d\n", competitors)
	fmt.Printf("Failed:      %d\n", failed)
	fmt.Printf("Duration:    %v\n", duration)

	logger.Info(ctx, "[SEED_COMPLETE] Demo data seeded", logging.Fields{
		"notices":          notices,
		"documents":        documents,
		"competitors":      competitors,
		"failed":           failed,
		"duration_seconds": duration.Seconds(),
	})

	if failed > 0 {
		os.Exit(1)
	}
}
