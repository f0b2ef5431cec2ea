package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/questguide/questguide-backend/internal/config"
	"github.com/questguide/questguide-backend/internal/database"
	"github.com/questguide/questguide-backend/internal/logger"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/questguide/questguide-backend/internal/repository"
	"github.com/questguide/questguide-backend/internal/service"
)

// fix-test-results rewrites correct answers stored as option indexes into
// the option text and regrades every result of the affected tests.
func main() {
	dryRun := flag.Bool("dry-run", false, "Report what would change without writing")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	testRepo := repository.NewTestRepository(pool)

	// ─── Repair ────────────────────────────────────────────────────────
	fmt.Println("=== Repairing Test Results ===")

	changed, err := testRepo.RepairAll(ctx, func(t *model.Test, results []model.TestResult) (bool, error) {
		if !service.RepairTest(t, results) {
			return false, nil
		}
		fmt.Printf("  %s (%s): %d results checked\n", t.Title, t.ID, len(results))
		return !*dryRun, nil
	})
	if err != nil {
		log.Fatal().Err(err).Int("repaired", changed).Msg("Repair failed")
	}

	if *dryRun {
		fmt.Println("Dry run, nothing written.")
		return
	}
	fmt.Printf("Done. %d tests repaired.\n", changed)
}
