package main

import (
	"context"
	"flag"
	"log"

	"github.com/oggyb/muzz-matchmaking/internal/app"
	"github.com/oggyb/muzz-matchmaking/internal/config"
	"github.com/oggyb/muzz-matchmaking/internal/db"
	"github.com/oggyb/muzz-matchmaking/internal/logger"
	"github.com/oggyb/muzz-matchmaking/internal/repository"
)

func main() {
	users := flag.Int("users", 20, "number of demo users")
	seed := flag.Int64("seed", 0, "random seed (0 = time based)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.InitFromConfig(cfg)

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	if err := db.SeedTestData(database, db.SeedOptions{Users: *users, Seed: *seed}); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	// Turn the reciprocal likes into matches. No Redis here, so events go
	// nowhere.
	appCtx := app.New(cfg, database, nil, logger.L())
	engine := appCtx.NewEngine(repository.NewStore(database))
	n, err := engine.Swipes.ReconcileMatches(context.Background(), 10_000)
	if err != nil {
		log.Fatalf("failed to reconcile matches: %v", err)
	}

	log.Printf("Seeding completed: %d matches formed.", n)
}
