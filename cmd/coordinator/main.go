package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/akira/indexify/internal/coordinator"
	"github.com/akira/indexify/internal/data/db"
	"github.com/akira/indexify/internal/platform/envutil"
	"github.com/akira/indexify/internal/platform/logger"
	"github.com/akira/indexify/internal/store"
	"github.com/akira/indexify/internal/vector"
	"github.com/akira/indexify/internal/vector/qdrant"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(envutil.String("APP_MODE", "dev"))
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	conn, err := db.Open(log)
	if err != nil {
		log.Fatal("failed to open database", "error", err)
	}
	if err := db.AutoMigrateAll(conn); err != nil {
		log.Fatal("migration failed", "error", err)
	}

	var vectors vector.Store
	if cfg := qdrant.ConfigFromEnv(); cfg.URL != "" {
		vectors, err = qdrant.NewVectorStore(log, cfg)
		if err != nil {
			log.Fatal("failed to init vector store", "error", err)
		}
	} else {
		log.Warn("QDRANT_URL not set, index creation disabled")
	}

	st := store.New(conn, vectors, log)

	var workers []string
	if raw := envutil.String("WORKER_IDS", ""); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				workers = append(workers, id)
			}
		}
	}

	coord := coordinator.New(st, log,
		coordinator.WithInterval(envutil.Duration("POLL_INTERVAL", 5*time.Second)),
		coordinator.WithWorkers(workers),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := coord.Run(ctx); err != nil && err != context.Canceled {
		log.Error("coordinator exited", "error", err)
	}
}
