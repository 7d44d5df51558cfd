// The watcher keeps per-order receipt PDFs in cloud storage in sync with
// the live tab. It runs as a separate process from the API server, polling
// the same sheet on its own timer; the two coordinate only through the
// sheet itself.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gino-rizzo/ginos-pizza-api/config"
	"github.com/gino-rizzo/ginos-pizza-api/models"
	"github.com/gino-rizzo/ginos-pizza-api/services"
)

func main() {
	log.Println("Starting PDF watcher...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sheets, err := services.InitSheetsService(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize sheets client: %v", err)
	}

	storage, err := services.InitStorageService(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize storage backend %q: %v", cfg.StorageBackend, err)
	}

	// The watcher owns its own cache; the API server's cache lives in a
	// different process.
	fetch := func(ctx context.Context) ([]models.Order, *services.ColumnMap, error) {
		values, err := sheets.ReadTab(ctx, cfg.LiveTab)
		if err != nil {
			return nil, nil, err
		}
		return services.ParseOrders(values, services.MaxItemsLive)
	}
	cache := services.NewSheetCache(fetch, time.Duration(cfg.CacheWindowSeconds)*time.Second)

	watcher := services.NewPDFWatcher(cache, storage, cfg.DriveIncomingFolderID, cfg.DriveUpdatingFolderID)

	interval := time.Duration(cfg.WatcherIntervalSeconds) * time.Second
	log.Printf("Polling %s every %s, storage backend %s", cfg.LiveTab, interval, cfg.StorageBackend)
	watcher.Run(ctx, interval)

	log.Println("PDF watcher stopped")
}
