package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gino-rizzo/ginos-pizza-api/config"
	"github.com/gino-rizzo/ginos-pizza-api/controllers"
	"github.com/gino-rizzo/ginos-pizza-api/middleware"
	"github.com/gino-rizzo/ginos-pizza-api/models"
	"github.com/gino-rizzo/ginos-pizza-api/services"
)

func main() {
	log.Println("Starting Gino's order board API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	loc, err := time.LoadLocation(cfg.ReferenceTimezone)
	if err != nil {
		log.Fatalf("Invalid REFERENCE_TIMEZONE %q: %v", cfg.ReferenceTimezone, err)
	}

	ctx := context.Background()
	sheets, err := services.InitSheetsService(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize sheets client: %v", err)
	}

	printer, err := services.InitPrinterService()
	if err != nil {
		log.Fatalf("Failed to initialize printer client: %v", err)
	}
	log.Printf("Printer mode: %s", printer.Mode())

	history, err := services.InitPrintHistory(cfg.PrintHistoryFile)
	if err != nil {
		log.Fatalf("Failed to load print history: %v", err)
	}

	cache := services.NewSheetCache(liveTabFetch(sheets, cfg.LiveTab), time.Duration(cfg.CacheWindowSeconds)*time.Second)
	services.SetQueryService(services.NewOrderQueryService(cache, history, loc))
	services.SetMutationService(services.NewOrderMutationService(cache, sheets, printer, history, cfg.LiveTab))
	services.SetArchiveService(services.NewArchiveService(sheets, cache, cfg.LiveTab, cfg.HistoryTab))
	services.SetReportService(services.NewReportService(sheets, cache, cfg.HistoryTab, loc))

	go runArchiveSchedule(ctx, cfg.ArchiveHour, loc)

	router := setupRouter(cfg)

	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// liveTabFetch is the cache's fetch function: one full read of the live tab
// parsed with the live-path item range
func liveTabFetch(sheets services.SheetsInterface, tab string) services.FetchFunc {
	return func(ctx context.Context) ([]models.Order, *services.ColumnMap, error) {
		values, err := sheets.ReadTab(ctx, tab)
		if err != nil {
			return nil, nil, err
		}
		return services.ParseOrders(values, services.MaxItemsLive)
	}
}

// setupRouter builds the route table
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	v1.GET("/health", healthCheck)

	protected := v1.Group("")
	if cfg.AuthEnabled() {
		protected.Use(middleware.EnsureValidToken(cfg))
	}
	{
		protected.GET("/orders/incoming", controllers.IncomingOrders)
		protected.GET("/orders/updating", controllers.UpdatingOrders)
		protected.GET("/orders/processed", controllers.ProcessedOrders)
		protected.GET("/orders/by-row/:rowIndex", controllers.GetOrderByRow)
		protected.POST("/orders/:rowIndex/fire", controllers.FireOrder)
		protected.POST("/orders/:rowIndex/reprint", controllers.ReprintOrder)

		protected.GET("/printer/status", controllers.PrinterStatus)
		protected.POST("/archive/run", controllers.RunArchive)

		protected.GET("/reports/daily", controllers.DailyReport)
		protected.GET("/reports/popular-items", controllers.PopularItemsReport)
		protected.GET("/reports/hourly", controllers.HourlyReport)
		protected.GET("/reports/export", controllers.ExportReport)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Gino's order board API is running",
	})
}

// runArchiveSchedule fires the archival sweep once per day at the
// configured hour. One goroutine, one sweep at a time: the job must never
// run concurrently with itself.
func runArchiveSchedule(ctx context.Context, hour int, loc *time.Location) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	var lastRunDay string
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			local := now.In(loc)
			day := local.Format("2006-01-02")
			if local.Hour() != hour || day == lastRunDay {
				continue
			}
			lastRunDay = day
			if _, err := services.GetArchiveService().Run(ctx); err != nil {
				log.Printf("scheduled archival failed: %v", err)
			}
		}
	}
}
