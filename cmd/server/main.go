package main // Entry point package

import (
	"context" // Context for startup hydration and the SLA monitor
	"log"     // Logging library
	"time"    // Time utilities for breach math

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/quayline/yard-ops/internal/config"     // Internal config loader
	"github.com/quayline/yard-ops/internal/database"   // MySQL connector
	"github.com/quayline/yard-ops/internal/handler"    // HTTP handlers
	"github.com/quayline/yard-ops/internal/model"      // Domain types
	"github.com/quayline/yard-ops/internal/queue"      // Broker payloads and consumer
	"github.com/quayline/yard-ops/internal/repository" // Data access layer
	"github.com/quayline/yard-ops/internal/router"     // Route registration
	queue_publisher "github.com/quayline/yard-ops/internal/service"
	"github.com/quayline/yard-ops/internal/workorder" // Work-order lifecycle
	"github.com/quayline/yard-ops/internal/yard"      // Slot allocation engine
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // may be nil; middleware degrades gracefully

	// Repositories.
	users := repository.NewUserRepo(db)
	entries := repository.NewEntryRepo(db)
	affinity := repository.NewAffinityRepo(db)
	placements := repository.NewPlacementRepo(db)
	orders := repository.NewWorkOrderRepo(db)
	vehicles := repository.NewVehicleRepo(db)

	// The in-memory occupancy index is the allocator's source of truth.
	// Rebuild it from the placements table so restarts do not double-book
	// slots that were occupied before the process went down.
	topo := yard.DefaultTopology()
	index := yard.NewOccupancyIndex()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	active, err := placements.ListActive(ctx)
	cancel()
	if err != nil {
		log.Fatalf("hydrate occupancy index: %v", err)
	}
	index.Load(active)
	log.Printf("occupancy index hydrated: %d active placements", len(active))

	allocator := yard.NewAllocator(topo, index, cfg.ProbeBudget)
	reclaimer := yard.NewReclaimer(index)
	scheduler := workorder.NewScheduler(orders, vehicles, cfg.SLAWindow)

	// SLA monitor: advisory scan publishing breach events to the broker.
	monitor := workorder.NewMonitor(orders, cfg.MonitorEvery, func(ctx context.Context, wo model.WorkOrder) error {
		overdue := int(time.Now().UTC().Sub(wo.SLADeadline) / time.Minute)
		return queue_publisher.PublishSLABreach(ctx, queue.SLABreachEvent{
			WorkOrderID:    wo.ID,
			EntryID:        wo.EntryID,
			Status:         string(wo.Status),
			Slot:           wo.TargetSlot.Label(),
			SLADeadline:    wo.SLADeadline.UTC().Format(time.RFC3339),
			OverdueMinutes: overdue,
		})
	})
	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	go monitor.Run(monitorCtx)

	// Broker consumer writing verified-move and breach events to logs/.
	go func() {
		if err := queue.StartYardConsumer(); err != nil {
			log.Printf("yard consumer stopped: %v", err)
		}
	}()

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users)
	yardH := handler.NewYardHandler(entries, affinity, placements, allocator, index, reclaimer, scheduler, topo)
	workH := handler.NewWorkOrderHandler(scheduler, orders, entries, placements, index)
	mapH := handler.NewYardMapHandler(index, topo)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterYard(e, cfg, rdb, yardH, workH, mapH)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
