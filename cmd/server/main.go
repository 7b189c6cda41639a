package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"    // loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/eafc-tic/equiptrack/internal/config"
	"github.com/eafc-tic/equiptrack/internal/database"
	"github.com/eafc-tic/equiptrack/internal/directory"
	"github.com/eafc-tic/equiptrack/internal/handler"
	"github.com/eafc-tic/equiptrack/internal/jobs"
	"github.com/eafc-tic/equiptrack/internal/queue"
	"github.com/eafc-tic/equiptrack/internal/repository"
	"github.com/eafc-tic/equiptrack/internal/router"
	"github.com/eafc-tic/equiptrack/internal/scanhold"
	"github.com/eafc-tic/equiptrack/internal/store"
)

func main() {
	// Load .env when present; a deployment may set real environment
	// variables instead, so a missing file is not an error.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Bootstrap(ctx, db); err != nil {
		log.Fatalf("database bootstrap: %v", err)
	}

	// Redis is optional: without it anonymous scans lose the replay token
	// but everything else keeps working.
	rdb := config.NewRedisClient()
	holds := scanhold.New(rdb, cfg.PendingScanTTL)

	users := repository.NewUserRepo(db)
	equipments := repository.NewEquipmentRepo(db)
	sessions := repository.NewSessionRepo(db)
	scanLogs := repository.NewScanLogRepo(db)
	tokens := repository.NewTokenRepo(db)

	dir := directory.New(users, directory.NewCache(), cfg.UserCacheTTL, cfg.BcryptCost, cfg.DefaultPassword)

	// The inventory prototype runs on exactly one backend per deployment.
	var inv store.Store
	switch cfg.InventoryBackend {
	case "mysql":
		inv = store.NewSQLStore(db)
	default:
		js, err := store.NewJSONStore(cfg.InventoryDataDir)
		if err != nil {
			log.Fatalf("inventory store: %v", err)
		}
		inv = js
	}

	authH := handler.NewAuthHandler(cfg, dir, tokens)
	userH := handler.NewUserHandler(dir)
	equipH := handler.NewEquipmentHandler(cfg, equipments)
	sessH := handler.NewSessionHandler(cfg, sessions, equipments, scanLogs)
	scanH := handler.NewScanHandler(cfg, sessions, equipments, scanLogs, holds)
	invH := handler.NewInventoryHandler(inv)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterScan(e, scanH, cfg.JWTSecret)
	router.RegisterSessions(e, sessH, cfg.JWTSecret)
	router.RegisterEquipment(e, equipH, cfg.JWTSecret)
	router.RegisterUsers(e, userH, cfg.JWTSecret)
	router.RegisterInventory(e, invH, cfg.JWTSecret)

	jobs.StartReaper(ctx, cfg, sessions)

	// The consumer keeps its own reconnect loop; it never returns under
	// normal operation.
	go func() {
		if err := queue.StartScanConsumer(); err != nil {
			log.Printf("scan consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
