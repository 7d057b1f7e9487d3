package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tcsgo-engine/internal/catalog"
	"tcsgo-engine/internal/config"
	"tcsgo-engine/internal/engine"
	"tcsgo-engine/internal/handler"
	"tcsgo-engine/internal/notify"
	"tcsgo-engine/internal/router"
	"tcsgo-engine/internal/store"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting TCSGO engine...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Load the read-only tables (case odds, aliases, prices)
	cat, err := catalog.Load(catalog.Paths{
		CaseOddsDir: cfg.Data.CaseOddsDir,
		AliasesPath: cfg.Data.AliasesPath,
		PricesPath:  cfg.Data.PricesPath,
	})
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	// Initialize the ledger store based on config
	var ledgerStore store.LedgerStore
	switch cfg.Ledger.Backend {
	case "sqlite":
		sqliteStore, err := store.NewSQLiteStore(cfg.Ledger.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite ledger store: %v", err)
		}
		ledgerStore = sqliteStore
		log.Println("SQLite ledger store initialized")
	case "mysql":
		db, err := sql.Open("mysql", cfg.Database.DSN())
		if err != nil {
			log.Fatalf("Failed to open MySQL: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.Ping(); err != nil {
			log.Fatalf("MySQL ping failed: %v", err)
		}
		mysqlStore, err := store.NewMySQLStore(db)
		if err != nil {
			log.Fatalf("Failed to initialize MySQL ledger store: %v", err)
		}
		ledgerStore = mysqlStore
		log.Println("MySQL ledger store initialized")
	default: // file
		fileStore := store.NewFileStore(cfg.Ledger.Path, cfg.Ledger.ResetOnCorrupt)
		if cfg.Ledger.FallbackPath != "" {
			fallback, err := store.NewSQLiteStore(cfg.Ledger.FallbackPath)
			if err != nil {
				log.Printf("Warning: fallback store unavailable: %v", err)
				ledgerStore = fileStore
			} else {
				ledgerStore = store.NewFallbackStore(fileStore, fallback)
				log.Println("File ledger store initialized with SQLite fallback")
			}
		} else {
			ledgerStore = fileStore
			log.Println("File ledger store initialized")
		}
	}
	defer ledgerStore.Close()

	// Initialize result delivery (memory by default, redis when enabled)
	var (
		notifier notify.Notifier   = notify.NewMemoryNotifier()
		results  notify.ResultSlot = notify.NewMemoryResultSlot(cfg.Redis.ResultTTL)
		deduper  notify.Deduper
	)
	if cfg.Redis.DedupTTL > 0 {
		deduper = notify.NewMemoryDeduper(cfg.Redis.DedupTTL)
	}

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Printf("Warning: Redis connection failed, using in-memory delivery: %v", err)
		} else {
			notifier = notify.NewRedisNotifier(redisClient)
			results = notify.NewRedisResultSlot(redisClient, cfg.Redis.ResultTTL)
			if cfg.Redis.DedupTTL > 0 {
				deduper = notify.NewRedisDeduper(redisClient, cfg.Redis.DedupTTL)
			}
			log.Println("Redis result delivery initialized")
		}
	}

	// Initialize the engine
	eng := engine.New(engine.Options{
		Store:    ledgerStore,
		Catalog:  cat,
		Notifier: notifier,
		Results:  results,
		Deduper:  deduper,
		LockDays: cfg.Economy.TradeLockDays,
		SellTTL:  cfg.Economy.SellTokenTTL,
		KeyID:    cfg.Economy.KeyID,
	})

	// Create router
	r := router.New(router.Config{
		Handler:    handler.New(),
		Operations: handler.NewOperationsHandler(eng),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
