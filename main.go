package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/greenrush-game/economy-engine/database"
	"github.com/greenrush-game/economy-engine/database/models"
	"github.com/greenrush-game/economy-engine/database/repositories"
	"github.com/greenrush-game/economy-engine/economy"
	"github.com/greenrush-game/economy-engine/logger"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting GreenRush economy engine",
		slog.String("version", version),
		slog.String("commit", commit))

	path := flag.String("config", "config.toml", "path to config")
	saveInterval := flag.Duration("save-interval", 5*time.Minute, "how often to persist engine state")
	flag.Parse()

	cfg, err := economy.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}

	slog.Info("Database ready",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	store := repositories.NewStore(db.BunDB())

	engine := buildEngine(cfg)
	state, err := store.LoadState(ctx)
	if err != nil {
		slog.Error("Failed to load engine state", slog.Any("error", err))
		os.Exit(-1)
	}
	engine.Restore(economy.Snapshot{
		Buyers:         state.Buyers,
		Reputation:     state.Reputation,
		MarketEvent:    state.MarketEvent,
		BulkOrders:     state.BulkOrders,
		SaleRecords:    state.SaleRecords,
		TraderProfiles: state.TraderProfiles,
	})
	slog.Info("Engine state restored",
		slog.String("type", "eco"),
		slog.Int("buyers", len(state.Buyers)),
		slog.Int("sales", len(state.SaleRecords)))

	stop := make(chan struct{})
	tick := time.Duration(cfg.Economy.MarketTickSeconds) * time.Second
	if tick <= 0 {
		tick = time.Minute
	}
	engine.Market().StartTicker(tick, stop)

	go persistLoop(engine, store, *saveInterval, stop)

	slog.Info("Economy engine is now running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-s

	close(stop)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := saveEngine(shutdownCtx, engine, store); err != nil {
		slog.Error("Final state save failed", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Shut down cleanly")
}

func buildEngine(cfg *economy.Config) *economy.Engine {
	catalog := func(productID string) (models.Product, bool) {
		// The daemon has no host game attached; every configured order
		// product quotes at a unit value of 1 until a catalog is wired.
		for _, id := range cfg.Economy.OrderProducts {
			if id == productID {
				return models.Product{ID: id, BaseUnitValue: 1}, true
			}
		}
		return models.Product{}, false
	}

	if cfg.Economy.Seed != 0 {
		return economy.NewWithRand(catalog, cfg.Economy.OrderProducts, rand.New(rand.NewSource(cfg.Economy.Seed)))
	}
	return economy.New(catalog, cfg.Economy.OrderProducts)
}

func persistLoop(engine *economy.Engine, store *repositories.Store, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := saveEngine(ctx, engine, store); err != nil {
				slog.Error("Periodic state save failed", slog.Any("error", err))
			}
			cancel()
		}
	}
}

func saveEngine(ctx context.Context, engine *economy.Engine, store *repositories.Store) error {
	snap := engine.Snapshot()
	return store.SaveState(ctx, repositories.EngineState{
		Buyers:         snap.Buyers,
		Reputation:     snap.Reputation,
		MarketEvent:    snap.MarketEvent,
		BulkOrders:     snap.BulkOrders,
		SaleRecords:    snap.SaleRecords,
		TraderProfiles: snap.TraderProfiles,
	})
}
