package repositories

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/greenrush-game/economy-engine/database/models"
	"github.com/uptrace/bun"
)

// EngineState is the engine's durable state in persistence shape. It has
// the same fields as the engine's snapshot; the host converts between the
// two when wiring persistence.
type EngineState struct {
	Buyers         []*models.Buyer
	Reputation     []models.ReputationEntry
	MarketEvent    *models.MarketEvent
	BulkOrders     []*models.BulkOrder
	SaleRecords    []*models.SaleRecord
	TraderProfiles []*models.TraderProfile
}

// Store bundles the per-table repositories behind whole-state save and
// load, for snapshot-at-shutdown / restore-at-startup hosts.
type Store struct {
	Buyers     BuyerRepository
	Reputation ReputationRepository
	Market     MarketRepository
	BulkOrders BulkOrderRepository
	Sales      SaleRepository
	Profiles   TraderProfileRepository
}

func NewStore(db *bun.DB) *Store {
	return &Store{
		Buyers:     NewBuyerRepository(db),
		Reputation: NewReputationRepository(db),
		Market:     NewMarketRepository(db),
		BulkOrders: NewBulkOrderRepository(db),
		Sales:      NewSaleRepository(db),
		Profiles:   NewTraderProfileRepository(db),
	}
}

func (s *Store) SaveState(ctx context.Context, state EngineState) error {
	start := time.Now()

	if err := s.Buyers.UpsertBatch(ctx, state.Buyers); err != nil {
		return fmt.Errorf("failed to save buyers: %w", err)
	}
	if err := s.Reputation.SaveAll(ctx, state.Reputation); err != nil {
		return fmt.Errorf("failed to save reputation: %w", err)
	}
	if state.MarketEvent != nil {
		latest, err := s.Market.GetLatest(ctx)
		if err != nil {
			return fmt.Errorf("failed to check market history: %w", err)
		}
		// Only append on an actual transition
		if latest == nil || latest.Kind != state.MarketEvent.Kind || !latest.StartedAt.Equal(state.MarketEvent.StartedAt) {
			ev := *state.MarketEvent
			ev.ID = 0
			if err := s.Market.Append(ctx, &ev); err != nil {
				return fmt.Errorf("failed to save market event: %w", err)
			}
		}
	}
	if err := s.BulkOrders.SaveBatch(ctx, state.BulkOrders); err != nil {
		return fmt.Errorf("failed to save bulk orders: %w", err)
	}
	if err := s.Sales.InsertBatch(ctx, state.SaleRecords); err != nil {
		return fmt.Errorf("failed to save sale records: %w", err)
	}
	if err := s.Profiles.UpsertBatch(ctx, state.TraderProfiles); err != nil {
		return fmt.Errorf("failed to save trader profiles: %w", err)
	}

	slog.Info("Engine state saved",
		slog.String("type", "db"),
		slog.Int("buyers", len(state.Buyers)),
		slog.Int("sales", len(state.SaleRecords)),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}

func (s *Store) LoadState(ctx context.Context) (EngineState, error) {
	var state EngineState
	var err error

	if state.Buyers, err = s.Buyers.GetAll(ctx); err != nil {
		return state, err
	}
	if state.Reputation, err = s.Reputation.GetAll(ctx); err != nil {
		return state, err
	}
	if state.MarketEvent, err = s.Market.GetLatest(ctx); err != nil {
		return state, err
	}
	// Newest per trader, not just active: the manager reseeds the
	// generation cooldown from fulfilled and expired orders too.
	if state.BulkOrders, err = s.BulkOrders.GetNewestPerTrader(ctx); err != nil {
		return state, err
	}
	if state.SaleRecords, err = s.Sales.GetAll(ctx); err != nil {
		return state, err
	}
	if state.TraderProfiles, err = s.Profiles.GetAll(ctx); err != nil {
		return state, err
	}

	return state, nil
}
