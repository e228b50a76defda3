package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/greenrush-game/economy-engine/database/models"
	"github.com/uptrace/bun"
)

type MarketRepository interface {
	GetLatest(ctx context.Context) (*models.MarketEvent, error)
	Append(ctx context.Context, event *models.MarketEvent) error
	GetHistory(ctx context.Context, limit int) ([]*models.MarketEvent, error)
}

type marketRepository struct {
	db *bun.DB
}

func NewMarketRepository(db *bun.DB) MarketRepository {
	return &marketRepository{db: db}
}

// GetLatest returns the most recently started event, or nil if none has
// ever been recorded.
func (r *marketRepository) GetLatest(ctx context.Context) (*models.MarketEvent, error) {
	event := new(models.MarketEvent)
	err := r.db.NewSelect().
		Model(event).
		Order("started_at DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest market event: %w", err)
	}
	return event, nil
}

// Append records an event transition. The table is an append-only history;
// the newest row is the live one.
func (r *marketRepository) Append(ctx context.Context, event *models.MarketEvent) error {
	_, err := r.db.NewInsert().
		Model(event).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to append market event: %w", err)
	}
	return nil
}

func (r *marketRepository) GetHistory(ctx context.Context, limit int) ([]*models.MarketEvent, error) {
	var events []*models.MarketEvent
	q := r.db.NewSelect().
		Model(&events).
		Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load market history: %w", err)
	}
	return events, nil
}
