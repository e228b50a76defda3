package repositories

import (
	"context"
	"fmt"

	"github.com/greenrush-game/economy-engine/database/models"
	"github.com/uptrace/bun"
)

type ReputationRepository interface {
	GetAll(ctx context.Context) ([]models.ReputationEntry, error)
	GetByTrader(ctx context.Context, traderID string) ([]models.ReputationEntry, error)
	SaveAll(ctx context.Context, entries []models.ReputationEntry) error
}

type reputationRepository struct {
	db *bun.DB
}

func NewReputationRepository(db *bun.DB) ReputationRepository {
	return &reputationRepository{db: db}
}

func (r *reputationRepository) GetAll(ctx context.Context) ([]models.ReputationEntry, error) {
	var entries []models.ReputationEntry
	err := r.db.NewSelect().
		Model(&entries).
		Order("trader_id ASC", "category ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reputation entries: %w", err)
	}
	return entries, nil
}

func (r *reputationRepository) GetByTrader(ctx context.Context, traderID string) ([]models.ReputationEntry, error) {
	var entries []models.ReputationEntry
	err := r.db.NewSelect().
		Model(&entries).
		Where("trader_id = ?", traderID).
		Order("category ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reputation for %s: %w", traderID, err)
	}
	return entries, nil
}

// SaveAll replaces the persisted ledger with the in-memory one. Scores are
// keyed by (trader, category), so a plain truncate-and-insert keeps the two
// in lockstep without per-row conflict handling.
func (r *reputationRepository) SaveAll(ctx context.Context, entries []models.ReputationEntry) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.ReputationEntry)(nil)).
			Where("1=1").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear reputation entries: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().
			Model(&entries).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert reputation entries: %w", err)
		}
		return nil
	})
}
