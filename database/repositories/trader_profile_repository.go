package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/greenrush-game/economy-engine/database/models"
	"github.com/uptrace/bun"
)

type TraderProfileRepository interface {
	GetAll(ctx context.Context) ([]*models.TraderProfile, error)
	Upsert(ctx context.Context, profile *models.TraderProfile) error
	UpsertBatch(ctx context.Context, profiles []*models.TraderProfile) error
}

type traderProfileRepository struct {
	db *bun.DB
}

func NewTraderProfileRepository(db *bun.DB) TraderProfileRepository {
	return &traderProfileRepository{db: db}
}

func (r *traderProfileRepository) GetAll(ctx context.Context) ([]*models.TraderProfile, error) {
	var profiles []*models.TraderProfile
	err := r.db.NewSelect().
		Model(&profiles).
		Order("trader_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load trader profiles: %w", err)
	}
	return profiles, nil
}

func (r *traderProfileRepository) Upsert(ctx context.Context, profile *models.TraderProfile) error {
	profile.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().
		Model(profile).
		On("CONFLICT (trader_id) DO UPDATE").
		Set("summary = EXCLUDED.summary").
		Set("favorite_buyers = EXCLUDED.favorite_buyers").
		Set("presets = EXCLUDED.presets").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", profile.TraderID, err)
	}
	return nil
}

func (r *traderProfileRepository) UpsertBatch(ctx context.Context, profiles []*models.TraderProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()
		for _, profile := range profiles {
			profile.UpdatedAt = now
			_, err := tx.NewInsert().
				Model(profile).
				On("CONFLICT (trader_id) DO UPDATE").
				Set("summary = EXCLUDED.summary").
				Set("favorite_buyers = EXCLUDED.favorite_buyers").
				Set("presets = EXCLUDED.presets").
				Set("updated_at = EXCLUDED.updated_at").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to upsert profile %s: %w", profile.TraderID, err)
			}
		}
		return nil
	})
}
