package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/greenrush-game/economy-engine/database/models"
	"github.com/uptrace/bun"
)

var ErrBuyerNotFound = errors.New("buyer not found")

type BuyerRepository interface {
	GetByID(ctx context.Context, buyerID string) (*models.Buyer, error)
	GetAll(ctx context.Context) ([]*models.Buyer, error)
	Upsert(ctx context.Context, buyer *models.Buyer) error
	UpsertBatch(ctx context.Context, buyers []*models.Buyer) error
	GetActiveSince(ctx context.Context, since time.Time) ([]*models.Buyer, error)
}

type buyerRepository struct {
	db *bun.DB
}

func NewBuyerRepository(db *bun.DB) BuyerRepository {
	return &buyerRepository{db: db}
}

func (r *buyerRepository) GetByID(ctx context.Context, buyerID string) (*models.Buyer, error) {
	buyer := new(models.Buyer)
	err := r.db.NewSelect().
		Model(buyer).
		Where("id = ?", buyerID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBuyerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get buyer: %w", err)
	}
	return buyer, nil
}

func (r *buyerRepository) GetAll(ctx context.Context) ([]*models.Buyer, error) {
	var buyers []*models.Buyer
	err := r.db.NewSelect().
		Model(&buyers).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load buyers: %w", err)
	}
	return buyers, nil
}

func (r *buyerRepository) Upsert(ctx context.Context, buyer *models.Buyer) error {
	_, err := r.db.NewInsert().
		Model(buyer).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("personality = EXCLUDED.personality").
		Set("favorite_rarity = EXCLUDED.favorite_rarity").
		Set("prefers_quality = EXCLUDED.prefers_quality").
		Set("prefers_bulk = EXCLUDED.prefers_bulk").
		Set("favorite_products = EXCLUDED.favorite_products").
		Set("total_purchases = EXCLUDED.total_purchases").
		Set("total_spent = EXCLUDED.total_spent").
		Set("purchase_history = EXCLUDED.purchase_history").
		Set("last_seen_at = EXCLUDED.last_seen_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert buyer %s: %w", buyer.ID, err)
	}
	return nil
}

func (r *buyerRepository) UpsertBatch(ctx context.Context, buyers []*models.Buyer) error {
	if len(buyers) == 0 {
		return nil
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, buyer := range buyers {
			_, err := tx.NewInsert().
				Model(buyer).
				On("CONFLICT (id) DO UPDATE").
				Set("name = EXCLUDED.name").
				Set("personality = EXCLUDED.personality").
				Set("favorite_rarity = EXCLUDED.favorite_rarity").
				Set("prefers_quality = EXCLUDED.prefers_quality").
				Set("prefers_bulk = EXCLUDED.prefers_bulk").
				Set("favorite_products = EXCLUDED.favorite_products").
				Set("total_purchases = EXCLUDED.total_purchases").
				Set("total_spent = EXCLUDED.total_spent").
				Set("purchase_history = EXCLUDED.purchase_history").
				Set("last_seen_at = EXCLUDED.last_seen_at").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to upsert buyer %s: %w", buyer.ID, err)
			}
		}
		return nil
	})
}

func (r *buyerRepository) GetActiveSince(ctx context.Context, since time.Time) ([]*models.Buyer, error) {
	var buyers []*models.Buyer
	err := r.db.NewSelect().
		Model(&buyers).
		Where("last_seen_at >= ?", since).
		Order("last_seen_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active buyers: %w", err)
	}
	return buyers, nil
}
