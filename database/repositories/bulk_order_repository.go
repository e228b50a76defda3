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

var ErrNoActiveOrder = errors.New("no active bulk order")

type BulkOrderRepository interface {
	GetActiveByTrader(ctx context.Context, traderID string) (*models.BulkOrder, error)
	GetAllActive(ctx context.Context) ([]*models.BulkOrder, error)
	GetNewestPerTrader(ctx context.Context) ([]*models.BulkOrder, error)
	GetHistory(ctx context.Context, traderID string, limit int) ([]*models.BulkOrder, error)
	Save(ctx context.Context, order *models.BulkOrder) error
	SaveBatch(ctx context.Context, orders []*models.BulkOrder) error
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type bulkOrderRepository struct {
	db *bun.DB
}

func NewBulkOrderRepository(db *bun.DB) BulkOrderRepository {
	return &bulkOrderRepository{db: db}
}

func (r *bulkOrderRepository) GetActiveByTrader(ctx context.Context, traderID string) (*models.BulkOrder, error) {
	order := new(models.BulkOrder)
	err := r.db.NewSelect().
		Model(order).
		Where("trader_id = ?", traderID).
		Where("status = ?", models.BulkOrderStatusActive).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveOrder
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active order for %s: %w", traderID, err)
	}
	return order, nil
}

func (r *bulkOrderRepository) GetAllActive(ctx context.Context) ([]*models.BulkOrder, error) {
	var orders []*models.BulkOrder
	err := r.db.NewSelect().
		Model(&orders).
		Where("status = ?", models.BulkOrderStatusActive).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active orders: %w", err)
	}
	return orders, nil
}

// GetNewestPerTrader returns each trader's most recent order, whatever its
// status. The generation cooldown runs from the last creation even when
// that order is fulfilled or expired, so restores need these rows too.
func (r *bulkOrderRepository) GetNewestPerTrader(ctx context.Context) ([]*models.BulkOrder, error) {
	var orders []*models.BulkOrder
	err := r.db.NewSelect().
		Model(&orders).
		DistinctOn("trader_id").
		Order("trader_id ASC", "created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load newest orders: %w", err)
	}
	return orders, nil
}

func (r *bulkOrderRepository) GetHistory(ctx context.Context, traderID string, limit int) ([]*models.BulkOrder, error) {
	var orders []*models.BulkOrder
	q := r.db.NewSelect().
		Model(&orders).
		Where("trader_id = ?", traderID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load order history for %s: %w", traderID, err)
	}
	return orders, nil
}

func (r *bulkOrderRepository) Save(ctx context.Context, order *models.BulkOrder) error {
	_, err := r.db.NewInsert().
		Model(order).
		On("CONFLICT (id) DO UPDATE").
		Set("progress = EXCLUDED.progress").
		Set("status = EXCLUDED.status").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save order %d: %w", order.ID, err)
	}
	return nil
}

func (r *bulkOrderRepository) SaveBatch(ctx context.Context, orders []*models.BulkOrder) error {
	if len(orders) == 0 {
		return nil
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, order := range orders {
			_, err := tx.NewInsert().
				Model(order).
				On("CONFLICT (id) DO UPDATE").
				Set("progress = EXCLUDED.progress").
				Set("status = EXCLUDED.status").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to save order %d: %w", order.ID, err)
			}
		}
		return nil
	})
}

// ExpireStale flips active orders whose lifetime has passed. The in-memory
// manager expires lazily; this keeps the table honest for direct queries.
func (r *bulkOrderRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.NewUpdate().
		Model((*models.BulkOrder)(nil)).
		Set("status = ?", models.BulkOrderStatusExpired).
		Where("status = ?", models.BulkOrderStatusActive).
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale orders: %w", err)
	}
	return result.RowsAffected()
}
