package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"log/slog"

	"github.com/greenrush-game/economy-engine/database/models"
	"github.com/greenrush-game/economy-engine/economy/utils"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	summaryQueryTimeout = 10 * time.Second
	parallelRecomputes  = 4
)

type SaleRepository interface {
	Insert(ctx context.Context, record *models.SaleRecord) error
	InsertBatch(ctx context.Context, records []*models.SaleRecord) error
	GetAll(ctx context.Context) ([]*models.SaleRecord, error)
	GetByTrader(ctx context.Context, traderID string, limit int) ([]*models.SaleRecord, error)
	RecomputeSummaries(ctx context.Context, traderIDs []string) error
}

type saleRepository struct {
	db *bun.DB
}

func NewSaleRepository(db *bun.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Insert(ctx context.Context, record *models.SaleRecord) error {
	_, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert sale record: %w", err)
	}
	return nil
}

func (r *saleRepository) InsertBatch(ctx context.Context, records []*models.SaleRecord) error {
	if len(records) == 0 {
		return nil
	}
	_, err := r.db.NewInsert().
		Model(&records).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert sale records: %w", err)
	}
	return nil
}

func (r *saleRepository) GetAll(ctx context.Context) ([]*models.SaleRecord, error) {
	var records []*models.SaleRecord
	err := r.db.NewSelect().
		Model(&records).
		Order("timestamp ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale records: %w", err)
	}
	return records, nil
}

func (r *saleRepository) GetByTrader(ctx context.Context, traderID string, limit int) ([]*models.SaleRecord, error) {
	var records []*models.SaleRecord
	q := r.db.NewSelect().
		Model(&records).
		Where("trader_id = ?", traderID).
		Order("timestamp DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load sales for %s: %w", traderID, err)
	}
	return records, nil
}

// RecomputeSummaries rebuilds the cached summary of each given trader from
// the full sale log and writes it back to the trader profile. Traders are
// processed in parallel with a bounded number of concurrent queries.
func (r *saleRepository) RecomputeSummaries(ctx context.Context, traderIDs []string) error {
	if len(traderIDs) == 0 {
		return nil
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(parallelRecomputes)

	for _, traderID := range traderIDs {
		traderID := traderID
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			queryCtx, cancel := context.WithTimeout(gctx, summaryQueryTimeout)
			defer cancel()

			summary, err := r.recomputeOne(queryCtx, traderID)
			if err != nil {
				return fmt.Errorf("failed to recompute summary for %s: %w", traderID, err)
			}

			data, err := json.Marshal(summary)
			if err != nil {
				return fmt.Errorf("failed to encode summary for %s: %w", traderID, err)
			}

			_, err = r.db.NewUpdate().
				Model((*models.TraderProfile)(nil)).
				Set("summary = ?", string(data)).
				Set("updated_at = ?", time.Now()).
				Where("trader_id = ?", traderID).
				Exec(queryCtx)
			if err != nil {
				return fmt.Errorf("failed to store summary for %s: %w", traderID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("Sale summaries recomputed",
		slog.String("type", "db"),
		slog.Int("traders", len(traderIDs)),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}

func (r *saleRepository) recomputeOne(ctx context.Context, traderID string) (*models.SaleSummary, error) {
	records, err := r.GetByTrader(ctx, traderID, 0)
	if err != nil {
		return nil, err
	}

	// GetByTrader returns newest first; the streak walk wants oldest first.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	return summarizeRecords(records), nil
}

// summarizeRecords folds an oldest-first sale log into a summary. It must
// agree with the engine's incremental bookkeeping: top buyers carry the
// display name, with count/spend ties resolved by the smaller buyer id.
func summarizeRecords(records []*models.SaleRecord) *models.SaleSummary {
	summary := &models.SaleSummary{}
	counts := make(map[string]int)
	spent := make(map[string]float64)
	names := make(map[string]string)

	for _, rec := range records {
		if summary.TotalSales > 0 && rec.Timestamp.Sub(summary.LastSaleAt) > utils.StreakInactivityWindow {
			summary.CurrentStreak = 0
		}
		summary.CurrentStreak++
		summary.TotalSales++
		summary.TotalRevenue += rec.Amount
		summary.LastSaleAt = rec.Timestamp

		counts[rec.BuyerID]++
		spent[rec.BuyerID] += rec.Amount
		names[rec.BuyerID] = rec.BuyerName
	}

	var topCountID, topSpentID string
	for id, n := range counts {
		if topCountID == "" || n > counts[topCountID] || (n == counts[topCountID] && id < topCountID) {
			topCountID = id
		}
	}
	for id, s := range spent {
		if topSpentID == "" || s > spent[topSpentID] || (s == spent[topSpentID] && id < topSpentID) {
			topSpentID = id
		}
	}
	if topCountID != "" {
		summary.TopBuyerByCount = names[topCountID]
	}
	if topSpentID != "" {
		summary.TopBuyerBySpent = names[topSpentID]
	}

	return summary
}
