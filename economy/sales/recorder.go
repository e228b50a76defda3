package sales

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/greenrush-game/economy-engine/database/models"
	"github.com/greenrush-game/economy-engine/economy/utils"
)

// buyerAgg tracks per-buyer totals within one trader's log, so top-buyer
// lookups never rescan the whole log.
type buyerAgg struct {
	name  string
	count int
	spent float64
}

// Recorder keeps the append-only sale log and the derived per-trader
// analytics: cached summaries, streaks, presets and favorite buyers.
type Recorder struct {
	mu       sync.RWMutex
	records  map[string][]*models.SaleRecord
	profiles map[string]*models.TraderProfile
	byBuyer  map[string]map[string]*buyerAgg // traderID -> buyerID -> totals

	summaryCache *lru.Cache
}

func NewRecorder() *Recorder {
	cache, _ := lru.New(utils.SummaryCacheSize)
	return &Recorder{
		records:      make(map[string][]*models.SaleRecord),
		profiles:     make(map[string]*models.TraderProfile),
		byBuyer:      make(map[string]map[string]*buyerAgg),
		summaryCache: cache,
	}
}

// Record appends one completed sale and updates the cached summary
// incrementally. Returns the stored record and the reputation delta the
// sale earns (+2 base, +1 per full $100, capped at +20).
func (r *Recorder) Record(traderID, buyerID, buyerName, productID string, quantity int, amount float64, now time.Time) (*models.SaleRecord, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := &models.SaleRecord{
		ID:        utils.NewID(now),
		TraderID:  traderID,
		BuyerID:   buyerID,
		BuyerName: buyerName,
		ProductID: productID,
		Quantity:  quantity,
		Amount:    amount,
		Timestamp: now,
	}
	r.records[traderID] = append(r.records[traderID], rec)

	profile := r.profileLocked(traderID)
	summary := &profile.Summary

	// Streak: consecutive sales without a gap beyond the inactivity window
	if summary.TotalSales > 0 && now.Sub(summary.LastSaleAt) <= utils.StreakInactivityWindow {
		summary.CurrentStreak++
	} else {
		summary.CurrentStreak = 1
	}

	summary.TotalSales++
	summary.TotalRevenue += amount
	summary.LastSaleAt = now

	aggs := r.byBuyer[traderID]
	if aggs == nil {
		aggs = make(map[string]*buyerAgg)
		r.byBuyer[traderID] = aggs
	}
	agg := aggs[buyerID]
	if agg == nil {
		agg = &buyerAgg{}
		aggs[buyerID] = agg
	}
	agg.name = buyerName
	agg.count++
	agg.spent += amount

	summary.TopBuyerByCount, summary.TopBuyerBySpent = topBuyers(aggs)
	profile.UpdatedAt = now

	r.summaryCache.Add(traderID, *summary)

	return rec, reputationDelta(amount)
}

// reputationDelta scales the per-sale reputation gain with sale value.
func reputationDelta(amount float64) int {
	delta := utils.BaseReputationGain + utils.ReputationPerHundred*int(amount/100)
	if delta > utils.MaxReputationPerSale {
		return utils.MaxReputationPerSale
	}
	return delta
}

// topBuyers returns the buyer names leading by purchase count and by
// revenue. Ties resolve to the lexicographically smaller buyer id, so the
// result matches a full recomputation.
func topBuyers(aggs map[string]*buyerAgg) (byCount, bySpent string) {
	var bestCountID, bestSpentID string
	for id, agg := range aggs {
		if bestCountID == "" || agg.count > aggs[bestCountID].count ||
			(agg.count == aggs[bestCountID].count && id < bestCountID) {
			bestCountID = id
		}
		if bestSpentID == "" || agg.spent > aggs[bestSpentID].spent ||
			(agg.spent == aggs[bestSpentID].spent && id < bestSpentID) {
			bestSpentID = id
		}
	}
	if bestCountID != "" {
		byCount = aggs[bestCountID].name
	}
	if bestSpentID != "" {
		bySpent = aggs[bestSpentID].name
	}
	return byCount, bySpent
}

func (r *Recorder) profileLocked(traderID string) *models.TraderProfile {
	p, ok := r.profiles[traderID]
	if !ok {
		p = &models.TraderProfile{TraderID: traderID}
		r.profiles[traderID] = p
	}
	return p
}

// SummaryFor returns the cached summary for a trader. Unknown traders get
// a zero summary.
func (r *Recorder) SummaryFor(traderID string) models.SaleSummary {
	if cached, ok := r.summaryCache.Get(traderID); ok {
		return cached.(models.SaleSummary)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[traderID]
	if !ok {
		return models.SaleSummary{}
	}
	r.summaryCache.Add(traderID, p.Summary)
	return p.Summary
}

// RecentSales returns up to limit sales for a trader, newest first.
func (r *Recorder) RecentSales(traderID string, limit int) []*models.SaleRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.records[traderID]
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}

	out := make([]*models.SaleRecord, 0, limit)
	for i := len(all) - 1; i >= len(all)-limit; i-- {
		cp := *all[i]
		out = append(out, &cp)
	}
	return out
}

// Export returns the full sale log and trader profiles, for persistence.
func (r *Recorder) Export() ([]*models.SaleRecord, []*models.TraderProfile) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*models.SaleRecord
	for _, traderRecords := range r.records {
		for _, rec := range traderRecords {
			cp := *rec
			records = append(records, &cp)
		}
	}

	profiles := make([]*models.TraderProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		profiles = append(profiles, cloneProfile(p))
	}
	return records, profiles
}

// Restore replaces recorder state from persisted records and profiles.
// Per-buyer aggregates are rebuilt from the log.
func (r *Recorder) Restore(records []*models.SaleRecord, profiles []*models.TraderProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = make(map[string][]*models.SaleRecord)
	r.profiles = make(map[string]*models.TraderProfile)
	r.byBuyer = make(map[string]map[string]*buyerAgg)
	r.summaryCache.Purge()

	for _, rec := range records {
		cp := *rec
		r.records[cp.TraderID] = append(r.records[cp.TraderID], &cp)

		aggs := r.byBuyer[cp.TraderID]
		if aggs == nil {
			aggs = make(map[string]*buyerAgg)
			r.byBuyer[cp.TraderID] = aggs
		}
		agg := aggs[cp.BuyerID]
		if agg == nil {
			agg = &buyerAgg{}
			aggs[cp.BuyerID] = agg
		}
		agg.name = cp.BuyerName
		agg.count++
		agg.spent += cp.Amount
	}

	for _, p := range profiles {
		r.profiles[p.TraderID] = cloneProfile(p)
	}
}

func cloneProfile(p *models.TraderProfile) *models.TraderProfile {
	cp := *p
	cp.FavoriteBuyers = append([]string(nil), p.FavoriteBuyers...)
	cp.Presets = append([]models.SalePreset(nil), p.Presets...)
	return &cp
}
