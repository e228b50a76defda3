package sales

import (
	"testing"
	"time"

	"github.com/greenrush-game/economy-engine/database/models"
)

func TestRecordBuildsSummary(t *testing.T) {
	r := NewRecorder()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	r.Record("t1", "b1", "Slim", "og-kush", 5, 250, now)
	r.Record("t1", "b2", "Roxy", "haze", 2, 100, now.Add(5*time.Minute))

	s := r.SummaryFor("t1")
	if s.TotalSales != 2 {
		t.Errorf("TotalSales = %d, want 2", s.TotalSales)
	}
	if s.TotalRevenue != 350 {
		t.Errorf("TotalRevenue = %v, want 350", s.TotalRevenue)
	}
	if !s.LastSaleAt.Equal(now.Add(5 * time.Minute)) {
		t.Errorf("LastSaleAt = %v", s.LastSaleAt)
	}
	if s.TopBuyerBySpent != "Slim" {
		t.Errorf("TopBuyerBySpent = %q, want Slim", s.TopBuyerBySpent)
	}
}

func TestStreak(t *testing.T) {
	r := NewRecorder()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// Three sales inside the 30-minute window
	r.Record("t1", "b1", "Slim", "x", 1, 10, now)
	r.Record("t1", "b1", "Slim", "x", 1, 10, now.Add(20*time.Minute))
	r.Record("t1", "b1", "Slim", "x", 1, 10, now.Add(40*time.Minute))

	if s := r.SummaryFor("t1"); s.CurrentStreak != 3 {
		t.Errorf("streak = %d, want 3", s.CurrentStreak)
	}

	// A fourth sale past the window resets to 1
	r.Record("t1", "b1", "Slim", "x", 1, 10, now.Add(40*time.Minute).Add(31*time.Minute))
	if s := r.SummaryFor("t1"); s.CurrentStreak != 1 {
		t.Errorf("streak after gap = %d, want 1", s.CurrentStreak)
	}

	// A gap of exactly the window still continues the streak
	r.Record("t1", "b1", "Slim", "x", 1, 10, now.Add(71*time.Minute).Add(30*time.Minute))
	if s := r.SummaryFor("t1"); s.CurrentStreak != 2 {
		t.Errorf("streak at exact window = %d, want 2", s.CurrentStreak)
	}
}

func TestReputationDelta(t *testing.T) {
	tests := []struct {
		amount float64
		want   int
	}{
		{0, 2},
		{99.99, 2},
		{100, 3},
		{550, 7},
		{1800, 20},  // 2 + 18 = cap
		{50000, 20}, // far past the cap
	}
	for _, tt := range tests {
		if got := reputationDelta(tt.amount); got != tt.want {
			t.Errorf("reputationDelta(%v) = %d, want %d", tt.amount, got, tt.want)
		}
	}
}

func TestTopBuyersMatchFullRecomputation(t *testing.T) {
	r := NewRecorder()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	r.Record("t1", "b1", "Slim", "x", 1, 50, now)
	r.Record("t1", "b1", "Slim", "x", 1, 50, now.Add(time.Minute))
	r.Record("t1", "b2", "Roxy", "x", 1, 500, now.Add(2*time.Minute))

	s := r.SummaryFor("t1")
	if s.TopBuyerByCount != "Slim" {
		t.Errorf("TopBuyerByCount = %q, want Slim", s.TopBuyerByCount)
	}
	if s.TopBuyerBySpent != "Roxy" {
		t.Errorf("TopBuyerBySpent = %q, want Roxy", s.TopBuyerBySpent)
	}

	// Full recomputation over the log agrees with the incremental view
	counts := map[string]int{}
	spent := map[string]float64{}
	names := map[string]string{}
	for _, rec := range r.RecentSales("t1", 0) {
		counts[rec.BuyerID]++
		spent[rec.BuyerID] += rec.Amount
		names[rec.BuyerID] = rec.BuyerName
	}
	var topCount, topSpent string
	for id := range counts {
		if topCount == "" || counts[id] > counts[topCount] {
			topCount = id
		}
		if topSpent == "" || spent[id] > spent[topSpent] {
			topSpent = id
		}
	}
	if names[topCount] != s.TopBuyerByCount || names[topSpent] != s.TopBuyerBySpent {
		t.Error("incremental top buyers disagree with full recomputation")
	}
}

func TestRecentSales(t *testing.T) {
	r := NewRecorder()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		r.Record("t1", "b1", "Slim", "x", 1, float64(i), now.Add(time.Duration(i)*time.Minute))
	}

	recent := r.RecentSales("t1", 3)
	if len(recent) != 3 {
		t.Fatalf("len = %d, want 3", len(recent))
	}
	if recent[0].Amount != 4 || recent[2].Amount != 2 {
		t.Errorf("order wrong: %v, %v, %v", recent[0].Amount, recent[1].Amount, recent[2].Amount)
	}

	if got := r.RecentSales("unknown", 10); len(got) != 0 {
		t.Errorf("unknown trader returned %d sales", len(got))
	}
}

func TestPresets(t *testing.T) {
	r := NewRecorder()
	now := time.Now()

	r.AddPreset("t1", models.SalePreset{Label: "happy-hour", Multiplier: 0.9, Description: "evening discount"}, now)
	r.AddPreset("t1", models.SalePreset{Label: "premium", Multiplier: 1.25}, now)

	// Same label replaces
	r.AddPreset("t1", models.SalePreset{Label: "happy-hour", Multiplier: 0.8}, now)

	presets := r.Presets("t1")
	if len(presets) != 2 {
		t.Fatalf("len = %d, want 2", len(presets))
	}
	if p, ok := r.PresetFor("t1", "happy-hour"); !ok || p.Multiplier != 0.8 {
		t.Errorf("happy-hour = %+v, ok=%v", p, ok)
	}

	if !r.RemovePreset("t1", "premium", now) {
		t.Error("RemovePreset returned false for existing preset")
	}
	if r.RemovePreset("t1", "premium", now) {
		t.Error("RemovePreset returned true for missing preset")
	}
	if _, ok := r.PresetFor("t1", "premium"); ok {
		t.Error("removed preset still found")
	}
}

func TestFavoriteBuyers(t *testing.T) {
	r := NewRecorder()
	now := time.Now()

	r.AddFavoriteBuyer("t1", "b1", now)
	r.AddFavoriteBuyer("t1", "b2", now)
	r.AddFavoriteBuyer("t1", "b1", now) // idempotent

	favs := r.FavoriteBuyers("t1")
	if len(favs) != 2 {
		t.Fatalf("len = %d, want 2", len(favs))
	}

	if !r.RemoveFavoriteBuyer("t1", "b1", now) {
		t.Error("RemoveFavoriteBuyer returned false for member")
	}
	if r.RemoveFavoriteBuyer("t1", "b1", now) {
		t.Error("RemoveFavoriteBuyer returned true for non-member")
	}
	if got := r.FavoriteBuyers("t1"); len(got) != 1 || got[0] != "b2" {
		t.Errorf("favorites = %v, want [b2]", got)
	}
}

func TestExportRestoreRoundTrip(t *testing.T) {
	r := NewRecorder()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	r.Record("t1", "b1", "Slim", "x", 1, 150, now)
	r.Record("t1", "b1", "Slim", "x", 1, 150, now.Add(time.Minute))
	r.AddPreset("t1", models.SalePreset{Label: "p", Multiplier: 1.1}, now)
	r.AddFavoriteBuyer("t1", "b1", now)

	records, profiles := r.Export()
	restored := NewRecorder()
	restored.Restore(records, profiles)

	s := restored.SummaryFor("t1")
	if s.TotalSales != 2 || s.TotalRevenue != 300 || s.CurrentStreak != 2 {
		t.Errorf("restored summary = %+v", s)
	}
	if len(restored.RecentSales("t1", 0)) != 2 {
		t.Error("restored log incomplete")
	}
	if _, ok := restored.PresetFor("t1", "p"); !ok {
		t.Error("restored presets incomplete")
	}

	// Aggregates were rebuilt from the log: a new sale keeps top buyers correct
	restored.Record("t1", "b2", "Roxy", "x", 1, 1000, now.Add(2*time.Minute))
	if s := restored.SummaryFor("t1"); s.TopBuyerBySpent != "Roxy" || s.TopBuyerByCount != "Slim" {
		t.Errorf("post-restore summary = %+v", s)
	}
}
