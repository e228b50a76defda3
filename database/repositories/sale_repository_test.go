package repositories

import (
	"testing"
	"time"

	"github.com/greenrush-game/economy-engine/database/models"
)

func TestSummarizeRecords(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	records := []*models.SaleRecord{
		{TraderID: "t1", BuyerID: "b2", BuyerName: "Duke", Amount: 50, Timestamp: base},
		{TraderID: "t1", BuyerID: "b1", BuyerName: "Ace", Amount: 30, Timestamp: base.Add(10 * time.Minute)},
		{TraderID: "t1", BuyerID: "b1", BuyerName: "Ace", Amount: 10, Timestamp: base.Add(20 * time.Minute)},
	}

	s := summarizeRecords(records)

	if s.TotalSales != 3 || s.TotalRevenue != 90 {
		t.Errorf("totals = %d sales, %v revenue", s.TotalSales, s.TotalRevenue)
	}
	if s.CurrentStreak != 3 {
		t.Errorf("streak = %d, want 3", s.CurrentStreak)
	}
	if !s.LastSaleAt.Equal(base.Add(20 * time.Minute)) {
		t.Errorf("last sale at = %v", s.LastSaleAt)
	}

	// Top buyers carry names, as the engine's incremental summary does:
	// b1 leads on count, b2 on spend.
	if s.TopBuyerByCount != "Ace" {
		t.Errorf("top by count = %q, want Ace", s.TopBuyerByCount)
	}
	if s.TopBuyerBySpent != "Duke" {
		t.Errorf("top by spent = %q, want Duke", s.TopBuyerBySpent)
	}
}

func TestSummarizeRecordsStreakBreaks(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	records := []*models.SaleRecord{
		{TraderID: "t1", BuyerID: "b1", BuyerName: "Ace", Amount: 10, Timestamp: base},
		{TraderID: "t1", BuyerID: "b1", BuyerName: "Ace", Amount: 10, Timestamp: base.Add(30 * time.Minute)},
		{TraderID: "t1", BuyerID: "b1", BuyerName: "Ace", Amount: 10, Timestamp: base.Add(61 * time.Minute)},
	}

	s := summarizeRecords(records)

	// Second sale lands exactly on the window edge and continues the
	// streak; the third exceeds it and starts over.
	if s.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1", s.CurrentStreak)
	}
}

func TestSummarizeRecordsTieBreak(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	records := []*models.SaleRecord{
		{TraderID: "t1", BuyerID: "b2", BuyerName: "Duke", Amount: 25, Timestamp: base},
		{TraderID: "t1", BuyerID: "b1", BuyerName: "Ace", Amount: 25, Timestamp: base.Add(time.Minute)},
	}

	s := summarizeRecords(records)

	// Equal count and spend: the smaller buyer id wins, name reported.
	if s.TopBuyerByCount != "Ace" || s.TopBuyerBySpent != "Ace" {
		t.Errorf("top buyers = %q / %q, want Ace / Ace", s.TopBuyerByCount, s.TopBuyerBySpent)
	}
}

func TestSummarizeRecordsEmpty(t *testing.T) {
	s := summarizeRecords(nil)
	if s.TotalSales != 0 || s.TopBuyerByCount != "" || s.TopBuyerBySpent != "" {
		t.Errorf("empty log summary = %+v", s)
	}
}
