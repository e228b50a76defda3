package buyers

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/greenrush-game/economy-engine/database/models"
)

func testDirectory() *Directory {
	return NewDirectory(rand.New(rand.NewSource(42)))
}

func TestGetOrCreateSynthesizesBuyer(t *testing.T) {
	d := testDirectory()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	b := d.GetOrCreate("buyer-1", now)
	if b.ID != "buyer-1" {
		t.Errorf("ID = %q, want buyer-1", b.ID)
	}
	if b.Name == "" {
		t.Error("synthesized buyer has no name")
	}
	if _, ok := personalityTable[b.Personality]; !ok {
		t.Errorf("unknown personality %q", b.Personality)
	}
	if !b.FirstSeenAt.Equal(now) || !b.LastSeenAt.Equal(now) {
		t.Error("timestamps not initialized to now")
	}

	// Second call returns the same buyer, not a new one
	again := d.GetOrCreate("buyer-1", now.Add(time.Hour))
	if again.Name != b.Name || again.Personality != b.Personality {
		t.Error("GetOrCreate created a second identity for the same id")
	}
	if d.Len() != 1 {
		t.Errorf("Len = %d, want 1", d.Len())
	}
}

func TestRecordPurchase(t *testing.T) {
	d := testDirectory()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	d.RecordPurchase("b1", "og-kush", 5, 250, now)
	b := d.RecordPurchase("b1", "og-kush", 3, 150, now.Add(time.Minute))

	if b.TotalPurchases != 2 {
		t.Errorf("TotalPurchases = %d, want 2 (one event per sale regardless of count)", b.TotalPurchases)
	}
	if b.TotalSpent != 400 {
		t.Errorf("TotalSpent = %v, want 400", b.TotalSpent)
	}
	if b.PurchaseHistory["og-kush"] != 8 {
		t.Errorf("history qty = %d, want 8", b.PurchaseHistory["og-kush"])
	}
	if !b.LastSeenAt.Equal(now.Add(time.Minute)) {
		t.Error("LastSeenAt not updated")
	}
}

func TestFavoriteProductsTopFive(t *testing.T) {
	d := testDirectory()
	now := time.Now()

	// Seven products with distinct cumulative quantities
	for i := 1; i <= 7; i++ {
		d.RecordPurchase("b1", fmt.Sprintf("strain-%d", i), i*10, 100, now)
	}

	b := d.Get("b1")
	want := []string{"strain-7", "strain-6", "strain-5", "strain-4", "strain-3"}
	if len(b.FavoriteProducts) != len(want) {
		t.Fatalf("favorites len = %d, want %d", len(b.FavoriteProducts), len(want))
	}
	for i, id := range want {
		if b.FavoriteProducts[i] != id {
			t.Errorf("favorites[%d] = %q, want %q", i, b.FavoriteProducts[i], id)
		}
	}

	// Pushing a low ranker past the leader reorders the projection
	d.RecordPurchase("b1", "strain-1", 100, 100, now)
	b = d.Get("b1")
	if b.FavoriteProducts[0] != "strain-1" {
		t.Errorf("favorites[0] = %q, want strain-1", b.FavoriteProducts[0])
	}
}

func TestLoyaltyBonus(t *testing.T) {
	tests := []struct {
		purchases int
		want      float64
	}{
		{0, 0},
		{40, 0.1},
		{200, 0.5},
		{400, 0.5},
		{100000, 0.5},
	}
	for _, tt := range tests {
		b := &models.Buyer{TotalPurchases: tt.purchases}
		if got := LoyaltyBonus(b); got != tt.want {
			t.Errorf("LoyaltyBonus(%d purchases) = %v, want %v", tt.purchases, got, tt.want)
		}
	}

	// Monotonically non-decreasing
	prev := 0.0
	for i := 0; i <= 500; i++ {
		got := LoyaltyBonus(&models.Buyer{TotalPurchases: i})
		if got < prev {
			t.Fatalf("LoyaltyBonus not monotonic at %d purchases", i)
		}
		prev = got
	}
}

func TestMoodOf(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		purchases int
		lastSeen  time.Time
		want      models.Mood
	}{
		{"zero purchases", 0, now, models.MoodNew},
		{"loyal", 20, now.Add(-time.Hour), models.MoodLoyal},
		// loyal is checked before missed_you: 20+ purchases seen recently
		// stays loyal even near the boundary
		{"loyal beats satisfied", 25, now.Add(-2 * 24 * time.Hour), models.MoodLoyal},
		{"missed you", 25, now.Add(-8 * 24 * time.Hour), models.MoodMissedYou},
		{"missed you beats satisfied", 6, now.Add(-7 * 24 * time.Hour), models.MoodMissedYou},
		{"satisfied", 5, now.Add(-time.Hour), models.MoodSatisfied},
		{"neutral", 2, now.Add(-time.Hour), models.MoodNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &models.Buyer{TotalPurchases: tt.purchases, LastSeenAt: tt.lastSeen}
			if got := MoodOf(b, now); got != tt.want {
				t.Errorf("MoodOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortedBy(t *testing.T) {
	d := testDirectory()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	d.RecordPurchase("a", "x", 1, 300, base)
	d.RecordPurchase("b", "x", 1, 100, base.Add(2*time.Hour))
	d.RecordPurchase("c", "x", 1, 200, base.Add(time.Hour))
	d.RecordPurchase("c", "x", 1, 200, base.Add(time.Hour))

	byValue, pages := d.SortedBy(SortByValue, 1, 10)
	if pages != 1 {
		t.Errorf("pages = %d, want 1", pages)
	}
	if byValue[0].ID != "c" || byValue[1].ID != "a" || byValue[2].ID != "b" {
		t.Errorf("value order = %s,%s,%s", byValue[0].ID, byValue[1].ID, byValue[2].ID)
	}

	byPurchases, _ := d.SortedBy(SortByPurchases, 1, 10)
	if byPurchases[0].ID != "c" {
		t.Errorf("purchases leader = %s, want c", byPurchases[0].ID)
	}

	byRecency, _ := d.SortedBy(SortByRecency, 1, 10)
	if byRecency[0].ID != "b" {
		t.Errorf("recency leader = %s, want b", byRecency[0].ID)
	}

	// Pagination boundaries
	page, pages := d.SortedBy(SortByValue, 2, 2)
	if pages != 2 || len(page) != 1 {
		t.Errorf("page 2 of 2-per-page: len = %d, pages = %d", len(page), pages)
	}
	if out, _ := d.SortedBy(SortByValue, 3, 2); out != nil {
		t.Error("out-of-range page should return nil")
	}
}

func TestStatistics(t *testing.T) {
	d := testDirectory()
	now := time.Now()

	d.RecordPurchase("a", "x", 2, 500, now)
	d.RecordPurchase("b", "x", 1, 100, now.Add(time.Minute))
	d.RecordPurchase("b", "y", 1, 100, now.Add(2*time.Minute))

	stats := d.Statistics()
	if stats.TotalBuyers != 2 {
		t.Errorf("TotalBuyers = %d, want 2", stats.TotalBuyers)
	}
	if stats.TotalPurchases != 3 {
		t.Errorf("TotalPurchases = %d, want 3", stats.TotalPurchases)
	}
	if stats.TotalSpent != 700 {
		t.Errorf("TotalSpent = %v, want 700", stats.TotalSpent)
	}
	if stats.TopBySpent.ID != "a" {
		t.Errorf("TopBySpent = %s, want a", stats.TopBySpent.ID)
	}
	if stats.TopByPurchases.ID != "b" {
		t.Errorf("TopByPurchases = %s, want b", stats.TopByPurchases.ID)
	}
	if stats.MostRecent.ID != "b" {
		t.Errorf("MostRecent = %s, want b", stats.MostRecent.ID)
	}
}

func TestPickWeighted(t *testing.T) {
	d := testDirectory()
	if b := d.PickWeighted(); b != nil {
		t.Error("empty directory should pick nil")
	}

	now := time.Now()
	d.GetOrCreate("light", now)
	for i := 0; i < 50; i++ {
		d.RecordPurchase("heavy", "x", 1, 10, now)
	}

	heavy := 0
	for i := 0; i < 200; i++ {
		if d.PickWeighted().ID == "heavy" {
			heavy++
		}
	}
	// Weight 51 vs 1: the heavy buyer must dominate
	if heavy < 150 {
		t.Errorf("heavy buyer picked %d/200 times, expected a strong majority", heavy)
	}
}

func TestSearchByName(t *testing.T) {
	d := testDirectory()
	now := time.Now()
	d.GetOrCreate("b1", now)
	d.GetOrCreate("b2", now)
	d.GetOrCreate("b3", now)

	name := d.Get("b2").Name
	results := d.SearchByName(name)
	if len(results) == 0 {
		t.Fatalf("search for %q returned nothing", name)
	}
	if results[0].Name != name {
		t.Errorf("best match = %q, want %q", results[0].Name, name)
	}

	if got := d.SearchByName("zzzzqqqq"); len(got) != 0 {
		t.Errorf("nonsense query returned %d results", len(got))
	}
}

func TestExportRestoreRoundTrip(t *testing.T) {
	d := testDirectory()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	d.RecordPurchase("a", "x", 3, 90, now)
	d.RecordPurchase("b", "y", 1, 40, now)

	restored := NewDirectory(rand.New(rand.NewSource(7)))
	restored.Restore(d.Export())

	if restored.Len() != 2 {
		t.Fatalf("restored Len = %d, want 2", restored.Len())
	}
	a := restored.Get("a")
	if a.TotalSpent != 90 || a.PurchaseHistory["x"] != 3 {
		t.Errorf("restored buyer a = %+v", a)
	}
}
