package market

import (
	"math/rand"
	"testing"
	"time"

	"github.com/greenrush-game/economy-engine/database/models"
)

func TestNewTrackerStartsNormal(t *testing.T) {
	tr := NewTracker(rand.New(rand.NewSource(1)))
	ev := tr.Current()
	if ev.Kind != models.MarketNormal {
		t.Errorf("initial kind = %v, want normal", ev.Kind)
	}
	if ev.Multiplier != 1.0 {
		t.Errorf("normal multiplier = %v, want 1.0", ev.Multiplier)
	}
}

func TestTickEventuallyRollsEvent(t *testing.T) {
	tr := NewTracker(rand.New(rand.NewSource(1)))
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// 8% per tick: a few hundred ticks will leave Normal
	var ev *models.MarketEvent
	for i := 0; i < 500; i++ {
		ev = tr.Tick(now.Add(time.Duration(i) * time.Minute))
		if ev.Kind != models.MarketNormal {
			break
		}
	}
	if ev.Kind == models.MarketNormal {
		t.Fatal("no event rolled in 500 ticks")
	}

	r, ok := multiplierRanges[ev.Kind]
	if !ok {
		t.Fatalf("rolled unknown kind %v", ev.Kind)
	}
	if ev.Multiplier < r[0] || ev.Multiplier > r[1] {
		t.Errorf("multiplier %v outside range [%v, %v] for %v", ev.Multiplier, r[0], r[1], ev.Kind)
	}

	dur := ev.ExpiresAt.Sub(ev.StartedAt)
	if dur < 20*time.Minute || dur > 60*time.Minute {
		t.Errorf("duration %v outside [20m, 60m]", dur)
	}
}

func TestTickHoldsActiveEventUntilExpiry(t *testing.T) {
	tr := NewTracker(rand.New(rand.NewSource(1)))
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	active := &models.MarketEvent{
		Kind:       models.MarketBuyerRush,
		Multiplier: 1.2,
		StartedAt:  now,
		ExpiresAt:  now.Add(30 * time.Minute),
	}
	tr.Restore(active)

	// Multiplier and expiry are fixed for the event's whole duration
	mid := tr.Tick(now.Add(15 * time.Minute))
	if mid.Kind != models.MarketBuyerRush || mid.Multiplier != 1.2 {
		t.Errorf("event mutated mid-flight: %+v", mid)
	}

	// Expiry always reverts to Normal, never chains into a new event
	after := tr.Tick(now.Add(30 * time.Minute))
	if after.Kind != models.MarketNormal {
		t.Errorf("kind after expiry = %v, want normal", after.Kind)
	}
	if after.Multiplier != 1.0 {
		t.Errorf("multiplier after expiry = %v, want 1.0", after.Multiplier)
	}
}

func TestMultiplierRangesAllKindsRollable(t *testing.T) {
	tr := NewTracker(rand.New(rand.NewSource(99)))
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	seen := make(map[models.MarketEventKind]bool)
	for i := 0; i < 5000; i++ {
		ev := tr.rollEvent(now)
		r := multiplierRanges[ev.Kind]
		if ev.Multiplier < r[0] || ev.Multiplier > r[1] {
			t.Fatalf("multiplier %v outside range for %v", ev.Multiplier, ev.Kind)
		}
		seen[ev.Kind] = true
	}
	if len(seen) != len(eventKinds) {
		t.Errorf("only %d/%d kinds rolled", len(seen), len(eventKinds))
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	tr := NewTracker(rand.New(rand.NewSource(1)))
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	ev := &models.MarketEvent{
		Kind:       models.MarketFestivalSeason,
		Multiplier: 1.42,
		StartedAt:  now,
		ExpiresAt:  now.Add(40 * time.Minute),
	}
	tr.Restore(ev)

	got := tr.Current()
	if got.Kind != ev.Kind || got.Multiplier != ev.Multiplier || !got.ExpiresAt.Equal(ev.ExpiresAt) {
		t.Errorf("restored event = %+v, want %+v", got, ev)
	}
}
