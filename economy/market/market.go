package market

import (
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/greenrush-game/economy-engine/database/models"
	"github.com/greenrush-game/economy-engine/economy/utils"
)

// multiplierRanges fixes the multiplier drawn once at event creation.
var multiplierRanges = map[models.MarketEventKind][2]float64{
	models.MarketBuyerRush:       {1.15, 1.30},
	models.MarketFestivalSeason:  {1.30, 1.50},
	models.MarketSupplyShortage:  {1.10, 1.25},
	models.MarketPremiumDemand:   {1.20, 1.40},
	models.MarketPoliceCrackdown: {0.75, 0.90},
	models.MarketCrash:           {0.65, 0.80},
}

var eventKinds = []models.MarketEventKind{
	models.MarketBuyerRush,
	models.MarketPoliceCrackdown,
	models.MarketFestivalSeason,
	models.MarketSupplyShortage,
	models.MarketCrash,
	models.MarketPremiumDemand,
}

// Tracker owns the global market event singleton. Tick is the only writer;
// readers take immutable snapshots, so Current never observes a partial
// update.
type Tracker struct {
	current atomic.Pointer[models.MarketEvent]
	rng     *rand.Rand
}

func NewTracker(rng *rand.Rand) *Tracker {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	t := &Tracker{rng: rng}
	t.current.Store(normalEvent(time.Now()))
	return t
}

func normalEvent(now time.Time) *models.MarketEvent {
	return &models.MarketEvent{
		Kind:       models.MarketNormal,
		Multiplier: 1.0,
		StartedAt:  now,
		// Normal has no deadline of its own; it persists until a roll
		// replaces it. The far-future expiry keeps the field total.
		ExpiresAt: now.Add(100 * 365 * 24 * time.Hour),
	}
}

// Current returns the active event snapshot.
func (t *Tracker) Current() *models.MarketEvent {
	return t.current.Load()
}

// Tick advances the market clock. Expected to be invoked once per minute of
// game time by a single scheduler goroutine. An expired special event
// always reverts to Normal; a Normal market has a fixed chance per tick to
// roll a new special event.
func (t *Tracker) Tick(now time.Time) *models.MarketEvent {
	cur := t.current.Load()

	if cur.Kind != models.MarketNormal {
		if now.Before(cur.ExpiresAt) {
			return cur
		}
		next := normalEvent(now)
		t.current.Store(next)
		slog.Info("Market event ended",
			slog.String("type", "eco"),
			slog.String("kind", string(cur.Kind)))
		return next
	}

	if t.rng.Float64() >= utils.MarketEventChance {
		return cur
	}

	next := t.rollEvent(now)
	t.current.Store(next)
	slog.Info("Market event started",
		slog.String("type", "eco"),
		slog.String("kind", string(next.Kind)),
		slog.Float64("multiplier", next.Multiplier),
		slog.Time("expires_at", next.ExpiresAt))
	return next
}

func (t *Tracker) rollEvent(now time.Time) *models.MarketEvent {
	kind := eventKinds[t.rng.Intn(len(eventKinds))]
	r := multiplierRanges[kind]
	multiplier := r[0] + t.rng.Float64()*(r[1]-r[0])

	span := utils.MarketEventMaxDuration - utils.MarketEventMinDuration
	duration := utils.MarketEventMinDuration + time.Duration(t.rng.Int63n(int64(span)))

	return &models.MarketEvent{
		Kind:       kind,
		Multiplier: multiplier,
		StartedAt:  now,
		ExpiresAt:  now.Add(duration),
	}
}

// Restore replaces the active event with a persisted one.
func (t *Tracker) Restore(ev *models.MarketEvent) {
	if ev == nil {
		return
	}
	cp := *ev
	t.current.Store(&cp)
}

// StartTicker runs Tick on a fixed interval until stop is closed. The
// tracker stays single-writer: this is the only goroutine calling Tick.
func (t *Tracker) StartTicker(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				t.Tick(now)
			}
		}
	}()
}
