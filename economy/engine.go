package economy

import (
	"math/rand"
	"sync"
	"time"

	"github.com/greenrush-game/economy-engine/database/models"
	"github.com/greenrush-game/economy-engine/economy/bulkorder"
	"github.com/greenrush-game/economy-engine/economy/buyers"
	"github.com/greenrush-game/economy-engine/economy/market"
	"github.com/greenrush-game/economy-engine/economy/pricing"
	"github.com/greenrush-game/economy-engine/economy/reputation"
	"github.com/greenrush-game/economy-engine/economy/sales"
	"github.com/greenrush-game/economy-engine/logger"
)

// CatalogFunc resolves a product id against the host's catalog. The second
// return reports whether the product exists; unknown products quote as
// zero-value sales.
type CatalogFunc func(productID string) (models.Product, bool)

// RecordResult is what one committed sale produced. BulkOrderMatched false
// means no active order was touched (fulfillment "null" in the caller's
// terms); BonusPaid is the share of the final price attributable to the
// order's bonus multiplier.
type RecordResult struct {
	NewReputationScore int
	BulkOrderMatched   bool
	BulkOrderFulfilled bool
	BonusPaid          float64
}

// Snapshot is the full durable state of the engine, in the shape the
// database layer persists.
type Snapshot struct {
	Buyers         []*models.Buyer
	Reputation     []models.ReputationEntry
	MarketEvent    *models.MarketEvent
	BulkOrders     []*models.BulkOrder
	SaleRecords    []*models.SaleRecord
	TraderProfiles []*models.TraderProfile
}

// Engine composes the six economy components behind the two host-facing
// entry points, Quote and Record. Record is atomic per trader; Quote is
// read-only and safe to call concurrently with anything.
type Engine struct {
	catalog    CatalogFunc
	reputation *reputation.Ledger
	buyers     *buyers.Directory
	market     *market.Tracker
	bulkOrders *bulkorder.Manager
	calculator *pricing.Calculator
	sales      *sales.Recorder

	traderLocks sync.Map // traderID -> *sync.Mutex
}

// New builds an engine with a time-seeded randomness source.
// orderProducts are the catalog ids bulk orders may request; it must not
// be empty for order generation to produce sellable requests.
func New(catalog CatalogFunc, orderProducts []string) *Engine {
	return NewWithRand(catalog, orderProducts, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand builds an engine over an explicit randomness source, which
// makes buyer synthesis, market events and bulk orders reproducible.
// rand.Rand is not safe for concurrent use and the components roll under
// different locks (the market ticker under none), so each gets its own
// source seeded from rng.
func NewWithRand(catalog CatalogFunc, orderProducts []string, rng *rand.Rand) *Engine {
	directory := buyers.NewDirectory(rand.New(rand.NewSource(rng.Int63())))
	marketRNG := rand.New(rand.NewSource(rng.Int63()))
	orderRNG := rand.New(rand.NewSource(rng.Int63()))
	pickProduct := func(r *rand.Rand) string {
		if len(orderProducts) == 0 {
			return ""
		}
		return orderProducts[r.Intn(len(orderProducts))]
	}

	return &Engine{
		catalog:    catalog,
		reputation: reputation.NewLedger(),
		buyers:     directory,
		market:     market.NewTracker(marketRNG),
		bulkOrders: bulkorder.NewManager(directory, pickProduct, orderRNG),
		calculator: pricing.NewCalculator(pricing.DefaultPricingConfig()),
		sales:      sales.NewRecorder(),
	}
}

// Quote computes the price the given buyer would pay for a hypothetical
// sale. It mutates nothing: the buyer is not created if unknown, and the
// bulk order is not progressed. Identical state and inputs always quote
// identically.
func (e *Engine) Quote(traderID, buyerID, productID string, quantity int, now time.Time) float64 {
	product, _ := e.catalog(productID)
	product.ID = productID

	buyer := e.buyers.Get(buyerID)

	categoryMultiplier := buyers.CategoryMultiplier(models.CategoryStandard)
	reputationBonus := 0.0
	if buyer != nil {
		category := buyers.CategoryFor(buyer.Personality)
		categoryMultiplier = buyers.CategoryMultiplier(category)
		reputationBonus = reputation.PriceBonusFor(reputation.LevelFor(e.reputation.Get(traderID, category)))
	}

	bulkBonus := 0.0
	if order := e.bulkOrders.GetActive(traderID, now); order != nil && order.ProductID == productID {
		bulkBonus = order.BonusMultiplier
	}

	return e.calculator.Quote(pricing.QuoteInput{
		Product:            product,
		Quantity:           quantity,
		Buyer:              buyer,
		Mood:               buyers.MoodOf(buyer, now),
		CategoryMultiplier: categoryMultiplier,
		MarketMultiplier:   e.market.Current().Multiplier,
		ReputationBonus:    reputationBonus,
		LoyaltyBonus:       buyers.LoyaltyBonus(buyer),
		BulkOrderBonus:     bulkBonus,
	})
}

// Record commits a confirmed sale: sale log, buyer history, reputation and
// bulk-order fulfillment move together as one atomic unit for the trader.
// Failed sale attempts must not be passed here.
func (e *Engine) Record(traderID, buyerID, productID string, quantity int, finalPrice float64, now time.Time) RecordResult {
	lock := e.traderLock(traderID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()

	buyer := e.buyers.RecordPurchase(buyerID, productID, quantity, finalPrice, now)
	_, repDelta := e.sales.Record(traderID, buyerID, buyer.Name, productID, quantity, finalPrice, now)

	category := buyers.CategoryFor(buyer.Personality)
	newScore := e.reputation.Adjust(traderID, category, repDelta)

	fulfill := e.bulkOrders.Fulfill(traderID, productID, quantity, now)

	result := RecordResult{
		NewReputationScore: newScore,
		BulkOrderMatched:   fulfill.Matched,
		BulkOrderFulfilled: fulfill.Completed,
	}
	if fulfill.Matched {
		// Share of the final price contributed by the order bonus; the
		// bonus itself was already folded in at quote time.
		result.BonusPaid = pricing.RoundPrice(finalPrice * fulfill.Bonus / (1 + fulfill.Bonus))
	}

	logger.LogSale(traderID, finalPrice, time.Since(start), nil)

	return result
}

func (e *Engine) traderLock(traderID string) *sync.Mutex {
	lock, _ := e.traderLocks.LoadOrStore(traderID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Reputation exposes the reputation ledger.
func (e *Engine) Reputation() *reputation.Ledger { return e.reputation }

// Buyers exposes the buyer directory.
func (e *Engine) Buyers() *buyers.Directory { return e.buyers }

// Market exposes the market tracker.
func (e *Engine) Market() *market.Tracker { return e.market }

// BulkOrders exposes the bulk order manager.
func (e *Engine) BulkOrders() *bulkorder.Manager { return e.bulkOrders }

// Sales exposes the sale recorder and analytics.
func (e *Engine) Sales() *sales.Recorder { return e.sales }

// Snapshot exports the complete durable state.
func (e *Engine) Snapshot() Snapshot {
	records, profiles := e.sales.Export()
	ev := *e.market.Current()
	return Snapshot{
		Buyers:         e.buyers.Export(),
		Reputation:     e.reputation.Entries(),
		MarketEvent:    &ev,
		BulkOrders:     e.bulkOrders.Export(),
		SaleRecords:    records,
		TraderProfiles: profiles,
	}
}

// Restore replaces all engine state from a snapshot, typically at startup.
// Not safe to run concurrently with Quote or Record.
func (e *Engine) Restore(snap Snapshot) {
	e.buyers.Restore(snap.Buyers)
	e.reputation.Restore(snap.Reputation)
	e.market.Restore(snap.MarketEvent)
	e.bulkOrders.Restore(snap.BulkOrders)
	e.sales.Restore(snap.SaleRecords, snap.TraderProfiles)
}
