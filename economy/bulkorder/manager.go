package bulkorder

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/greenrush-game/economy-engine/database/models"
	"github.com/greenrush-game/economy-engine/economy/buyers"
	"github.com/greenrush-game/economy-engine/economy/utils"
)

var (
	// ErrOrderAlreadyActive refuses generation while an unexpired order exists.
	ErrOrderAlreadyActive = errors.New("bulk order already active")
	// ErrCooldownActive refuses generation before the cooldown has elapsed.
	ErrCooldownActive = errors.New("bulk order cooldown active")
)

// FulfillResult reports what a sale contributed to the trader's active order.
type FulfillResult struct {
	Matched   bool    // Sale matched the active order's product
	Completed bool    // This sale met or exceeded the remaining quantity
	Bonus     float64 // Order's bonus multiplier, set whenever Matched
}

// ProductPicker supplies a product id for a generated order, typically
// backed by the host's catalog. Must return a non-empty id.
type ProductPicker func(rng *rand.Rand) string

// Manager enforces the per-trader bulk-order lifecycle: at most one
// unexpired active order, and a fixed cooldown between generations counted
// from creation regardless of how the previous order ended.
type Manager struct {
	mu          sync.Mutex
	active      map[string]*models.BulkOrder
	lastCreated map[string]time.Time
	history     []*models.BulkOrder // fulfilled/expired orders, kept for persistence

	directory   *buyers.Directory
	pickProduct ProductPicker
	rng         *rand.Rand
}

func NewManager(directory *buyers.Directory, pickProduct ProductPicker, rng *rand.Rand) *Manager {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Manager{
		active:      make(map[string]*models.BulkOrder),
		lastCreated: make(map[string]time.Time),
		directory:   directory,
		pickProduct: pickProduct,
		rng:         rng,
	}
}

// Generate creates a new bulk order for the trader, or refuses with
// ErrOrderAlreadyActive / ErrCooldownActive. The invariant check runs
// before any mutation.
func (m *Manager) Generate(traderID string, now time.Time) (*models.BulkOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if order, ok := m.active[traderID]; ok {
		if !order.Expired(now) {
			return nil, ErrOrderAlreadyActive
		}
		m.retireLocked(order, models.BulkOrderStatusExpired)
	}

	if last, ok := m.lastCreated[traderID]; ok {
		if now.Before(last.Add(utils.BulkOrderCooldown)) {
			return nil, ErrCooldownActive
		}
	}

	buyerID, buyerName := m.pickRequester(now)
	tier := rollTier(m.rng)
	spec := tierTable[tier]

	order := &models.BulkOrder{
		ID:              utils.NewID(now),
		TraderID:        traderID,
		BuyerID:         buyerID,
		BuyerName:       buyerName,
		ProductID:       m.pickProduct(m.rng),
		Quantity:        spec.MinQuantity + m.rng.Intn(spec.MaxQuantity-spec.MinQuantity+1),
		BonusMultiplier: spec.MinBonus + m.rng.Float64()*(spec.MaxBonus-spec.MinBonus),
		Tier:            tier,
		Status:          models.BulkOrderStatusActive,
		CreatedAt:       now,
		ExpiresAt:       now.Add(utils.BulkOrderLifetime),
	}

	m.active[traderID] = order
	m.lastCreated[traderID] = now

	slog.Info("Bulk order generated",
		slog.String("type", "eco"),
		slog.String("trader_id", traderID),
		slog.String("buyer", buyerName),
		slog.String("product_id", order.ProductID),
		slog.Int("quantity", order.Quantity),
		slog.String("tier", string(tier)),
		slog.Float64("bonus", order.BonusMultiplier))

	return cloneOrder(order), nil
}

// pickRequester prefers known buyers weighted by loyalty, synthesizing a
// generic walk-in when the directory is empty.
func (m *Manager) pickRequester(now time.Time) (string, string) {
	if m.directory != nil {
		if b := m.directory.PickWeighted(); b != nil {
			return b.ID, b.Name
		}
	}
	id := fmt.Sprintf("walk-in-%d", utils.NewID(now))
	return id, "Walk-in Buyer"
}

// GetActive returns the trader's unexpired active order, or nil. Expiry is
// lazy: a past-deadline order is retired on observation.
func (m *Manager) GetActive(traderID string, now time.Time) *models.BulkOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneOrder(m.activeLocked(traderID, now))
}

func (m *Manager) activeLocked(traderID string, now time.Time) *models.BulkOrder {
	order, ok := m.active[traderID]
	if !ok {
		return nil
	}
	if order.Expired(now) {
		m.retireLocked(order, models.BulkOrderStatusExpired)
		return nil
	}
	return order
}

// TimeUntilNextGeneration reports how long the trader must wait before
// Generate can succeed. Zero means generation is allowed now (an active
// unexpired order still refuses independently).
func (m *Manager) TimeUntilNextGeneration(traderID string, now time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	last, ok := m.lastCreated[traderID]
	if !ok {
		return 0
	}
	next := last.Add(utils.BulkOrderCooldown)
	if !now.Before(next) {
		return 0
	}
	return next.Sub(now)
}

// Fulfill accumulates a sale toward the trader's active order. Partial
// sales build Progress across transactions; the order completes once the
// cumulative quantity reaches the requested amount. The bonus multiplier
// is reported for every contributing sale.
func (m *Manager) Fulfill(traderID, productID string, quantitySold int, now time.Time) FulfillResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	order := m.activeLocked(traderID, now)
	if order == nil || order.ProductID != productID || quantitySold <= 0 {
		return FulfillResult{}
	}

	order.Progress += quantitySold
	result := FulfillResult{Matched: true, Bonus: order.BonusMultiplier}

	if order.Progress >= order.Quantity {
		result.Completed = true
		m.retireLocked(order, models.BulkOrderStatusFulfilled)
		slog.Info("Bulk order fulfilled",
			slog.String("type", "eco"),
			slog.String("trader_id", traderID),
			slog.String("product_id", productID),
			slog.Int("quantity", order.Quantity),
			slog.Float64("bonus", order.BonusMultiplier))
	}

	return result
}

func (m *Manager) retireLocked(order *models.BulkOrder, status models.BulkOrderStatus) {
	order.Status = status
	delete(m.active, order.TraderID)
	m.history = append(m.history, order)
}

// Export returns all active and retired-but-unswept orders, for persistence.
func (m *Manager) Export() []*models.BulkOrder {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.BulkOrder, 0, len(m.active)+len(m.history))
	for _, order := range m.active {
		out = append(out, cloneOrder(order))
	}
	for _, order := range m.history {
		out = append(out, cloneOrder(order))
	}
	return out
}

// Restore replaces manager state with persisted orders. Active orders
// also reseed the per-trader cooldown clock from their creation time.
func (m *Manager) Restore(orders []*models.BulkOrder) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.active = make(map[string]*models.BulkOrder)
	m.lastCreated = make(map[string]time.Time)
	m.history = nil

	for _, o := range orders {
		cp := cloneOrder(o)
		if cp.Status == models.BulkOrderStatusActive {
			m.active[cp.TraderID] = cp
		} else {
			m.history = append(m.history, cp)
		}
		if cp.CreatedAt.After(m.lastCreated[cp.TraderID]) {
			m.lastCreated[cp.TraderID] = cp.CreatedAt
		}
	}
}

func cloneOrder(o *models.BulkOrder) *models.BulkOrder {
	if o == nil {
		return nil
	}
	cp := *o
	return &cp
}
