package buyers

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/greenrush-game/economy-engine/database/models"
	"github.com/greenrush-game/economy-engine/economy/utils"
)

// Directory is the registry of synthetic buyers. Buyers are created lazily
// on first contact and never deleted. Only the sale recorder mutates
// records; everything else is a read-side projection.
type Directory struct {
	mu     sync.RWMutex
	buyers map[string]*models.Buyer
	rng    *rand.Rand
}

func NewDirectory(rng *rand.Rand) *Directory {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Directory{
		buyers: make(map[string]*models.Buyer),
		rng:    rng,
	}
}

// GetOrCreate returns a copy of the record for buyerID, synthesizing a new
// buyer on first contact.
func (d *Directory) GetOrCreate(buyerID string, now time.Time) *models.Buyer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.getOrCreateLocked(buyerID, now).Clone()
}

// Get returns a copy of the record for buyerID, or nil if unknown.
func (d *Directory) Get(buyerID string) *models.Buyer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buyers[buyerID].Clone()
}

func (d *Directory) getOrCreateLocked(buyerID string, now time.Time) *models.Buyer {
	if b, ok := d.buyers[buyerID]; ok {
		return b
	}

	personality := rollPersonality(d.rng)
	info := personalityTable[personality]
	b := &models.Buyer{
		ID:              buyerID,
		Name:            rollName(d.rng),
		Personality:     personality,
		FavoriteRarity:  rarityTiers[d.rng.Intn(len(rarityTiers))],
		PrefersQuality:  info.PrefersQuality,
		PrefersBulk:     info.PrefersBulk,
		PurchaseHistory: make(map[string]int),
		FirstSeenAt:     now,
		LastSeenAt:      now,
	}
	d.buyers[buyerID] = b
	return b
}

// RecordPurchase applies one purchase event: TotalPurchases goes up by one
// regardless of item count, the product's cumulative quantity grows, and
// the favorite-products projection is refreshed.
func (d *Directory) RecordPurchase(buyerID, productID string, quantity int, amount float64, now time.Time) *models.Buyer {
	d.mu.Lock()
	defer d.mu.Unlock()

	b := d.getOrCreateLocked(buyerID, now)
	b.TotalPurchases++
	b.TotalSpent += amount
	b.PurchaseHistory[productID] += quantity
	b.LastSeenAt = now
	b.FavoriteProducts = topProducts(b.PurchaseHistory, utils.FavoriteProductsCap)
	return b.Clone()
}

// topProducts projects the full history map onto a bounded favorites list,
// ordered by cumulative quantity descending. Recomputed on write so the
// pricing path never scans the unbounded map.
func topProducts(history map[string]int, limit int) []string {
	type entry struct {
		id  string
		qty int
	}
	entries := make([]entry, 0, len(history))
	for id, qty := range history {
		entries = append(entries, entry{id, qty})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].qty != entries[j].qty {
			return entries[i].qty > entries[j].qty
		}
		return entries[i].id < entries[j].id
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

// LoyaltyBonus derives the price bonus from cumulative purchase count.
// Monotonic and saturating: 0 at zero purchases, capped at LoyaltyBonusCap.
func LoyaltyBonus(b *models.Buyer) float64 {
	if b == nil {
		return 0
	}
	bonus := float64(b.TotalPurchases) / utils.LoyaltyBonusDivisor
	if bonus > utils.LoyaltyBonusCap {
		return utils.LoyaltyBonusCap
	}
	return bonus
}

// MoodOf classifies a buyer's recent engagement. The evaluation order is
// part of the contract: loyal before missed_you before satisfied.
func MoodOf(b *models.Buyer, now time.Time) models.Mood {
	if b == nil || b.TotalPurchases == 0 {
		return models.MoodNew
	}
	sinceSeen := now.Sub(b.LastSeenAt)
	if b.TotalPurchases >= utils.LoyalPurchaseThreshold && sinceSeen < utils.LoyalRecencyWindow {
		return models.MoodLoyal
	}
	if sinceSeen >= utils.MissedYouWindow {
		return models.MoodMissedYou
	}
	if b.TotalPurchases >= utils.SatisfiedPurchaseThreshold {
		return models.MoodSatisfied
	}
	return models.MoodNeutral
}

// IsFavoriteProduct reports whether productID ranks among the buyer's
// favorite products.
func IsFavoriteProduct(b *models.Buyer, productID string) bool {
	if b == nil {
		return false
	}
	for _, id := range b.FavoriteProducts {
		if id == productID {
			return true
		}
	}
	return false
}

// PickWeighted selects a random known buyer, weighted toward higher
// purchase counts. Returns nil when the directory is empty.
func (d *Directory) PickWeighted() *models.Buyer {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.buyers) == 0 {
		return nil
	}

	ids := make([]string, 0, len(d.buyers))
	for id := range d.buyers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	total := 0
	for _, id := range ids {
		total += 1 + d.buyers[id].TotalPurchases
	}
	roll := d.rng.Intn(total)
	for _, id := range ids {
		roll -= 1 + d.buyers[id].TotalPurchases
		if roll < 0 {
			return d.buyers[id].Clone()
		}
	}
	return d.buyers[ids[len(ids)-1]].Clone()
}

// Len returns the number of known buyers.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.buyers)
}

// Export returns copies of every buyer record, for persistence.
func (d *Directory) Export() []*models.Buyer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*models.Buyer, 0, len(d.buyers))
	for _, b := range d.buyers {
		out = append(out, b.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Restore replaces the directory contents with persisted records.
func (d *Directory) Restore(buyers []*models.Buyer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buyers = make(map[string]*models.Buyer, len(buyers))
	for _, b := range buyers {
		cp := b.Clone()
		if cp.PurchaseHistory == nil {
			cp.PurchaseHistory = make(map[string]int)
		}
		d.buyers[cp.ID] = cp
	}
}

// SearchByName fuzzy-matches buyer display names, best matches first.
func (d *Directory) SearchByName(query string) []*models.Buyer {
	d.mu.RLock()
	defer d.mu.RUnlock()

	all := make([]*models.Buyer, 0, len(d.buyers))
	for _, b := range d.buyers {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	names := make([]string, len(all))
	for i, b := range all {
		names[i] = strings.ToLower(b.Name)
	}

	matches := fuzzy.Find(strings.ToLower(query), names)
	out := make([]*models.Buyer, 0, len(matches))
	for _, m := range matches {
		out = append(out, all[m.Index].Clone())
	}
	return out
}
