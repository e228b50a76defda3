package sales

import (
	"time"

	"github.com/greenrush-game/economy-engine/database/models"
)

// AddPreset stores a named price preset for a trader, replacing any preset
// with the same label.
func (r *Recorder) AddPreset(traderID string, preset models.SalePreset, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.profileLocked(traderID)
	for i, existing := range p.Presets {
		if existing.Label == preset.Label {
			p.Presets[i] = preset
			p.UpdatedAt = now
			return
		}
	}
	p.Presets = append(p.Presets, preset)
	p.UpdatedAt = now
}

// RemovePreset deletes a preset by label. Reports whether it existed.
func (r *Recorder) RemovePreset(traderID, label string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.profileLocked(traderID)
	for i, existing := range p.Presets {
		if existing.Label == label {
			p.Presets = append(p.Presets[:i], p.Presets[i+1:]...)
			p.UpdatedAt = now
			return true
		}
	}
	return false
}

// Presets returns the trader's presets in insertion order.
func (r *Recorder) Presets(traderID string) []models.SalePreset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[traderID]
	if !ok {
		return nil
	}
	return append([]models.SalePreset(nil), p.Presets...)
}

// PresetFor looks up a preset by label for quick-apply at sale time.
func (r *Recorder) PresetFor(traderID, label string) (models.SalePreset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[traderID]
	if !ok {
		return models.SalePreset{}, false
	}
	for _, preset := range p.Presets {
		if preset.Label == label {
			return preset, true
		}
	}
	return models.SalePreset{}, false
}

// AddFavoriteBuyer opts a buyer into the trader's favorites. Idempotent.
func (r *Recorder) AddFavoriteBuyer(traderID, buyerID string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.profileLocked(traderID)
	for _, id := range p.FavoriteBuyers {
		if id == buyerID {
			return
		}
	}
	p.FavoriteBuyers = append(p.FavoriteBuyers, buyerID)
	p.UpdatedAt = now
}

// RemoveFavoriteBuyer removes a buyer from the favorites set. Reports
// whether it was present.
func (r *Recorder) RemoveFavoriteBuyer(traderID, buyerID string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.profileLocked(traderID)
	for i, id := range p.FavoriteBuyers {
		if id == buyerID {
			p.FavoriteBuyers = append(p.FavoriteBuyers[:i], p.FavoriteBuyers[i+1:]...)
			p.UpdatedAt = now
			return true
		}
	}
	return false
}

// FavoriteBuyers returns the trader's opt-in favorite buyer ids.
func (r *Recorder) FavoriteBuyers(traderID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[traderID]
	if !ok {
		return nil
	}
	return append([]string(nil), p.FavoriteBuyers...)
}
