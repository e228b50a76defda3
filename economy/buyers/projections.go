package buyers

import (
	"sort"
	"strings"

	"github.com/greenrush-game/economy-engine/database/models"
)

type SortMetric string

const (
	SortByValue     SortMetric = "value"
	SortByPurchases SortMetric = "purchases"
	SortByRecency   SortMetric = "recency"
	SortByName      SortMetric = "name"
)

// DirectoryStats is the aggregate read-side view of the whole directory.
type DirectoryStats struct {
	TotalBuyers    int
	TotalPurchases int
	TotalSpent     float64
	TopBySpent     *models.Buyer
	TopByPurchases *models.Buyer
	MostRecent     *models.Buyer
}

// List returns every buyer, ordered by id.
func (d *Directory) List() []*models.Buyer {
	return d.Export()
}

// SortedBy returns one page of buyers ordered by the given metric. Pages
// are 1-based; an out-of-range page returns an empty slice. The total page
// count is returned alongside.
func (d *Directory) SortedBy(metric SortMetric, page, perPage int) ([]*models.Buyer, int) {
	all := d.Export()
	sortBuyers(all, metric)

	if perPage <= 0 {
		perPage = 10
	}
	totalPages := (len(all) + perPage - 1) / perPage
	if page < 1 || page > totalPages {
		return nil, totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], totalPages
}

func sortBuyers(all []*models.Buyer, metric SortMetric) {
	switch metric {
	case SortByValue:
		sort.Slice(all, func(i, j int) bool {
			if all[i].TotalSpent != all[j].TotalSpent {
				return all[i].TotalSpent > all[j].TotalSpent
			}
			return all[i].ID < all[j].ID
		})
	case SortByPurchases:
		sort.Slice(all, func(i, j int) bool {
			if all[i].TotalPurchases != all[j].TotalPurchases {
				return all[i].TotalPurchases > all[j].TotalPurchases
			}
			return all[i].ID < all[j].ID
		})
	case SortByRecency:
		sort.Slice(all, func(i, j int) bool {
			if !all[i].LastSeenAt.Equal(all[j].LastSeenAt) {
				return all[i].LastSeenAt.After(all[j].LastSeenAt)
			}
			return all[i].ID < all[j].ID
		})
	case SortByName:
		sort.Slice(all, func(i, j int) bool {
			ni, nj := strings.ToLower(all[i].Name), strings.ToLower(all[j].Name)
			if ni != nj {
				return ni < nj
			}
			return all[i].ID < all[j].ID
		})
	}
}

// Statistics computes directory-wide aggregates and the top performer by
// each metric. Pure read-side projection.
func (d *Directory) Statistics() DirectoryStats {
	all := d.Export()

	stats := DirectoryStats{TotalBuyers: len(all)}
	for _, b := range all {
		stats.TotalPurchases += b.TotalPurchases
		stats.TotalSpent += b.TotalSpent

		if stats.TopBySpent == nil || b.TotalSpent > stats.TopBySpent.TotalSpent {
			stats.TopBySpent = b
		}
		if stats.TopByPurchases == nil || b.TotalPurchases > stats.TopByPurchases.TotalPurchases {
			stats.TopByPurchases = b
		}
		if stats.MostRecent == nil || b.LastSeenAt.After(stats.MostRecent.LastSeenAt) {
			stats.MostRecent = b
		}
	}
	return stats
}
