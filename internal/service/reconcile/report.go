package reconcile

import (
	"context"
	"fmt"
	"sort"

	"opnamecore/internal/domain/models"
)

// Summary aggregates a working list for the reconciliation report screen.
type Summary struct {
	TotalItems         int                   `json:"total_items"`
	TotalQtyDifference int                   `json:"total_qty_difference"`
	TotalRpDifference  float64               `json:"total_rp_difference"`
	LargestMinusItem   *models.SOWorkingItem `json:"largest_minus_item,omitempty"`
	LargestPlusItem    *models.SOWorkingItem `json:"largest_plus_item,omitempty"`
	PercentageSO       float64               `json:"percentage_so"`
}

// Summarize computes the aggregate totals over a working list. Largest
// minus/plus ties go to the first occurrence in list order. PercentageSO
// relates the counted items to the whole catalog.
func (e *Engine) Summarize(ctx context.Context, items []models.SOWorkingItem) (Summary, error) {
	summary := Summary{TotalItems: len(items)}

	for i := range items {
		diff := Difference(items[i])
		summary.TotalQtyDifference += diff
		summary.TotalRpDifference += LineTotal(items[i])

		if diff < 0 && (summary.LargestMinusItem == nil || diff < Difference(*summary.LargestMinusItem)) {
			item := items[i]
			summary.LargestMinusItem = &item
		}
		if diff > 0 && (summary.LargestPlusItem == nil || diff > Difference(*summary.LargestPlusItem)) {
			item := items[i]
			summary.LargestPlusItem = &item
		}
	}

	catalogSize, err := e.gateway.CountAll(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("count catalog items: %w", err)
	}
	if catalogSize > 0 {
		summary.PercentageSO = float64(len(items)) / float64(catalogSize)
	}

	return summary, nil
}

// SortForDisplay orders items by category, then name, both ascending. The
// ordering is a display rule only and never feeds computation.
func SortForDisplay(items []models.SOWorkingItem) []models.SOWorkingItem {
	sorted := make([]models.SOWorkingItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Category != sorted[j].Category {
			return sorted[i].Category < sorted[j].Category
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// MismatchGroups filters to items with a non-zero difference and partitions
// them shortage-group first, overage-group second, each internally in
// display order.
func MismatchGroups(items []models.SOWorkingItem) []models.SOWorkingItem {
	var minus, plus []models.SOWorkingItem
	for _, item := range items {
		switch Classify(item) {
		case DiffMinus:
			minus = append(minus, item)
		case DiffPlus:
			plus = append(plus, item)
		}
	}
	return append(SortForDisplay(minus), SortForDisplay(plus)...)
}
