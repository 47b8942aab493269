package filter

import (
	"strings"

	"github.com/dmitrijs2005/apparel/internal/server/models"
)

func searchable(it *models.Item) []string {
	vals := []string{
		it.Description,
		it.Brand,
		it.Category,
		it.Type,
		it.SubCategory,
		it.Fit,
		it.Length,
	}
	if it.Purchase != nil {
		vals = append(vals, it.Purchase.Location)
	}
	vals = append(vals, it.Material.Labels...)
	return append(vals, it.Styles...)
}

// Search returns the items where keyword occurs, ignoring case, in any of
// the descriptive text fields, the material labels or the styles. A blank
// keyword matches nothing.
func Search(items []models.Item, keyword string) []models.Item {
	out := make([]models.Item, 0)
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return out
	}

	for i := range items {
		for _, v := range searchable(&items[i]) {
			if strings.Contains(strings.ToLower(v), needle) {
				out = append(out, items[i])
				break
			}
		}
	}
	return out
}
