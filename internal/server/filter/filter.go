package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/apparel/internal/common"
	"github.com/dmitrijs2005/apparel/internal/server/models"
)

// FilterByField filters items on one field of ItemSchema.
func FilterByField(items []models.Item, field, keyword string) ([]models.Item, error) {
	return ItemSchema.FilterByField(items, field, keyword)
}

// FilterByField returns the items whose field matches keyword. The result
// keeps the input order and is never nil.
func (s *Schema) FilterByField(items []models.Item, field, keyword string) ([]models.Item, error) {
	d, ok := s.Lookup(field)
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownField, field)
	}
	match := d.matcher(keyword)

	out := make([]models.Item, 0, len(items))
	for i := range items {
		if match(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out, nil
}

func (d Descriptor) matcher(keyword string) func(*models.Item) bool {
	keyword = strings.TrimSpace(keyword)
	needle := strings.ToLower(keyword)
	n, numErr := strconv.Atoi(keyword)

	switch d.Kind {
	case Number:
		if numErr != nil {
			return func(*models.Item) bool { return false }
		}
		return func(it *models.Item) bool {
			v, present := d.number(it)
			return present && v == n
		}
	case Text:
		return func(it *models.Item) bool {
			return strings.Contains(strings.ToLower(d.text(it)), needle)
		}
	case Nested:
		return func(it *models.Item) bool {
			texts, nums := d.nested(it)
			for _, t := range texts {
				if strings.Contains(strings.ToLower(t), needle) {
					return true
				}
			}
			if numErr == nil {
				for _, v := range nums {
					if v == n {
						return true
					}
				}
			}
			return false
		}
	default:
		return func(*models.Item) bool { return false }
	}
}
