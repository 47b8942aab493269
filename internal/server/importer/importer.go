// Package importer reads wardrobe items from an .xlsx workbook.
//
// The first row of the sheet holds column labels such as "Sub Category" or
// "Purchase Price"; they are matched to item fields after camelCase
// normalisation, ignoring case. Unknown columns are skipped. List cells
// (styles, color, material) are comma separated, and a palette entry may
// carry a weight as "label:weight", e.g. "cotton:80, elastane:20".
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/apparel/internal/common"
	"github.com/dmitrijs2005/apparel/internal/server/filter"
	"github.com/dmitrijs2005/apparel/internal/server/models"
	"github.com/xuri/excelize/v2"
)

// DefaultCondition is used when the condition cell is not a number.
const DefaultCondition = 10

// Parse reads every non-empty data row of sheet.
func Parse(r io.Reader, sheet string) ([]models.Item, error) {
	if sheet == "" {
		sheet = common.DefaultImportSheet
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", common.ErrValidation, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", common.ErrValidation, sheet, err)
	}
	if len(rows) == 0 {
		return []models.Item{}, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(filter.NormalizeFieldName(h))
	}

	out := make([]models.Item, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		var it models.Item
		condition := ""
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			if header[i] == "condition" {
				condition = cell
				continue
			}
			apply(&it, header[i], strings.TrimSpace(cell))
		}
		it.Condition = models.IntPtr(DefaultCondition)
		if n, err := strconv.Atoi(strings.TrimSpace(condition)); err == nil {
			it.Condition = models.IntPtr(n)
		}
		out = append(out, it)
	}
	return out, nil
}

func apply(it *models.Item, field, cell string) {
	if cell == "" {
		return
	}
	switch field {
	case "description":
		it.Description = cell
	case "category":
		it.Category = cell
	case "subcategory":
		it.SubCategory = cell
	case "type":
		it.Type = cell
	case "fit":
		it.Fit = cell
	case "length":
		it.Length = cell
	case "brand":
		it.Brand = cell
	case "size":
		it.Size = models.ParseSize(cell)
	case "rating":
		if n, err := strconv.Atoi(cell); err == nil {
			it.Rating = models.IntPtr(n)
		}
	case "styles", "style":
		it.Styles = list(cell)
	case "color", "colors":
		it.Color = palette(cell)
	case "material", "materials":
		it.Material = palette(cell)
	case "purchaselocation":
		purchase(it).Location = cell
	case "purchasedate":
		purchase(it).Date = cell
	case "purchaseprice":
		if n, err := strconv.Atoi(strings.TrimPrefix(cell, "$")); err == nil {
			purchase(it).Price = models.IntPtr(n)
		}
	}
}

func purchase(it *models.Item) *models.Purchase {
	if it.Purchase == nil {
		it.Purchase = &models.Purchase{}
	}
	return it.Purchase
}

func list(cell string) []string {
	parts := strings.Split(cell, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func palette(cell string) models.Palette {
	var p models.Palette
	for _, entry := range list(cell) {
		label, weight, ok := strings.Cut(entry, ":")
		label = strings.TrimSpace(label)
		p.Labels = append(p.Labels, label)
		if !ok {
			continue
		}
		if w, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(weight), "%"))); err == nil {
			if p.Weights == nil {
				p.Weights = make(map[string]int)
			}
			p.Weights[label] = w
		}
	}
	return p
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
