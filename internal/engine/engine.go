// Package engine narrows and orders the catalog for the product grid.
package engine

import (
	"sort"
	"strings"

	"github.com/utafrali/litreads/internal/domain"
)

// Filter applies text, category and max-price filters in that order and then
// sorts. The input slice is never modified.
func Filter(products []domain.Product, c domain.FilterCriteria) []domain.Product {
	matched := make([]domain.Product, 0, len(products))

	text := strings.ToLower(c.Text)
	category := domain.NormalizeCategory(c.Category)

	for _, p := range products {
		if !matches(p, c, text, category) {
			continue
		}
		matched = append(matched, p)
	}

	sortProducts(matched, c.Sort)
	return matched
}

func matches(p domain.Product, c domain.FilterCriteria, text, category string) bool {
	if text != "" && !strings.Contains(p.SearchText(), text) {
		return false
	}
	if category != "" && domain.NormalizeCategory(p.Category) != category {
		return false
	}
	if c.MaxPrice != nil && p.Price.GreaterThan(*c.MaxPrice) {
		return false
	}
	return true
}

// sortProducts orders in place. Price sorts are stable so equal prices keep
// declaration order.
func sortProducts(products []domain.Product, mode domain.SortMode) {
	switch mode {
	case domain.SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.LessThan(products[j].Price)
		})
	case domain.SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.GreaterThan(products[j].Price)
		})
	default:
		// Newest first.
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Position > products[j].Position
		})
	}
}
