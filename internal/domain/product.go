package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is an immutable catalog entry. Position is the 1-based creation
// order; a higher position is newer.
type Product struct {
	ID          int             `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Author      string          `json:"author" yaml:"author"`
	Category    string          `json:"category" yaml:"category"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Image       string          `json:"image" yaml:"image"`
	Description string          `json:"description" yaml:"description"`
	Position    int             `json:"position" yaml:"position"`
}

// Validate checks the catalog invariants for a single product.
func (p Product) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("product id must be positive, got %d", p.ID)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("product %d: title is required", p.ID)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("product %d: price must not be negative, got %s", p.ID, p.Price)
	}
	return nil
}

// SearchText is the lower-cased haystack matched by free-text queries.
func (p Product) SearchText() string {
	return strings.ToLower(p.Title + p.Author + p.Description + p.Category)
}

// NormalizeCategory trims and case-folds a category for comparison.
func NormalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}
