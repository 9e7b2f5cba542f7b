// Package catalog holds the immutable product list the storefront sells.
package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/utafrali/litreads/internal/domain"
)

//go:embed seed.yaml
var seed []byte

// FeaturedCount is how many products the home page shows.
const FeaturedCount = 4

// Source lists products in declaration order.
type Source interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	products   []domain.Product
	byID       map[int]int
	categories []string
	maxPrice   decimal.Decimal
}

// New validates products and builds the lookup indexes. Products without a
// position get their 1-based declaration index.
func New(products []domain.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]domain.Product, len(products)),
		byID:     make(map[int]int, len(products)),
		maxPrice: decimal.Zero,
	}
	copy(c.products, products)

	seenCategory := make(map[string]bool)
	for i := range c.products {
		p := &c.products[i]
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate product id %d", i, p.ID)
		}
		if p.Position == 0 {
			p.Position = i + 1
		}
		c.byID[p.ID] = i

		if p.Category != "" && !seenCategory[p.Category] {
			seenCategory[p.Category] = true
			c.categories = append(c.categories, p.Category)
		}
		if p.Price.GreaterThan(c.maxPrice) {
			c.maxPrice = p.Price
		}
	}
	return c, nil
}

// Load builds a catalog from src.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	products, err := src.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog products: %w", err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("catalog source returned no products")
	}
	return New(products)
}

// All returns a copy of every product in declaration order.
func (c *Catalog) All() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Featured returns the first n products in declaration order.
func (c *Catalog) Featured(n int) []domain.Product {
	if n > len(c.products) {
		n = len(c.products)
	}
	if n < 0 {
		n = 0
	}
	out := make([]domain.Product, n)
	copy(out, c.products[:n])
	return out
}

// Get resolves a product by id.
func (c *Catalog) Get(id int) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// Has reports whether id resolves.
func (c *Catalog) Has(id int) bool {
	_, ok := c.byID[id]
	return ok
}

// Categories returns distinct categories in first-appearance order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// MaxPrice is the highest price in the catalog; the price slider's upper bound.
func (c *Catalog) MaxPrice() decimal.Decimal {
	return c.maxPrice
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

type seedFile struct {
	Products []domain.Product `yaml:"products"`
}

// EmbeddedSource serves the catalog compiled into the binary.
type EmbeddedSource struct{}

// ListProducts decodes the embedded seed.
func (EmbeddedSource) ListProducts(context.Context) ([]domain.Product, error) {
	return Parse(seed)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) ([]domain.Product, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog yaml: %w", err)
	}
	return f.Products, nil
}
