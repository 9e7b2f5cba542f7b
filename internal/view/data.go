package view

import (
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/utafrali/litreads/internal/domain"
)

// PageData is what every page template receives. Content carries the
// page-specific model.
type PageData struct {
	Title      string
	Active     string
	CartCount  int
	DarkMode   bool
	Categories []string
	Newsletter FormState
	Content    any
}

// HomeContent feeds the home page.
type HomeContent struct {
	Featured []domain.Product
}

// ProductsContent feeds the grid page. MaxPrice is the slider's upper bound.
type ProductsContent struct {
	Criteria   domain.FilterCriteria
	Products   []domain.Product
	MaxPrice   decimal.Decimal
	PriceValue string
}

// DetailContent feeds the product page; Product is nil when the id did not resolve.
type DetailContent struct {
	Product *domain.Product
}

// CartContent feeds the cart page.
type CartContent struct {
	Cart domain.CartView
}

// CheckoutContent feeds the checkout page.
type CheckoutContent struct {
	Cart  domain.CartView
	Form  FormState
	Order domain.CartView
}

// ContactContent feeds the contact page.
type ContactContent struct {
	Form FormState
}

// AboutContent feeds the about page.
type AboutContent struct {
	Body template.HTML
}

// ErrorContent feeds the error page.
type ErrorContent struct {
	Status  int
	Message string
}

// NewProductsContent derives slider state from the criteria and catalog.
// Without a max_price the slider sits at the catalog maximum.
func NewProductsContent(c domain.FilterCriteria, products []domain.Product, maxPrice decimal.Decimal) ProductsContent {
	value := maxPrice
	if c.MaxPrice != nil {
		value = *c.MaxPrice
	}
	return ProductsContent{
		Criteria:   c,
		Products:   products,
		MaxPrice:   maxPrice,
		PriceValue: value.String(),
	}
}
