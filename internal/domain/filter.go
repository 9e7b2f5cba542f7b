package domain

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// SortMode selects the ordering of a filtered product list.
type SortMode string

const (
	SortDefault   SortMode = ""
	SortPriceAsc  SortMode = "low"
	SortPriceDesc SortMode = "high"
)

// ParseSortMode maps the sort control value; anything unknown is the default.
func ParseSortMode(s string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	default:
		return SortDefault
	}
}

// FilterCriteria is derived from the grid controls on every request.
type FilterCriteria struct {
	Text     string
	Category string
	MaxPrice *decimal.Decimal
	Sort     SortMode
}

// ParseFilterCriteria reads q, category, max_price and sort. A max_price
// that is not a number is ignored.
func ParseFilterCriteria(q url.Values) FilterCriteria {
	c := FilterCriteria{
		Text:     q.Get("q"),
		Category: q.Get("category"),
		Sort:     ParseSortMode(q.Get("sort")),
	}
	if raw := strings.TrimSpace(q.Get("max_price")); raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil {
			c.MaxPrice = &d
		}
	}
	return c
}

// Query encodes the criteria back into grid query parameters.
func (c FilterCriteria) Query() url.Values {
	v := url.Values{}
	if c.Text != "" {
		v.Set("q", c.Text)
	}
	if c.Category != "" {
		v.Set("category", c.Category)
	}
	if c.MaxPrice != nil {
		v.Set("max_price", c.MaxPrice.String())
	}
	if c.Sort != SortDefault {
		v.Set("sort", string(c.Sort))
	}
	return v
}
