package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Keys inside a visitor's key-value namespace.
const (
	CartKey     = "litreads_cart_v1"
	DarkModeKey = "darkMode"
)

// MaxQuantityPerLine bounds a single cart line.
const MaxQuantityPerLine = 999

// CartLine pairs a product with a positive quantity. The JSON field names
// are the persisted wire format.
type CartLine struct {
	ProductID int `json:"id"`
	Quantity  int `json:"quantity"`
}

// Cart is an ordered list of lines with at most one line per product.
// It serializes as a bare JSON array.
type Cart struct {
	Lines []CartLine
}

// MarshalJSON encodes the cart as an array; an empty cart is "[]".
func (c Cart) MarshalJSON() ([]byte, error) {
	lines := c.Lines
	if lines == nil {
		lines = []CartLine{}
	}
	return json.Marshal(lines)
}

// UnmarshalJSON decodes the array form. A JSON null yields an empty cart.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var lines []CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	c.Lines = lines
	return nil
}

// Count is the sum of quantities across all lines.
func (c Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Find returns the index of the line for productID, or -1.
func (c *Cart) Find(productID int) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Quantity returns the quantity held for productID, or 0.
func (c *Cart) Quantity(productID int) int {
	if i := c.Find(productID); i >= 0 {
		return c.Lines[i].Quantity
	}
	return 0
}

// Add increments an existing line or appends a new one.
func (c *Cart) Add(productID, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	i := c.Find(productID)
	if i < 0 {
		if quantity > MaxQuantityPerLine {
			return fmt.Errorf("quantity %d exceeds the per-line limit of %d", quantity, MaxQuantityPerLine)
		}
		c.Lines = append(c.Lines, CartLine{ProductID: productID, Quantity: quantity})
		return nil
	}
	next := c.Lines[i].Quantity + quantity
	if next > MaxQuantityPerLine {
		return fmt.Errorf("quantity %d exceeds the per-line limit of %d", next, MaxQuantityPerLine)
	}
	c.Lines[i].Quantity = next
	return nil
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
// It reports whether the cart changed. A missing line is left alone.
func (c *Cart) SetQuantity(productID, quantity int) (bool, error) {
	if quantity > MaxQuantityPerLine {
		return false, fmt.Errorf("quantity %d exceeds the per-line limit of %d", quantity, MaxQuantityPerLine)
	}
	i := c.Find(productID)
	if i < 0 {
		return false, nil
	}
	if quantity <= 0 {
		c.removeAt(i)
		return true, nil
	}
	changed := c.Lines[i].Quantity != quantity
	c.Lines[i].Quantity = quantity
	return changed, nil
}

// Remove deletes the line for productID and reports whether one existed.
func (c *Cart) Remove(productID int) bool {
	i := c.Find(productID)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

func (c *Cart) removeAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}

// Normalize repairs state read from storage: non-positive quantities are
// dropped, duplicate product ids are merged in first-seen order, quantities
// are capped at MaxQuantityPerLine, and lines for which keep returns false
// are dropped. keep may be nil. It reports whether anything was repaired.
func (c *Cart) Normalize(keep func(productID int) bool) bool {
	repaired := false
	out := make([]CartLine, 0, len(c.Lines))
	index := make(map[int]int, len(c.Lines))
	for _, l := range c.Lines {
		if l.Quantity <= 0 || (keep != nil && !keep(l.ProductID)) {
			repaired = true
			continue
		}
		i, ok := index[l.ProductID]
		if ok {
			out[i].Quantity += l.Quantity
			repaired = true
		} else {
			i = len(out)
			index[l.ProductID] = i
			out = append(out, l)
		}
		if out[i].Quantity > MaxQuantityPerLine {
			out[i].Quantity = MaxQuantityPerLine
			repaired = true
		}
	}
	c.Lines = out
	return repaired
}

// CartRow is a cart line joined with its product.
type CartRow struct {
	Product  Product
	Quantity int
	Subtotal decimal.Decimal
}

// DecrementTarget is the quantity the "-" control asks for. It never goes
// below 1; removal is a separate action.
func (r CartRow) DecrementTarget() int {
	return max(1, r.Quantity-1)
}

// IncrementTarget is the quantity the "+" control asks for.
func (r CartRow) IncrementTarget() int {
	return r.Quantity + 1
}

// CartView is a priced projection of a cart.
type CartView struct {
	Rows  []CartRow
	Total decimal.Decimal
	Count int
}

// IsEmpty reports whether there is nothing to show.
func (v CartView) IsEmpty() bool {
	return len(v.Rows) == 0
}

// PriceCart joins lines with products. Lines whose product cannot be
// resolved are skipped and excluded from the total and count.
func PriceCart(c Cart, lookup func(id int) (Product, bool)) CartView {
	view := CartView{Total: decimal.Zero}
	for _, l := range c.Lines {
		p, ok := lookup(l.ProductID)
		if !ok || l.Quantity <= 0 {
			continue
		}
		subtotal := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		view.Rows = append(view.Rows, CartRow{Product: p, Quantity: l.Quantity, Subtotal: subtotal})
		view.Total = view.Total.Add(subtotal)
		view.Count += l.Quantity
	}
	return view
}
