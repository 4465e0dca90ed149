package domain

import "github.com/shopspring/decimal"

// DefaultMaxQuantity is the largest quantity the cart page offers.
const DefaultMaxQuantity = 5

// CartEntry is a product snapshot taken when it was added, plus a quantity.
// Price and discount are frozen at add time.
type CartEntry struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal is discounted price * quantity at full precision.
func (e CartEntry) LineTotal() decimal.Decimal {
	return e.DiscountedPrice().Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Totals are the cart summary figures. Shipping is always free.
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Cart is an ordered list of entries with unique product ids.
type Cart struct {
	Entries []CartEntry
}

// NewCart builds a cart from stored entries. A missing or non-positive
// quantity reads as 1 and a repeated id keeps only its first occurrence.
func NewCart(entries []CartEntry) *Cart {
	c := &Cart{Entries: make([]CartEntry, 0, len(entries))}
	seen := make(map[int]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		if e.Quantity <= 0 {
			e.Quantity = 1
		}
		c.Entries = append(c.Entries, e)
	}
	return c
}

// Find returns the index of productID or -1.
func (c *Cart) Find(productID int) int {
	for i := range c.Entries {
		if c.Entries[i].ID == productID {
			return i
		}
	}
	return -1
}

// Add appends p with quantity 1. It reports false, leaving the cart
// unchanged, when p is already present.
func (c *Cart) Add(p Product) bool {
	if c.Find(p.ID) >= 0 {
		return false
	}
	c.Entries = append(c.Entries, CartEntry{Product: p, Quantity: 1})
	return true
}

// Remove drops productID and reports whether it was present.
func (c *Cart) Remove(productID int) bool {
	i := c.Find(productID)
	if i < 0 {
		return false
	}
	c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
	return true
}

// SetQuantity replaces the quantity of productID and reports whether it was
// present. Range checking is the caller's job.
func (c *Cart) SetQuantity(productID, quantity int) bool {
	i := c.Find(productID)
	if i < 0 {
		return false
	}
	c.Entries[i].Quantity = quantity
	return true
}

// Len is the number of distinct products.
func (c *Cart) Len() int {
	return len(c.Entries)
}

// ItemCount is the sum of all quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, e := range c.Entries {
		n += e.Quantity
	}
	return n
}

// Totals sums line totals at full precision and rounds once, to cents.
func (c *Cart) Totals() Totals {
	sum := decimal.Zero
	for _, e := range c.Entries {
		sum = sum.Add(e.LineTotal())
	}
	subtotal := sum.Round(2)
	return Totals{
		Subtotal: subtotal,
		Shipping: decimal.Zero,
		Total:    subtotal,
	}
}
