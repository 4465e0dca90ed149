package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int, price, discount float64) Product {
	return Product{ID: id, Title: "p", Price: price, DiscountPercentage: discount}
}

// ============================================================================
// Pricing
// ============================================================================

func TestDiscountedPrice(t *testing.T) {
	assert.Equal(t, "90.00", Money(product(1, 100, 10).DiscountedPrice()))
	assert.Equal(t, "109.95", Money(product(1, 109.95, 0).DiscountedPrice()))
	assert.Equal(t, "7.33", Money(product(1, 22.3, 67.15).DiscountedPrice()))
}

func TestOriginalPrice(t *testing.T) {
	assert.Equal(t, "131.94", Money(product(1, 109.95, 0).OriginalPrice()))
	assert.Equal(t, "0.00", Money(product(1, 0, 0).OriginalPrice()))
}

func TestLineTotal_FullPrecision(t *testing.T) {
	e := CartEntry{Product: product(1, 10, 33), Quantity: 3}
	assert.True(t, decimal.RequireFromString("20.1").Equal(e.LineTotal()))
}

// ============================================================================
// Totals
// ============================================================================

func TestTotals_RoundOnceAtTheEnd(t *testing.T) {
	// Each line is 0.333..; rounding per line would give 0.99, once gives 1.00.
	c := NewCart([]CartEntry{
		{Product: product(1, 1, 66.6666666666666667), Quantity: 1},
		{Product: product(2, 1, 66.6666666666666667), Quantity: 1},
		{Product: product(3, 1, 66.6666666666666667), Quantity: 1},
	})

	totals := c.Totals()
	assert.Equal(t, "1.00", Money(totals.Subtotal))
	assert.Equal(t, totals.Subtotal, totals.Total)
	assert.True(t, totals.Shipping.IsZero())
}

func TestTotals_Example(t *testing.T) {
	c := NewCart([]CartEntry{
		{Product: product(1, 100, 10), Quantity: 2},
		{Product: product(2, 50, 20), Quantity: 1},
	})
	assert.Equal(t, "220.00", Money(c.Totals().Total))
}

func TestTotals_EmptyCart(t *testing.T) {
	assert.Equal(t, "0.00", Money(NewCart(nil).Totals().Total))
}

// ============================================================================
// Normalisation of stored entries
// ============================================================================

func TestNewCart_LegacyEntries(t *testing.T) {
	raw := `[
		{"id":1,"title":"a","price":10,"rating":{"rate":4.1,"count":3}},
		{"id":2,"title":"b","price":5,"discountPercentage":20,"quantity":0},
		{"id":1,"title":"dup","price":99,"quantity":4},
		{"id":3,"title":"c","price":1,"quantity":3}
	]`
	var entries []CartEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))

	c := NewCart(entries)
	require.Equal(t, 3, c.Len())
	assert.Equal(t, "a", c.Entries[0].Title, "first occurrence wins")
	assert.Equal(t, 1, c.Entries[0].Quantity, "missing quantity reads as 1")
	assert.Equal(t, 0.0, c.Entries[0].DiscountPercentage, "missing discount reads as 0")
	assert.Equal(t, 1, c.Entries[1].Quantity)
	assert.Equal(t, 3, c.Entries[2].Quantity)
	assert.Equal(t, 5, c.ItemCount())
}

func TestCartEntry_JSONLayoutIsFlat(t *testing.T) {
	e := CartEntry{Product: product(7, 12.5, 15), Quantity: 2}
	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, float64(7), m["id"])
	assert.Equal(t, float64(15), m["discountPercentage"])
	assert.Equal(t, float64(2), m["quantity"])
	assert.NotContains(t, m, "Product")
}

// ============================================================================
// Mutations
// ============================================================================

func TestAdd_RepeatIsNoOp(t *testing.T) {
	c := NewCart(nil)
	assert.True(t, c.Add(product(1, 10, 0)))

	c.SetQuantity(1, 4)
	assert.False(t, c.Add(product(1, 999, 50)))

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 4, c.Entries[0].Quantity)
	assert.Equal(t, 10.0, c.Entries[0].Price, "snapshot is not refreshed")
}

func TestRemove(t *testing.T) {
	c := NewCart(nil)
	c.Add(product(1, 1, 0))
	c.Add(product(2, 1, 0))
	c.Add(product(3, 1, 0))

	assert.True(t, c.Remove(2))
	assert.False(t, c.Remove(2))
	assert.Equal(t, []int{1, 3}, []int{c.Entries[0].ID, c.Entries[1].ID})
}

func TestSetQuantity(t *testing.T) {
	c := NewCart(nil)
	c.Add(product(1, 1, 0))

	assert.True(t, c.SetQuantity(1, 3))
	assert.Equal(t, 3, c.Entries[0].Quantity)
	assert.False(t, c.SetQuantity(42, 3))
	assert.Equal(t, 1, c.Len())
}

func TestFind(t *testing.T) {
	c := NewCart(nil)
	c.Add(product(5, 1, 0))
	assert.Equal(t, 0, c.Find(5))
	assert.Equal(t, -1, c.Find(6))
}
