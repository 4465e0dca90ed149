package domain

import "github.com/shopspring/decimal"

// OriginalPriceMarkup is the fixed factor used for the struck-through
// "original" price shown next to the selling price.
var OriginalPriceMarkup = decimal.RequireFromString("1.2")

var hundred = decimal.NewFromInt(100)

// Rating is the catalog's aggregate review score.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is a normalized catalog record. Its JSON layout matches the records
// the browser kept in local storage, so stored blobs stay interchangeable.
type Product struct {
	ID                 int     `json:"id"`
	Title              string  `json:"title"`
	Price              float64 `json:"price"`
	Description        string  `json:"description"`
	Category           string  `json:"category"`
	Image              string  `json:"image"`
	Rating             Rating  `json:"rating"`
	DiscountPercentage float64 `json:"discountPercentage"`
}

// PriceDecimal returns the list price as an exact decimal.
func (p Product) PriceDecimal() decimal.Decimal {
	return decimal.NewFromFloat(p.Price)
}

// DiscountedPrice is price * (1 - discount/100) at full precision.
func (p Product) DiscountedPrice() decimal.Decimal {
	factor := hundred.Sub(decimal.NewFromFloat(p.DiscountPercentage)).Div(hundred)
	return p.PriceDecimal().Mul(factor)
}

// OriginalPrice is the display-only marked-up price.
func (p Product) OriginalPrice() decimal.Decimal {
	return p.PriceDecimal().Mul(OriginalPriceMarkup)
}

// Money renders an amount rounded to cents, e.g. "12.30".
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Category is a catalog category with its URL slug.
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}
