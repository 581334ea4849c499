package models

import "github.com/shopspring/decimal"

// LineItem represents a single product entry in a cart.
type LineItem struct {
	ItemID   string          `json:"itemId"`
	ItemName string          `json:"itemName"`
	Unit     string          `json:"unit,omitempty"`
	Price    decimal.Decimal `json:"price"`    // unit price
	Quantity int             `json:"quantity"` // always > 0 while the line is in a cart
	Discount decimal.Decimal `json:"discount"` // absolute amount for the whole line
}

// Gross is price x quantity before any discount.
func (li LineItem) Gross() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// DiscountWithinBounds reports whether 0 <= discount <= price x quantity.
func (li LineItem) DiscountWithinBounds() bool {
	return !li.Discount.IsNegative() && li.Discount.LessThanOrEqual(li.Gross())
}

// CartTotals is derived from a cart on every mutation and never stored on its own.
type CartTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}
