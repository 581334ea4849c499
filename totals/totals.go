// Package totals aggregates line items into cart-level amounts.
// Every function here is pure and total over well-formed input.
package totals

import (
	"storefront/models"

	"github.com/shopspring/decimal"
)

// TaxPolicy computes tax for a cart. Implementations must not return negative values;
// Compute floors anything below zero.
type TaxPolicy interface {
	Tax(subtotal, discount decimal.Decimal) decimal.Decimal
}

// ZeroTax is the current policy: no tax on any sale.
type ZeroTax struct{}

func (ZeroTax) Tax(_, _ decimal.Decimal) decimal.Decimal { return decimal.Zero }

// LineTotal returns price x quantity - discount. It does not clamp.
func LineTotal(item models.LineItem) decimal.Decimal {
	return item.Gross().Sub(item.Discount)
}

// Compute returns the cart totals under the zero tax policy.
func Compute(items []models.LineItem) models.CartTotals {
	return ComputeWithPolicy(items, ZeroTax{})
}

// ComputeWithPolicy sums gross amounts and discounts over items and applies policy.
// A nil policy is treated as ZeroTax.
func ComputeWithPolicy(items []models.LineItem, policy TaxPolicy) models.CartTotals {
	if policy == nil {
		policy = ZeroTax{}
	}

	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Gross())
		discount = discount.Add(it.Discount)
	}

	tax := policy.Tax(subtotal, discount)
	if tax.IsNegative() {
		tax = decimal.Zero
	}

	return models.CartTotals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal.Sub(discount).Add(tax),
	}
}
