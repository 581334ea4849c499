// Package bill builds the finalized BillData of a sale and its scan payload.
package bill

import (
	"time"

	"storefront/models"
	"storefront/totals"
)

// DateLayout is how the bill date is printed and encoded.
const DateLayout = "02 Jan 2006, 03:04 PM"

// FromSale builds the bill for a persisted sale. Line totals are recomputed from the
// normalized items; cart-level amounts come from the sale as the backend recorded them.
func FromSale(store models.Store, customer *models.Customer, sale models.Sale, loc *time.Location) models.BillData {
	if loc == nil {
		loc = time.Local
	}

	items := make([]models.BilledItem, 0, len(sale.Items))
	for _, si := range sale.Items {
		li := models.NormalizeSaleItem(si)
		items = append(items, models.BilledItem{
			Name:      li.ItemName,
			Quantity:  li.Quantity,
			UnitPrice: li.Price,
			Discount:  li.Discount,
			LineTotal: totals.LineTotal(li),
		})
	}

	var cust *models.Customer
	if customer != nil {
		c := *customer
		cust = &c
	}

	issued := sale.CreatedAt.In(loc)
	return models.BillData{
		InvoiceNumber: sale.InvoiceNumber,
		Store:         store,
		Customer:      cust,
		Date:          issued.Format(DateLayout),
		IssuedAt:      issued,
		Items:         items,
		Subtotal:      models.Money(sale.Subtotal),
		Discount:      models.Money(sale.Discount),
		Tax:           models.Money(sale.Tax),
		Total:         models.Money(sale.Total),
		PaymentMethod: sale.PaymentMethod,
	}
}
