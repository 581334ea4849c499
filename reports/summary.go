// Package reports aggregates sales history over resolved date ranges.
package reports

import (
	"sort"

	"storefront/daterange"
	"storefront/models"
	"storefront/totals"

	"github.com/shopspring/decimal"
)

// DefaultTopItems is how many best sellers a summary lists.
const DefaultTopItems = 5

type PaymentTotal struct {
	Method models.PaymentMethod `json:"method"`
	Count  int                  `json:"count"`
	Total  decimal.Decimal      `json:"total"`
}

type ItemTotal struct {
	ProductID string          `json:"productId,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Summary is the aggregate of every sale in a range.
type Summary struct {
	Start       string          `json:"start"`
	End         string          `json:"end"`
	Label       string          `json:"label"`
	Count       int             `json:"count"`
	Gross       decimal.Decimal `json:"gross"`
	Discount    decimal.Decimal `json:"discount"`
	Tax         decimal.Decimal `json:"tax"`
	Net         decimal.Decimal `json:"net"`
	ByPayment   []PaymentTotal  `json:"byPayment"`
	BestSellers []ItemTotal     `json:"bestSellers"`
}

// Summarize folds sales into a Summary. Payment rows follow models.PaymentMethods
// order with unknown methods last; best sellers rank by quantity, then revenue, then name.
func Summarize(r daterange.Range, sales []models.Sale, top int) Summary {
	if top <= 0 {
		top = DefaultTopItems
	}

	s := Summary{
		Start:       r.StartString(),
		End:         r.EndString(),
		Label:       r.Label(),
		Gross:       decimal.Zero,
		Discount:    decimal.Zero,
		Tax:         decimal.Zero,
		Net:         decimal.Zero,
		ByPayment:   []PaymentTotal{},
		BestSellers: []ItemTotal{},
	}

	byMethod := map[models.PaymentMethod]*PaymentTotal{}
	var order []models.PaymentMethod
	items := map[string]*ItemTotal{}

	for _, sale := range sales {
		s.Count++
		s.Gross = s.Gross.Add(models.Money(sale.Subtotal))
		s.Discount = s.Discount.Add(models.Money(sale.Discount))
		s.Tax = s.Tax.Add(models.Money(sale.Tax))
		s.Net = s.Net.Add(models.Money(sale.Total))

		pt, ok := byMethod[sale.PaymentMethod]
		if !ok {
			pt = &PaymentTotal{Method: sale.PaymentMethod, Total: decimal.Zero}
			byMethod[sale.PaymentMethod] = pt
			order = append(order, sale.PaymentMethod)
		}
		pt.Count++
		pt.Total = pt.Total.Add(models.Money(sale.Total))

		for _, si := range sale.Items {
			li := models.NormalizeSaleItem(si)
			key := li.ItemID
			if key == "" {
				key = "name:" + li.ItemName
			}
			it, ok := items[key]
			if !ok {
				it = &ItemTotal{ProductID: li.ItemID, Name: li.ItemName, Revenue: decimal.Zero}
				items[key] = it
			}
			it.Quantity += li.Quantity
			it.Revenue = it.Revenue.Add(totals.LineTotal(li))
		}
	}

	for _, m := range models.PaymentMethods {
		if pt, ok := byMethod[m]; ok {
			s.ByPayment = append(s.ByPayment, *pt)
			delete(byMethod, m)
		}
	}
	for _, m := range order {
		if pt, ok := byMethod[m]; ok {
			s.ByPayment = append(s.ByPayment, *pt)
		}
	}

	for _, it := range items {
		s.BestSellers = append(s.BestSellers, *it)
	}
	sort.Slice(s.BestSellers, func(i, j int) bool {
		a, b := s.BestSellers[i], s.BestSellers[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ProductID < b.ProductID
	})
	if len(s.BestSellers) > top {
		s.BestSellers = s.BestSellers[:top]
	}
	return s
}
