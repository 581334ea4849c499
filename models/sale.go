package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod tags how a sale was settled.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentUPI          PaymentMethod = "upi"
	PaymentCredit       PaymentMethod = "credit"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// PaymentMethods lists every accepted tag, in display order.
var PaymentMethods = []PaymentMethod{
	PaymentCash,
	PaymentCard,
	PaymentUPI,
	PaymentCredit,
	PaymentBankTransfer,
}

func (p PaymentMethod) Valid() bool {
	for _, m := range PaymentMethods {
		if p == m {
			return true
		}
	}
	return false
}

// ParsePaymentMethod accepts any casing and surrounding whitespace.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	p := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

// Store is the selling location printed on bills.
type Store struct {
	ID      string `json:"id" bson:"_id"`
	Name    string `json:"name" bson:"name"`
	Address string `json:"address,omitempty" bson:"address,omitempty"`
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty"`
	TaxID   string `json:"taxId,omitempty" bson:"taxId,omitempty"`
}

type Customer struct {
	ID    string `json:"id" bson:"_id"`
	Name  string `json:"name" bson:"name"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// Operator is the cashier ringing up the sale.
type Operator struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// SaleItem is a line of a persisted sale as the backend stores it.
// Older records carry only Price; newer ones carry UnitPrice.
type SaleItem struct {
	ProductID string   `json:"productId" bson:"productId"`
	Name      string   `json:"name" bson:"name"`
	Unit      string   `json:"unit,omitempty" bson:"unit,omitempty"`
	Quantity  int      `json:"quantity" bson:"quantity"`
	UnitPrice *float64 `json:"unitPrice,omitempty" bson:"unitPrice,omitempty"`
	Price     *float64 `json:"price,omitempty" bson:"price,omitempty"`
	Discount  float64  `json:"discount" bson:"discount"`
	Total     float64  `json:"total" bson:"total"`
}

// Sale is a completed transaction as persisted by the backend.
type Sale struct {
	ID            string        `json:"id,omitempty" bson:"_id,omitempty"`
	InvoiceNumber string        `json:"invoiceNumber" bson:"invoiceNumber"`
	StoreID       string        `json:"storeId" bson:"storeId"`
	CustomerID    string        `json:"customerId,omitempty" bson:"customerId,omitempty"`
	// CustomerName and CustomerPhone snapshot the customer at sale time so walk-in
	// customers without an ID still print on reloaded bills.
	CustomerName  string        `json:"customerName,omitempty" bson:"customerName,omitempty"`
	CustomerPhone string        `json:"customerPhone,omitempty" bson:"customerPhone,omitempty"`
	OperatorID    string        `json:"operatorId,omitempty" bson:"operatorId,omitempty"`
	Items         []SaleItem    `json:"items" bson:"items"`
	Subtotal      float64       `json:"subtotal" bson:"subtotal"`
	Discount      float64       `json:"discount" bson:"discount"`
	Tax           float64       `json:"tax" bson:"tax"`
	Total         float64       `json:"total" bson:"total"`
	PaymentMethod PaymentMethod `json:"paymentMethod" bson:"paymentMethod"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
}

// CustomerSnapshot is the customer recorded on the sale, or nil when there was none.
func (s Sale) CustomerSnapshot() *Customer {
	if s.CustomerName == "" {
		return nil
	}
	return &Customer{ID: s.CustomerID, Name: s.CustomerName, Phone: s.CustomerPhone}
}

// NormalizeSaleItem turns a stored sale line into a fully populated LineItem.
// Unit price falls back from UnitPrice to Price to zero; a negative discount becomes zero.
func NormalizeSaleItem(si SaleItem) LineItem {
	price := decimal.Zero
	switch {
	case si.UnitPrice != nil:
		price = Money(*si.UnitPrice)
	case si.Price != nil:
		price = Money(*si.Price)
	}

	discount := Money(si.Discount)
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	qty := si.Quantity
	if qty < 0 {
		qty = 0
	}

	return LineItem{
		ItemID:   si.ProductID,
		ItemName: si.Name,
		Unit:     si.Unit,
		Price:    price,
		Quantity: qty,
		Discount: discount,
	}
}

// SaleItemFromLine is the inverse of NormalizeSaleItem for freshly checked out lines.
func SaleItemFromLine(li LineItem, lineTotal decimal.Decimal) SaleItem {
	unit := li.Price.InexactFloat64()
	return SaleItem{
		ProductID: li.ItemID,
		Name:      li.ItemName,
		Unit:      li.Unit,
		Quantity:  li.Quantity,
		UnitPrice: &unit,
		Discount:  li.Discount.InexactFloat64(),
		Total:     lineTotal.InexactFloat64(),
	}
}

// Money converts a backend float amount to a decimal at minor-unit precision.
func Money(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}
