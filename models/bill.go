package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BilledItem is one printed line of a bill.
type BilledItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Discount  decimal.Decimal `json:"discount"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// BillData is the finalized record of a completed transaction.
// It is built once at checkout and treated as read-only afterwards.
type BillData struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	Store         Store           `json:"store"`
	Customer      *Customer       `json:"customer,omitempty"`
	Date          string          `json:"date"`
	IssuedAt      time.Time       `json:"issuedAt"`
	Items         []BilledItem    `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
}
