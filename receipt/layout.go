// Package receipt lays out a bill as an 80mm thermal receipt and renders it to PDF.
package receipt

import (
	"strconv"
	"strings"

	"storefront/models"

	"github.com/shopspring/decimal"
)

const (
	PageWidth     = 80.0
	Margin        = 5.0
	MinPageHeight = 100.0

	// MaxNameLength is the longest item name printed without truncation.
	MaxNameLength = 15
	Ellipsis      = "..."

	DefaultCurrency = "Rs."
)

// column anchors
const (
	colItem  = Margin
	colQty   = 45.0
	colPrice = 60.0
	colTotal = PageWidth - Margin
	center   = PageWidth / 2
)

// footer copy
const (
	ThankYou     = "Thank you for shopping with us!"
	VisitAgain   = "Please visit again"
	PaperlessTag = "Go green: scan the code for a paperless copy of this bill."
)

// PageHeight sizes the page to its content: 80 + 10 per item + 40, never under 100mm.
func PageHeight(itemCount int) float64 {
	h := 80.0 + 10.0*float64(itemCount) + 40.0
	if h < MinPageHeight {
		return MinPageHeight
	}
	return h
}

// TruncateName cuts names longer than MaxNameLength characters and marks the cut.
func TruncateName(name string) string {
	r := []rune(name)
	if len(r) <= MaxNameLength {
		return name
	}
	return string(r[:MaxNameLength]) + Ellipsis
}

// Layout draws bills. The zero value uses DefaultCurrency.
type Layout struct {
	Currency string
}

func (l Layout) money(d decimal.Decimal) string {
	cur := l.Currency
	if cur == "" {
		cur = DefaultCurrency
	}
	if d.IsNegative() {
		return "-" + cur + d.Abs().StringFixed(2)
	}
	return cur + d.StringFixed(2)
}

func (l Layout) negative(d decimal.Decimal) string {
	return "-" + l.money(d.Abs())
}

// Draw emits the receipt top to bottom on s. It reads nothing but b, so the same
// bill always yields the same instructions.
func (l Layout) Draw(s Sink, b models.BillData) {
	y := 10.0
	divider := func() {
		s.Line(Margin, y, PageWidth-Margin, y)
	}

	// store header
	s.SetFont(StyleBold, 14)
	s.Text(center, y, b.Store.Name, AlignCenter)
	y += 5
	s.SetFont(StyleNormal, 8)
	for _, line := range storeLines(b.Store) {
		s.Text(center, y, line, AlignCenter)
		y += 4
	}
	y += 1
	divider()
	y += 5

	// invoice
	s.SetFont(StyleBold, 9)
	s.Text(colItem, y, "Invoice: "+b.InvoiceNumber, AlignLeft)
	y += 4
	s.SetFont(StyleNormal, 8)
	s.Text(colItem, y, "Date: "+b.Date, AlignLeft)
	y += 4

	if b.Customer != nil {
		s.Text(colItem, y, "Customer: "+b.Customer.Name, AlignLeft)
		y += 4
		if b.Customer.Phone != "" {
			s.Text(colItem, y, "Phone: "+b.Customer.Phone, AlignLeft)
			y += 4
		}
	}
	y += 1
	divider()
	y += 5

	// items
	s.SetFont(StyleBold, 8)
	s.Text(colItem, y, "Item", AlignLeft)
	s.Text(colQty, y, "Qty", AlignCenter)
	s.Text(colPrice, y, "Price", AlignRight)
	s.Text(colTotal, y, "Total", AlignRight)
	y += 5

	s.SetFont(StyleNormal, 8)
	for _, it := range b.Items {
		s.Text(colItem, y, TruncateName(it.Name), AlignLeft)
		s.Text(colQty, y, strconv.Itoa(it.Quantity), AlignCenter)
		s.Text(colPrice, y, l.money(it.UnitPrice), AlignRight)
		s.Text(colTotal, y, l.money(it.LineTotal), AlignRight)
		y += 5
		if it.Discount.IsPositive() {
			s.SetFont(StyleNormal, 7)
			s.Text(colItem+3, y, "Discount", AlignLeft)
			s.Text(colTotal, y, l.negative(it.Discount), AlignRight)
			s.SetFont(StyleNormal, 8)
			y += 4
		}
	}
	divider()
	y += 5

	// totals
	row := func(label, value string) {
		s.Text(colItem, y, label, AlignLeft)
		s.Text(colTotal, y, value, AlignRight)
		y += 5
	}
	row("Subtotal", l.money(b.Subtotal))
	if b.Discount.IsPositive() {
		row("Discount", l.negative(b.Discount))
	}
	if b.Tax.IsPositive() {
		row("Tax", l.money(b.Tax))
	}
	divider()
	y += 6
	s.SetFont(StyleBold, 11)
	row("TOTAL", l.money(b.Total))
	y += 1

	s.SetFont(StyleNormal, 9)
	s.Text(center, y, "Payment Method: "+strings.ToUpper(string(b.PaymentMethod)), AlignCenter)
	y += 4
	divider()
	y += 6

	// footer
	s.Text(center, y, ThankYou, AlignCenter)
	y += 5
	s.SetFont(StyleNormal, 8)
	s.Text(center, y, VisitAgain, AlignCenter)
	y += 5
	s.SetFont(StyleNormal, 6)
	s.Text(center, y, PaperlessTag, AlignCenter)
}

func storeLines(st models.Store) []string {
	var lines []string
	if st.Address != "" {
		lines = append(lines, st.Address)
	}
	if st.Phone != "" {
		lines = append(lines, "Phone: "+st.Phone)
	}
	if st.TaxID != "" {
		lines = append(lines, "Tax ID: "+st.TaxID)
	}
	return lines
}
