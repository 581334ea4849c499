package receipt

import (
	"bytes"
	"testing"
	"time"

	"storefront/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleBill() models.BillData {
	return models.BillData{
		InvoiceNumber: "INV-1001",
		Store:         models.Store{Name: "Green Grocers", Address: "12 Market Rd", Phone: "555-0101", TaxID: "29ABCDE1234F1Z5"},
		Customer:      &models.Customer{Name: "Asha", Phone: "555-0199"},
		Date:          "10 Mar 2024, 09:45 AM",
		IssuedAt:      time.Date(2024, time.March, 10, 9, 45, 0, 0, time.UTC),
		Items: []models.BilledItem{
			{Name: "Basmati Rice 5kg", Quantity: 2, UnitPrice: d("100"), Discount: d("0"), LineTotal: d("200")},
			{Name: "Tea", Quantity: 1, UnitPrice: d("50"), Discount: d("10"), LineTotal: d("40")},
		},
		Subtotal:      d("250"),
		Discount:      d("10"),
		Tax:           d("0"),
		Total:         d("240"),
		PaymentMethod: models.PaymentUPI,
	}
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "Fifteen chars!!", TruncateName("Fifteen chars!!"))
	assert.Equal(t, "Sixteen chars!!"+Ellipsis, TruncateName("Sixteen chars!!!"))
	assert.Equal(t, "Tea", TruncateName("Tea"))
	// counted in characters, not bytes
	assert.Equal(t, "ééééééééééééééé", TruncateName("ééééééééééééééé"))
}

func TestPageHeight(t *testing.T) {
	assert.Equal(t, 120.0, PageHeight(0))
	assert.Equal(t, 130.0, PageHeight(1))
	assert.Equal(t, 220.0, PageHeight(10))
	assert.GreaterOrEqual(t, PageHeight(-5), MinPageHeight)
}

func TestDrawContent(t *testing.T) {
	var rec Recorder
	Layout{}.Draw(&rec, sampleBill())
	texts := rec.Texts()

	assert.Equal(t, "Green Grocers", texts[0])
	assert.Contains(t, texts, "12 Market Rd")
	assert.Contains(t, texts, "Phone: 555-0101")
	assert.Contains(t, texts, "Tax ID: 29ABCDE1234F1Z5")
	assert.Contains(t, texts, "Invoice: INV-1001")
	assert.Contains(t, texts, "Date: 10 Mar 2024, 09:45 AM")
	assert.Contains(t, texts, "Customer: Asha")
	assert.Contains(t, texts, "Phone: 555-0199")

	assert.Contains(t, texts, "Basmati Rice 5k...")
	assert.Contains(t, texts, "Rs.100.00")
	assert.Contains(t, texts, "Rs.200.00")
	assert.Contains(t, texts, "-Rs.10.00")

	assert.Contains(t, texts, "Subtotal")
	assert.Contains(t, texts, "Rs.250.00")
	assert.Contains(t, texts, "TOTAL")
	assert.Contains(t, texts, "Rs.240.00")
	assert.NotContains(t, texts, "Tax")
	assert.Contains(t, texts, "Payment Method: UPI")

	n := len(texts)
	assert.Equal(t, []string{ThankYou, VisitAgain, PaperlessTag}, texts[n-3:])
}

func TestDrawOptionalSections(t *testing.T) {
	b := sampleBill()
	b.Customer = nil
	b.Store = models.Store{Name: "Corner Shop"}
	b.Items[1].Discount = decimal.Zero
	b.Items[1].LineTotal = d("50")
	b.Discount = decimal.Zero
	b.Tax = d("12.5")
	b.Total = d("262.5")
	b.PaymentMethod = models.PaymentBankTransfer

	var rec Recorder
	Layout{Currency: "$"}.Draw(&rec, b)
	texts := rec.Texts()

	for _, s := range texts {
		assert.NotContains(t, s, "Customer")
		assert.NotContains(t, s, "Phone")
	}
	assert.NotContains(t, texts, "Discount")
	assert.Contains(t, texts, "Tax")
	assert.Contains(t, texts, "$12.50")
	assert.Contains(t, texts, "$262.50")
	assert.Contains(t, texts, "Payment Method: BANK_TRANSFER")
}

func TestDrawColumns(t *testing.T) {
	var rec Recorder
	Layout{}.Draw(&rec, sampleBill())

	var qty, price, total *Op
	for i := range rec.Ops {
		op := &rec.Ops[i]
		switch {
		case op.Kind == OpText && op.Text == "2":
			qty = op
		case op.Kind == OpText && op.Text == "Rs.100.00":
			price = op
		case op.Kind == OpText && op.Text == "Rs.200.00":
			total = op
		}
	}
	require.NotNil(t, qty)
	require.NotNil(t, price)
	require.NotNil(t, total)

	assert.Equal(t, AlignCenter, qty.Align)
	assert.Equal(t, colQty, qty.X)
	assert.Equal(t, AlignRight, price.Align)
	assert.Equal(t, colPrice, price.X)
	assert.Equal(t, AlignRight, total.Align)
	assert.Equal(t, PageWidth-Margin, total.X)
	assert.Equal(t, qty.Y, price.Y)

	// every instruction stays on the page
	h := PageHeight(len(sampleBill().Items))
	for _, op := range rec.Ops {
		if op.Kind == OpFont {
			continue
		}
		assert.LessOrEqual(t, op.Y, h)
		assert.GreaterOrEqual(t, op.X, 0.0)
		assert.LessOrEqual(t, op.X, PageWidth)
	}
}

func TestDrawIsDeterministic(t *testing.T) {
	var a, b Recorder
	Layout{}.Draw(&a, sampleBill())
	Layout{}.Draw(&b, sampleBill())
	assert.Equal(t, a.Ops, b.Ops)
}

func TestRenderPDF(t *testing.T) {
	r := NewRenderer("Rs.")

	first, err := r.Render(sampleBill())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(first, []byte("%PDF-")))

	// cross a second boundary so a wall-clock date would show up in the output
	time.Sleep(1100 * time.Millisecond)
	second, err := r.Render(sampleBill())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, "Bill_INV-1001.pdf", FileName("INV-1001"))
}
