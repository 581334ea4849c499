package receipt

import (
	"bytes"
	"fmt"
	"time"

	"storefront/models"

	"github.com/phpdave11/gofpdf"
)

const fontFamily = "Helvetica"

// FileName is the download name of a rendered bill.
func FileName(invoiceNumber string) string {
	return "Bill_" + invoiceNumber + ".pdf"
}

// Renderer turns bills into single-page PDF receipts.
type Renderer struct {
	Layout Layout
}

func NewRenderer(currency string) *Renderer {
	return &Renderer{Layout: Layout{Currency: currency}}
}

// Render lays out b on a content-sized 80mm page. The document dates are taken from
// b.IssuedAt and catalogs are sorted, so identical bills give identical bytes.
func (r *Renderer) Render(b models.BillData) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: PageWidth, Ht: PageHeight(len(b.Items))},
	})
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(issuedAt(b))
	pdf.SetModificationDate(issuedAt(b))
	pdf.SetTitle("Bill "+b.InvoiceNumber, true)
	pdf.SetCreator(b.Store.Name, true)
	pdf.AddPage()

	sink := &pdfSink{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	r.Layout.Draw(sink, b)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("receipt %s: %w", b.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

func issuedAt(b models.BillData) time.Time {
	if b.IssuedAt.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return b.IssuedAt
}

// pdfSink draws on gofpdf. Text y is the baseline.
type pdfSink struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (p *pdfSink) SetFont(style string, size float64) {
	p.pdf.SetFont(fontFamily, style, size)
}

func (p *pdfSink) Text(x, y float64, s string, align Align) {
	txt := p.tr(s)
	w := p.pdf.GetStringWidth(txt)
	switch align {
	case AlignCenter:
		x -= w / 2
	case AlignRight:
		x -= w
	}
	p.pdf.Text(x, y, txt)
}

func (p *pdfSink) Line(x1, y1, x2, y2 float64) {
	p.pdf.SetLineWidth(0.2)
	p.pdf.Line(x1, y1, x2, y2)
}
