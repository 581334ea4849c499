package reports

import (
	"fmt"
	"time"

	"storefront/models"
	"storefront/totals"

	"github.com/xuri/excelize/v2"
)

const (
	SalesSheet   = "Sales"
	SummarySheet = "Summary"
	XLSXType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	exportTimeLayout = "2006-01-02 15:04"
)

// ExportFileName is Sales_<start>_<end>.xlsx.
func ExportFileName(s Summary) string {
	return "Sales_" + s.Start + "_" + s.End + ".xlsx"
}

// Export writes one row per sale line on the Sales sheet and the aggregates on the
// Summary sheet.
func Export(s Summary, sales []models.Sale, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	writeRow := func(sheet string, row int, values []interface{}) {
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}
	writeHeaders := func(sheet string, headers []interface{}) {
		writeRow(sheet, 1, headers)
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(sheet, "A1", last, headerStyle)
	}

	if err := f.SetSheetName("Sheet1", SalesSheet); err != nil {
		return nil, err
	}
	writeHeaders(SalesSheet, []interface{}{
		"Invoice", "Date", "Payment Method", "Item", "Quantity", "Unit Price", "Discount", "Line Total", "Sale Total",
	})

	row := 2
	for _, sale := range sales {
		date := sale.CreatedAt.In(loc).Format(exportTimeLayout)
		for i, si := range sale.Items {
			li := models.NormalizeSaleItem(si)
			values := []interface{}{
				sale.InvoiceNumber,
				date,
				string(sale.PaymentMethod),
				li.ItemName,
				li.Quantity,
				li.Price.InexactFloat64(),
				li.Discount.InexactFloat64(),
				totals.LineTotal(li).InexactFloat64(),
			}
			// the sale total is printed once, on its first line
			if i == 0 {
				values = append(values, models.Money(sale.Total).InexactFloat64())
			}
			writeRow(SalesSheet, row, values)
			row++
		}
	}
	if err := f.AutoFilter(SalesSheet, "A1:I1", []excelize.AutoFilterOptions{}); err != nil {
		return nil, err
	}
	if err := f.SetPanes(SalesSheet, &excelize.Panes{Freeze: true, Split: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, err
	}
	writeHeaders(SummarySheet, []interface{}{"Metric", "Value"})
	rows := [][]interface{}{
		{"Period", s.Label},
		{"From", s.Start},
		{"To", s.End},
		{"Sales", s.Count},
		{"Gross", s.Gross.InexactFloat64()},
		{"Discount", s.Discount.InexactFloat64()},
		{"Tax", s.Tax.InexactFloat64()},
		{"Net", s.Net.InexactFloat64()},
	}
	for _, pt := range s.ByPayment {
		rows = append(rows, []interface{}{fmt.Sprintf("Payment %s (%d)", pt.Method, pt.Count), pt.Total.InexactFloat64()})
	}
	for i, it := range s.BestSellers {
		rows = append(rows, []interface{}{fmt.Sprintf("Top %d: %s", i+1, it.Name), it.Quantity})
	}
	for i, values := range rows {
		writeRow(SummarySheet, i+2, values)
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
