// Package export renders an extraction result as CSV or XLSX for
// spreadsheet consumers.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"invex/internal/domain"
)

// BOM is the UTF-8 byte order mark, for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// lineItemColumns defines the CSV header row for line items.
var lineItemColumns = []string{
	"Description",
	"Quantity",
	"Unit Price",
	"Total Price",
}

// CSVWriter wraps csv.Writer for exporting an extraction as CSV.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes CSV to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteExtraction writes an invoice header block followed by one row per
// line item.
func (w *CSVWriter) WriteExtraction(ext *domain.Extraction) error {
	header := [][]string{
		{"Sender", ext.Invoice.Sender},
		{"Date", ext.Invoice.Date},
		{"Total Amount", formatMoney(ext.Invoice.TotalAmount)},
		{"Model", ext.ModelUsed},
		{},
		lineItemColumns,
	}
	for _, row := range header {
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}

	for i := range ext.Invoice.LineItems {
		if err := w.csv.Write(lineItemToRow(&ext.Invoice.LineItems[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

func lineItemToRow(item *domain.LineItem) []string {
	return []string{
		item.Description,
		strconv.Itoa(item.Quantity),
		formatMoney(item.UnitPrice),
		formatMoney(item.TotalPrice),
	}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
