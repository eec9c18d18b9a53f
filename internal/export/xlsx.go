package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"invex/internal/domain"
)

const sheetName = "Invoice"

// WriteXLSX renders an extraction as a single-sheet XLSX workbook.
func WriteXLSX(w io.Writer, ext *domain.Extraction) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Sender", ext.Invoice.Sender},
		{"Date", ext.Invoice.Date},
		{"Total Amount", ext.Invoice.TotalAmount},
		{"Model", ext.ModelUsed},
		{},
		{"Description", "Quantity", "Unit Price", "Total Price"},
	}
	for _, item := range ext.Invoice.LineItems {
		rows = append(rows, []interface{}{item.Description, item.Quantity, item.UnitPrice, item.TotalPrice})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("computing cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
