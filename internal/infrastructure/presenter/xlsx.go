package presenter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Portfolio"

// WriteXLSX writes the tables as a workbook, one block per wallet on a
// single sheet, each with its own header and total line.
func WriteXLSX(w io.Writer, tables ...Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	row := 1
	for i, t := range tables {
		if i > 0 {
			row++
		}
		if err := setRow(f, row, []string{"Wallet", t.WalletAddress, "Network", t.Network}); err != nil {
			return err
		}
		row++

		if err := setRow(f, row, Columns); err != nil {
			return err
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(Columns), row)
		if err := f.SetCellStyle(sheetName, first, last, bold); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
		row++

		for _, r := range t.Rows {
			if err := setRow(f, row, r.Cells()); err != nil {
				return err
			}
			row++
		}

		if err := setRow(f, row, []string{"", "", "", "", "Total Balance USD", t.Total}); err != nil {
			return err
		}
		row++
		for _, m := range t.Messages {
			if err := setRow(f, row, []string{m}); err != nil {
				return err
			}
			row++
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "C", "C", 46); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
