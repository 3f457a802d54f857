package export

import (
	"fmt"
	"io"

	"github.com/MichalMitros/flyer-shopper/internal/platform/models"
	"github.com/MichalMitros/flyer-shopper/internal/pricing"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the worksheet holding the shopping list.
const SheetName = "Shopping List"

var xlsxHeaders = []any{"Store", "Item", "Quantity", "Price", "Was", "Unit", "Savings"}

// XLSX writes grouped entries to w as a spreadsheet with one row per entry.
func XLSX(w io.Writer, groups []models.StoreGroup) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("can't name sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &xlsxHeaders); err != nil {
		return fmt.Errorf("can't write header: %w", err)
	}

	row := 2
	for _, group := range groups {
		for _, entry := range group.Entries {
			pres := pricing.Derive(entry.FlyerItem)
			values := []any{
				models.StoreDisplayName(group.Store),
				entry.Name,
				entry.Quantity,
				pres.MainPrice,
				pres.StrikethroughPrice,
				pres.UnitDetail,
				savingsCell(entry.FlyerItem),
			}

			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return fmt.Errorf("can't address row %d: %w", row, err)
			}
			if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
				return fmt.Errorf("can't write row %d: %w", row, err)
			}
			row++
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("can't write workbook: %w", err)
	}

	return nil
}

func savingsCell(item models.FlyerItem) any {
	if item.SavingsPercentage == nil {
		return ""
	}
	return *item.SavingsPercentage
}
