package xlsx

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/adrianliechti/ingester/pkg/element"

	"github.com/xuri/excelize/v2"
)

const overview = "Elements"

// Write renders pages as a workbook: one overview sheet listing every element and one sheet per
// extracted table grid.
func Write(w io.Writer, pages []element.Page) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", overview); err != nil {
		return err
	}

	headers := []any{"Page", "Type", "Label", "Confidence", "Content", "Error", "ID"}

	if err := f.SetSheetRow(overview, "A1", &headers); err != nil {
		return err
	}

	row := 2
	tables := 0

	for _, page := range pages {
		for _, e := range page.Elements {
			values := []any{page.Number, string(e.Type), e.Label, e.Confidence, Content(e.Content), e.Error, e.ID}

			cell, _ := excelize.CoordinatesToCellName(1, row)

			if err := f.SetSheetRow(overview, cell, &values); err != nil {
				return err
			}

			row++

			table, ok := e.Content.(*element.Table)

			if !ok || len(table.Grid) == 0 {
				continue
			}

			tables++

			if err := writeTable(f, fmt.Sprintf("Page %d Table %d", page.Number, tables), table); err != nil {
				return err
			}
		}
	}

	_ = f.SetColWidth(overview, "A", "A", 8)
	_ = f.SetColWidth(overview, "B", "C", 14)
	_ = f.SetColWidth(overview, "D", "D", 12)
	_ = f.SetColWidth(overview, "E", "E", 80)
	_ = f.SetColWidth(overview, "F", "F", 30)
	_ = f.SetColWidth(overview, "G", "G", 38)

	return f.Write(w)
}

func writeTable(f *excelize.File, sheet string, table *element.Table) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	for i, cells := range table.Grid {
		values := make([]any, len(cells))

		for j, c := range cells {
			values[j] = c
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+1)

		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	return nil
}

// Content flattens element content into a single cell value.
func Content(content any) string {
	switch v := content.(type) {
	case nil:
		return ""
	case string:
		return v
	case *element.Table:
		return v.Markdown
	case *element.Formula:
		return v.Text()
	}

	data, err := json.Marshal(content)

	if err != nil {
		return fmt.Sprint(content)
	}

	return string(data)
}
