package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet styling, matching the console's report look: dark merged title row,
// blue header band, bordered body cells with alternating shading.
const (
	titleFill  = "0F172A"
	headerFill = "3B82F6"
	stripeFill = "F8FAFC"
	bodyText   = "334155"
	borderTint = "CBD5E1"
)

// Excel renders rows into a single-sheet xlsx workbook and returns the file
// bytes. An empty row set still yields a valid workbook with the title and
// header rows.
func Excel(title, sheetName string, columns []Column, rows []Row) (data []byte, err error) {
	defer recoverTo(&err)

	if len(columns) == 0 {
		return nil, fmt.Errorf("export: no columns")
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return nil, fmt.Errorf("resolve last column: %w", err)
	}

	// Title row, merged across every column.
	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title row: %w", err)
	}
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return nil, err
	}
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 16, Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{titleFill}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle); err != nil {
		return nil, err
	}
	_ = f.SetRowHeight(sheetName, 1, 30)

	// Header row.
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 12, Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder("000000"),
	})
	if err != nil {
		return nil, err
	}
	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, col.Header); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheetName, "A2", lastCol+"2", headerStyle); err != nil {
		return nil, err
	}
	_ = f.SetRowHeight(sheetName, 2, 20)

	// Body rows with alternating shading.
	bodyStyle, err := bodyRowStyle(f, false)
	if err != nil {
		return nil, err
	}
	stripeStyle, err := bodyRowStyle(f, true)
	if err != nil {
		return nil, err
	}
	for rowIdx, row := range rows {
		rowNum := rowIdx + 3
		for colIdx, col := range columns {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowNum)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, row[col.Key]); err != nil {
				return nil, err
			}
		}
		style := bodyStyle
		if rowNum%2 == 0 {
			style = stripeStyle
		}
		first, _ := excelize.CoordinatesToCellName(1, rowNum)
		last, _ := excelize.CoordinatesToCellName(len(columns), rowNum)
		if err := f.SetCellStyle(sheetName, first, last, style); err != nil {
			return nil, err
		}
	}

	// Column widths.
	for i, col := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		width := col.Width
		if width <= 0 {
			width = 20
		}
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func bodyRowStyle(f *excelize.File, striped bool) (int, error) {
	style := &excelize.Style{
		Font:      &excelize.Font{Size: 11, Color: bodyText},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true},
		Border:    thinBorder(borderTint),
	}
	if striped {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{stripeFill}}
	}
	return f.NewStyle(style)
}

func thinBorder(color string) []excelize.Border {
	sides := []string{"top", "left", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Style: 1, Color: color}
	}
	return borders
}
