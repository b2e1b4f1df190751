package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidth   = 210.0 // A4 portrait, mm
	marginLeft  = 14.0
	tableWidth  = pageWidth - 2*marginLeft
	bandHeight  = 20.0
	lineHeight  = 7.0
	footerLabel = "InternFlow Admin"
)

// PDF renders rows into a paginated A4 report: colored title band, generated
// timestamp and row count, striped body table, and a page-number footer on
// every page. An empty row set yields a valid document with the band and
// header only.
func PDF(title, subtitle string, columns []Column, rows []Row, generatedAt time.Time) (data []byte, err error) {
	defer recoverTo(&err)

	if len(columns) == 0 {
		return nil, fmt.Errorf("export: no columns")
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.AliasNbPages("")
	doc.SetAutoPageBreak(true, 20)
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont("Helvetica", "", 8)
		doc.SetTextColor(150, 150, 150)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb} - %s", doc.PageNo(), footerLabel), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	// Title band.
	doc.SetFillColor(16, 185, 129)
	doc.Rect(0, 0, pageWidth, bandHeight, "F")
	doc.SetTextColor(255, 255, 255)
	doc.SetFont("Helvetica", "B", 14)
	heading := title
	if subtitle != "" {
		heading = title + " - " + subtitle
	}
	doc.Text(marginLeft, 13, heading)

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(100, 100, 100)
	doc.Text(marginLeft, bandHeight+8, "Generated: "+generatedAt.Format("2006-01-02 15:04:05"))
	doc.Text(pageWidth-marginLeft-40, bandHeight+8, fmt.Sprintf("%d rows exported", len(rows)))

	widths := columnWidths(columns)

	// Header row.
	doc.SetY(bandHeight + 14)
	doc.SetFillColor(59, 130, 246)
	doc.SetTextColor(255, 255, 255)
	doc.SetFont("Helvetica", "B", 9)
	doc.SetX(marginLeft)
	for i, col := range columns {
		doc.CellFormat(widths[i], lineHeight, col.Header, "1", 0, "C", true, 0, "")
	}
	doc.Ln(lineHeight)

	// Body rows, striped.
	doc.SetTextColor(51, 65, 85)
	doc.SetFont("Helvetica", "", 9)
	for rowIdx, row := range rows {
		fill := rowIdx%2 == 1
		doc.SetFillColor(248, 250, 252)
		doc.SetX(marginLeft)
		for i, col := range columns {
			doc.CellFormat(widths[i], lineHeight, row[col.Key], "1", 0, "L", fill, 0, "")
		}
		doc.Ln(lineHeight)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths scales the configured widths onto the printable table width.
func columnWidths(columns []Column) []float64 {
	total := 0.0
	for _, col := range columns {
		if col.Width > 0 {
			total += col.Width
		} else {
			total += 20
		}
	}
	widths := make([]float64, len(columns))
	for i, col := range columns {
		width := col.Width
		if width <= 0 {
			width = 20
		}
		widths[i] = width / total * tableWidth
	}
	return widths
}
