package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/user/profile_plot_go/internal/analysis"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// TableSection is one pivot table printed in the report.
type TableSection struct {
	Title string
	Table *analysis.PivotTable
	Unit  Unit
}

// ChartImage is a rendered chart to embed. A nil PNG marks a chart that could
// not be rendered.
type ChartImage struct {
	Key     string
	Title   string
	Caption string
	PNG     []byte
}

// ReportData is everything BuildPDFReport prints.
type ReportData struct {
	Source     string
	NumRecords int
	Skipped    int
	Tables     []TableSection
	Charts     []ChartImage
}

// pdfStyler holds reusable styling and the flowing Y position.
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func()
	lineHeight  float64
	currentY    float64
	pageHeight  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6, // mm
		pageHeight:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 14)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
	s.styles["tableCellMissing"] = func() {
		s.pdf.SetFont("Arial", "I", 9)
		s.pdf.SetTextColor(150, 150, 150)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
		return
	}
	s.styles["normal"]()
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.newPage()
	}
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	s.checkAddPage(s.lineHeight)
	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

// writeTable draws a header row and body rows with equal column widths.
// Cells equal to missing are drawn in the muted style.
func (s *pdfStyler) writeTable(headers []string, rows [][]string, missing string) {
	colWidth := pdfContentWidth / float64(len(headers))

	s.checkAddPage(s.lineHeight * 2)
	s.applyStyle("tableHeader")
	x := pdfMargin
	for _, h := range headers {
		s.pdf.SetXY(x, s.currentY)
		s.pdf.CellFormat(colWidth, s.lineHeight, h, "1", 0, "C", true, 0, "")
		x += colWidth
	}
	s.currentY += s.lineHeight

	for _, row := range rows {
		s.checkAddPage(s.lineHeight)
		x = pdfMargin
		for _, cell := range row {
			if cell == missing {
				s.applyStyle("tableCellMissing")
			} else {
				s.applyStyle("tableCell")
			}
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(colWidth, s.lineHeight, cell, "1", 0, "C", false, 0, "")
			x += colWidth
		}
		s.currentY += s.lineHeight
	}
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width, height float64, caption string) {
	// gofpdf refers to registered images by name.
	s.pdf.RegisterImageOptionsReader(imageName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(imageBytes))

	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	s.pdf.ImageOptions(imageName, pdfMargin+(pdfContentWidth-width)/2, s.currentY, width, height, false,
		gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	s.currentY += height

	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

const missingCell = "-"

// pivotRows formats a pivot table, scaled to unit, as one row per thread count.
func pivotRows(table *analysis.PivotTable, unit Unit) [][]string {
	scaled := table.Scale(unit.Factor)
	rows := make([][]string, 0, len(scaled.Threads()))
	for _, n := range scaled.Threads() {
		row := []string{strconv.Itoa(n)}
		for _, op := range analysis.Operations {
			if v, ok := scaled.Value(n, op); ok {
				row = append(row, unit.Format(v))
			} else {
				row = append(row, missingCell)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// BuildPDFReport writes a summary PDF with the pivot tables and charts.
func BuildPDFReport(path string, data ReportData) error {
	pdf := gofpdf.New("L", "mm", "Letter", "") // Landscape, mm, Letter size
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()

	styler := newPDFStyler(pdf)

	styler.writeParagraph("Allocator Thread Scaling Report", "h1", "C")
	styler.addSpacer(3)
	styler.writeParagraph("malloc vs TLSAlloc, free vs TLSFree", "normal", "C")
	styler.addSpacer(5)
	styler.writeParagraph(fmt.Sprintf("Source: %s", filepath.Base(data.Source)), "normal", "L")
	styler.writeParagraph(fmt.Sprintf("Records: %d (skipped malformed lines: %d)", data.NumRecords, data.Skipped), "normal", "L")
	styler.addSpacer(5)

	headers := []string{"Threads"}
	for _, op := range analysis.Operations {
		headers = append(headers, string(op))
	}

	for _, section := range data.Tables {
		styler.writeParagraph(fmt.Sprintf("%s (%s)", section.Title, section.Unit.Name), "h2", "L")
		if section.Table == nil || len(section.Table.Threads()) == 0 {
			styler.writeParagraph("No data.", "normal", "L")
		} else {
			styler.writeTable(headers, pivotRows(section.Table, section.Unit), missingCell)
		}
		styler.addSpacer(5)
	}

	imgWidth := pdfContentWidth * 0.9
	imgHeight := imgWidth * 0.6 // charts are drawn 10x6

	for _, chart := range data.Charts {
		styler.newPage()
		styler.writeParagraph(chart.Title, "h2", "L")
		if len(chart.PNG) == 0 {
			styler.writeParagraph(fmt.Sprintf("Plot for %s not available.", chart.Title), "normal", "L")
			continue
		}
		styler.addImage(chart.PNG, chart.Key, imgWidth, imgHeight, chart.Caption)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF report '%s': %w", path, err)
	}
	return nil
}
