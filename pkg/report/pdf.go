package report

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Color scheme - warm brick theme
var (
	colorPrimary     = [3]int{141, 73, 38}   // Hearth brick
	colorSecondary   = [3]int{62, 110, 140}  // Slate blue
	colorAccent      = [3]int{46, 125, 80}   // Green
	colorWarning     = [3]int{214, 137, 16}  // Amber
	colorDanger      = [3]int{192, 57, 43}   // Red
	colorTextDark    = [3]int{51, 42, 36}    // Dark text
	colorTextMuted   = [3]int{128, 118, 110} // Muted text
	colorBackground  = [3]int{249, 243, 238} // Warm paper bg
	colorTableHeader = [3]int{141, 73, 38}   // Brick header
	colorTableAlt    = [3]int{249, 243, 238} // Alternating row
	colorGridLine    = [3]int{220, 214, 208} // Divider lines
)

// Generate creates a PDF report from the provided data.
func (g *Generator) Generate(data *ReportData) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)

	// Cover page
	g.writeCoverPage(pdf, data)

	// Advisory summary page
	pdf.AddPage()
	g.addPageHeader(pdf, data, "Advisory Summary")
	g.writeAdvisorySummary(pdf, data)

	// Scored systems table
	if len(data.Systems) > 0 {
		g.writeSystemsTable(pdf, data)
	}

	// Add page numbers to all pages except cover
	g.addPageNumbers(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output error: %w", err)
	}

	return buf.Bytes(), nil
}

// writeCoverPage creates the cover page.
func (g *Generator) writeCoverPage(pdf *fpdf.Fpdf, data *ReportData) {
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()

	// Top accent bar
	pdf.SetFillColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.Rect(0, 0, pageWidth, 8, "F")

	// Hearth branding area
	pdf.SetY(50)
	pdf.SetFont("Arial", "B", 32)
	pdf.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.CellFormat(0, 15, "HEARTH", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 8, "Home Systems Advisory", "", 1, "C", false, 0, "")

	// Main title
	pdf.SetY(100)
	pdf.SetFont("Arial", "B", 28)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(0, 12, "Advisory Report", "", 1, "C", false, 0, "")

	// Property info box
	pdf.SetY(130)
	boxX := 40.0
	boxWidth := pageWidth - 80
	boxHeight := 50.0

	pdf.SetFillColor(colorBackground[0], colorBackground[1], colorBackground[2])
	pdf.SetDrawColor(colorGridLine[0], colorGridLine[1], colorGridLine[2])
	pdf.RoundedRect(boxX, pdf.GetY(), boxWidth, boxHeight, 3, "1234", "FD")

	// Property details inside box
	pdf.SetY(pdf.GetY() + 10)
	pdf.SetFont("Arial", "B", 11)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 7, "PROPERTY", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(0, 10, data.HomeLabel, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	zoneStr := fmt.Sprintf("%s zone  -  %s", titleCase(data.ClimateZone), titleCase(data.Season))
	pdf.CellFormat(0, 7, zoneStr, "", 1, "C", false, 0, "")

	// Advisory mode
	pdf.SetY(200)
	pdf.SetFont("Arial", "B", 11)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 7, "ADVISORY MODE", "", 1, "C", false, 0, "")

	modeLabel, _, modeColor := modeDisplay(data.Mode)
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(modeColor[0], modeColor[1], modeColor[2])
	pdf.CellFormat(0, 8, modeLabel, "", 1, "C", false, 0, "")

	// Bottom section
	pdf.SetY(pageHeight - 50)
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", data.GeneratedAt.Format("January 2, 2006 at 15:04 MST")), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Systems Tracked: %d", len(data.Systems)), "", 1, "C", false, 0, "")

	// Bottom accent bar
	pdf.SetFillColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.Rect(0, pageHeight-8, pageWidth, 8, "F")
}

// addPageHeader adds a consistent header to content pages.
func (g *Generator) addPageHeader(pdf *fpdf.Fpdf, data *ReportData, section string) {
	pageWidth, _ := pdf.GetPageSize()

	// Top line
	pdf.SetDrawColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.SetLineWidth(0.5)
	pdf.Line(20, 15, pageWidth-20, 15)

	// Header text
	pdf.SetY(18)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.CellFormat(0, 5, "HEARTH ADVISORY REPORT", "", 0, "L", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 5, data.HomeLabel, "", 1, "R", false, 0, "")

	// Section title
	pdf.SetY(30)
	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(0, 10, section, "", 1, "L", false, 0, "")

	pdf.Ln(5)
}

// writeAdvisorySummary writes the mode card, quick stats, and primary focus.
func (g *Generator) writeAdvisorySummary(pdf *fpdf.Fpdf, data *ReportData) {
	pageWidth, _ := pdf.GetPageSize()

	// Snapshot subtitle
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	snapStr := fmt.Sprintf("Snapshot taken %s  -  %s zone, %s",
		data.GeneratedAt.Format("January 2, 2006 15:04"),
		titleCase(data.ClimateZone), titleCase(data.Season))
	pdf.CellFormat(0, 6, snapStr, "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// Mode card
	modeLabel, modeMessage, modeColor := modeDisplay(data.Mode)

	cardX := 20.0
	cardWidth := pageWidth - 40
	cardHeight := 35.0

	pdf.SetFillColor(modeColor[0], modeColor[1], modeColor[2])
	pdf.RoundedRect(cardX, pdf.GetY(), cardWidth, cardHeight, 3, "1234", "F")

	pdf.SetXY(cardX, pdf.GetY()+8)
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(cardWidth, 12, modeLabel, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(cardWidth, 8, modeMessage, "", 1, "C", false, 0, "")

	pdf.SetY(pdf.GetY() + 15)

	// Quick stats - simple table format
	pdf.SetFont("Arial", "B", 11)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(0, 8, "Record Quality", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	colWidth := (pageWidth - 40) / 3

	pdf.SetFillColor(colorBackground[0], colorBackground[1], colorBackground[2])
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(colWidth, 7, "Confidence", "0", 0, "C", true, 0, "")
	pdf.CellFormat(colWidth, 7, "Critical Coverage", "0", 0, "C", true, 0, "")
	pdf.CellFormat(colWidth, 7, "Systems Tracked", "0", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "B", 16)
	bucketCol := bucketColor(data.ConfidenceBucket)
	pdf.SetTextColor(bucketCol[0], bucketCol[1], bucketCol[2])
	pdf.CellFormat(colWidth, 9, data.ConfidenceBucket, "0", 0, "C", false, 0, "")
	covCol := coverageColor(data.CriticalCoverage)
	pdf.SetTextColor(covCol[0], covCol[1], covCol[2])
	pdf.CellFormat(colWidth, 9, fmt.Sprintf("%.0f%%", data.CriticalCoverage*100), "0", 0, "C", false, 0, "")
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(colWidth, 9, fmt.Sprintf("%d", len(data.Systems)), "0", 1, "C", false, 0, "")

	pdf.Ln(8)

	// Primary focus section
	pdf.SetFont("Arial", "B", 11)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(0, 8, "Primary Focus", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if data.PrimaryKey == "" {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
		pdf.CellFormat(0, 6, "No system currently rises above the advisory threshold.", "", 1, "L", false, 0, "")
		return
	}

	pdf.SetFont("Arial", "B", 13)
	pdf.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.CellFormat(0, 8, fmt.Sprintf("%s  -  score %s", data.PrimaryKey, formatDollars(data.PrimaryScore)), "", 1, "L", false, 0, "")

	if data.PrimaryExplanation != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
		pdf.MultiCell(0, 5, data.PrimaryExplanation, "", "L", false)
	}

	pdf.Ln(5)
}

// writeSystemsTable writes the scored systems table.
func (g *Generator) writeSystemsTable(pdf *fpdf.Fpdf, data *ReportData) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(0, 8, "Scored Systems", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	colWidths := []float64{38, 42, 24, 26, 18, 22}
	headers := []string{"System", "Name", "Probability", "Est. Cost", "Urgency", "Score"}

	drawHeader := func() {
		pdf.SetFillColor(colorTableHeader[0], colorTableHeader[1], colorTableHeader[2])
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "B", 8)
		for i, header := range headers {
			pdf.CellFormat(colWidths[i], 7, header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	drawHeader()

	pdf.SetFont("Arial", "", 8)
	fill := false

	for _, row := range data.Systems {
		if pdf.GetY() > 260 {
			pdf.AddPage()
			g.addPageHeader(pdf, data, "Scored Systems (continued)")
			drawHeader()
			pdf.SetFont("Arial", "", 8)
			fill = false
		}

		if fill {
			pdf.SetFillColor(colorTableAlt[0], colorTableAlt[1], colorTableAlt[2])
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		// Primary row stands out in bold brick
		if row.SystemKey == data.PrimaryKey {
			pdf.SetFont("Arial", "B", 8)
			pdf.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
		} else {
			pdf.SetFont("Arial", "", 8)
			pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
		}

		name := row.Name
		if len(name) > 28 {
			name = name[:25] + "..."
		}

		pdf.CellFormat(colWidths[0], 6, row.SystemKey, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(colWidths[1], 6, name, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(colWidths[2], 6, fmt.Sprintf("%.1f%%", row.FailureProbability*100), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[3], 6, formatDollars(row.ReplacementCost), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(colWidths[4], 6, fmt.Sprintf("%.2fx", row.UrgencyMultiplier), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[5], 6, formatDollars(row.Score), "1", 0, "R", fill, 0, "")

		pdf.Ln(-1)
		fill = !fill
	}

	pdf.Ln(10)
}

// addPageNumbers adds page numbers to all pages except the first (cover).
func (g *Generator) addPageNumbers(pdf *fpdf.Fpdf) {
	pdf.SetAutoPageBreak(false, 0)

	totalPages := pdf.PageCount()

	for i := 2; i <= totalPages; i++ {
		pdf.SetPage(i)
		pageWidth, pageHeight := pdf.GetPageSize()

		pdf.SetY(pageHeight - 15)
		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])

		pageNum := i - 1
		totalContent := totalPages - 1
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of %d", pageNum, totalContent), "", 0, "C", false, 0, "")

		// Bottom line
		pdf.SetDrawColor(colorGridLine[0], colorGridLine[1], colorGridLine[2])
		pdf.SetLineWidth(0.3)
		pdf.Line(20, pageHeight-20, pageWidth-20, pageHeight-20)
	}
}

// modeDisplay maps an advisory mode to its card label, message, and color.
func modeDisplay(mode string) (string, string, [3]int) {
	switch mode {
	case "silent_steward":
		return "SILENT STEWARD", "All systems stable - nothing needs your attention", colorAccent
	case "elevated_attention":
		return "ELEVATED ATTENTION", "A tracked system is deviating from its expected behavior", colorDanger
	case "planning_window_advisory":
		return "PLANNING WINDOW", "A system is aging into its likely replacement window", colorWarning
	case "baseline_establishment":
		return "BASELINE NEEDED", "Critical systems are too thinly documented to advise", colorSecondary
	case "interpretive":
		return "INTERPRETIVE", "Explaining the reasoning behind the current advisory", colorSecondary
	default:
		return strings.ToUpper(strings.ReplaceAll(mode, "_", " ")), "", colorTextMuted
	}
}

// bucketColor returns a color for a confidence bucket.
func bucketColor(bucket string) [3]int {
	switch bucket {
	case "High":
		return colorAccent
	case "Moderate":
		return colorWarning
	case "Early":
		return colorDanger
	default:
		return colorTextMuted
	}
}

// coverageColor returns a color for a critical coverage ratio.
func coverageColor(cov float64) [3]int {
	if cov >= 0.75 {
		return colorAccent
	} else if cov >= 0.5 {
		return colorWarning
	}
	return colorDanger
}

// formatDollars renders a dollar amount with thousands separators.
func formatDollars(v float64) string {
	n := int64(math.Round(v))
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return "$" + s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return "$" + b.String()
}

// titleCase capitalizes the first letter of a word.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
