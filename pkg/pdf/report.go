package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

var (
	colorHeading  = [3]int{30, 58, 95}    // dark navy
	colorText     = [3]int{44, 62, 80}    // dark text
	colorDisclaim = [3]int{127, 140, 141} // muted text
)

const disclaimer = "This report is for informational purposes only. Consult your healthcare provider."

// Report holds the inputs for an interaction safety report.
type Report struct {
	Medications []string
	Supplements []string
	GeneratedAt time.Time
}

// Generator renders interaction safety reports as PDF documents.
type Generator struct{}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the report and returns the PDF bytes.
func (g *Generator) Generate(report Report) ([]byte, error) {
	generatedAt := report.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 25)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.SetTextColor(colorHeading[0], colorHeading[1], colorHeading[2])
	doc.CellFormat(0, 12, "Supplement Safety Report", "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 12)
	doc.SetTextColor(colorText[0], colorText[1], colorText[2])
	doc.CellFormat(0, 8, fmt.Sprintf("Generated: %s", generatedAt.Format("January 2, 2006")), "", 1, "L", false, 0, "")
	doc.Ln(4)

	g.writeList(doc, "Medications:", report.Medications)
	g.writeList(doc, "Supplements:", report.Supplements)

	doc.Ln(6)
	doc.SetFont("Helvetica", "I", 10)
	doc.SetTextColor(colorDisclaim[0], colorDisclaim[1], colorDisclaim[2])
	doc.MultiCell(0, 6, disclaimer, "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeList(doc *fpdf.Fpdf, heading string, items []string) {
	doc.SetFont("Helvetica", "B", 14)
	doc.SetTextColor(colorHeading[0], colorHeading[1], colorHeading[2])
	doc.CellFormat(0, 9, heading, "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 12)
	doc.SetTextColor(colorText[0], colorText[1], colorText[2])
	if len(items) == 0 {
		doc.CellFormat(0, 7, "    (none listed)", "", 1, "L", false, 0, "")
	}
	for _, item := range items {
		doc.CellFormat(0, 7, "    - "+item, "", 1, "L", false, 0, "")
	}
	doc.Ln(3)
}
