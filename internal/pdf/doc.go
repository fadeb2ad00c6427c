package pdf

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

// docBuilder assembles a generic flowing document: paragraphs, headings,
// spacer gaps and page breaks. All format conversions funnel through it, so
// their output preserves structure, not the source's visual layout.
type docBuilder struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDocBuilder() *docBuilder {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetAutoPageBreak(true, 48)
	doc.SetMargins(48, 48, 48)
	doc.AddPage()

	return &docBuilder{
		pdf: doc,
		tr:  doc.UnicodeTranslatorFromDescriptor(""),
	}
}

// width returns the printable width between the margins.
func (b *docBuilder) width() float64 {
	pageWidth, _ := b.pdf.GetPageSize()
	left, _, right, _ := b.pdf.GetMargins()
	return pageWidth - left - right
}

func (b *docBuilder) heading(text string, level int) {
	size := 20.0 - float64(level)*2
	if size < 10 {
		size = 10
	}
	b.pdf.SetFont("Helvetica", "B", size)
	b.pdf.MultiCell(b.width(), size+4, b.tr(text), "", "L", false)
	b.spacer(8)
}

func (b *docBuilder) paragraph(text string) {
	b.pdf.SetFont("Helvetica", "", 11)
	b.pdf.MultiCell(b.width(), 14, b.tr(text), "", "L", false)
	b.spacer(12)
}

func (b *docBuilder) spacer(h float64) {
	b.pdf.Ln(h)
}

func (b *docBuilder) pageBreak() {
	b.pdf.AddPage()
}

func (b *docBuilder) save(path string) error {
	if err := b.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
