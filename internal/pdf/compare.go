package pdf

import (
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/pmezard/go-difflib/difflib"
)

// pageStatus classifies one page pair of the comparison.
type pageStatus string

const (
	pageIdentical pageStatus = "identical"
	pageDifferent pageStatus = "different"
	pageMissing   pageStatus = "missing"
)

// pageComparison is one row of the comparison report.
type pageComparison struct {
	page       int
	status     pageStatus
	similarity float64 // meaningful only for pageDifferent
	missing    string  // which document lacks the page, for pageMissing
}

// Compare extracts per-page text from both documents, classifies every page
// pair and emits a tabular report as a new PDF. It is a text-level
// comparison, not a content diff.
func (p *Processor) Compare(first, second string) (string, error) {
	out := p.out.OutputFile("comparison", ".pdf")

	firstPages, err := extractPageTexts(first)
	if err != nil {
		return "", fmt.Errorf("PDF comparison failed: %w", err)
	}
	secondPages, err := extractPageTexts(second)
	if err != nil {
		return "", fmt.Errorf("PDF comparison failed: %w", err)
	}

	doc := newDocBuilder()
	doc.heading("PDF Comparison Report", 1)
	doc.spacer(12)

	for _, cmp := range classifyPages(firstPages, secondPages) {
		doc.heading(fmt.Sprintf("Page %d Comparison", cmp.page), 3)

		switch cmp.status {
		case pageIdentical:
			doc.paragraph("No differences found on this page.")
		case pageDifferent:
			doc.paragraph(fmt.Sprintf("Differences found on this page (similarity %.1f%%).", cmp.similarity*100))
		case pageMissing:
			doc.paragraph(fmt.Sprintf("Page not found in the %s document.", cmp.missing))
		}
	}

	if err := doc.save(out); err != nil {
		return "", fmt.Errorf("PDF comparison failed: %w", err)
	}
	return out, nil
}

// classifyPages pairs the page texts of both documents positionally and
// classifies each pair.
func classifyPages(first, second []string) []pageComparison {
	max := len(first)
	if len(second) > max {
		max = len(second)
	}

	result := make([]pageComparison, 0, max)
	for i := 0; i < max; i++ {
		cmp := pageComparison{page: i + 1}

		switch {
		case i >= len(first):
			cmp.status = pageMissing
			cmp.missing = "first"
		case i >= len(second):
			cmp.status = pageMissing
			cmp.missing = "second"
		case first[i] == second[i]:
			cmp.status = pageIdentical
		default:
			cmp.status = pageDifferent
			cmp.similarity = similarity(first[i], second[i])
		}

		result = append(result, cmp)
	}
	return result
}

// similarity is a diff-based ratio in [0, 1] between two page texts.
func similarity(a, b string) float64 {
	matcher := difflib.NewMatcher(difflib.SplitLines(a), difflib.SplitLines(b))
	return matcher.Ratio()
}

// extractPageTexts returns the embedded text layer of every page, empty
// strings for pages without one.
func extractPageTexts(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	texts := make([]string, 0, reader.NumPage())
	fonts := make(map[string]*pdf.Font)

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}

		text, err := page.GetPlainText(fonts)
		if err != nil {
			// Pages the extractor cannot decode compare as empty.
			text = ""
		}
		texts = append(texts, text)
	}

	return texts, nil
}
