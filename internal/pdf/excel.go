package pdf

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Layout constants for the sheet grid: cell text wraps at a fixed character
// budget, column widths are estimated from content length within bounds, and
// large sheets render in fixed-size row groups across page breaks.
const (
	cellCharBudget = 40
	rowsPerChunk   = 30
	minColChars    = 6
	maxColChars    = cellCharBudget
	gridFontSize   = 8.0
	gridLineHeight = 10.0
	charWidthPt    = 4.5 // approximate glyph width at gridFontSize
)

// ExcelToPDF renders every sheet of the workbook as a bordered grid,
// estimating column widths from content and wrapping long cells. Structure
// is preserved; the sheet's original visual layout is not.
func (p *Processor) ExcelToPDF(input string) (string, error) {
	out := p.out.OutputFile("excel_to_pdf", ".pdf")

	workbook, err := excelize.OpenFile(input)
	if err != nil {
		return "", fmt.Errorf("excel to PDF conversion failed: %w", err)
	}
	defer workbook.Close()

	doc := newDocBuilder()
	first := true

	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		if !first {
			doc.pageBreak()
		}
		first = false

		doc.heading(sheet, 2)
		renderSheet(doc, rows)
	}

	if err := doc.save(out); err != nil {
		return "", fmt.Errorf("excel to PDF conversion failed: %w", err)
	}
	return out, nil
}

// renderSheet draws the rows as a grid, the first row styled as a header,
// chunked into fixed-size row groups with page breaks between them.
func renderSheet(doc *docBuilder, rows [][]string) {
	rows = normalizeRows(rows)
	widths := columnWidths(rows)
	scale := fitColumns(widths, doc.width())

	for chunkIdx, chunk := range chunkRows(rows, rowsPerChunk) {
		if chunkIdx > 0 {
			doc.pageBreak()
		}
		for rowIdx, row := range chunk {
			header := chunkIdx == 0 && rowIdx == 0
			drawRow(doc, row, widths, scale, header)
		}
		doc.spacer(12)
	}
}

// drawRow draws one grid row; all cells are padded to the same line count so
// the borders line up.
func drawRow(doc *docBuilder, row []string, widths []int, scale float64, header bool) {
	style := ""
	if header {
		style = "B"
		doc.pdf.SetFillColor(200, 200, 200)
	} else {
		doc.pdf.SetFillColor(245, 240, 225)
	}
	doc.pdf.SetFont("Helvetica", style, gridFontSize)

	wrapped := make([][]string, len(row))
	maxLines := 1
	for i, cell := range row {
		wrapped[i] = wrapCell(cell, cellCharBudget)
		if len(wrapped[i]) > maxLines {
			maxLines = len(wrapped[i])
		}
	}

	left, _, _, _ := doc.pdf.GetMargins()
	y := doc.pdf.GetY()
	x := left

	for i, lines := range wrapped {
		for len(lines) < maxLines {
			lines = append(lines, "")
		}
		w := float64(widths[i]) * charWidthPt * scale
		doc.pdf.SetXY(x, y)
		doc.pdf.MultiCell(w, gridLineHeight, doc.tr(strings.Join(lines, "\n")), "1", "C", true)
		x += w
	}

	doc.pdf.SetXY(left, y+float64(maxLines)*gridLineHeight)
}

// normalizeRows pads every row to the sheet's widest row so the grid is
// rectangular.
func normalizeRows(rows [][]string) [][]string {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	out := make([][]string, len(rows))
	for i, row := range rows {
		padded := make([]string, cols)
		copy(padded, row)
		out[i] = padded
	}
	return out
}

// columnWidths estimates each column's width in characters from the longest
// cell content, clamped to [minColChars, maxColChars].
func columnWidths(rows [][]string) []int {
	if len(rows) == 0 {
		return nil
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for i, w := range widths {
		if w < minColChars {
			widths[i] = minColChars
		}
		if w > maxColChars {
			widths[i] = maxColChars
		}
	}
	return widths
}

// fitColumns returns the scale factor that squeezes the estimated widths
// into the printable width; never scales up.
func fitColumns(widths []int, printable float64) float64 {
	total := 0.0
	for _, w := range widths {
		total += float64(w) * charWidthPt
	}
	if total <= printable || total == 0 {
		return 1.0
	}
	return printable / total
}

// wrapCell breaks cell text into lines of at most budget characters,
// preferring word boundaries and hard-splitting overlong words.
func wrapCell(s string, budget int) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{""}
	}

	var lines []string
	var current strings.Builder

	for _, word := range strings.Fields(s) {
		for len([]rune(word)) > budget {
			runes := []rune(word)
			if current.Len() > 0 {
				lines = append(lines, current.String())
				current.Reset()
			}
			lines = append(lines, string(runes[:budget]))
			word = string(runes[budget:])
		}
		if word == "" {
			continue
		}

		switch {
		case current.Len() == 0:
			current.WriteString(word)
		case len([]rune(current.String()))+1+len([]rune(word)) <= budget:
			current.WriteByte(' ')
			current.WriteString(word)
		default:
			lines = append(lines, current.String())
			current.Reset()
			current.WriteString(word)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return lines
}

// chunkRows slices rows into groups of at most size rows, preserving order.
func chunkRows(rows [][]string, size int) [][][]string {
	if size < 1 || len(rows) == 0 {
		return [][][]string{rows}
	}

	var chunks [][][]string
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}
