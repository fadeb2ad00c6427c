package pdf

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/pdf-processor/internal/pagespec"
)

// Merge concatenates the input files in the given order into one output.
func (p *Processor) Merge(inputs []string) (string, error) {
	out := p.out.OutputFile("merged", ".pdf")

	if err := api.MergeCreateFile(inputs, out, false, conf()); err != nil {
		return "", fmt.Errorf("failed to merge PDFs: %w", err)
	}

	return out, nil
}

// Split produces one output file per range, each containing exactly that
// slice of pages in range order. Without explicit ranges it splits into one
// file per page. Ranges are clamped to the document; a range entirely outside
// it yields an empty output file.
func (p *Processor) Split(input string, ranges []pagespec.Range) ([]string, error) {
	total, err := api.PageCountFile(input)
	if err != nil {
		return nil, fmt.Errorf("failed to read page count: %w", err)
	}

	if len(ranges) == 0 {
		ranges = make([]pagespec.Range, 0, total)
		for i := 1; i <= total; i++ {
			ranges = append(ranges, pagespec.Range{Start: i, End: i})
		}
	}

	base := filepath.Base(input)
	outputs := make([]string, 0, len(ranges))

	for i, r := range ranges {
		out := p.out.OutputPath(fmt.Sprintf("split_%d_%s", i+1, base))

		clamped, ok := r.Clamp(total)
		if !ok {
			if err := writeEmptyFile(out); err != nil {
				return nil, err
			}
			outputs = append(outputs, out)
			continue
		}

		selection := []string{fmt.Sprintf("%d-%d", clamped.Start, clamped.End)}
		if err := api.TrimFile(input, out, selection, conf()); err != nil {
			return nil, fmt.Errorf("failed to split pages %d-%d: %w", r.Start, r.End, err)
		}
		outputs = append(outputs, out)
	}

	return outputs, nil
}

// Extract produces a single output containing the requested pages in the
// order given, duplicates preserved. Out-of-range numbers are skipped.
func (p *Processor) Extract(input string, pages []int) (string, error) {
	out := p.out.OutputFile("extracted", ".pdf")
	if err := p.collectPages(input, pages, out); err != nil {
		return "", fmt.Errorf("failed to extract pages: %w", err)
	}
	return out, nil
}

// Organize reorders pages according to the given sequence. Pages omitted
// from the sequence are dropped; out-of-range numbers are skipped.
func (p *Processor) Organize(input string, order []int) (string, error) {
	out := p.out.OutputFile("organized", ".pdf")
	if err := p.collectPages(input, order, out); err != nil {
		return "", fmt.Errorf("failed to reorganize pages: %w", err)
	}
	return out, nil
}

// RemovePages keeps the complement of the removal set, preserving the
// original page order.
func (p *Processor) RemovePages(input string, remove []int) (string, error) {
	total, err := api.PageCountFile(input)
	if err != nil {
		return "", fmt.Errorf("failed to read page count: %w", err)
	}

	out := p.out.OutputFile("removed_pages", ".pdf")
	if err := p.collectPages(input, keptPages(total, remove), out); err != nil {
		return "", fmt.Errorf("failed to remove pages: %w", err)
	}
	return out, nil
}

// Rotate applies the same clockwise angle to every page.
func (p *Processor) Rotate(input string, angle int) (string, error) {
	out := p.out.OutputFile("rotated", ".pdf")

	if err := api.RotateFile(input, out, angle, nil, conf()); err != nil {
		return "", fmt.Errorf("failed to rotate PDF: %w", err)
	}

	return out, nil
}

// Crop sets every page's visible rectangle to the given box. The box is not
// validated beyond what the library enforces.
func (p *Processor) Crop(input string, left, bottom, right, top float64) (string, error) {
	out := p.out.OutputFile("cropped", ".pdf")

	box, err := api.Box(fmt.Sprintf("[%.2f %.2f %.2f %.2f]", left, bottom, right, top), types.POINTS)
	if err != nil {
		return "", fmt.Errorf("failed to parse crop box: %w", err)
	}

	if err := api.CropFile(input, out, nil, box, conf()); err != nil {
		return "", fmt.Errorf("failed to crop PDF: %w", err)
	}

	return out, nil
}

// collectPages writes the given 1-based pages of input to out, in order and
// with duplicates, silently skipping numbers outside [1, total]. An empty
// surviving selection yields an empty output file.
func (p *Processor) collectPages(input string, pages []int, out string) error {
	total, err := api.PageCountFile(input)
	if err != nil {
		return fmt.Errorf("failed to read page count: %w", err)
	}

	selection := make([]string, 0, len(pages))
	for _, page := range pages {
		if page < 1 || page > total {
			zlog.Logger.Warn().Int("page", page).Int("total", total).Msg("skipping out-of-range page")
			continue
		}
		selection = append(selection, strconv.Itoa(page))
	}

	if len(selection) == 0 {
		return writeEmptyFile(out)
	}

	if err := api.CollectFile(input, out, selection, conf()); err != nil {
		return fmt.Errorf("failed to collect pages %s: %w", strings.Join(selection, ","), err)
	}
	return nil
}

// keptPages returns 1..total without the pages listed in remove,
// in ascending order.
func keptPages(total int, remove []int) []int {
	removed := make(map[int]bool, len(remove))
	for _, page := range remove {
		removed[page] = true
	}

	kept := make([]int, 0, total)
	for page := 1; page <= total; page++ {
		if !removed[page] {
			kept = append(kept, page)
		}
	}
	return kept
}
