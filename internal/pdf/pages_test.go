package pdf

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/pdf-processor/internal/pagespec"
)

// testOutputs writes results into a per-test directory.
type testOutputs struct{ dir string }

func (o testOutputs) OutputFile(prefix, ext string) string {
	return filepath.Join(o.dir, fmt.Sprintf("%s_%s%s", prefix, uuid.New(), ext))
}

func (o testOutputs) OutputPath(name string) string {
	return filepath.Join(o.dir, filepath.Base(name))
}

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	return New(testOutputs{dir: t.TempDir()}, Options{})
}

// makePDF writes a letter-sized document with one page per text.
func makePDF(t *testing.T, path string, pages ...string) {
	t.Helper()

	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		doc.AddPage()
		doc.Cell(40, 14, text)
	}
	require.NoError(t, doc.OutputFileAndClose(path))
}

func parseRangesForTest(t *testing.T, s string) []pagespec.Range {
	t.Helper()
	ranges, err := pagespec.ParseRanges(s)
	require.NoError(t, err)
	return ranges
}

func pageCount(t *testing.T, path string) int {
	t.Helper()
	n, err := api.PageCountFile(path)
	require.NoError(t, err)
	return n
}

func TestKeptPages(t *testing.T) {
	assert.Equal(t, []int{1, 3, 5}, keptPages(5, []int{2, 4}))
	assert.Equal(t, []int{1, 2, 3}, keptPages(3, nil))
	assert.Empty(t, keptPages(2, []int{1, 2}))
	assert.Equal(t, []int{1, 2}, keptPages(2, []int{9}), "out-of-range removals are ignored")
}

func TestMerge(t *testing.T) {
	p := newTestProcessor(t)
	dir := t.TempDir()

	first := filepath.Join(dir, "first.pdf")
	second := filepath.Join(dir, "second.pdf")
	makePDF(t, first, "one", "two")
	makePDF(t, second, "three", "four", "five")

	out, err := p.Merge([]string{first, second})
	require.NoError(t, err)

	assert.Equal(t, 5, pageCount(t, out))
}

func TestSplitByRanges(t *testing.T) {
	p := newTestProcessor(t)
	input := filepath.Join(t.TempDir(), "doc.pdf")
	makePDF(t, input, "1", "2", "3", "4", "5")

	outs, err := p.Split(input, parseRangesForTest(t, "1-2,4-9"))
	require.NoError(t, err)
	require.Len(t, outs, 2)

	assert.Equal(t, 2, pageCount(t, outs[0]))
	// 4-9 clamps to 4-5.
	assert.Equal(t, 2, pageCount(t, outs[1]))
}

func TestSplitWithoutRangesSplitsPerPage(t *testing.T) {
	p := newTestProcessor(t)
	input := filepath.Join(t.TempDir(), "doc.pdf")
	makePDF(t, input, "1", "2", "3")

	outs, err := p.Split(input, nil)
	require.NoError(t, err)
	require.Len(t, outs, 3)

	for _, out := range outs {
		assert.Equal(t, 1, pageCount(t, out))
	}
}

func TestSplitFullyOutOfRangeYieldsEmptyFile(t *testing.T) {
	p := newTestProcessor(t)
	input := filepath.Join(t.TempDir(), "doc.pdf")
	makePDF(t, input, "1", "2")

	outs, err := p.Split(input, parseRangesForTest(t, "7-9"))
	require.NoError(t, err)
	require.Len(t, outs, 1)

	info, err := os.Stat(outs[0])
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestExtract(t *testing.T) {
	p := newTestProcessor(t)
	input := filepath.Join(t.TempDir(), "doc.pdf")
	makePDF(t, input, "1", "2", "3", "4")

	out, err := p.Extract(input, []int{1, 3})
	require.NoError(t, err)
	assert.Equal(t, 2, pageCount(t, out))
}

func TestExtractSkipsOutOfRangePages(t *testing.T) {
	p := newTestProcessor(t)
	input := filepath.Join(t.TempDir(), "doc.pdf")
	makePDF(t, input, "1", "2")

	out, err := p.Extract(input, []int{2, 99})
	require.NoError(t, err)
	assert.Equal(t, 1, pageCount(t, out))
}

func TestOrganizeDuplicatesPages(t *testing.T) {
	p := newTestProcessor(t)
	input := filepath.Join(t.TempDir(), "doc.pdf")
	makePDF(t, input, "1", "2", "3")

	out, err := p.Organize(input, []int{3, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 3, pageCount(t, out))
}

func TestRemovePages(t *testing.T) {
	p := newTestProcessor(t)
	input := filepath.Join(t.TempDir(), "doc.pdf")
	makePDF(t, input, "1", "2", "3")

	out, err := p.RemovePages(input, []int{2})
	require.NoError(t, err)
	assert.Equal(t, 2, pageCount(t, out))
}

func TestRotateKeepsPageCount(t *testing.T) {
	p := newTestProcessor(t)
	input := filepath.Join(t.TempDir(), "doc.pdf")
	makePDF(t, input, "1", "2")

	out, err := p.Rotate(input, 90)
	require.NoError(t, err)
	assert.Equal(t, 2, pageCount(t, out))
}

func pageDims(t *testing.T, path string) []types.Dim {
	t.Helper()
	ctx, err := api.ReadContextFile(path)
	require.NoError(t, err)
	dims, err := ctx.PageDims()
	require.NoError(t, err)
	return dims
}

func TestRotateRoundTripRestoresDimensions(t *testing.T) {
	p := newTestProcessor(t)
	input := filepath.Join(t.TempDir(), "doc.pdf")
	makePDF(t, input, "1", "2")

	quarter, err := p.Rotate(input, 90)
	require.NoError(t, err)

	restored, err := p.Rotate(quarter, 270)
	require.NoError(t, err)

	assert.Equal(t, pageCount(t, input), pageCount(t, restored))
	assert.Equal(t, pageDims(t, input), pageDims(t, restored))
}

func TestCreateZipSkipsMissingFiles(t *testing.T) {
	p := newTestProcessor(t)
	dir := t.TempDir()

	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	require.NoError(t, os.WriteFile(a, []byte("aaa"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("bbb"), 0o644))

	out, err := p.CreateZip([]string{a, filepath.Join(dir, "missing.pdf"), b})
	require.NoError(t, err)

	archive, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer archive.Close()

	names := make([]string, 0, len(archive.File))
	for _, f := range archive.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, names)
}
