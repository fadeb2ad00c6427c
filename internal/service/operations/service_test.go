package operations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/pdf-processor/internal/model"
	"github.com/aliskhannn/pdf-processor/internal/pagespec"
)

func TestMain(m *testing.M) {
	zlog.Init()
	os.Exit(m.Run())
}

// fakeStaging records staging traffic in memory.
type fakeStaging struct {
	staged   []string
	removed  []string
	resolved map[string]string
	swept    time.Duration
}

func newFakeStaging() *fakeStaging {
	return &fakeStaging{resolved: map[string]string{}}
}

func (f *fakeStaging) StageInput(filename string, src io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, src)
	path := fmt.Sprintf("/stage/uploads/%d_%s", len(f.staged), filename)
	f.staged = append(f.staged, path)
	return path, nil
}

func (f *fakeStaging) RemoveInput(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

func (f *fakeStaging) Rel(path string) string {
	return strings.TrimPrefix(path, "/stage/")
}

func (f *fakeStaging) Resolve(ref string) (string, error) {
	path, ok := f.resolved[ref]
	if !ok {
		return "", errors.New("file not found")
	}
	return path, nil
}

func (f *fakeStaging) Sweep(maxAge time.Duration) int {
	f.swept = maxAge
	return 3
}

// stubProcessor returns canned outputs and records which facade methods ran.
type stubProcessor struct {
	out     string
	outs    []string
	fetched string
	err     error
	calls   []string
	inputs  []string
}

func (p *stubProcessor) record(name string, inputs ...string) (string, error) {
	p.calls = append(p.calls, name)
	p.inputs = append(p.inputs, inputs...)
	return p.out, p.err
}

func (p *stubProcessor) Merge(inputs []string) (string, error) { return p.record("merge", inputs...) }
func (p *stubProcessor) Split(input string, ranges []pagespec.Range) ([]string, error) {
	p.calls = append(p.calls, "split")
	p.inputs = append(p.inputs, input)
	return p.outs, p.err
}
func (p *stubProcessor) Extract(input string, pages []int) (string, error) {
	return p.record("extract", input)
}
func (p *stubProcessor) Organize(input string, order []int) (string, error) {
	return p.record("organize", input)
}
func (p *stubProcessor) RemovePages(input string, pages []int) (string, error) {
	return p.record("remove-pages", input)
}
func (p *stubProcessor) Rotate(input string, angle int) (string, error) {
	return p.record("rotate", input)
}
func (p *stubProcessor) Crop(input string, left, bottom, right, top float64) (string, error) {
	return p.record("crop", input)
}
func (p *stubProcessor) Compress(input string) (string, error) { return p.record("compress", input) }
func (p *stubProcessor) Optimize(input string) (string, error) { return p.record("optimize", input) }
func (p *stubProcessor) Repair(input string) (string, error)   { return p.record("repair", input) }
func (p *stubProcessor) ToPDFA(input string) (string, error)   { return p.record("pdfa", input) }
func (p *stubProcessor) Protect(input, password string) (string, error) {
	return p.record("protect", input)
}
func (p *stubProcessor) Unlock(input, password string) (string, error) {
	return p.record("unlock", input)
}
func (p *stubProcessor) Sign(input, text string) (string, error) { return p.record("sign", input) }
func (p *stubProcessor) Redact(input string, areas []model.RedactArea) (string, error) {
	return p.record("redact", input)
}
func (p *stubProcessor) Watermark(input, text string) (string, error) {
	return p.record("watermark", input)
}
func (p *stubProcessor) PageNumbers(input, position string) (string, error) {
	return p.record("page-numbers", input)
}
func (p *stubProcessor) ImagesToPDF(inputs []string) (string, error) {
	return p.record("images-to-pdf", inputs...)
}
func (p *stubProcessor) ToImages(input string) ([]string, error) {
	p.calls = append(p.calls, "to-images")
	return p.outs, p.err
}
func (p *stubProcessor) OCR(input, language string) (string, error) { return p.record("ocr", input) }
func (p *stubProcessor) WordToPDF(input string) (string, error) {
	return p.record("word-to-pdf", input)
}
func (p *stubProcessor) ExcelToPDF(input string) (string, error) {
	return p.record("excel-to-pdf", input)
}
func (p *stubProcessor) PowerPointToPDF(input string) (string, error) {
	return p.record("powerpoint-to-pdf", input)
}
func (p *stubProcessor) HTMLToPDF(content string) (string, error) {
	return p.record("html-to-pdf", content)
}
func (p *stubProcessor) FetchHTML(ctx context.Context, url string) (string, error) {
	p.calls = append(p.calls, "fetch-html")
	return p.fetched, p.err
}
func (p *stubProcessor) Compare(first, second string) (string, error) {
	return p.record("compare", first, second)
}
func (p *stubProcessor) CreateZip(paths []string) (string, error) {
	return p.record("zip", paths...)
}

func upload(name string) model.Upload {
	return model.Upload{Filename: name, Data: strings.NewReader("data")}
}

func TestExecuteRejectsTooFewFiles(t *testing.T) {
	st := newFakeStaging()
	svc := NewService(st, &stubProcessor{}, time.Hour)

	_, err := svc.Execute(context.Background(), Merge{}, []model.Upload{upload("a.pdf")})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, st.staged, "nothing may hit the staging area on rejection")
}

func TestExecuteRejectsWrongExtension(t *testing.T) {
	st := newFakeStaging()
	p := &stubProcessor{}
	svc := NewService(st, p, time.Hour)

	_, err := svc.Execute(context.Background(), Compress{}, []model.Upload{upload("notes.txt")})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, st.staged)
	assert.Empty(t, p.calls)
}

func TestExecuteAcceptsUppercaseExtension(t *testing.T) {
	st := newFakeStaging()
	p := &stubProcessor{out: "/stage/outputs/compressed_x.pdf"}
	svc := NewService(st, p, time.Hour)

	res, err := svc.Execute(context.Background(), Compress{}, []model.Upload{upload("REPORT.PDF")})
	require.NoError(t, err)
	assert.Equal(t, "outputs/compressed_x.pdf", res.OutputFile)
}

func TestExecuteRejectsTooManyFiles(t *testing.T) {
	svc := NewService(newFakeStaging(), &stubProcessor{}, time.Hour)

	_, err := svc.Execute(context.Background(), Compare{}, []model.Upload{
		upload("a.pdf"), upload("b.pdf"), upload("c.pdf"),
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecuteCleansUpInputsOnSuccess(t *testing.T) {
	st := newFakeStaging()
	p := &stubProcessor{out: "/stage/outputs/rotated_x.pdf"}
	svc := NewService(st, p, time.Hour)

	res, err := svc.Execute(context.Background(), Rotate{Angle: 90}, []model.Upload{upload("a.pdf")})
	require.NoError(t, err)

	assert.Equal(t, "outputs/rotated_x.pdf", res.OutputFile)
	assert.Equal(t, "PDF rotated 90 degrees successfully", res.Message)
	assert.Equal(t, st.staged, st.removed, "every staged input is released")
}

func TestExecuteCleansUpInputsOnFailure(t *testing.T) {
	st := newFakeStaging()
	p := &stubProcessor{err: errors.New("corrupt xref table")}
	svc := NewService(st, p, time.Hour)

	_, err := svc.Execute(context.Background(), Repair{}, []model.Upload{upload("broken.pdf")})
	require.Error(t, err)

	require.Len(t, st.staged, 1)
	assert.Equal(t, st.staged, st.removed, "inputs are released even when the operation fails")
}

func TestExecuteMergePassesAllInputs(t *testing.T) {
	st := newFakeStaging()
	p := &stubProcessor{out: "/stage/outputs/merged_x.pdf"}
	svc := NewService(st, p, time.Hour)

	res, err := svc.Execute(context.Background(), Merge{}, []model.Upload{upload("a.pdf"), upload("b.pdf")})
	require.NoError(t, err)

	assert.Equal(t, []string{"merge"}, p.calls)
	assert.Equal(t, st.staged, p.inputs)
	assert.Equal(t, "PDFs merged successfully", res.Message)
}

func TestExecuteSplitMapsOutputs(t *testing.T) {
	st := newFakeStaging()
	p := &stubProcessor{outs: []string{"/stage/outputs/split_1_a.pdf", "/stage/outputs/split_2_a.pdf"}}
	svc := NewService(st, p, time.Hour)

	res, err := svc.Execute(context.Background(), Split{}, []model.Upload{upload("a.pdf")})
	require.NoError(t, err)

	assert.Equal(t, []string{"outputs/split_1_a.pdf", "outputs/split_2_a.pdf"}, res.OutputFiles)
	assert.Empty(t, res.OutputFile)
	assert.Equal(t, "PDF split successfully", res.Message)
}

func TestExecuteHTMLFromURLFetchesFirst(t *testing.T) {
	st := newFakeStaging()
	p := &stubProcessor{out: "/stage/outputs/html_x.pdf", fetched: "<h1>fetched</h1>"}
	svc := NewService(st, p, time.Hour)

	_, err := svc.Execute(context.Background(), HTMLToPDF{URL: "http://example.com"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"fetch-html", "html-to-pdf"}, p.calls)
	assert.Equal(t, []string{"<h1>fetched</h1>"}, p.inputs)
}

func TestExecuteHTMLInlineSkipsFetch(t *testing.T) {
	p := &stubProcessor{out: "/stage/outputs/html_x.pdf"}
	svc := NewService(newFakeStaging(), p, time.Hour)

	_, err := svc.Execute(context.Background(), HTMLToPDF{HTML: "<p>inline</p>"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"html-to-pdf"}, p.calls)
}

func TestCreateZipSkipsUnresolvedRefs(t *testing.T) {
	st := newFakeStaging()
	st.resolved["outputs/a.pdf"] = "/stage/outputs/a.pdf"
	p := &stubProcessor{out: "/stage/outputs/download_x.zip"}
	svc := NewService(st, p, time.Hour)

	res, err := svc.CreateZip([]string{"outputs/a.pdf", "outputs/missing.pdf"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/stage/outputs/a.pdf"}, p.inputs)
	assert.Equal(t, "outputs/download_x.zip", res.ZipFile)
	assert.Equal(t, "ZIP file created successfully", res.Message)
}

func TestCleanupUsesRetention(t *testing.T) {
	st := newFakeStaging()
	svc := NewService(st, &stubProcessor{}, 24*time.Hour)

	assert.Equal(t, 3, svc.Cleanup())
	assert.Equal(t, 24*time.Hour, st.swept)
}
