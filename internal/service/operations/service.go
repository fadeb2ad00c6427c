// Package operations implements the request-scoped processing pipeline:
// validate the uploads against the operation's definition, stage them into
// the inbound zone, invoke exactly one facade operation, and release the
// staged inputs on every exit path.
package operations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/pdf-processor/internal/model"
	"github.com/aliskhannn/pdf-processor/internal/pagespec"
)

// ErrInvalidInput marks request-shape violations: bad extension, missing
// files, count constraints, missing or out-of-range parameters.
var ErrInvalidInput = errors.New("invalid input")

// processor is the transform library facade, one method per operation.
type processor interface {
	Merge(inputs []string) (string, error)
	Split(input string, ranges []pagespec.Range) ([]string, error)
	Extract(input string, pages []int) (string, error)
	Organize(input string, order []int) (string, error)
	RemovePages(input string, pages []int) (string, error)
	Rotate(input string, angle int) (string, error)
	Crop(input string, left, bottom, right, top float64) (string, error)
	Compress(input string) (string, error)
	Optimize(input string) (string, error)
	Repair(input string) (string, error)
	ToPDFA(input string) (string, error)
	Protect(input, password string) (string, error)
	Unlock(input, password string) (string, error)
	Sign(input, text string) (string, error)
	Redact(input string, areas []model.RedactArea) (string, error)
	Watermark(input, text string) (string, error)
	PageNumbers(input, position string) (string, error)
	ImagesToPDF(inputs []string) (string, error)
	ToImages(input string) ([]string, error)
	OCR(input, language string) (string, error)
	WordToPDF(input string) (string, error)
	ExcelToPDF(input string) (string, error)
	PowerPointToPDF(input string) (string, error)
	HTMLToPDF(content string) (string, error)
	FetchHTML(ctx context.Context, url string) (string, error)
	Compare(first, second string) (string, error)
	CreateZip(paths []string) (string, error)
}

// stagingStore is the staging area the pipeline works in.
type stagingStore interface {
	StageInput(filename string, src io.Reader) (string, error)
	RemoveInput(path string) error
	Rel(path string) string
	Resolve(ref string) (string, error)
	Sweep(maxAge time.Duration) int
}

// Service orchestrates one operation per request.
type Service struct {
	staging   stagingStore
	processor processor
	retention time.Duration
}

// NewService creates a Service. retention is the sweep age used by the
// on-demand cleanup.
func NewService(st stagingStore, p processor, retention time.Duration) *Service {
	return &Service{staging: st, processor: p, retention: retention}
}

// Execute runs the full pipeline for one operation: validate, stage,
// invoke, clean up inputs, and map produced paths to client references.
func (s *Service) Execute(ctx context.Context, op Operation, uploads []model.Upload) (model.Result, error) {
	def := op.definition()

	if err := validateUploads(def, uploads); err != nil {
		return model.Result{}, err
	}

	inputs := make([]string, 0, len(uploads))
	defer func() {
		// Inputs are released no matter how the invocation ended.
		for _, input := range inputs {
			if err := s.staging.RemoveInput(input); err != nil {
				zlog.Logger.Err(err).Str("file", input).Msg("failed to remove staged input")
			}
		}
	}()

	for _, upload := range uploads {
		staged, err := s.staging.StageInput(upload.Filename, upload.Data)
		if err != nil {
			return model.Result{}, fmt.Errorf("failed to stage %s: %w", upload.Filename, err)
		}
		inputs = append(inputs, staged)
	}

	result, err := s.invoke(ctx, op, inputs)
	if err != nil {
		return model.Result{}, err
	}

	result.OutputFile = s.relOrEmpty(result.OutputFile)
	for i, out := range result.OutputFiles {
		result.OutputFiles[i] = s.staging.Rel(out)
	}
	return result, nil
}

// CreateZip bundles existing outputs, addressed by their client references,
// into one archive. References that do not resolve are skipped.
func (s *Service) CreateZip(refs []string) (model.Result, error) {
	paths := make([]string, 0, len(refs))
	for _, ref := range refs {
		path, err := s.staging.Resolve(ref)
		if err != nil {
			zlog.Logger.Warn().Str("ref", ref).Msg("skipping unresolved file for archive")
			continue
		}
		paths = append(paths, path)
	}

	out, err := s.processor.CreateZip(paths)
	if err != nil {
		return model.Result{}, err
	}

	return model.Result{
		ZipFile: s.staging.Rel(out),
		Message: "ZIP file created successfully",
	}, nil
}

// ResolveDownload maps a client reference to the file to serve.
func (s *Service) ResolveDownload(ref string) (string, error) {
	return s.staging.Resolve(ref)
}

// Cleanup triggers a retention sweep and returns the number of deleted files.
func (s *Service) Cleanup() int {
	return s.staging.Sweep(s.retention)
}

// invoke dispatches on the operation variant. Exactly one facade call per
// request.
func (s *Service) invoke(ctx context.Context, op Operation, inputs []string) (model.Result, error) {
	switch v := op.(type) {
	case Merge:
		return s.single(s.processor.Merge(inputs))("PDFs merged successfully")
	case Split:
		outs, err := s.processor.Split(inputs[0], v.Ranges)
		if err != nil {
			return model.Result{}, err
		}
		return model.Result{OutputFiles: outs, Message: "PDF split successfully"}, nil
	case Extract:
		return s.single(s.processor.Extract(inputs[0], v.Pages))("Pages extracted successfully")
	case Organize:
		return s.single(s.processor.Organize(inputs[0], v.Order))("PDF pages reorganized successfully")
	case RemovePages:
		return s.single(s.processor.RemovePages(inputs[0], v.Pages))("Pages removed successfully")
	case Rotate:
		return s.single(s.processor.Rotate(inputs[0], v.Angle))(fmt.Sprintf("PDF rotated %d degrees successfully", v.Angle))
	case Compress:
		return s.single(s.processor.Compress(inputs[0]))("PDF compressed successfully")
	case Optimize:
		return s.single(s.processor.Optimize(inputs[0]))("PDF optimized successfully")
	case Repair:
		return s.single(s.processor.Repair(inputs[0]))("PDF repaired successfully")
	case Protect:
		return s.single(s.processor.Protect(inputs[0], v.Password))("PDF protected with password successfully")
	case Unlock:
		return s.single(s.processor.Unlock(inputs[0], v.Password))("PDF unlocked successfully")
	case Watermark:
		return s.single(s.processor.Watermark(inputs[0], v.Text))("Watermark added successfully")
	case PageNumbers:
		return s.single(s.processor.PageNumbers(inputs[0], v.Position))("Page numbers added successfully")
	case Crop:
		return s.single(s.processor.Crop(inputs[0], v.Left, v.Bottom, v.Right, v.Top))("PDF cropped successfully")
	case ImagesToPDF:
		return s.single(s.processor.ImagesToPDF(inputs))("Images converted to PDF successfully")
	case PDFToImages:
		outs, err := s.processor.ToImages(inputs[0])
		if err != nil {
			return model.Result{}, err
		}
		return model.Result{OutputFiles: outs, Message: "PDF converted to images successfully"}, nil
	case OCR:
		return s.single(s.processor.OCR(inputs[0], v.Language))("OCR processing completed successfully")
	case WordToPDF:
		return s.single(s.processor.WordToPDF(inputs[0]))("Word document converted to PDF successfully")
	case ExcelToPDF:
		return s.single(s.processor.ExcelToPDF(inputs[0]))("Excel file converted to PDF successfully")
	case PowerPointToPDF:
		return s.single(s.processor.PowerPointToPDF(inputs[0]))("PowerPoint converted to PDF successfully")
	case HTMLToPDF:
		content := v.HTML
		if content == "" && v.URL != "" {
			fetched, err := s.processor.FetchHTML(ctx, v.URL)
			if err != nil {
				return model.Result{}, err
			}
			content = fetched
		}
		return s.single(s.processor.HTMLToPDF(content))("HTML converted to PDF successfully")
	case PDFToPDFA:
		return s.single(s.processor.ToPDFA(inputs[0]))("PDF converted to PDF/A successfully")
	case Sign:
		return s.single(s.processor.Sign(inputs[0], v.Text))("PDF signed successfully")
	case Redact:
		return s.single(s.processor.Redact(inputs[0], v.Areas))("PDF redacted successfully")
	case Compare:
		return s.single(s.processor.Compare(inputs[0], inputs[1]))("PDF comparison completed successfully")
	default:
		return model.Result{}, fmt.Errorf("%w: unsupported operation %q", ErrInvalidInput, op.definition().Name)
	}
}

// single adapts the common (path, error) facade shape into a Result factory.
func (s *Service) single(out string, err error) func(message string) (model.Result, error) {
	return func(message string) (model.Result, error) {
		if err != nil {
			return model.Result{}, err
		}
		return model.Result{OutputFile: out, Message: message}, nil
	}
}

func (s *Service) relOrEmpty(path string) string {
	if path == "" {
		return ""
	}
	return s.staging.Rel(path)
}

// validateUploads checks the operation's count constraint and extension
// allow-list (case-insensitive).
func validateUploads(def Definition, uploads []model.Upload) error {
	if len(uploads) < def.MinFiles {
		if def.MinFiles > 1 {
			return fmt.Errorf("%w: at least %d files required for %s", ErrInvalidInput, def.MinFiles, def.Name)
		}
		return fmt.Errorf("%w: no file provided for %s", ErrInvalidInput, def.Name)
	}
	if def.MaxFiles > 0 && len(uploads) > def.MaxFiles {
		return fmt.Errorf("%w: at most %d files accepted for %s", ErrInvalidInput, def.MaxFiles, def.Name)
	}

	for _, upload := range uploads {
		ext := strings.ToLower(filepath.Ext(upload.Filename))
		if !acceptedExt(def.Exts, ext) {
			return fmt.Errorf("%w: file %s is not accepted for %s", ErrInvalidInput, upload.Filename, def.Name)
		}
	}
	return nil
}

func acceptedExt(exts []string, ext string) bool {
	for _, accepted := range exts {
		if ext == accepted {
			return true
		}
	}
	return false
}
