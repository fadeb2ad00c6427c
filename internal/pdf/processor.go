// Package pdf is the facade over the external document libraries. Each
// exported method implements exactly one transformation: it takes staged
// input paths plus parameters, writes its result into the outbound zone and
// returns the produced path(s). No state is kept across calls.
package pdf

import (
	"fmt"
	"net/http"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/wb-go/wbf/retry"
)

// outputs reserves result paths inside the outbound staging zone.
type outputs interface {
	// OutputFile returns a fresh uniquely named path, e.g. ("merged", ".pdf").
	OutputFile(prefix, ext string) string
	// OutputPath returns the outbound path for an already unique name.
	OutputPath(name string) string
}

// Options tune processor behavior that comes from configuration.
type Options struct {
	// OCRLanguage is the tesseract language used when a request does not
	// specify one.
	OCRLanguage string
	// FetchStrategy is the retry policy for fetching remote HTML.
	FetchStrategy retry.Strategy
}

// Processor executes document transformations. Safe for concurrent use;
// every call works on its own files only.
type Processor struct {
	out     outputs
	opts    Options
	httpcli *http.Client
}

// New creates a Processor writing results through the given outputs.
func New(out outputs, opts Options) *Processor {
	if opts.OCRLanguage == "" {
		opts.OCRLanguage = "eng"
	}
	return &Processor{
		out:     out,
		opts:    opts,
		httpcli: http.DefaultClient,
	}
}

// conf returns a fresh pdfcpu configuration. pdfcpu mutates the
// configuration during some calls, so it is never shared.
func conf() *model.Configuration {
	return model.NewDefaultConfiguration()
}

// strategy is one way of producing a result. Strategies are tried in order;
// the next one runs only if the previous returned an error.
type strategy struct {
	name  string
	apply func() error
}

// runStrategies applies strategies in order until one succeeds. It returns
// the name of the successful strategy, or the last error if all failed.
func runStrategies(strategies []strategy) (string, error) {
	var lastErr error
	for _, s := range strategies {
		if err := s.apply(); err != nil {
			lastErr = fmt.Errorf("%s: %w", s.name, err)
			continue
		}
		return s.name, nil
	}
	return "", lastErr
}

// withTempDir runs fn with a request-scoped scratch directory that is
// removed on every exit path.
func withTempDir(pattern string, fn func(dir string) error) error {
	dir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	return fn(dir)
}

// writeEmptyFile creates a zero-byte placeholder output for selections that
// matched no pages at all.
func writeEmptyFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	return f.Close()
}

// copyFile duplicates src into dst byte for byte.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}
