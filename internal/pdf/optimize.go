package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/wb-go/wbf/zlog"
)

// Compress runs a stream-compression pass. The full optimization path is
// tried first; if the library rejects the document, a plain rewrite pass
// re-serializes the content streams instead.
func (p *Processor) Compress(input string) (string, error) {
	out := p.out.OutputFile("compressed", ".pdf")

	used, err := runStrategies([]strategy{
		{
			name: "optimize",
			apply: func() error {
				return api.OptimizeFile(input, out, conf())
			},
		},
		{
			name: "rewrite",
			apply: func() error {
				return api.TrimFile(input, out, []string{"1-"}, conf())
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to compress PDF: %w", err)
	}

	zlog.Logger.Debug().Str("strategy", used).Str("file", out).Msg("compressed PDF")
	return out, nil
}

// Optimize additionally strips unreferenced resources and duplicate content
// streams. No fallback: a failure here is terminal for the request.
func (p *Processor) Optimize(input string) (string, error) {
	out := p.out.OutputFile("optimized", ".pdf")

	c := conf()
	c.OptimizeResourceDicts = true
	c.OptimizeDuplicateContentStreams = true

	if err := api.OptimizeFile(input, out, c); err != nil {
		return "", fmt.Errorf("PDF optimization failed: %w", err)
	}

	return out, nil
}

// Repair rewrites a damaged document under relaxed validation, rebuilding
// the cross-reference table in the process.
func (p *Processor) Repair(input string) (string, error) {
	out := p.out.OutputFile("repaired", ".pdf")

	c := conf()
	c.ValidationMode = model.ValidationRelaxed

	if err := api.OptimizeFile(input, out, c); err != nil {
		return "", fmt.Errorf("cannot repair PDF: %w", err)
	}

	return out, nil
}

// ToPDFA stamps archival document properties and rewrites the file. This is
// a metadata-level conversion; it does not embed fonts or color profiles.
func (p *Processor) ToPDFA(input string) (string, error) {
	out := p.out.OutputFile("pdfa", ".pdf")

	properties := map[string]string{
		"Title":    "PDF/A Document",
		"Producer": "pdf-processor",
	}

	if err := api.AddPropertiesFile(input, out, properties, conf()); err != nil {
		return "", fmt.Errorf("PDF/A conversion failed: %w", err)
	}

	return out, nil
}
