package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/wb-go/wbf/zlog"
)

// pageNumberAnchors maps the accepted position values to pdfcpu anchors.
var pageNumberAnchors = map[string]string{
	"bottom-left":   "bl",
	"bottom-center": "bc",
	"bottom-right":  "br",
}

// Watermark overlays the same diagonal text stamp onto every page. The
// stamp's absolute position is identical across pages regardless of page
// size.
func (p *Processor) Watermark(input, text string) (string, error) {
	out := p.out.OutputFile("watermarked", ".pdf")

	if err := p.applyTextWatermark(input, out, text); err != nil {
		return "", fmt.Errorf("failed to add watermark: %w", err)
	}

	return out, nil
}

// PageNumbers stamps the page number at one of three fixed bottom anchors.
// An unrecognized position draws nothing and returns the document unchanged.
func (p *Processor) PageNumbers(input, position string) (string, error) {
	out := p.out.OutputFile("page_numbers", ".pdf")

	anchor, ok := pageNumberAnchors[position]
	if !ok {
		zlog.Logger.Warn().Str("position", position).Msg("unknown page number position, leaving document unchanged")
		if err := copyFile(input, out); err != nil {
			return "", err
		}
		return out, nil
	}

	desc := fmt.Sprintf("font:Helvetica, points:10, scale:1 abs, rot:0, fillc:#000000, op:1, pos:%s, off:-30 20", anchor)
	wm, err := api.TextWatermark("%p", desc, true, false, types.POINTS)
	if err != nil {
		return "", fmt.Errorf("failed to build page number stamp: %w", err)
	}

	if err := api.AddWatermarksFile(input, out, nil, wm, conf()); err != nil {
		return "", fmt.Errorf("failed to add page numbers: %w", err)
	}

	return out, nil
}

// applyTextWatermark stamps a large diagonal red text overlay onto every
// page of input and writes the result to out.
func (p *Processor) applyTextWatermark(input, out, text string) error {
	desc := "font:Helvetica-Bold, points:50, scale:1 abs, rot:45, fillc:#cc0000, op:.6, pos:c"
	wm, err := api.TextWatermark(text, desc, true, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("failed to build text watermark: %w", err)
	}

	if err := api.AddWatermarksFile(input, out, nil, wm, conf()); err != nil {
		return fmt.Errorf("failed to apply watermark: %w", err)
	}
	return nil
}
