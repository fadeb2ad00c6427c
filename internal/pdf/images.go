package pdf

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/gen2brain/go-fitz"
	"github.com/go-pdf/fpdf"
	"github.com/otiai10/gosseract/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/wb-go/wbf/zlog"
)

// rasterDPI is the resolution used when rendering PDF pages to images.
const rasterDPI = 300

// US Letter in PDF points.
const (
	letterWidth  = 612.0
	letterHeight = 792.0
)

// ImagesToPDF normalizes each image (flattened onto white, contrast boost,
// sharpening) and assembles all of them as sequential pages of one PDF.
func (p *Processor) ImagesToPDF(inputs []string) (string, error) {
	out := p.out.OutputFile("images_to_pdf", ".pdf")

	err := withTempDir("imagepdf", func(dir string) error {
		prepared := make([]string, 0, len(inputs))

		for i, input := range inputs {
			img, err := imaging.Open(input)
			if err != nil {
				return fmt.Errorf("failed to open image %s: %w", input, err)
			}

			img = flattenOnWhite(img)
			img = imaging.AdjustContrast(img, 20)
			img = imaging.Sharpen(img, 1.0)

			tmp := filepath.Join(dir, fmt.Sprintf("page_%d.jpg", i+1))
			if err := imaging.Save(img, tmp, imaging.JPEGQuality(90)); err != nil {
				return fmt.Errorf("failed to encode image %s: %w", input, err)
			}
			prepared = append(prepared, tmp)
		}

		imp, err := api.Import("form:A4, pos:c, sc:1.0 rel", types.POINTS)
		if err != nil {
			return fmt.Errorf("failed to build import settings: %w", err)
		}

		if err := api.ImportImagesFile(prepared, out, imp, conf()); err != nil {
			return fmt.Errorf("failed to assemble PDF: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return out, nil
}

// ToImages rasterizes each page to a JPEG at a fixed resolution. Output names
// derive from the input's base name plus a 1-based page index.
func (p *Processor) ToImages(input string) ([]string, error) {
	doc, err := fitz.New(input)
	if err != nil {
		return nil, fmt.Errorf("PDF to image conversion failed: %w", err)
	}
	defer doc.Close()

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	outputs := make([]string, 0, doc.NumPage())

	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.ImageDPI(n, rasterDPI)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", n+1, err)
		}

		out := p.out.OutputPath(fmt.Sprintf("%s_page_%d.jpg", base, n+1))
		if err := imaging.Save(img, out, imaging.JPEGQuality(90)); err != nil {
			return nil, fmt.Errorf("failed to save page %d: %w", n+1, err)
		}
		outputs = append(outputs, out)
	}

	return outputs, nil
}

// OCR rasterizes each page, runs text recognition on it and re-renders the
// page images into a new letter-sized PDF. The recognized text is logged as
// a diagnostic; the output carries no text layer.
func (p *Processor) OCR(input, language string) (string, error) {
	if language == "" {
		language = p.opts.OCRLanguage
	}

	out := p.out.OutputFile("ocr", ".pdf")

	err := withTempDir("ocr", func(dir string) error {
		doc, err := fitz.New(input)
		if err != nil {
			return fmt.Errorf("failed to open PDF: %w", err)
		}
		defer doc.Close()

		client := gosseract.NewClient()
		defer client.Close()

		if err := client.SetLanguage(language); err != nil {
			return fmt.Errorf("failed to set OCR language %q: %w", language, err)
		}

		result := fpdf.New("P", "pt", "Letter", "")

		for n := 0; n < doc.NumPage(); n++ {
			img, err := doc.ImageDPI(n, rasterDPI)
			if err != nil {
				return fmt.Errorf("failed to render page %d: %w", n+1, err)
			}

			tmp := filepath.Join(dir, fmt.Sprintf("page_%d.png", n+1))
			if err := imaging.Save(img, tmp); err != nil {
				return fmt.Errorf("failed to save page image %d: %w", n+1, err)
			}

			if err := client.SetImage(tmp); err != nil {
				return fmt.Errorf("failed to load page %d into OCR engine: %w", n+1, err)
			}
			text, err := client.Text()
			if err != nil {
				return fmt.Errorf("text recognition failed on page %d: %w", n+1, err)
			}
			zlog.Logger.Debug().Int("page", n+1).Int("chars", len(text)).Msg("recognized page text")

			bounds := img.Bounds()
			width, height := fitToPage(float64(bounds.Dx()), float64(bounds.Dy()))

			result.AddPage()
			result.ImageOptions(tmp, 0, 0, width, height, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		}

		if err := result.OutputFileAndClose(out); err != nil {
			return fmt.Errorf("failed to write OCR result: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("OCR processing failed: %w", err)
	}

	return out, nil
}

// fitToPage scales image dimensions to fit a letter page, preserving the
// aspect ratio.
func fitToPage(width, height float64) (float64, float64) {
	scale := letterWidth / width
	if s := letterHeight / height; s < scale {
		scale = s
	}
	return width * scale, height * scale
}

// flattenOnWhite composites the image onto a white canvas, dropping any
// alpha channel (JPEG cannot carry one).
func flattenOnWhite(img image.Image) image.Image {
	bounds := img.Bounds()
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawImage(img, 0, 0)
	return dc.Image()
}
