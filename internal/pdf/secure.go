package pdf

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/pdf-processor/internal/model"
)

// Protect encrypts the document with the given password for both user and
// owner. AES-256 is tried first, with a 128-bit fallback for documents the
// primary path rejects.
func (p *Processor) Protect(input, password string) (string, error) {
	out := p.out.OutputFile("protected", ".pdf")

	encrypt := func(keyLength int, useAES bool) error {
		c := conf()
		c.UserPW = password
		c.OwnerPW = password
		c.EncryptKeyLength = keyLength
		c.EncryptUsingAES = useAES
		return api.EncryptFile(input, out, c)
	}

	used, err := runStrategies([]strategy{
		{name: "aes-256", apply: func() error { return encrypt(256, true) }},
		{name: "key-128", apply: func() error { return encrypt(128, false) }},
	})
	if err != nil {
		return "", fmt.Errorf("failed to protect PDF: %w", err)
	}

	zlog.Logger.Debug().Str("strategy", used).Msg("protected PDF")
	return out, nil
}

// Unlock removes password protection. A wrong password propagates as the
// library's decryption error.
func (p *Processor) Unlock(input, password string) (string, error) {
	out := p.out.OutputFile("unlocked", ".pdf")

	c := conf()
	c.UserPW = password
	c.OwnerPW = password

	if err := api.DecryptFile(input, out, c); err != nil {
		return "", fmt.Errorf("failed to unlock PDF: %w", err)
	}

	return out, nil
}

// Sign stamps a visible "SIGNED: {text}" watermark onto every page. This is
// not a cryptographic signature.
func (p *Processor) Sign(input, text string) (string, error) {
	out := p.out.OutputFile("signed", ".pdf")

	if err := p.applyTextWatermark(input, out, "SIGNED: "+text); err != nil {
		return "", fmt.Errorf("failed to sign PDF: %w", err)
	}

	return out, nil
}

// Redact draws opaque black rectangles over the requested areas. The overlay
// hides the areas visually; the underlying content streams are left intact.
func (p *Processor) Redact(input string, areas []model.RedactArea) (string, error) {
	out := p.out.OutputFile("redacted", ".pdf")

	if err := copyFile(input, out); err != nil {
		return "", err
	}

	if len(areas) == 0 {
		return out, nil
	}

	err := withTempDir("redact", func(dir string) error {
		for i, area := range areas {
			width := area.Right - area.Left
			height := area.Top - area.Bottom
			if width <= 0 || height <= 0 {
				zlog.Logger.Warn().Int("area", i).Msg("skipping empty redaction area")
				continue
			}

			blackout := filepath.Join(dir, fmt.Sprintf("area_%d.png", i))
			if err := writeBlackoutImage(blackout, int(width), int(height)); err != nil {
				return err
			}

			desc := fmt.Sprintf("pos:bl, off:%.2f %.2f, scale:1 abs, rot:0, op:1", area.Left, area.Bottom)
			wm, err := api.ImageWatermark(blackout, desc, true, false, types.POINTS)
			if err != nil {
				return fmt.Errorf("failed to build redaction stamp: %w", err)
			}

			page := area.Page
			if page < 1 {
				page = 1
			}
			pages := []string{strconv.Itoa(page)}
			if err := api.AddWatermarksFile(out, "", pages, wm, conf()); err != nil {
				return fmt.Errorf("failed to apply redaction to page %d: %w", page, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("PDF redaction failed: %w", err)
	}

	return out, nil
}

// writeBlackoutImage renders a solid black rectangle of the given size in
// pixels (1 pt = 1 px at stamp scale 1).
func writeBlackoutImage(path string, width, height int) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.Black)
	dc.Clear()

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to render redaction image: %w", err)
	}
	return nil
}
