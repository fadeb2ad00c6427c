// Package operations provides the HTTP handlers of the processing API: one
// handler per supported transformation, all sharing the same
// parse-dispatch-respond skeleton.
package operations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/pdf-processor/internal/api/respond"
	"github.com/aliskhannn/pdf-processor/internal/model"
	"github.com/aliskhannn/pdf-processor/internal/pagespec"
	"github.com/aliskhannn/pdf-processor/internal/service/operations"
	"github.com/aliskhannn/pdf-processor/internal/storage/staging"
)

// service defines the pipeline operations the handlers depend on.
type service interface {
	Execute(ctx context.Context, op operations.Operation, uploads []model.Upload) (model.Result, error)
	CreateZip(refs []string) (model.Result, error)
	ResolveDownload(ref string) (string, error)
	Cleanup() int
}

// Handler provides HTTP handlers for the document operation endpoints.
type Handler struct {
	service   service
	maxUpload int64
}

// NewHandler creates a new Handler with the given service. maxUpload caps
// the request body size of upload routes, in bytes.
func NewHandler(s service, maxUpload int64) *Handler {
	return &Handler{service: s, maxUpload: maxUpload}
}

// run executes one operation through the service and writes the uniform
// response envelope, mapping error kinds to HTTP statuses.
func (h *Handler) run(c *ginext.Context, op operations.Operation, uploads []model.Upload) {
	result, err := h.service.Execute(c.Request.Context(), op, uploads)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, result)
}

// fail maps the error kind to a deterministic HTTP status.
func (h *Handler) fail(c *ginext.Context, err error) {
	switch {
	case errors.Is(err, operations.ErrInvalidInput):
		zlog.Logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("rejected request")
		respond.Fail(c, http.StatusBadRequest, err)
	case errors.Is(err, staging.ErrNotFound):
		respond.Fail(c, http.StatusNotFound, err)
	default:
		zlog.Logger.Err(err).Str("path", c.Request.URL.Path).Msg("operation failed")
		respond.Fail(c, http.StatusInternalServerError, err)
	}
}

// uploads collects the named multipart files without reading them into
// memory. The request body is capped at the configured upload size; an
// oversized body surfaces as a parse error. The returned closer must be
// deferred.
func (h *Handler) uploads(c *ginext.Context, fields ...string) ([]model.Upload, func(), error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	if err := c.Request.ParseMultipartForm(h.maxUpload); err != nil {
		return nil, func() {}, fmt.Errorf("%w: failed to parse multipart form: %v", operations.ErrInvalidInput, err)
	}

	var files []model.Upload
	var closers []func() error

	closeAll := func() {
		for _, closeOne := range closers {
			_ = closeOne()
		}
	}

	for _, field := range fields {
		for _, header := range c.Request.MultipartForm.File[field] {
			f, err := header.Open()
			if err != nil {
				closeAll()
				return nil, func() {}, fmt.Errorf("failed to open upload %s: %w", header.Filename, err)
			}
			closers = append(closers, f.Close)
			files = append(files, model.Upload{Filename: header.Filename, Data: f})
		}
	}

	return files, closeAll, nil
}

// single handles the common case of one "file" upload plus a fixed operation.
func (h *Handler) single(c *ginext.Context, op operations.Operation) {
	uploads, closeFiles, err := h.uploads(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	h.run(c, op, uploads)
}

// Merge handles POST /api/merge.
func (h *Handler) Merge(c *ginext.Context) {
	uploads, closeFiles, err := h.uploads(c, "files")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	h.run(c, operations.Merge{}, uploads)
}

// Split handles POST /api/split.
func (h *Handler) Split(c *ginext.Context) {
	uploads, closeFiles, err := h.uploads(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	ranges, err := pagespec.ParseRanges(c.PostForm("pages"))
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %v", operations.ErrInvalidInput, err))
		return
	}

	h.run(c, operations.Split{Ranges: ranges}, uploads)
}

// Extract handles POST /api/extract.
func (h *Handler) Extract(c *ginext.Context) {
	uploads, closeFiles, err := h.uploads(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	pages, err := pagespec.ParsePages(c.PostForm("pages"))
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %v", operations.ErrInvalidInput, err))
		return
	}
	if len(pages) == 0 {
		h.fail(c, fmt.Errorf("%w: pages field is required", operations.ErrInvalidInput))
		return
	}

	h.run(c, operations.Extract{Pages: pages}, uploads)
}

// Organize handles POST /api/organize.
func (h *Handler) Organize(c *ginext.Context) {
	uploads, closeFiles, err := h.uploads(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	order, err := pagespec.ParsePages(c.PostForm("page_order"))
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %v", operations.ErrInvalidInput, err))
		return
	}
	if len(order) == 0 {
		h.fail(c, fmt.Errorf("%w: page_order field is required", operations.ErrInvalidInput))
		return
	}

	h.run(c, operations.Organize{Order: order}, uploads)
}

// RemovePages handles POST /api/remove-pages.
func (h *Handler) RemovePages(c *ginext.Context) {
	uploads, closeFiles, err := h.uploads(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	pages, err := pagespec.ParsePages(c.PostForm("pages"))
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %v", operations.ErrInvalidInput, err))
		return
	}
	if len(pages) == 0 {
		h.fail(c, fmt.Errorf("%w: pages field is required", operations.ErrInvalidInput))
		return
	}

	h.run(c, operations.RemovePages{Pages: pages}, uploads)
}

// Rotate handles POST /api/rotate.
func (h *Handler) Rotate(c *ginext.Context) {
	uploads, closeFiles, err := h.uploads(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	angle, err := strconv.Atoi(c.PostForm("angle"))
	if err != nil || (angle != 90 && angle != 180 && angle != 270) {
		h.fail(c, fmt.Errorf("%w: angle must be 90, 180, or 270", operations.ErrInvalidInput))
		return
	}

	h.run(c, operations.Rotate{Angle: angle}, uploads)
}

// Compress handles POST /api/compress.
func (h *Handler) Compress(c *ginext.Context) { h.single(c, operations.Compress{}) }

// Optimize handles POST /api/optimize.
func (h *Handler) Optimize(c *ginext.Context) { h.single(c, operations.Optimize{}) }

// Repair handles POST /api/repair.
func (h *Handler) Repair(c *ginext.Context) { h.single(c, operations.Repair{}) }

// PDFToPDFA handles POST /api/pdf-to-pdfa.
func (h *Handler) PDFToPDFA(c *ginext.Context) { h.single(c, operations.PDFToPDFA{}) }

// Protect handles POST /api/protect.
func (h *Handler) Protect(c *ginext.Context) {
	uploads, closeFiles, err := h.uploads(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	password := c.PostForm("password")
	if password == "" {
		h.fail(c, fmt.Errorf("%w: password is required", operations.ErrInvalidInput))
		return
	}

	h.run(c, operations.Protect{Password: password}, uploads)
}

// Unlock handles POST /api/unlock.
func (h *Handler) Unlock(c *ginext.Context) {
	uploads, closeFiles, err := h.uploads(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	password := c.PostForm("password")
	if password == "" {
		h.fail(c, fmt.Errorf("%w: password is required", operations.ErrInvalidInput))
		return
	}

	h.run(c, operations.Unlock{Password: password}, uploads)
}

// Watermark handles POST /api/watermark.
func (h *Handler) Watermark(c *ginext.Context) {
	uploads, closeFiles, err := h.uploads(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	text := c.PostForm("text")
	if text == "" {
		h.fail(c, fmt.Errorf("%w: watermark text is required", operations.ErrInvalidInput))
		return
	}

	h.run(c, operations.Watermark{Text: text}, uploads)
}

// PageNumbers handles POST /api/add-page-numbers.
func (h *Handler) PageNumbers(c *ginext.Context) {
	uploads, closeFiles, err := h.uploads(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	position := c.DefaultPostForm("position", "bottom-right")
	h.run(c, operations.PageNumbers{Position: position}, uploads)
}

// Crop handles POST /api/crop.
func (h *Handler) Crop(c *ginext.Context) {
	uploads, closeFiles, err := h.uploads(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	var coords [4]float64
	for i, field := range []string{"left", "bottom", "right", "top"} {
		value, err := strconv.ParseFloat(c.PostForm(field), 64)
		if err != nil {
			h.fail(c, fmt.Errorf("%w: invalid %s coordinate", operations.ErrInvalidInput, field))
			return
		}
		coords[i] = value
	}

	h.run(c, operations.Crop{Left: coords[0], Bottom: coords[1], Right: coords[2], Top: coords[3]}, uploads)
}

// ImagesToPDF handles POST /api/jpg-to-pdf.
func (h *Handler) ImagesToPDF(c *ginext.Context) {
	uploads, closeFiles, err := h.uploads(c, "files")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	h.run(c, operations.ImagesToPDF{}, uploads)
}

// PDFToImages handles POST /api/pdf-to-jpg.
func (h *Handler) PDFToImages(c *ginext.Context) { h.single(c, operations.PDFToImages{}) }

// OCR handles POST /api/ocr.
func (h *Handler) OCR(c *ginext.Context) {
	uploads, closeFiles, err := h.uploads(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	h.run(c, operations.OCR{Language: c.DefaultPostForm("language", "eng")}, uploads)
}

// WordToPDF handles POST /api/word-to-pdf.
func (h *Handler) WordToPDF(c *ginext.Context) { h.single(c, operations.WordToPDF{}) }

// ExcelToPDF handles POST /api/excel-to-pdf.
func (h *Handler) ExcelToPDF(c *ginext.Context) { h.single(c, operations.ExcelToPDF{}) }

// PowerPointToPDF handles POST /api/powerpoint-to-pdf.
func (h *Handler) PowerPointToPDF(c *ginext.Context) { h.single(c, operations.PowerPointToPDF{}) }

// HTMLToPDF handles POST /api/html-to-pdf. Accepts either inline markup in
// html_content or a url to fetch.
func (h *Handler) HTMLToPDF(c *ginext.Context) {
	content := c.PostForm("html_content")
	url := c.PostForm("url")
	if content == "" && url == "" {
		h.fail(c, fmt.Errorf("%w: html_content or url is required", operations.ErrInvalidInput))
		return
	}

	h.run(c, operations.HTMLToPDF{HTML: content, URL: url}, nil)
}

// Sign handles POST /api/sign.
func (h *Handler) Sign(c *ginext.Context) {
	uploads, closeFiles, err := h.uploads(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	signature := c.PostForm("signature")
	if signature == "" {
		h.fail(c, fmt.Errorf("%w: signature text is required", operations.ErrInvalidInput))
		return
	}

	h.run(c, operations.Sign{Text: signature}, uploads)
}

// Redact handles POST /api/redact.
func (h *Handler) Redact(c *ginext.Context) {
	uploads, closeFiles, err := h.uploads(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	var areas []model.RedactArea
	if raw := c.PostForm("areas"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &areas); err != nil {
			h.fail(c, fmt.Errorf("%w: invalid redaction areas: %v", operations.ErrInvalidInput, err))
			return
		}
	}

	h.run(c, operations.Redact{Areas: areas}, uploads)
}

// Compare handles POST /api/compare. Each document arrives in its own field
// so the pair's order is unambiguous.
func (h *Handler) Compare(c *ginext.Context) {
	uploads, closeFiles, err := h.uploads(c, "file1", "file2")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeFiles()

	for _, field := range []string{"file1", "file2"} {
		if len(c.Request.MultipartForm.File[field]) != 1 {
			h.fail(c, fmt.Errorf("%w: exactly one file required in %s", operations.ErrInvalidInput, field))
			return
		}
	}

	h.run(c, operations.Compare{}, uploads)
}

// CreateZip handles POST /api/create-zip. It takes references to already
// produced outputs, not uploads.
func (h *Handler) CreateZip(c *ginext.Context) {
	refs := c.PostFormArray("files")
	if len(refs) == 0 {
		h.fail(c, fmt.Errorf("%w: files field is required", operations.ErrInvalidInput))
		return
	}

	result, err := h.service.CreateZip(refs)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, result)
}

// Download handles GET /api/download/*path, serving the raw file bytes.
func (h *Handler) Download(c *ginext.Context) {
	ref := c.Param("path")

	path, err := h.service.ResolveDownload(ref)
	if err != nil {
		h.fail(c, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.fail(c, err)
		return
	}

	respond.File(c, filepath.Base(path), info.Size(), f)
}

// Cleanup handles DELETE /api/cleanup, triggering a retention sweep.
func (h *Handler) Cleanup(c *ginext.Context) {
	count := h.service.Cleanup()
	respond.OK(c, model.Result{Message: fmt.Sprintf("Cleaned up %d old files", count)})
}
