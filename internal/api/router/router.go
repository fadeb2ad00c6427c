package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/pdf-processor/internal/api/handlers/operations"
	"github.com/aliskhannn/pdf-processor/internal/middleware"
)

func Setup(h *operations.Handler) *ginext.Engine {
	r := ginext.New()

	r.Use(middleware.CORSMiddleware())
	r.Use(ginext.Logger())
	r.Use(ginext.Recovery())

	api := r.Group("/api")

	api.POST("/merge", h.Merge)
	api.POST("/split", h.Split)
	api.POST("/extract", h.Extract)
	api.POST("/rotate", h.Rotate)
	api.POST("/compress", h.Compress)
	api.POST("/protect", h.Protect)
	api.POST("/unlock", h.Unlock)
	api.POST("/jpg-to-pdf", h.ImagesToPDF)
	api.POST("/pdf-to-jpg", h.PDFToImages)
	api.POST("/watermark", h.Watermark)
	api.POST("/organize", h.Organize)
	api.POST("/remove-pages", h.RemovePages)
	api.POST("/optimize", h.Optimize)
	api.POST("/repair", h.Repair)
	api.POST("/ocr", h.OCR)
	api.POST("/add-page-numbers", h.PageNumbers)
	api.POST("/crop", h.Crop)
	api.POST("/word-to-pdf", h.WordToPDF)
	api.POST("/excel-to-pdf", h.ExcelToPDF)
	api.POST("/powerpoint-to-pdf", h.PowerPointToPDF)
	api.POST("/html-to-pdf", h.HTMLToPDF)
	api.POST("/pdf-to-pdfa", h.PDFToPDFA)
	api.POST("/sign", h.Sign)
	api.POST("/redact", h.Redact)
	api.POST("/compare", h.Compare)
	api.POST("/create-zip", h.CreateZip)

	api.GET("/download/*path", h.Download) // downloading a produced file
	api.DELETE("/cleanup", h.Cleanup)      // manually triggering the sweeper

	return r
}
