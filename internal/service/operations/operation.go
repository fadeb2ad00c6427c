package operations

import (
	"github.com/aliskhannn/pdf-processor/internal/model"
	"github.com/aliskhannn/pdf-processor/internal/pagespec"
)

// Definition declares what an operation accepts at the boundary: its name,
// the allowed upload extensions (lowercase, with dot) and the upload count
// constraints. MaxFiles == 0 means unlimited.
type Definition struct {
	Name     string
	Exts     []string
	MinFiles int
	MaxFiles int
}

var (
	pdfExts   = []string{".pdf"}
	imageExts = []string{".jpg", ".jpeg", ".png"}
	wordExts  = []string{".docx", ".doc"}
	excelExts = []string{".xlsx", ".xls"}
	pptExts   = []string{".pptx", ".ppt"}
)

// Operation is the closed set of supported transformations. Each variant
// carries its own parsed parameters; the service dispatches on the concrete
// type.
type Operation interface {
	definition() Definition
}

type Merge struct{}

type Split struct{ Ranges []pagespec.Range }

type Extract struct{ Pages []int }

type Organize struct{ Order []int }

type RemovePages struct{ Pages []int }

type Rotate struct{ Angle int }

type Compress struct{}

type Optimize struct{}

type Repair struct{}

type Protect struct{ Password string }

type Unlock struct{ Password string }

type Watermark struct{ Text string }

type PageNumbers struct{ Position string }

type Crop struct{ Left, Bottom, Right, Top float64 }

type ImagesToPDF struct{}

type PDFToImages struct{}

type OCR struct{ Language string }

type WordToPDF struct{}

type ExcelToPDF struct{}

type PowerPointToPDF struct{}

// HTMLToPDF takes no upload: either inline markup or a URL to fetch.
type HTMLToPDF struct {
	HTML string
	URL  string
}

type PDFToPDFA struct{}

type Sign struct{ Text string }

type Redact struct{ Areas []model.RedactArea }

type Compare struct{}

func (Merge) definition() Definition {
	return Definition{Name: "merge", Exts: pdfExts, MinFiles: 2}
}

func (Split) definition() Definition {
	return Definition{Name: "split", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (Extract) definition() Definition {
	return Definition{Name: "extract", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (Organize) definition() Definition {
	return Definition{Name: "organize", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (RemovePages) definition() Definition {
	return Definition{Name: "remove-pages", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (Rotate) definition() Definition {
	return Definition{Name: "rotate", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (Compress) definition() Definition {
	return Definition{Name: "compress", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (Optimize) definition() Definition {
	return Definition{Name: "optimize", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (Repair) definition() Definition {
	return Definition{Name: "repair", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (Protect) definition() Definition {
	return Definition{Name: "protect", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (Unlock) definition() Definition {
	return Definition{Name: "unlock", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (Watermark) definition() Definition {
	return Definition{Name: "watermark", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (PageNumbers) definition() Definition {
	return Definition{Name: "add-page-numbers", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (Crop) definition() Definition {
	return Definition{Name: "crop", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (ImagesToPDF) definition() Definition {
	return Definition{Name: "jpg-to-pdf", Exts: imageExts, MinFiles: 1}
}

func (PDFToImages) definition() Definition {
	return Definition{Name: "pdf-to-jpg", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (OCR) definition() Definition {
	return Definition{Name: "ocr", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (WordToPDF) definition() Definition {
	return Definition{Name: "word-to-pdf", Exts: wordExts, MinFiles: 1, MaxFiles: 1}
}

func (ExcelToPDF) definition() Definition {
	return Definition{Name: "excel-to-pdf", Exts: excelExts, MinFiles: 1, MaxFiles: 1}
}

func (PowerPointToPDF) definition() Definition {
	return Definition{Name: "powerpoint-to-pdf", Exts: pptExts, MinFiles: 1, MaxFiles: 1}
}

func (HTMLToPDF) definition() Definition {
	return Definition{Name: "html-to-pdf"}
}

func (PDFToPDFA) definition() Definition {
	return Definition{Name: "pdf-to-pdfa", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (Sign) definition() Definition {
	return Definition{Name: "sign", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (Redact) definition() Definition {
	return Definition{Name: "redact", Exts: pdfExts, MinFiles: 1, MaxFiles: 1}
}

func (Compare) definition() Definition {
	return Definition{Name: "compare", Exts: pdfExts, MinFiles: 2, MaxFiles: 2}
}
