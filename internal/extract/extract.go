package extract

import (
	"github.com/local/pdfxtract/internal/document"
)

// Kind selects which artifact an extraction attempt produces.
type Kind string

const (
	KindImages Kind = "images"
	KindText   Kind = "text"
	KindHTML   Kind = "html"
)

// Title returns the user-facing task name.
func (k Kind) Title() string {
	switch k {
	case KindImages:
		return "Image Extraction"
	case KindText:
		return "Text Extraction"
	case KindHTML:
		return "HTML Extraction"
	}
	return string(k)
}

// Request describes one extraction attempt. Requests are immutable once an
// attempt starts; a retry constructs a new request via WithPassword.
type Request struct {
	AttemptID   string
	SourcePath  string
	OutputDir   string
	Kind        Kind
	UseOCR      bool
	Password    string
	HasPassword bool
}

// WithPassword returns a fresh request for a retry attempt carrying the
// supplied password. An empty string is a real password, not "no password".
func (r Request) WithPassword(attemptID, password string) Request {
	r.AttemptID = attemptID
	r.Password = password
	r.HasPassword = true
	return r
}

// Result is the successful outcome of one attempt.
type Result struct {
	Message string
	Count   int    // images written (image extraction only)
	File    string // artifact path, empty when nothing was written
}

// Reporter receives incremental progress from extractors. Implementations
// marshal updates onto the interactive session loop in FIFO order.
type Reporter interface {
	Progress(fraction float64)
	Logf(format string, args ...any)
}

// Document abstracts an open PDF for extraction, so extractors can be tested
// against a fake backend. document.Handle is the production implementation.
type Document interface {
	NumPage() int
	BaseName() string
	Text(i int) (string, error)
	HTML(i int) (string, error)
	ImagePNG(i int, dpi float64) ([]byte, error)
	PageImages(i int) ([]document.EmbeddedImage, error)
}

// Extractor runs per-page extraction loops against an open document.
type Extractor struct {
	ProgressEvery int  // pages between fractional progress reports
	OCRDPI        int  // rasterization resolution for OCR
	OCR           *OCR // lazy recognition engine, may be nil for non-OCR use
}

func (e *Extractor) progressEvery() int {
	if e.ProgressEvery > 0 {
		return e.ProgressEvery
	}
	return 5
}

func (e *Extractor) ocrDPI() float64 {
	if e.OCRDPI > 0 {
		return float64(e.OCRDPI)
	}
	return 300
}

// reportPage emits fractional progress at the configured cadence and always
// on the final page, so the sequence ends at exactly 1.0.
func (e *Extractor) reportPage(rep Reporter, i, total int) {
	if i%e.progressEvery() == 0 || i == total-1 {
		rep.Progress(float64(i+1) / float64(total))
	}
}
