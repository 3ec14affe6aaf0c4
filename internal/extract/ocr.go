package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/pdfxtract/internal/metrics"
)

// Engine recognizes text in a rendered page image.
type Engine interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

// OCR lazily constructs the recognition engine once per session. A failed
// construction is reported to the caller and retried on the next use, so a
// missing dependency never poisons the session.
type OCR struct {
	mu     sync.Mutex
	engine Engine
	build  func() (Engine, error)
}

// NewOCR wraps an engine constructor for lazy, session-scoped initialization.
func NewOCR(build func() (Engine, error)) *OCR {
	return &OCR{build: build}
}

// Engine returns the shared engine, constructing it on first use.
func (o *OCR) Engine() (Engine, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.engine != nil {
		return o.engine, nil
	}
	eng, err := o.build()
	if err != nil {
		return nil, err
	}
	o.engine = eng
	return eng, nil
}

// Tesseract drives the external tesseract binary over stdin/stdout.
type Tesseract struct {
	Binary      string
	Language    string
	PageTimeout time.Duration
}

// NewTesseract verifies the binary is installed and returns an engine.
func NewTesseract(binary, language string, pageTimeout time.Duration) (Engine, error) {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, &DependencyMissingError{
			Dep:    binary,
			Remedy: "Install it with: sudo apt install tesseract-ocr (Linux) or brew install tesseract (macOS).",
		}
	}
	log.Info().Str("binary", binary).Str("lang", language).Msg("OCR engine ready")
	return &Tesseract{Binary: binary, Language: language, PageTimeout: pageTimeout}, nil
}

// Recognize feeds PNG bytes to tesseract and returns the recognized text.
func (t *Tesseract) Recognize(ctx context.Context, png []byte) (string, error) {
	if t.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.PageTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, t.Binary, "stdin", "stdout", "-l", t.Language)
	cmd.Stdin = bytes.NewReader(png)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// TextOCR rasterizes each page at the configured DPI, runs it through the
// recognition engine, and collects the results like the plain text
// extractor. Progress for this path is per-page log messages rather than
// fractions, since OCR duration per page varies too much for a meaningful
// fraction.
func (e *Extractor) TextOCR(ctx context.Context, doc Document, outDir string, rep Reporter) (Result, error) {
	if e.OCR == nil {
		return Result{}, fmt.Errorf("OCR engine not configured")
	}
	eng, err := e.OCR.Engine()
	if err != nil {
		return Result{}, err
	}

	total := doc.NumPage()
	var sections []string

	for i := 0; i < total; i++ {
		rep.Logf("Processing page %d/%d with OCR... (this can be slow)", i+1, total)

		png, err := doc.ImagePNG(i, e.ocrDPI())
		if err != nil {
			log.Warn().Err(err).Int("page", i+1).Msg("failed to rasterize page for OCR")
			metrics.IncOCRPage("render_error")
			continue
		}
		text, err := eng.Recognize(ctx, png)
		if err != nil {
			log.Warn().Err(err).Int("page", i+1).Msg("OCR failed on page")
			metrics.IncOCRPage("error")
			continue
		}
		metrics.IncOCRPage("ok")

		if strings.TrimSpace(text) != "" {
			sections = append(sections, fmt.Sprintf("--- Page %d ---\n%s\n\n", i+1, text))
		}
	}

	return e.saveText(doc, outDir, sections)
}
