package document

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"
)

// OpenOptions controls authentication for encrypted documents.
// HasPassword distinguishes "no password supplied" from an empty password:
// the former yields ErrPasswordRequired on encrypted documents, the latter
// is a real authentication attempt.
type OpenOptions struct {
	Password    string
	HasPassword bool
}

// Handle is an open, authenticated PDF document. It owns a go-fitz document
// for page access, the pdfcpu context for embedded image resources, and any
// temp copies created during open. Close releases everything.
type Handle struct {
	doc   *fitz.Document
	pdf   *model.Context
	path  string
	base  string
	pages int
	tmps  []string
}

// EmbeddedImage is one image resource extracted from a page.
type EmbeddedImage struct {
	Data   []byte
	Format string
}

// Open opens the PDF at path, authenticating with opts if the document is
// encrypted. Encrypted documents are decrypted to a temp copy so the page
// renderer can read them. Errors are classified: ErrPasswordRequired,
// ErrWrongPassword, or *OpenError.
func Open(ctx context.Context, path string, opts OpenOptions) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	h := &Handle{path: path, base: baseName(path)}

	f, err := os.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	conf := model.NewDefaultConfiguration()
	if opts.HasPassword {
		conf.UserPW = opts.Password
	}
	pdfCtx, _, _, _, err := api.ReadValidateAndOptimize(f, conf, time.Now())
	f.Close()
	if err != nil {
		if isPasswordError(err) {
			if !opts.HasPassword {
				return nil, ErrPasswordRequired
			}
			return nil, ErrWrongPassword
		}
		return nil, &OpenError{Path: path, Err: err}
	}
	h.pdf = pdfCtx

	localPath := path
	if pdfCtx.Encrypt != nil {
		// MuPDF cannot take our credentials, so hand it a decrypted copy.
		tmp, err := os.CreateTemp("", "pdfx-dec-*.pdf")
		if err != nil {
			return nil, &OpenError{Path: path, Err: err}
		}
		tmp.Close()
		if err := api.DecryptFile(path, tmp.Name(), conf); err != nil {
			os.Remove(tmp.Name())
			return nil, &OpenError{Path: path, Err: fmt.Errorf("decrypt: %w", err)}
		}
		h.tmps = append(h.tmps, tmp.Name())
		localPath = tmp.Name()
		log.Debug().Str("file", filepath.Base(path)).Msg("decrypted document to temp copy")
	}

	doc, err := fitz.New(localPath)
	if err != nil {
		h.Close()
		return nil, &OpenError{Path: path, Err: err}
	}
	h.doc = doc
	h.pages = doc.NumPage()

	log.Debug().Str("file", filepath.Base(path)).Int("pages", h.pages).Msg("opened document")
	return h, nil
}

// NumPage returns the page count.
func (h *Handle) NumPage() int { return h.pages }

// BaseName returns the source file name without directory or extension,
// used to derive output artifact names.
func (h *Handle) BaseName() string { return h.base }

// Text returns the plain text of page i (0-based).
func (h *Handle) Text(i int) (string, error) {
	return h.doc.Text(i)
}

// HTML returns the HTML rendering of page i (0-based), without per-page
// header markup: the extractor wraps pages in its own document shell.
func (h *Handle) HTML(i int) (string, error) {
	return h.doc.HTML(i, false)
}

// ImagePNG rasterizes page i (0-based) at the given DPI and returns PNG bytes.
func (h *Handle) ImagePNG(i int, dpi float64) ([]byte, error) {
	return h.doc.ImagePNG(i, dpi)
}

// PageImages returns the embedded image resources of page i (0-based) in a
// stable order (ascending object number).
func (h *Handle) PageImages(i int) ([]EmbeddedImage, error) {
	imgs, err := pdfcpu.ExtractPageImages(h.pdf, i+1, false)
	if err != nil {
		return nil, fmt.Errorf("extract images page %d: %w", i+1, err)
	}
	objNrs := make([]int, 0, len(imgs))
	for nr := range imgs {
		objNrs = append(objNrs, nr)
	}
	sort.Ints(objNrs)

	out := make([]EmbeddedImage, 0, len(objNrs))
	for _, nr := range objNrs {
		img := imgs[nr]
		data, err := io.ReadAll(img)
		if err != nil {
			return nil, fmt.Errorf("read image obj %d page %d: %w", nr, i+1, err)
		}
		format := img.FileType
		if format == "" {
			format = "png"
		}
		out = append(out, EmbeddedImage{Data: data, Format: format})
	}
	return out, nil
}

// Close releases the document and removes any temp copies. Safe to call on
// a partially opened handle.
func (h *Handle) Close() error {
	var err error
	if h.doc != nil {
		err = h.doc.Close()
		h.doc = nil
	}
	for _, t := range h.tmps {
		os.Remove(t)
	}
	h.tmps = nil
	return err
}

func baseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}
