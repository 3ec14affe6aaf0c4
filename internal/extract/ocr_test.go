package extract

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	byPage map[string]string // png payload → recognized text
	err    error
	calls  int
}

func (f *fakeEngine) Recognize(_ context.Context, png []byte) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.byPage[string(png)], nil
}

func TestOCRLazyInit(t *testing.T) {
	builds := 0
	o := NewOCR(func() (Engine, error) {
		builds++
		return &fakeEngine{}, nil
	})

	first, err := o.Engine()
	require.NoError(t, err)
	second, err := o.Engine()
	require.NoError(t, err)

	assert.Same(t, first.(*fakeEngine), second.(*fakeEngine), "engine is shared across uses")
	assert.Equal(t, 1, builds, "engine must be constructed once")
}

func TestOCRInitRetriesAfterFailure(t *testing.T) {
	builds := 0
	o := NewOCR(func() (Engine, error) {
		builds++
		if builds == 1 {
			return nil, &DependencyMissingError{Dep: "tesseract", Remedy: "install it"}
		}
		return &fakeEngine{}, nil
	})

	_, err := o.Engine()
	var dep *DependencyMissingError
	require.ErrorAs(t, err, &dep)
	assert.Equal(t, "tesseract", dep.Dep)

	// a failed build does not poison the session
	eng, err := o.Engine()
	require.NoError(t, err)
	require.NotNil(t, eng)
	assert.Equal(t, 2, builds)
}

func TestNewTesseractMissingBinary(t *testing.T) {
	_, err := NewTesseract("definitely-not-a-real-binary-xyz", "eng", 0)
	var dep *DependencyMissingError
	require.ErrorAs(t, err, &dep)
	assert.Contains(t, err.Error(), "required for OCR but is not installed")
}

func TestTextOCR(t *testing.T) {
	dir := t.TempDir()
	doc := &fakeDoc{pages: 2, base: "scan", png: []byte("raster")}
	eng := &fakeEngine{byPage: map[string]string{"raster": "recognized text"}}
	e := &Extractor{OCR: NewOCR(func() (Engine, error) { return eng, nil })}
	rec := &recorder{}

	res, err := e.TextOCR(context.Background(), doc, dir, rec)
	require.NoError(t, err)
	assert.Equal(t, 2, eng.calls)
	assert.Equal(t, "Text extraction complete! Saved to scan_extracted_text.txt.", res.Message)

	got, err := os.ReadFile(res.File)
	require.NoError(t, err)
	want := "--- Page 1 ---\nrecognized text\n\n--- Page 2 ---\nrecognized text\n\n"
	assert.Equal(t, want, string(got))

	// per-page log messages instead of fractional progress
	require.Len(t, rec.logs, 2)
	assert.Equal(t, "Processing page 1/2 with OCR... (this can be slow)", rec.logs[0])
	assert.Empty(t, rec.fractions)
}

func TestTextOCRPageFailuresAreSkipped(t *testing.T) {
	doc := &fakeDoc{pages: 3, base: "scan", png: []byte("raster")}
	eng := &fakeEngine{err: fmt.Errorf("engine crashed")}
	e := &Extractor{OCR: NewOCR(func() (Engine, error) { return eng, nil })}

	res, err := e.TextOCR(context.Background(), doc, t.TempDir(), &recorder{})
	require.NoError(t, err, "per-page OCR failures do not abort the task")
	assert.Equal(t, "Text extraction finished, but no text was found in the PDF.", res.Message)
}

func TestTextOCRDependencyMissing(t *testing.T) {
	e := &Extractor{OCR: NewOCR(func() (Engine, error) {
		return nil, &DependencyMissingError{Dep: "tesseract", Remedy: "install tesseract-ocr"}
	})}
	doc := &fakeDoc{pages: 1, base: "scan"}

	_, err := e.TextOCR(context.Background(), doc, t.TempDir(), &recorder{})
	var dep *DependencyMissingError
	require.ErrorAs(t, err, &dep)
}
