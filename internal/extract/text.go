package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Text concatenates the plain text of every page, separated by page-number
// headers, into {base}_extracted_text.txt. Empty pages contribute no
// section; an all-empty document is a distinct non-error outcome and writes
// no file.
func (e *Extractor) Text(doc Document, outDir string, rep Reporter) (Result, error) {
	total := doc.NumPage()
	var sections []string

	for i := 0; i < total; i++ {
		e.reportPage(rep, i, total)

		text, err := doc.Text(i)
		if err != nil {
			log.Warn().Err(err).Int("page", i+1).Msg("failed to extract text from page")
			continue
		}
		if text != "" {
			sections = append(sections, fmt.Sprintf("--- Page %d ---\n%s\n\n", i+1, text))
		}
	}

	return e.saveText(doc, outDir, sections)
}

// saveText writes collected page sections to the text artifact. Shared by
// the plain and OCR text extractors.
func (e *Extractor) saveText(doc Document, outDir string, sections []string) (Result, error) {
	if len(sections) == 0 {
		return Result{Message: "Text extraction finished, but no text was found in the PDF."}, nil
	}

	name := fmt.Sprintf("%s_extracted_text.txt", doc.BaseName())
	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, []byte(strings.Join(sections, "")), 0o644); err != nil {
		return Result{}, &WriteError{Path: path, Err: err}
	}

	log.Debug().Str("file", name).Int("sections", len(sections)).Msg("text extraction done")
	return Result{
		File:    path,
		Message: fmt.Sprintf("Text extraction complete! Saved to %s.", name),
	}, nil
}
