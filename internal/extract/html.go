package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// HTML wraps each page's HTML rendering in a page-delimiting comment inside
// a single minimal document shell and writes {base}_extracted_content.html.
func (e *Extractor) HTML(doc Document, outDir string, rep Reporter) (Result, error) {
	total := doc.NumPage()
	parts := []string{"<html><head><title>Extracted Content</title></head><body>"}

	for i := 0; i < total; i++ {
		e.reportPage(rep, i, total)

		content, err := doc.HTML(i)
		if err != nil {
			log.Warn().Err(err).Int("page", i+1).Msg("failed to render page as HTML")
			continue
		}
		parts = append(parts, fmt.Sprintf("<!-- Page %d -->\n%s", i+1, content))
	}

	parts = append(parts, "</body></html>")

	name := fmt.Sprintf("%s_extracted_content.html", doc.BaseName())
	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, []byte(strings.Join(parts, "\n")), 0o644); err != nil {
		return Result{}, &WriteError{Path: path, Err: err}
	}

	log.Debug().Str("file", name).Int("pages", total).Msg("html extraction done")
	return Result{
		File:    path,
		Message: fmt.Sprintf("HTML extraction complete! Saved to %s.", name),
	}, nil
}
