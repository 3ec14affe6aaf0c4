package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Images writes every embedded image of every page into outDir as
// page{N}_img{M}.{ext}, both indices 1-based. A document without images is
// a distinct non-error outcome.
func (e *Extractor) Images(doc Document, outDir string, rep Reporter) (Result, error) {
	total := doc.NumPage()
	count := 0

	for i := 0; i < total; i++ {
		e.reportPage(rep, i, total)

		imgs, err := doc.PageImages(i)
		if err != nil {
			return Result{}, err
		}
		for idx, img := range imgs {
			name := fmt.Sprintf("page%d_img%d.%s", i+1, idx+1, img.Format)
			path := filepath.Join(outDir, name)
			if err := os.WriteFile(path, img.Data, 0o644); err != nil {
				return Result{}, &WriteError{Path: path, Err: err}
			}
			count++
		}
	}

	log.Debug().Int("images", count).Int("pages", total).Msg("image extraction done")

	if count == 0 {
		return Result{Message: "Extraction finished, but no images were found in the PDF."}, nil
	}
	return Result{
		Count:   count,
		Message: fmt.Sprintf("Extraction complete! Found and saved %d images.", count),
	}, nil
}
