package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// EnsureLocal resolves a source reference to a local filesystem path.
// Supported forms:
//   - file://path or plain filesystem paths (returned as-is)
//   - http(s):// URLs (downloaded to a temp file)
//
// The second return value is a temp path the caller must remove, or "".
func EnsureLocal(ctx context.Context, ref string, timeout time.Duration) (string, string, error) {
	switch {
	case strings.HasPrefix(ref, "file://"):
		return strings.TrimPrefix(ref, "file://"), "", nil
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		p, err := downloadHTTPToTemp(ctx, ref, timeout)
		return p, p, err
	default:
		return ref, "", nil
	}
}

func downloadHTTPToTemp(ctx context.Context, url string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("http %d", resp.StatusCode)
	}
	f, err := os.CreateTemp("", "pdfdl-*.pdf")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	log.Info().Str("url", url).Str("file", f.Name()).Msg("downloaded pdf to temp")
	return f.Name(), nil
}

// CleanupTemps removes stale temp files created by this process
// (pdfdl-*.pdf downloads, pdfx-dec-*.pdf decrypted copies) older than maxAge.
func CleanupTemps(maxAge time.Duration) {
	dir := os.TempDir()
	now := time.Now()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, "pdfdl-") && !strings.HasPrefix(name, "pdfx-dec-") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) >= maxAge {
			_ = os.Remove(dir + string(os.PathSeparator) + name)
		}
	}
}
