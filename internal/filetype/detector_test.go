package filetype

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestDetectPDF(t *testing.T) {
	d := New()
	path := writeFile(t, "doc.pdf", []byte("%PDF-1.7\n%test\n"))

	info, err := d.Detect(path)
	require.NoError(t, err)
	assert.True(t, info.IsPDF)
	assert.Equal(t, "application/pdf", info.MIMEType)
}

func TestDetectIgnoresExtension(t *testing.T) {
	d := New()
	// a PDF renamed to .txt is still a PDF by magic bytes
	path := writeFile(t, "doc.txt", []byte("%PDF-1.4\n"))

	info, err := d.Detect(path)
	require.NoError(t, err)
	assert.True(t, info.IsPDF)
}

func TestRequirePDF(t *testing.T) {
	d := New()

	pdf := writeFile(t, "a.pdf", []byte("%PDF-1.4\n"))
	assert.NoError(t, d.RequirePDF(pdf))

	txt := writeFile(t, "b.pdf", []byte("just some text"))
	err := d.RequirePDF(txt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a PDF file")
}
