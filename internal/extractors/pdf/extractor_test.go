package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beck40/insight/internal/core/domain"
)

func TestExtract_MissingFile(t *testing.T) {
	e := New()

	pages, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, pages)
}

func TestExtract_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

	e := New()
	pages, err := e.Extract(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCorruptDocument)
	assert.Nil(t, pages)
}

func TestExtract_ErrorMentionsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.pdf")

	e := New()
	_, err := e.Extract(context.Background(), path)
	require.Error(t, err)
	// Errors must carry enough detail to report to an end user.
	assert.Contains(t, err.Error(), path)
}

// writeTestPDF assembles a minimal uncompressed PDF at path with one
// page per entry of pageTexts, each rendered as a single Helvetica
// text run. An empty entry produces a page with an empty content
// stream.
func writeTestPDF(t *testing.T, path string, pageTexts []string) {
	t.Helper()

	n := len(pageTexts)
	fontObj := 3 + 2*n

	kids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+2*i))
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n),
	}
	for i, text := range pageTexts {
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			fontObj, 4+2*i))
		var stream string
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, len(objects))
	for i, obj := range objects {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestExtract_TwoPageDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	writeTestPDF(t, path, []string{"Hello", "World"})

	e := New()
	pages, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	// Page numbering is 0-based; display layers add 1.
	assert.Equal(t, 0, pages[0].Number)
	assert.Equal(t, 1, pages[1].Number)
	assert.Equal(t, path, pages[0].Source)
	assert.Equal(t, path, pages[1].Source)
	assert.Contains(t, pages[0].Text, "Hello")
	assert.Contains(t, pages[1].Text, "World")
	assert.NotContains(t, pages[0].Text, "World")
}

func TestExtract_BlankPageKeepsNumbering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gaps.pdf")
	writeTestPDF(t, path, []string{"Hello", "", "World"})

	e := New()
	pages, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	// The text-free page is kept so later pages cite correctly.
	assert.Empty(t, strings.TrimSpace(pages[1].Text))
	assert.Equal(t, 2, pages[2].Number)
	assert.Contains(t, pages[2].Text, "World")
}

func TestExtract_TextFreeDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.pdf")
	writeTestPDF(t, path, []string{""})

	e := New()
	pages, err := e.Extract(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
	assert.Nil(t, pages)
}
