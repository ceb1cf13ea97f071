// Package pdf extracts page-level text from PDF documents.
package pdf

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/beck40/insight/internal/core/domain"
	"github.com/beck40/insight/internal/core/ports/driven"
	"github.com/beck40/insight/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// Extractor reads a PDF and yields one domain.Page per physical page.
// The whole document is materialised eagerly so the chunker can manage
// cross-page overlap.
type Extractor struct{}

// New creates a new PDF page extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract reads the document at path and returns its pages with
// 0-based page numbers. A page whose text cannot be decoded is kept
// with empty text so page numbering stays aligned with the document.
func (e *Extractor) Extract(ctx context.Context, path string) ([]domain.Page, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptDocument, path, err)
	}
	defer f.Close()

	total := reader.NumPage()
	logger.Debug("PDF %s: %d pages", path, total)

	pages := make([]domain.Page, 0, total)
	hasContent := false
	for num := 1; num <= total; num++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := pageText(reader, num)
		if strings.TrimSpace(text) != "" {
			hasContent = true
		}
		pages = append(pages, domain.Page{
			Text:   text,
			Source: path,
			Number: num - 1,
		})
	}

	if !hasContent {
		return nil, fmt.Errorf("%w: %s yielded no text on any page", domain.ErrEmptyDocument, path)
	}
	return pages, nil
}

// pageText extracts plain text from one page, tolerating per-page
// decode failures.
func pageText(reader *pdf.Reader, num int) string {
	p := reader.Page(num)
	if p.V.IsNull() {
		return ""
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		logger.Warn("page %d: text extraction failed: %v", num, err)
		return ""
	}
	return text
}
