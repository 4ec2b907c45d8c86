package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// TextExtractor turns document bytes into plain text from at most maxPages pages and
// reports the document's total page count.
type TextExtractor interface {
	ExtractText(ctx context.Context, doc []byte, maxPages int) (text string, pageCount int, err error)
}

// PDFTextExtractor validates the PDF with pdfcpu in relaxed mode, then reads page text
// with ledongthuc/pdf.
type PDFTextExtractor struct{}

func (PDFTextExtractor) ExtractText(ctx context.Context, doc []byte, maxPages int) (text string, pageCount int, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(doc, " \t\r\n"), []byte("%PDF")) {
		return "", 0, fmt.Errorf("%w: missing PDF header", ErrInvalidDocument)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pageCount, err = api.PageCount(bytes.NewReader(doc), conf)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	// The text reader panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: text extraction panicked: %v", ErrInvalidDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return "", pageCount, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	scanPages := reader.NumPage()
	if maxPages > 0 && scanPages > maxPages {
		scanPages = maxPages
	}

	var sb strings.Builder
	for i := 1; i <= scanPages; i++ {
		select {
		case <-ctx.Done():
			return "", pageCount, ctx.Err()
		default:
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), pageCount, nil
}
