package pdftext

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// Extractor pulls the plain text out of PDF bytes, page by page.
type Extractor struct{}

// ExtractText returns the concatenated text of every page.
// Image-only documents yield an empty string and no error.
func (Extractor) ExtractText(data []byte) (text string, err error) {
	// パーサは壊れた入力で panic することがある
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return string(b), nil
}
