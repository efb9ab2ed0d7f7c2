// Package pdf extracts plain text from PDF files.
package pdf

import (
	"fmt"
	"os"

	ledongthuc "github.com/ledongthuc/pdf"
)

// ExtractPages reads the PDF at path and returns the plain text of each
// page, in order. Pages that cannot be decoded yield an empty string so
// that page numbering stays aligned with the document.
func ExtractPages(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("pdf file not accessible: %w", err)
	}

	f, reader, err := ledongthuc.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	total := reader.NumPage()
	pages := make([]string, 0, total)

	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single undecodable page should not fail the document.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}
