package layout

import (
	"fmt"

	"github.com/tsawler/tabula/text"
)

// Page is the raw content of one page as reported by a PageSource.
// Fragment coordinates are PDF user space (origin bottom-left).
type Page struct {
	Index     int
	Width     float64
	Height    float64
	Fragments []text.TextFragment
}

// PageSource abstracts the document engine the Extractor reads from.
type PageSource interface {
	// PageCount returns the number of pages, or an error if the document
	// cannot be read at all.
	PageCount() (int, error)

	// PageFragments returns the positioned text runs of page i (0-based).
	PageFragments(i int) (Page, error)

	// CoarsePageText returns the plain text of page i, used when the
	// structured extraction of that page fails.
	CoarsePageText(i int) (string, error)
}

// ExtractionError reports a source that cannot be read at all.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("extraction failed: %v", e.Err)
	}
	return fmt.Sprintf("extraction failed for %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
