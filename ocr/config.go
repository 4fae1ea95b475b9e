package ocr

import "errors"

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

var _ Recognizer = (*Client)(nil)

// PageSegMode represents page segmentation modes for OCR.
// These control how Tesseract analyzes the page layout.
type PageSegMode int

// Page segmentation modes, matching Tesseract's numbering.
const (
	PSM_OSD_ONLY               PageSegMode = 0  // Orientation and script detection only
	PSM_AUTO_OSD               PageSegMode = 1  // Automatic with OSD
	PSM_AUTO_ONLY              PageSegMode = 2  // Automatic, no OSD or OCR
	PSM_AUTO                   PageSegMode = 3  // Fully automatic (default)
	PSM_SINGLE_COLUMN          PageSegMode = 4  // Single column of variable sizes
	PSM_SINGLE_BLOCK_VERT_TEXT PageSegMode = 5  // Single uniform block of vertically aligned text
	PSM_SINGLE_BLOCK           PageSegMode = 6  // Single uniform block of text
	PSM_SINGLE_LINE            PageSegMode = 7  // Single text line
	PSM_SPARSE_TEXT            PageSegMode = 11 // Find as much text as possible
)

// Config holds recognition settings.
type Config struct {
	// Language is a "+" separated Tesseract language list (default: "spa")
	Language string

	// PageSegMode is the layout analysis mode (default: PSM_AUTO)
	PageSegMode PageSegMode

	// MinWidth upscales images narrower than this many pixels before
	// recognition; 0 disables upscaling (default: 1600)
	MinWidth int
}

// DefaultConfig returns settings suited to scanned book pages.
func DefaultConfig() Config {
	return Config{
		Language:    "spa",
		PageSegMode: PSM_AUTO,
		MinWidth:    1600,
	}
}

// Recognizer turns an encoded page image into text.
type Recognizer interface {
	RecognizeImage(imageData []byte) (string, error)
	Close() error
}
