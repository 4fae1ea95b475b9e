// Package ocr recognises text on page images of scanned documents.
//
// Recognition wraps the Tesseract engine through gosseract and is compiled
// only with the "ocr" build tag:
//
//	go build -tags ocr ./...
//
// Without the tag, [New] returns [ErrOCRNotEnabled] and callers skip OCR.
// Tesseract must be installed with the language data in use (Spanish,
// "spa", by default):
//
//	apt-get install tesseract-ocr tesseract-ocr-spa
//
// [PrepareImage] is always available. It converts a page image to grayscale
// and upscales narrow scans before recognition.
package ocr
