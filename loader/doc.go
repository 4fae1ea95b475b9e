// Package loader reads source documents into ordered blocks.
//
// Each format has a [Loader]; a [Registry] maps file extensions to loaders:
//
//	reg := loader.DefaultRegistry(loader.DefaultConfig())
//	l, err := reg.For("poemas.pdf")
//	if err != nil {
//		// errors.Is(err, loader.ErrUnsupportedFormat)
//	}
//	res, err := l.Load("poemas.pdf")
//
// Files without an extension are sniffed by content.
//
// Loaders return an error only when the file cannot be read at all; the error
// is always a *layout.ExtractionError. Any other problem is recorded in
// Result.Metadata (Error or Warnings) and the blocks produced so far are
// returned.
//
// Built-in loaders:
//
//   - PDF: positioned text from the tabula engine through the layout
//     extractor, document information and per-page fallback text from
//     pdfcpu, optional OCR of image-only pages
//   - Markdown: ATX headings become title/section/poem_title blocks
//   - Text: paragraphs split on blank lines, Windows-1252 fallback for
//     files that are not valid UTF-8
//   - JSON: arrays of objects or NDJSON, text taken from configurable fields
//   - HTML: headings and paragraphs, line breaks kept
package loader
