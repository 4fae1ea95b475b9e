// Package layout turns positioned text runs from a paginated document into
// ordered content blocks.
//
// The [Extractor] walks every page of a [PageSource] and applies, per page:
//
//   - line detection: fragments are grouped by baseline with an adaptive
//     Y tolerance and ordered left to right
//   - block detection: lines are grouped by vertical gap and horizontal overlap
//   - visual metadata: font flags, dominant font, alignment against the page margins
//   - corruption repair: lines with doubled glyphs are collapsed or dropped
//   - paragraph reconstruction: each block is split where [IsParagraphBreak] says so
//   - block typing: short bold or enlarged blocks become titles
//
// Across pages it removes running headers, footers and bare page numbers, then
// joins paragraphs that continue on the next page ([MergeAcrossPages]).
//
// # Usage
//
//	ex := layout.NewExtractor()
//	blocks, meta, err := ex.Extract(src)
//	if err != nil {
//		var exErr *layout.ExtractionError
//		if errors.As(err, &exErr) {
//			// source unreadable
//		}
//	}
//
// # Fallback
//
// A page whose structured extraction fails, by error or panic, is rebuilt from
// [PageSource.CoarsePageText] with paragraphs split on blank lines and a
// page_extraction warning is recorded. If the structured pass fails for the
// whole document every page is rebuilt that way.
//
// # Configuration
//
//	cfg := layout.DefaultConfig()
//	cfg.BlockGapFactor = 2.0
//	cfg.HeaderFooter.MinPages = 4
//	ex := layout.NewExtractorWithConfig(cfg)
package layout
