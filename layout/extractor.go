package layout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Karasowl/biblioperson/model"
)

// Extractor converts the pages of a PageSource into ordered blocks.
type Extractor struct {
	config  Config
	lines   lineGrouper
	breaker paragraphBreaker
	repair  corruptionFilter
	hf      *HeaderFooterDetector
}

// NewExtractor creates an extractor with default configuration.
func NewExtractor() *Extractor {
	return NewExtractorWithConfig(DefaultConfig())
}

// NewExtractorWithConfig creates an extractor with custom configuration.
func NewExtractorWithConfig(config Config) *Extractor {
	return &Extractor{
		config:  config,
		lines:   lineGrouper{tolerance: config.LineHeightTolerance},
		breaker: paragraphBreaker{shortLine: config.ShortLineChars},
		repair:  newCorruptionFilter(config),
		hf:      NewHeaderFooterDetectorWithConfig(config.HeaderFooter),
	}
}

// Config returns the extractor configuration.
func (e *Extractor) Config() Config {
	return e.config
}

// Extract reads every page of src. Only a source that cannot be opened
// yields an error, always an *ExtractionError; page-level problems are
// recorded as warnings in the returned metadata.
func (e *Extractor) Extract(src PageSource) ([]model.Block, model.DocumentMetadata, error) {
	meta := model.DocumentMetadata{Extra: map[string]any{}}
	n, err := src.PageCount()
	if err != nil {
		return nil, meta, &ExtractionError{Err: err}
	}
	meta.PageCount = n

	blocks, err := e.structured(src, n, &meta)
	if err != nil {
		e.config.logger().Warn("layout pass failed, using coarse text", "error", err)
		meta.Warn(model.WarnPageExtraction, "layout analysis failed for the document: %v", err)
		blocks = blocks[:0]
		for i := 0; i < n; i++ {
			blocks = append(blocks, e.coarseBlocks(src, i, &meta)...)
		}
	}

	if e.config.MergeAcrossPages {
		before := len(blocks)
		blocks = e.breaker.mergeAcrossPages(blocks)
		if merged := before - len(blocks); merged > 0 {
			meta.Set("cross_page_merges", merged)
		}
	}
	return blocks, meta, nil
}

// structured runs the layout pass. A failed page is rebuilt from coarse
// text; a panic outside page handling fails the whole pass.
func (e *Extractor) structured(src PageSource, n int, meta *model.DocumentMetadata) (blocks []model.Block, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	pages := make([]PageLines, 0, n)
	coarse := map[int][]model.Block{}
	for i := 0; i < n; i++ {
		pl, perr := e.pageLines(src, i)
		if perr != nil {
			e.config.logger().Debug("page extraction failed", "page", i+1, "error", perr)
			meta.Warn(model.WarnPageExtraction, "page %d: %v", i+1, perr)
			coarse[i] = e.coarseBlocks(src, i, meta)
			continue
		}
		pages = append(pages, pl)
	}

	hf := e.hf.Detect(pages)
	removed := 0
	for i := range pages {
		var r int
		pages[i].Lines, r = hf.Filter(pages[i])
		removed += r
	}
	if removed > 0 {
		meta.Set("header_footer_lines_removed", removed)
	}

	body := bodyFontSize(pages)
	next := 0
	for i := 0; i < n; i++ {
		if cb, ok := coarse[i]; ok {
			blocks = append(blocks, cb...)
			continue
		}
		blocks = append(blocks, e.pageBlocks(pages[next], body, meta)...)
		next++
	}
	return blocks, nil
}

func (e *Extractor) pageLines(src PageSource, i int) (pl PageLines, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	page, err := src.PageFragments(i)
	if err != nil {
		return PageLines{}, err
	}
	return PageLines{
		Index:  i,
		Height: page.Height,
		Lines:  e.lines.group(page.Fragments, page.Height),
	}, nil
}

func (e *Extractor) pageBlocks(pl PageLines, bodySize float64, meta *model.DocumentMetadata) []model.Block {
	m := pageMargins(pl.Lines)
	var out []model.Block
	for _, group := range e.groupBlocks(pl.Lines) {
		clean := make([]Line, 0, len(group))
		for _, l := range group {
			txt, outcome := e.repair.check(l.Text)
			switch outcome {
			case lineRepaired:
				meta.Warn(model.WarnCorruption, "page %d: repaired doubled glyphs in %q", pl.Index+1, truncate(l.Text, 40))
				l.Text = txt
			case lineDropped:
				meta.Warn(model.WarnCorruption, "page %d: dropped unreadable line %q", pl.Index+1, truncate(l.Text, 40))
				continue
			}
			clean = append(clean, l)
		}
		for _, para := range e.breaker.splitParagraphs(clean) {
			out = append(out, e.buildBlock(para, pl.Index+1, m, bodySize))
		}
	}
	return out
}

var blankLines = regexp.MustCompile(`\n[ \t\r]*\n`)

// coarseBlocks splits the plain text of a page on blank lines.
func (e *Extractor) coarseBlocks(src PageSource, i int, meta *model.DocumentMetadata) []model.Block {
	txt, err := safeCoarse(src, i)
	if err != nil {
		meta.Warn(model.WarnPageExtraction, "page %d: coarse extraction failed: %v", i+1, err)
		return nil
	}
	var out []model.Block
	for _, para := range blankLines.Split(strings.ReplaceAll(txt, "\r\n", "\n"), -1) {
		para = strings.TrimSpace(para)
		if para == "" || IsNumericPageNumber(para) {
			continue
		}
		out = append(out, model.Block{
			Text:   para,
			Page:   i + 1,
			Type:   model.BlockText,
			Visual: model.VisualMetadata{LineCount: strings.Count(para, "\n") + 1, Alignment: model.AlignUnknown},
			Source: "coarse",
		})
	}
	return out
}

func safeCoarse(src PageSource, i int) (txt string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return src.CoarsePageText(i)
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n]) + "…"
}
