package segment

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Karasowl/biblioperson/layout"
	"github.com/Karasowl/biblioperson/model"
)

// MarkdownConfig holds configuration for the prose segmenter.
type MarkdownConfig struct {
	// SubdivideChars is the block length above which a block is split at
	// internal boundaries (default: 600)
	SubdivideChars int

	// SubdivideMinChars is how much text must accumulate before a sentence
	// starting with a capital may open a new piece (default: 250)
	SubdivideMinChars int

	// UnknownGap is the vertical gap assumed when bounding boxes are missing
	// (default: 5.0)
	UnknownGap float64

	// MaxMergeGap is the largest gap across which blocks may merge (default: 10.0)
	MaxMergeGap float64

	// OrdinaryGap is the largest measured gap across which two ordinary
	// blocks merge without a lowercase continuation (default: 5.0)
	OrdinaryGap float64

	// MaxTitleLength bounds all-caps and bold labels treated as titles
	// (default: 100)
	MaxTitleLength int

	TitlePatterns     []*regexp.Regexp
	SectionPatterns   []*regexp.Regexp
	ParagraphPatterns []*regexp.Regexp
}

// DefaultMarkdownConfig returns sensible default configuration.
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		SubdivideChars:    600,
		SubdivideMinChars: 250,
		UnknownGap:        5.0,
		MaxMergeGap:       10.0,
		OrdinaryGap:       5.0,
		MaxTitleLength:    100,
	}
}

// MarkdownSegmenter segments prose. Long blocks are first subdivided, then
// consecutive blocks are merged only when every condition for a merge
// holds; when in doubt blocks stay separate.
type MarkdownSegmenter struct {
	config MarkdownConfig
	stats  map[string]any
}

// NewMarkdownSegmenter creates a prose segmenter with default configuration.
func NewMarkdownSegmenter() *MarkdownSegmenter {
	return NewMarkdownSegmenterWithConfig(DefaultMarkdownConfig())
}

// NewMarkdownSegmenterWithConfig creates a prose segmenter with custom configuration.
func NewMarkdownSegmenterWithConfig(config MarkdownConfig) *MarkdownSegmenter {
	return &MarkdownSegmenter{config: config, stats: map[string]any{}}
}

// NewMarkdownSegmenterWithOptions applies profile options to the defaults.
func NewMarkdownSegmenterWithOptions(o Options) (*MarkdownSegmenter, error) {
	cfg := DefaultMarkdownConfig()
	cfg.SubdivideChars = o.intValue("subdivide_chars", cfg.SubdivideChars)
	cfg.SubdivideMinChars = o.intValue("subdivide_min_chars", cfg.SubdivideMinChars)
	cfg.UnknownGap = o.floatValue("unknown_gap", cfg.UnknownGap)
	cfg.MaxMergeGap = o.floatValue("max_merge_gap", cfg.MaxMergeGap)
	cfg.OrdinaryGap = o.floatValue("ordinary_gap", cfg.OrdinaryGap)
	cfg.MaxTitleLength = o.intValue("max_title_length", cfg.MaxTitleLength)

	var err error
	if cfg.TitlePatterns, err = compilePatterns("title", o.TitlePatterns); err != nil {
		return nil, err
	}
	if cfg.SectionPatterns, err = compilePatterns("section", o.SectionPatterns); err != nil {
		return nil, err
	}
	if cfg.ParagraphPatterns, err = compilePatterns("paragraph", o.ParagraphPatterns); err != nil {
		return nil, err
	}
	return NewMarkdownSegmenterWithConfig(cfg), nil
}

// Name implements Segmenter.
func (s *MarkdownSegmenter) Name() string { return NameMarkdown }

// Stats returns statistics of the latest Segment call.
func (s *MarkdownSegmenter) Stats() map[string]any { return s.stats }

// Segment implements Segmenter.
func (s *MarkdownSegmenter) Segment(blocks []model.Block) []model.Segment {
	parts := s.Subdivide(blocks)
	groups := s.Merge(parts)

	out := make([]model.Segment, 0, len(groups))
	titles, paragraphs := 0, 0
	for _, g := range groups {
		seg, ok := s.segment(g)
		if !ok {
			continue
		}
		if seg.Type == model.SegmentParagraph {
			paragraphs++
		} else {
			titles++
		}
		out = append(out, seg)
	}

	s.stats = map[string]any{
		"blocks_in":          len(blocks),
		"blocks_subdivided":  len(parts),
		"groups":             len(groups),
		"merges":             len(parts) - len(groups),
		"paragraph_segments": paragraphs,
		"title_segments":     titles,
	}
	return out
}

func (s *MarkdownSegmenter) segment(group []model.Block) (model.Segment, bool) {
	texts := make([]string, 0, len(group))
	pages := map[int]bool{}
	for _, b := range group {
		if !b.IsEmpty() {
			texts = append(texts, b.Text)
		}
		for _, p := range b.Pages() {
			pages[p] = true
		}
	}
	text := clean(strings.Join(texts, " "))
	if text == "" {
		return model.Segment{}, false
	}

	typ := model.SegmentParagraph
	if len(group) == 1 && s.isTitle(group[0]) {
		typ = model.SegmentTitle
		if s.isSection(group[0]) {
			typ = model.SegmentSection
		}
		text = stripMarkup(text)
	}
	seg := model.NewSegment(text, typ).WithMeta("pages", pagesOf(pages))
	if len(group) > 1 {
		seg = seg.WithMeta("merged_blocks", len(group))
	}
	return seg, true
}

// Subdivide splits blocks longer than SubdivideChars at bold pseudo-titles,
// dialogue openings, or at a capitalised sentence once SubdivideMinChars
// have accumulated. Pieces carry no bounding box.
func (s *MarkdownSegmenter) Subdivide(blocks []model.Block) []model.Block {
	out := make([]model.Block, 0, len(blocks))
	for _, b := range blocks {
		if s.isTitle(b) || utf8.RuneCountInString(b.Text) <= s.config.SubdivideChars {
			out = append(out, b.Clone())
			continue
		}
		pieces := s.split(b.Text)
		if len(pieces) < 2 {
			out = append(out, b.Clone())
			continue
		}
		for _, p := range pieces {
			c := b.Clone()
			c.Text = p
			c.BBox = model.BBox{}
			c.Type = model.BlockText
			c.Visual.LineCount = strings.Count(p, "\n") + 1
			out = append(out, c)
		}
	}
	return out
}

func (s *MarkdownSegmenter) split(text string) []string {
	var pieces []string
	var cur strings.Builder
	n := 0
	for _, sent := range sentences(text) {
		t := strings.TrimSpace(sent)
		if t == "" {
			continue
		}
		first, _ := utf8.DecodeRuneInString(t)
		cut := cur.Len() > 0 && (strings.HasPrefix(t, "**") || isDialogue(t) ||
			(n >= s.config.SubdivideMinChars && unicode.IsUpper(first)))
		if cut {
			pieces = append(pieces, strings.TrimSpace(cur.String()))
			cur.Reset()
			n = 0
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(t)
		n += utf8.RuneCountInString(t)
	}
	if cur.Len() > 0 {
		pieces = append(pieces, strings.TrimSpace(cur.String()))
	}
	return pieces
}

// sentences splits text after terminal punctuation and at line breaks that
// open a dialogue or a bold label.
func sentences(text string) []string {
	var out []string
	start := 0
	rs := []rune(text)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		end := -1
		switch {
		case strings.ContainsRune(".!?…", r):
			j := i + 1
			for j < len(rs) && strings.ContainsRune(`"”»')’`, rs[j]) {
				j++
			}
			if j == len(rs) || unicode.IsSpace(rs[j]) {
				end = j
			}
		case r == '\n':
			rest := strings.TrimSpace(string(rs[i+1 : min(len(rs), i+6)]))
			if strings.HasPrefix(rest, "**") || (rest != "" && isDialogue(rest)) {
				end = i
			}
		}
		if end > start {
			out = append(out, string(rs[start:end]))
			start = end
			i = end - 1
		}
	}
	if start < len(rs) {
		out = append(out, string(rs[start:]))
	}
	return out
}

// Merge groups consecutive blocks. Two blocks merge only when neither is a
// title, both have the same narrative or dialogue style, the gap between
// them is at most MaxMergeGap, and either the first stops mid-sentence and
// the second continues in lowercase, or both are ordinary text separated by
// a measured gap of at most OrdinaryGap and the first does not end a
// sentence. Paragraphs split by the layout extractor sit almost edge to
// edge, so the gap alone would join them again. The result never has more
// groups than there are blocks.
func (s *MarkdownSegmenter) Merge(blocks []model.Block) [][]model.Block {
	var groups [][]model.Block
	for _, b := range blocks {
		if n := len(groups); n > 0 && s.shouldMerge(groups[n-1][len(groups[n-1])-1], b) {
			groups[n-1] = append(groups[n-1], b)
			continue
		}
		groups = append(groups, []model.Block{b})
	}
	return groups
}

func (s *MarkdownSegmenter) shouldMerge(a, b model.Block) bool {
	if a.IsEmpty() || b.IsEmpty() || s.isTitle(a) || s.isTitle(b) {
		return false
	}
	if matchAny(s.config.ParagraphPatterns, strings.TrimSpace(b.Text)) {
		return false
	}
	if isDialogue(a.Text) != isDialogue(b.Text) {
		return false
	}
	gap, measured := s.gap(a, b)
	if gap > s.config.MaxMergeGap {
		return false
	}

	if !layout.EndsSentence(a.Text) && layout.StartsWithContinuation(b.Text) {
		return true
	}
	return measured && gap <= s.config.OrdinaryGap && !layout.EndsSentence(a.Text) &&
		!isDialogue(a.Text) && !isDialogue(b.Text)
}

// gap returns the vertical distance between two blocks on the same page.
func (s *MarkdownSegmenter) gap(a, b model.Block) (float64, bool) {
	if a.Page != b.Page || a.BBox.IsZero() || b.BBox.IsZero() {
		return s.config.UnknownGap, false
	}
	g := b.BBox.Y0 - a.BBox.Y1
	if g < 0 {
		g = 0
	}
	return g, true
}

// isTitle reports whether a block is a heading: a heading block type, a
// markdown heading, a short all-caps line, a bold label, a date or place
// banner, or a profile title or section pattern.
func (s *MarkdownSegmenter) isTitle(b model.Block) bool {
	if b.Type.IsHeading() {
		return true
	}
	t := strings.TrimSpace(b.Text)
	if t == "" || strings.Count(t, "\n") >= 2 {
		return false
	}
	if _, _, ok := parseMarkdownHeading(t); ok {
		return true
	}
	if isAllCaps(t, s.config.MaxTitleLength) || boldLabel.MatchString(t) || dateBanner.MatchString(t) {
		return true
	}
	if b.Visual.IsBold && utf8.RuneCountInString(t) <= s.config.MaxTitleLength && !layout.EndsSentence(t) {
		return true
	}
	return matchAny(s.config.TitlePatterns, t) || matchAny(s.config.SectionPatterns, t)
}

func (s *MarkdownSegmenter) isSection(b model.Block) bool {
	t := strings.TrimSpace(b.Text)
	if b.Type == model.BlockSection || b.HeadingLevel >= 2 {
		return true
	}
	if lvl, _, ok := parseMarkdownHeading(t); ok && lvl >= 2 {
		return true
	}
	return matchAny(s.config.SectionPatterns, t)
}
