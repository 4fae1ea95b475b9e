package segment

import (
	"regexp"
	"strings"

	"github.com/Karasowl/biblioperson/model"
)

type poemState int

const (
	stateNone poemState = iota
	stateInPoem
)

// MarkdownVerseSegmenter reads poems from typed blocks, as produced by the
// markdown loader: a poem_title block opens a poem, the content blocks that
// follow are its stanzas, and a new title, a title or section block, or the
// end of input closes it.
type MarkdownVerseSegmenter struct {
	titles []*regexp.Regexp
	stats  map[string]any
}

// NewMarkdownVerseSegmenter creates a segmenter without extra title patterns.
func NewMarkdownVerseSegmenter() *MarkdownVerseSegmenter {
	return &MarkdownVerseSegmenter{stats: map[string]any{}}
}

// NewMarkdownVerseSegmenterWithOptions compiles the profile title patterns.
func NewMarkdownVerseSegmenterWithOptions(o Options) (*MarkdownVerseSegmenter, error) {
	res, err := compilePatterns("title", o.TitlePatterns)
	if err != nil {
		return nil, err
	}
	return &MarkdownVerseSegmenter{titles: res, stats: map[string]any{}}, nil
}

// Name implements Segmenter.
func (s *MarkdownVerseSegmenter) Name() string { return NameMarkdownVerse }

// Stats returns statistics of the latest Segment call.
func (s *MarkdownVerseSegmenter) Stats() map[string]any { return s.stats }

// Segment implements Segmenter.
func (s *MarkdownVerseSegmenter) Segment(blocks []model.Block) []model.Segment {
	var (
		out     []model.Segment
		state   = stateNone
		title   string
		stanzas []string
		pages   = map[int]bool{}
		poems   int
	)

	flush := func() {
		if len(stanzas) > 0 {
			seg := model.NewSegment(strings.Join(stanzas, "\n\n"), model.SegmentVerse).
				WithMeta("stanzas", len(stanzas)).
				WithMeta("pages", pagesOf(pages))
			if title != "" {
				seg = seg.WithMeta("poem_title", title)
			}
			out = append(out, seg)
		}
		stanzas = nil
		pages = map[int]bool{}
	}

	for _, b := range blocks {
		text := strings.TrimSpace(b.Text)
		if text == "" {
			continue
		}
		switch {
		case b.Type == model.BlockPoemTitle || matchAny(s.titles, text):
			flush()
			state = stateInPoem
			title = stripMarkup(text)
			poems++
			out = append(out, model.NewSegment(title, model.SegmentPoemTitle).WithMeta("pages", b.Pages()))

		case b.Type == model.BlockTitle || b.Type == model.BlockSection:
			flush()
			state = stateNone
			title = ""
			typ := model.SegmentTitle
			if b.Type == model.BlockSection {
				typ = model.SegmentSection
			}
			out = append(out, model.NewSegment(stripMarkup(text), typ).WithMeta("pages", b.Pages()))

		case state == stateInPoem:
			stanzas = append(stanzas, stanza(text))
			for _, p := range b.Pages() {
				pages[p] = true
			}

		default:
			out = append(out, model.NewSegment(clean(text), model.SegmentContent).WithMeta("pages", b.Pages()))
		}
	}
	flush()

	s.stats = map[string]any{
		"blocks_in": len(blocks),
		"poems":     poems,
		"segments":  len(out),
	}
	return out
}

// stanza trims every line of a block and drops blank lines.
func stanza(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
