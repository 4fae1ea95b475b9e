package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Karasowl/biblioperson/model"
)

// VerseConfig holds configuration for the verse segmenter.
type VerseConfig struct {
	// MaxVerseLength is the longest line treated as a verse; longer lines
	// are prose content (default: 150)
	MaxVerseLength int

	// MaxTitleLength is the longest all-caps or quoted line accepted as a
	// title (default: 80)
	MaxTitleLength int

	// MaxPoemChars flushes a poem body as a segment once it grows past this
	// many characters (default: 4000)
	MaxPoemChars int

	// MinStanzaLines and MaxStanzaAvgLine decide whether an untitled stanza
	// is verse: at least this many lines, averaging at most this many
	// characters (defaults: 2, 60)
	MinStanzaLines   int
	MaxStanzaAvgLine float64

	// TitlePatterns are extra title regular expressions
	TitlePatterns []*regexp.Regexp
}

// DefaultVerseConfig returns sensible default configuration.
func DefaultVerseConfig() VerseConfig {
	return VerseConfig{
		MaxVerseLength:   150,
		MaxTitleLength:   80,
		MaxPoemChars:     4000,
		MinStanzaLines:   2,
		MaxStanzaAvgLine: 60,
	}
}

// VerseSegmenter groups lines into poems. Title-like lines open a new poem;
// the lines that follow become the poem body. Text that never falls inside
// a poem context produces no output, so prose input yields zero segments.
type VerseSegmenter struct {
	config VerseConfig
	stats  map[string]any
}

// NewVerseSegmenter creates a verse segmenter with default configuration.
func NewVerseSegmenter() *VerseSegmenter {
	return NewVerseSegmenterWithConfig(DefaultVerseConfig())
}

// NewVerseSegmenterWithConfig creates a verse segmenter with custom configuration.
func NewVerseSegmenterWithConfig(config VerseConfig) *VerseSegmenter {
	return &VerseSegmenter{config: config, stats: map[string]any{}}
}

// NewVerseSegmenterWithOptions applies profile options to the defaults.
func NewVerseSegmenterWithOptions(o Options) (*VerseSegmenter, error) {
	cfg := DefaultVerseConfig()
	cfg.MaxVerseLength = o.intValue("max_verse_length", cfg.MaxVerseLength)
	cfg.MaxTitleLength = o.intValue("max_title_length", cfg.MaxTitleLength)
	cfg.MaxPoemChars = o.intValue("max_poem_chars", cfg.MaxPoemChars)
	cfg.MinStanzaLines = o.intValue("min_stanza_lines", cfg.MinStanzaLines)
	cfg.MaxStanzaAvgLine = o.floatValue("max_stanza_avg_line", cfg.MaxStanzaAvgLine)
	res, err := compilePatterns("title", o.TitlePatterns)
	if err != nil {
		return nil, err
	}
	cfg.TitlePatterns = res
	return NewVerseSegmenterWithConfig(cfg), nil
}

// Name implements Segmenter.
func (s *VerseSegmenter) Name() string { return NameVerse }

// Stats returns statistics of the latest Segment call.
func (s *VerseSegmenter) Stats() map[string]any { return s.stats }

// Segment implements Segmenter.
func (s *VerseSegmenter) Segment(blocks []model.Block) []model.Segment {
	st := &verseState{cfg: s.config, pages: map[int]bool{}}
	for _, b := range blocks {
		st.block(b)
	}
	st.breakStanza()
	st.flushPoem()

	s.stats = map[string]any{
		"blocks_in":           len(blocks),
		"poem_titles":         st.titles,
		"verse_segments":      st.verses,
		"content_segments":    st.contents,
		"unplaced_prose":      len(st.pending),
		"poem_context_opened": st.inPoem,
	}
	return st.out
}

// verseState is the per-call state machine: the current poem title, the
// stanza being read and the stanzas of the current poem body.
type verseState struct {
	cfg     VerseConfig
	out     []model.Segment
	pending []model.Segment

	inPoem    bool
	title     string
	cur       []string
	poem      [][]string
	poemChars int
	pages     map[int]bool

	titles, verses, contents int
}

func (st *verseState) block(b model.Block) {
	if b.Type.IsHeading() {
		if t := stripMarkup(b.Text); t != "" {
			st.openTitle(t, b.Pages())
		}
		return
	}

	st.breakStanza()
	boundary := true
	for _, line := range b.Lines() {
		t := strings.TrimSpace(line)
		switch {
		case t == "":
			st.breakStanza()
			boundary = true
			continue
		case st.isTitle(t, boundary):
			st.openTitle(stripMarkup(t), b.Pages())
		case utf8.RuneCountInString(t) > st.cfg.MaxVerseLength:
			st.content(t, b.Pages())
		default:
			st.cur = append(st.cur, t)
			for _, p := range b.Pages() {
				st.pages[p] = true
			}
		}
		boundary = false
	}
	st.breakStanza()
}

func (st *verseState) isTitle(t string, boundary bool) bool {
	if _, _, ok := parseMarkdownHeading(t); ok {
		return true
	}
	if numberedPoem.MatchString(t) || isRomanHeading(t) || matchAny(st.cfg.TitlePatterns, t) {
		return true
	}
	if !boundary {
		return false
	}
	return isAllCaps(t, st.cfg.MaxTitleLength) || quotedTitle.MatchString(t)
}

// breakStanza closes the current stanza. Outside a poem an untitled stanza
// opens one only if it looks like verse; otherwise it is held back as prose.
func (st *verseState) breakStanza() {
	if len(st.cur) == 0 {
		return
	}
	stanza := st.cur
	st.cur = nil
	if !st.inPoem {
		if !st.looksLikeVerse(stanza) {
			st.pending = append(st.pending, st.segment(strings.Join(stanza, " "), model.SegmentContent))
			st.pages = map[int]bool{}
			return
		}
		st.openPoem()
	}
	st.poem = append(st.poem, stanza)
	for _, l := range stanza {
		st.poemChars += utf8.RuneCountInString(l)
	}
	if st.poemChars > st.cfg.MaxPoemChars {
		st.flushPoem()
	}
}

func (st *verseState) looksLikeVerse(stanza []string) bool {
	if len(stanza) < st.cfg.MinStanzaLines {
		return false
	}
	total := 0
	for _, l := range stanza {
		total += utf8.RuneCountInString(l)
	}
	return float64(total)/float64(len(stanza)) <= st.cfg.MaxStanzaAvgLine
}

func (st *verseState) openPoem() {
	if st.inPoem {
		return
	}
	st.inPoem = true
	for _, p := range st.pending {
		st.emit(p)
	}
	st.pending = nil
}

func (st *verseState) openTitle(title string, pages []int) {
	st.breakStanza()
	st.flushPoem()
	st.openPoem()
	st.title = title
	seg := model.NewSegment(title, model.SegmentPoemTitle).WithMeta("pages", pages)
	st.emit(seg)
}

func (st *verseState) content(t string, pages []int) {
	st.breakStanza()
	seg := model.NewSegment(clean(t), model.SegmentContent).WithMeta("pages", pages)
	if !st.inPoem {
		st.pending = append(st.pending, seg)
		return
	}
	st.flushPoem()
	st.emit(seg)
}

// flushPoem emits the current poem body as one verse segment; stanzas are
// separated by blank lines.
func (st *verseState) flushPoem() {
	if len(st.poem) == 0 {
		return
	}
	stanzas := make([]string, len(st.poem))
	lines := 0
	for i, s := range st.poem {
		stanzas[i] = strings.Join(s, "\n")
		lines += len(s)
	}
	seg := st.segment(strings.Join(stanzas, "\n\n"), model.SegmentVerse).
		WithMeta("stanzas", len(st.poem)).
		WithMeta("verse_lines", lines)
	if st.title != "" {
		seg = seg.WithMeta("poem_title", st.title)
	}
	st.emit(seg)
	st.poem = nil
	st.poemChars = 0
	st.pages = map[int]bool{}
}

func (st *verseState) segment(text string, typ model.SegmentType) model.Segment {
	return model.NewSegment(text, typ).WithMeta("pages", pagesOf(st.pages))
}

func (st *verseState) emit(seg model.Segment) {
	switch seg.Type {
	case model.SegmentPoemTitle:
		st.titles++
	case model.SegmentVerse:
		st.verses++
	case model.SegmentContent:
		st.contents++
	}
	st.out = append(st.out, seg)
}
