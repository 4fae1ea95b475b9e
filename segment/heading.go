package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Karasowl/biblioperson/model"
)

// HeadingConfig holds configuration for the heading segmenter.
type HeadingConfig struct {
	// Levels lists the heading patterns per depth; Levels[0] matches depth 1
	Levels [][]*regexp.Regexp

	// MaxDepth is the deepest heading that opens a section; deeper headings
	// are kept as body content (default: 3)
	MaxDepth int

	// MaxHeadingLength is the longest text accepted as a heading (default: 120)
	MaxHeadingLength int
}

// DefaultHeadingConfig returns sensible default configuration.
func DefaultHeadingConfig() HeadingConfig {
	return HeadingConfig{
		Levels: [][]*regexp.Regexp{
			{regexp.MustCompile(`^(?i:libro|parte|tomo|book|part)\s+\S+`)},
			{regexp.MustCompile(`^(?i:cap[íi]tulo|chapter)\s+\S+`)},
			{
				regexp.MustCompile(`^(?i:secci[óo]n|section)\s+\S+`),
				regexp.MustCompile(`^\d+\.\d+\.?\s+\p{Lu}`),
			},
		},
		MaxDepth:         3,
		MaxHeadingLength: 120,
	}
}

// HeadingSegmenter splits a document into sections by heading depth and
// records the heading path of every paragraph.
type HeadingSegmenter struct {
	config HeadingConfig
	stats  map[string]any
}

// NewHeadingSegmenter creates a heading segmenter with default configuration.
func NewHeadingSegmenter() *HeadingSegmenter {
	return NewHeadingSegmenterWithConfig(DefaultHeadingConfig())
}

// NewHeadingSegmenterWithConfig creates a heading segmenter with custom configuration.
func NewHeadingSegmenterWithConfig(config HeadingConfig) *HeadingSegmenter {
	return &HeadingSegmenter{config: config, stats: map[string]any{}}
}

// NewHeadingSegmenterWithOptions applies profile options to the defaults.
// Each section pattern of the profile defines one depth, in order.
func NewHeadingSegmenterWithOptions(o Options) (*HeadingSegmenter, error) {
	cfg := DefaultHeadingConfig()
	cfg.MaxDepth = o.intValue("max_depth", cfg.MaxDepth)
	cfg.MaxHeadingLength = o.intValue("max_heading_length", cfg.MaxHeadingLength)
	if len(o.SectionPatterns) > 0 {
		res, err := compilePatterns("section", o.SectionPatterns)
		if err != nil {
			return nil, err
		}
		cfg.Levels = make([][]*regexp.Regexp, len(res))
		for i, re := range res {
			cfg.Levels[i] = []*regexp.Regexp{re}
		}
	}
	return NewHeadingSegmenterWithConfig(cfg), nil
}

// Name implements Segmenter.
func (s *HeadingSegmenter) Name() string { return NameHeading }

// Stats returns statistics of the latest Segment call.
func (s *HeadingSegmenter) Stats() map[string]any { return s.stats }

// Segment implements Segmenter.
func (s *HeadingSegmenter) Segment(blocks []model.Block) []model.Segment {
	var (
		out      []model.Segment
		path     []string
		levels   []int
		sections int
		maxSeen  int
	)
	for _, b := range blocks {
		text := clean(b.Text)
		if text == "" {
			continue
		}
		depth := s.depth(b)
		if depth == 0 || depth > s.config.MaxDepth {
			seg := model.NewSegment(text, model.SegmentParagraph).
				WithMeta("section_path", append([]string(nil), path...)).
				WithMeta("pages", b.Pages())
			if len(path) > 0 {
				seg = seg.WithMeta("section_title", path[len(path)-1])
			}
			if depth > s.config.MaxDepth {
				seg = seg.WithMeta("minor_heading", true)
			}
			out = append(out, seg)
			continue
		}

		for len(levels) > 0 && levels[len(levels)-1] >= depth {
			levels = levels[:len(levels)-1]
			path = path[:len(path)-1]
		}
		title := stripMarkup(text)
		levels = append(levels, depth)
		path = append(path, title)
		sections++
		if depth > maxSeen {
			maxSeen = depth
		}

		typ := model.SegmentSection
		if depth == 1 {
			typ = model.SegmentTitle
		}
		out = append(out, model.NewSegment(title, typ).
			WithMeta("heading_level", depth).
			WithMeta("section_path", append([]string(nil), path...)).
			WithMeta("section_path_string", strings.Join(path, " > ")).
			WithMeta("pages", b.Pages()))
	}

	s.stats = map[string]any{
		"blocks_in":   len(blocks),
		"sections":    sections,
		"max_depth":   maxSeen,
		"segments":    len(out),
		"depth_limit": s.config.MaxDepth,
	}
	return out
}

// depth returns the heading depth of a block, 0 for body text.
func (s *HeadingSegmenter) depth(b model.Block) int {
	t := strings.TrimSpace(b.Text)
	if t == "" || strings.Contains(t, "\n") || utf8.RuneCountInString(t) > s.config.MaxHeadingLength {
		return 0
	}
	if lvl, _, ok := parseMarkdownHeading(t); ok {
		return lvl
	}
	for i, res := range s.config.Levels {
		if matchAny(res, t) {
			return i + 1
		}
	}
	if b.HeadingLevel > 0 && b.Type.IsHeading() {
		return b.HeadingLevel
	}
	switch b.Type {
	case model.BlockTitle:
		return 1
	case model.BlockSection:
		return 2
	case model.BlockPoemTitle:
		return 3
	}
	return 0
}
