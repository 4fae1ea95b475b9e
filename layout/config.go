package layout

import "log/slog"

// Config holds the thresholds used by the Extractor.
type Config struct {
	// LineHeightTolerance is the Y distance, as a fraction of the average
	// fragment height, within which fragments share a line (default: 0.5)
	LineHeightTolerance float64

	// BlockGapFactor starts a new block when the gap between two lines exceeds
	// this multiple of the previous line height (default: 1.5)
	BlockGapFactor float64

	// AlignmentTolerance is the slack, in points, when comparing a line edge
	// to the page margins (default: 10)
	AlignmentTolerance float64

	// JustifiedThreshold is the minimum fraction of the text width a line must
	// span to count as justified (default: 0.9)
	JustifiedThreshold float64

	// TitleMaxLines, TitleMaxChars and TitleFontRatio bound what can be typed
	// as a title (defaults: 2, 120, 1.2)
	TitleMaxLines  int
	TitleMaxChars  int
	TitleFontRatio float64

	// ShortLineChars is the length below which two adjacent lines are
	// considered short and merged (default: 40)
	ShortLineChars int

	// CorruptionMinRunes is the minimum line length checked for doubled glyphs
	// (default: 10)
	CorruptionMinRunes int

	// CorruptionRatio is the share of identical adjacent letter pairs above
	// which a line is corrupted (default: 0.3)
	CorruptionRatio float64

	// RepairMinRatio is the minimum length of a repaired line relative to the
	// original for the repair to be kept (default: 0.4)
	RepairMinRatio float64

	// MergeAcrossPages joins paragraphs continuing on the next page (default: true)
	MergeAcrossPages bool

	// HeaderFooter configures running header and footer removal
	HeaderFooter HeaderFooterConfig

	// Logger receives debug output; nil means slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns the thresholds tuned for book-style PDFs.
func DefaultConfig() Config {
	return Config{
		LineHeightTolerance: 0.5,
		BlockGapFactor:      1.5,
		AlignmentTolerance:  10.0,
		JustifiedThreshold:  0.9,
		TitleMaxLines:       2,
		TitleMaxChars:       120,
		TitleFontRatio:      1.2,
		ShortLineChars:      40,
		CorruptionMinRunes:  10,
		CorruptionRatio:     0.3,
		RepairMinRatio:      0.4,
		MergeAcrossPages:    true,
		HeaderFooter:        DefaultHeaderFooterConfig(),
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
