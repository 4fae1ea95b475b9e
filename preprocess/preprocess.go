package preprocess

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/Karasowl/biblioperson/layout"
	"github.com/Karasowl/biblioperson/model"
)

// Preprocessor transforms loaded blocks before they reach a segmenter.
// Implementations must keep block order.
type Preprocessor interface {
	Process(blocks []model.Block, meta model.DocumentMetadata) ([]model.Block, model.DocumentMetadata)
}

// Config holds the cleaning switches.
type Config struct {
	// NormalizeUnicode applies NFC composition
	NormalizeUnicode bool

	// RemoveControlChars drops control and format characters (soft hyphens,
	// zero-width spaces, byte order marks); newlines survive
	RemoveControlChars bool

	// CollapseWhitespace turns runs of spaces and tabs into one space and
	// trims every line
	CollapseWhitespace bool

	// KeepLineBreaks keeps single newlines inside a block. When false, lines
	// of a block are joined with a space and only blank-line breaks remain.
	KeepLineBreaks bool

	// RemovePageNumbers drops blocks that consist of an arabic page number
	// only ("12", "- 12 -", "Página 3")
	RemovePageNumbers bool

	// RemoveRomanPageNumbers also drops blocks that are a bare roman
	// numeral. Off by default: verse and chapter titles are often just "IV".
	RemoveRomanPageNumbers bool

	// MinBlockChars drops blocks with fewer non-space characters
	MinBlockChars int

	Logger *slog.Logger
}

// DefaultConfig returns the settings used when a profile gives none.
func DefaultConfig() Config {
	return Config{
		NormalizeUnicode:   true,
		RemoveControlChars: true,
		CollapseWhitespace: true,
		KeepLineBreaks:     true,
		RemovePageNumbers:  true,
		MinBlockChars:      1,
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// ConfigFromMap overlays the keys of a profile's pre_processor_config on
// base. Unknown keys are ignored; a known key with a value of the wrong kind
// is an error.
func ConfigFromMap(base Config, m map[string]any) (Config, error) {
	c := base
	for key, v := range m {
		var err error
		switch key {
		case "normalize_unicode":
			c.NormalizeUnicode, err = boolValue(key, v)
		case "remove_control_chars":
			c.RemoveControlChars, err = boolValue(key, v)
		case "collapse_whitespace":
			c.CollapseWhitespace, err = boolValue(key, v)
		case "keep_line_breaks":
			c.KeepLineBreaks, err = boolValue(key, v)
		case "remove_page_numbers":
			c.RemovePageNumbers, err = boolValue(key, v)
		case "remove_roman_page_numbers":
			c.RemoveRomanPageNumbers, err = boolValue(key, v)
		case "min_block_chars":
			c.MinBlockChars, err = intValue(key, v)
		}
		if err != nil {
			return base, err
		}
	}
	return c, nil
}

func boolValue(key string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("pre_processor_config %s: want bool, got %T", key, v)
	}
	return b, nil
}

// YAML decoders hand back integers as int, int64 or uint64 depending on
// sign and size; JSON hands back float64.
func intValue(key string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("pre_processor_config %s: %v is not an integer", key, n)
		}
		return int(n), nil
	}
	return 0, fmt.Errorf("pre_processor_config %s: want integer, got %T", key, v)
}

// Cleaner is the default Preprocessor.
type Cleaner struct {
	config Config
}

// New creates a cleaner with DefaultConfig.
func New() *Cleaner {
	return &Cleaner{config: DefaultConfig()}
}

// NewWithConfig creates a cleaner with custom settings.
func NewWithConfig(config Config) *Cleaner {
	return &Cleaner{config: config}
}

// Config returns the cleaner's settings.
func (c *Cleaner) Config() Config {
	return c.config
}

// Process returns cleaned copies of the kept blocks in their original order.
// The input slice is not modified. Counts of dropped blocks are recorded in
// meta under "preprocess".
func (c *Cleaner) Process(blocks []model.Block, meta model.DocumentMetadata) ([]model.Block, model.DocumentMetadata) {
	out := make([]model.Block, 0, len(blocks))
	var pageNumbers, short int

	for _, b := range blocks {
		cleaned := b.Clone()
		cleaned.Text = c.CleanText(b.Text)

		if c.isPageNumber(cleaned.Text) {
			pageNumbers++
			continue
		}
		if visibleRunes(cleaned.Text) < max(c.config.MinBlockChars, 1) {
			short++
			continue
		}
		out = append(out, cleaned)
	}

	meta.Set("preprocess", map[string]any{
		"blocks_in":            len(blocks),
		"blocks_out":           len(out),
		"page_numbers_removed": pageNumbers,
		"short_removed":        short,
	})
	c.config.logger().Debug("preprocessed blocks",
		"file", meta.FileName, "in", len(blocks), "out", len(out),
		"page_numbers", pageNumbers, "short", short)
	return out, meta
}

func (c *Cleaner) isPageNumber(s string) bool {
	if !c.config.RemovePageNumbers {
		return false
	}
	if layout.IsNumericPageNumber(s) {
		return true
	}
	return c.config.RemoveRomanPageNumbers && layout.IsRomanPageNumber(s)
}

// CleanText applies the text-level steps to a single string.
func (c *Cleaner) CleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if c.config.NormalizeUnicode {
		s = norm.NFC.String(s)
	}
	if c.config.RemoveControlChars {
		s = strings.Map(func(r rune) rune {
			if r == '\n' || r == '\t' {
				return r
			}
			if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
				return -1
			}
			return r
		}, s)
	}
	if c.config.CollapseWhitespace {
		s = collapseLines(s)
	}
	if !c.config.KeepLineBreaks {
		s = joinLines(s)
	}
	return strings.TrimSpace(s)
}

// collapseLines squeezes horizontal whitespace inside each line and limits
// consecutive blank lines to one.
func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.Join(strings.FieldsFunc(l, func(r rune) bool {
			return r != '\n' && unicode.IsSpace(r)
		}), " ")
		if l == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

// joinLines joins the lines of each blank-line separated part with spaces.
func joinLines(s string) string {
	parts := strings.Split(s, "\n\n")
	for i, p := range parts {
		parts[i] = strings.Join(strings.Fields(p), " ")
	}
	return strings.Join(parts, "\n\n")
}

func visibleRunes(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
