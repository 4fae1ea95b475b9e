package layout

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// HeaderFooterConfig holds configuration for running header/footer removal.
type HeaderFooterConfig struct {
	// BandRatio is the fraction of the page height at the top and at the
	// bottom searched for running text (default: 0.08)
	BandRatio float64

	// MinOccurrenceRatio is the fraction of pages a text must appear on to be
	// considered running (default: 0.5)
	MinOccurrenceRatio float64

	// MinPages is the minimum page count for repetition detection (default: 3)
	MinPages int

	// RemovePageNumbers drops bare page numbers found in either band
	// (default: true)
	RemovePageNumbers bool
}

// DefaultHeaderFooterConfig returns sensible default configuration.
func DefaultHeaderFooterConfig() HeaderFooterConfig {
	return HeaderFooterConfig{
		BandRatio:          0.08,
		MinOccurrenceRatio: 0.5,
		MinPages:           3,
		RemovePageNumbers:  true,
	}
}

// PageLines is the detected line structure of one page.
type PageLines struct {
	Index  int
	Height float64
	Lines  []Line
}

// Band identifies the top or bottom margin of a page.
type Band int

const (
	HeaderBand Band = iota
	FooterBand
)

func (b Band) String() string {
	if b == HeaderBand {
		return "header"
	}
	return "footer"
}

// HeaderFooterDetector finds text repeated in the page margins.
type HeaderFooterDetector struct {
	config HeaderFooterConfig
}

// NewHeaderFooterDetector creates a detector with default configuration.
func NewHeaderFooterDetector() *HeaderFooterDetector {
	return &HeaderFooterDetector{config: DefaultHeaderFooterConfig()}
}

// NewHeaderFooterDetectorWithConfig creates a detector with custom configuration.
func NewHeaderFooterDetectorWithConfig(config HeaderFooterConfig) *HeaderFooterDetector {
	return &HeaderFooterDetector{config: config}
}

// HeaderFooterResult lists the normalised running texts per band.
type HeaderFooterResult struct {
	Running map[Band]map[string]int
	config  HeaderFooterConfig
}

type bandKey struct {
	band Band
	text string
}

// Detect analyses all pages and returns the running texts.
func (d *HeaderFooterDetector) Detect(pages []PageLines) *HeaderFooterResult {
	res := &HeaderFooterResult{
		Running: map[Band]map[string]int{HeaderBand: {}, FooterBand: {}},
		config:  d.config,
	}
	if len(pages) < d.config.MinPages {
		return res
	}

	seen := map[bandKey]int{}
	for _, p := range pages {
		onPage := map[bandKey]bool{}
		for _, l := range p.Lines {
			band, ok := d.band(l, p.Height)
			if !ok {
				continue
			}
			k := bandKey{band, normalizeRunning(l.Text)}
			if k.text == "" || onPage[k] {
				continue
			}
			onPage[k] = true
			seen[k]++
		}
	}

	need := int(math.Ceil(d.config.MinOccurrenceRatio * float64(len(pages))))
	if need < 2 {
		need = 2
	}
	for k, n := range seen {
		if n >= need {
			res.Running[k.band][k.text] = n
		}
	}
	return res
}

func (d *HeaderFooterDetector) band(l Line, pageHeight float64) (Band, bool) {
	if pageHeight <= 0 {
		return 0, false
	}
	limit := pageHeight * d.config.BandRatio
	switch {
	case l.BBox.Y0 <= limit:
		return HeaderBand, true
	case l.BBox.Y1 >= pageHeight-limit:
		return FooterBand, true
	}
	return 0, false
}

// Filter returns the lines of page that are neither running text nor bare
// page numbers in the margins, and the number of lines removed.
func (r *HeaderFooterResult) Filter(page PageLines) ([]Line, int) {
	d := &HeaderFooterDetector{config: r.config}
	kept := make([]Line, 0, len(page.Lines))
	removed := 0
	for _, l := range page.Lines {
		band, inBand := d.band(l, page.Height)
		if inBand {
			if _, ok := r.Running[band][normalizeRunning(l.Text)]; ok {
				removed++
				continue
			}
			if r.config.RemovePageNumbers && IsPageNumber(l.Text) {
				removed++
				continue
			}
		}
		kept = append(kept, l)
	}
	return kept, removed
}

// HasRunningText reports whether any header or footer was detected.
func (r *HeaderFooterResult) HasRunningText() bool {
	return len(r.Running[HeaderBand]) > 0 || len(r.Running[FooterBand]) > 0
}

var (
	numericPagePattern = regexp.MustCompile(`(?i)^[-–—\s]*(?:p[áa]g(?:ina)?\.?\s*|page\s+|p\.\s*)?\d{1,4}(?:\s*(?:/|de|of)\s*\d{1,4})?[-–—\s]*$`)
	romanPagePattern   = regexp.MustCompile(`(?i)^[-–—\s]*(m{0,3}(?:cm|cd|d?c{0,3})(?:xc|xl|l?x{0,3})(?:ix|iv|v?i{0,3}))[-–—\s]*$`)
)

// IsPageNumber reports whether s is nothing but a page number ("12",
// "- 12 -", "Página 3", "xiv", "3 / 120"). A bare roman numeral is also a
// poem or chapter title, so callers outside the page margins should use
// IsNumericPageNumber.
func IsPageNumber(s string) bool {
	return IsNumericPageNumber(s) || IsRomanPageNumber(s)
}

// IsNumericPageNumber is IsPageNumber restricted to arabic digits.
func IsNumericPageNumber(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 24 {
		return false
	}
	return numericPagePattern.MatchString(s)
}

// IsRomanPageNumber reports whether s is a bare roman numeral, optionally
// between dashes.
func IsRomanPageNumber(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 24 {
		return false
	}
	m := romanPagePattern.FindStringSubmatch(s)
	return m != nil && m[1] != ""
}

// normalizeRunning lowercases text and replaces digit runs so that
// "Capítulo 3 · 41" and "Capítulo 3 · 42" compare equal.
func normalizeRunning(s string) string {
	var sb strings.Builder
	inDigits := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsDigit(r):
			if !inDigits {
				sb.WriteByte('#')
			}
			inDigits = true
			continue
		case unicode.IsSpace(r):
			r = ' '
		}
		inDigits = false
		sb.WriteRune(r)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
