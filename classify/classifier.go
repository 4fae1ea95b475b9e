package classify

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Karasowl/biblioperson/model"
)

// Hint is the weak prior derived from a file name.
type Hint string

const (
	HintNone  Hint = ""
	HintVerse Hint = "verse"
	HintProse Hint = "prose"
)

// Classifier chooses a content profile for a document.
type Classifier struct {
	config Config
	verse  map[string]bool
	prose  map[string]bool
}

// New creates a classifier with default configuration.
func New() *Classifier {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a classifier with custom configuration.
func NewWithConfig(config Config) *Classifier {
	c := &Classifier{
		config: config,
		verse:  make(map[string]bool, len(config.VerseKeywords)),
		prose:  make(map[string]bool, len(config.ProseKeywords)),
	}
	for _, k := range config.VerseKeywords {
		c.verse[foldWord(k)] = true
	}
	for _, k := range config.ProseKeywords {
		c.prose[foldWord(k)] = true
	}
	return c
}

// Config returns the classifier configuration.
func (c *Classifier) Config() Config {
	return c.config
}

// Classify returns the profile candidate for the document at path whose
// text sample is content. The path is used for its extension and its
// name only; the file is never read.
func (c *Classifier) Classify(path, content string) model.ProfileCandidate {
	cand := c.classify(path, content)
	cand.Confidence = clamp01(cand.Confidence)
	if len(cand.Reasons) == 0 {
		cand.Reasons = []string{"no structural evidence; conservative default"}
	}
	c.config.logger().Debug("document classified",
		"path", path, "profile", cand.Profile, "confidence", cand.Confidence)
	return cand
}

// Report classifies the document and returns the full audit record.
func (c *Classifier) Report(path, content string) model.DetectionReport {
	cand := c.Classify(path, content)
	return model.DetectionReport{
		FilePath:          path,
		DetectedProfile:   cand.Profile,
		Confidence:        cand.Confidence,
		Reasons:           cand.Reasons,
		StructuralMetrics: cand.Metrics,
		ThresholdsUsed:    c.config.Thresholds(),
	}
}

func (c *Classifier) classify(path, content string) model.ProfileCandidate {
	cfg := c.config
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range cfg.StructuredExtensions {
		if ext == strings.ToLower(s) {
			return model.ProfileCandidate{
				Profile:    model.ProfileJSON,
				Confidence: 1.0,
				Reasons:    []string{fmt.Sprintf("structured data extension %s", ext)},
				Metrics:    map[string]float64{},
			}
		}
	}

	hint := c.FilenameHint(path)
	a := cfg.analyze(sample(content, cfg.MaxSampleRunes))
	metrics := a.metrics()

	var reasons []string
	if hint != HintNone {
		reasons = append(reasons, fmt.Sprintf("file name suggests %s", hint))
	}

	if a.nonEmptyLines < cfg.MinLines {
		reasons = append(reasons, fmt.Sprintf("insufficient data: %d non-empty lines (minimum %d); defaulting to prose",
			a.nonEmptyLines, cfg.MinLines))
		return model.ProfileCandidate{
			Profile:    model.ProfileProse,
			Confidence: cfg.InsufficientConfidence,
			Reasons:    reasons,
			Metrics:    metrics,
		}
	}

	score, criteria, why := cfg.verseScore(a)
	reasons = append(reasons, why...)
	metrics["verse_score"] = score
	metrics["criteria_met"] = float64(criteria)

	if score >= cfg.VerseScore-epsilon && criteria >= cfg.MinCriteria {
		reasons = append(reasons, fmt.Sprintf("verse score %.2f with %d criteria", score, criteria))
		return model.ProfileCandidate{
			Profile:    model.ProfileVerse,
			Confidence: math.Min(1, score),
			Reasons:    reasons,
			Metrics:    metrics,
		}
	}

	if hint == HintVerse && criteria >= cfg.MinCriteria && score >= cfg.VerseScore-cfg.TieBreakMargin-epsilon {
		reasons = append(reasons, fmt.Sprintf("verse score %.2f close to %.2f; file name breaks the tie", score, cfg.VerseScore))
		return model.ProfileCandidate{
			Profile:    model.ProfileVerse,
			Confidence: score,
			Reasons:    reasons,
			Metrics:    metrics,
		}
	}

	n, strong := cfg.strongIndicators(a, hint)
	metrics["strong_indicators"] = float64(n)
	if n >= cfg.MinStrongIndicators {
		reasons = append(reasons, strong...)
		reasons = append(reasons, fmt.Sprintf("%d strong verse indicators", n))
		return model.ProfileCandidate{
			Profile:    model.ProfileVerse,
			Confidence: round2(math.Min(cfg.StrongCap, cfg.StrongBase+cfg.StrongStep*float64(n))),
			Reasons:    reasons,
			Metrics:    metrics,
		}
	}

	conf := cfg.ProseConfidence
	switch hint {
	case HintProse:
		conf = cfg.ProseAgreeConfidence
	case HintVerse:
		conf = cfg.ProseConflictConfidence
	}
	reasons = append(reasons, fmt.Sprintf("verse score %.2f below %.2f; classified as prose", score, cfg.VerseScore))
	return model.ProfileCandidate{
		Profile:    model.ProfileProse,
		Confidence: conf,
		Reasons:    reasons,
		Metrics:    metrics,
	}
}

const epsilon = 1e-9

// verseScore adds the weight of every satisfied criterion.
func (c Config) verseScore(a analysis) (score float64, criteria int, reasons []string) {
	if r := a.shortLineRatio(); r >= c.ShortLineRatio {
		score += c.ShortLineWeight
		criteria++
		reasons = append(reasons, fmt.Sprintf("%.0f%% of lines are short (<= %d chars)", r*100, c.ShortLineMax))
	}
	if r := a.veryShortBlockRatio(); r >= c.VeryShortBlockRatio {
		score += c.VeryShortBlockWeight
		criteria++
		reasons = append(reasons, fmt.Sprintf("%.0f%% of blocks are very short (<= %d chars)", r*100, c.VeryShortBlockMax))
	}
	if d := a.blankLineDensity(); d > c.BlankLineDensity {
		score += c.BlankLineWeight
		criteria++
		reasons = append(reasons, fmt.Sprintf("blank line density %.3f", d))
	}
	if a.shortGroups >= c.MinShortGroups {
		score += c.ShortGroupWeight
		criteria++
		reasons = append(reasons, fmt.Sprintf("%d groups of consecutive short lines", a.shortGroups))
	}
	return round2(score), criteria, reasons
}

func (c Config) strongIndicators(a analysis, hint Hint) (int, []string) {
	var n int
	var reasons []string
	if r := a.shortLineRatio(); r >= c.StrongShortRatio {
		n++
		reasons = append(reasons, fmt.Sprintf("strong: %.0f%% short lines", r*100))
	}
	if r := a.veryShortBlockRatio(); r >= c.StrongBlockRatio {
		n++
		reasons = append(reasons, fmt.Sprintf("strong: %.0f%% very short blocks", r*100))
	}
	if avg := a.avgLineLength(); avg > 0 && avg <= c.StrongAvgLineLength {
		n++
		reasons = append(reasons, fmt.Sprintf("strong: average line length %.1f", avg))
	}
	if hint == HintVerse {
		n++
		reasons = append(reasons, "strong: file name suggests verse")
	}
	return n, reasons
}

// FilenameHint looks for verse or prose keywords among the words of the
// file name. It returns HintNone when both or neither kind is present.
func (c *Classifier) FilenameHint(path string) Hint {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	words := strings.FieldsFunc(foldWord(base), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	var verse, prose bool
	for _, w := range words {
		verse = verse || c.verse[w]
		prose = prose || c.prose[w]
	}
	switch {
	case verse && !prose:
		return HintVerse
	case prose && !verse:
		return HintProse
	}
	return HintNone
}

// foldWord lowercases s and strips diacritics ("Canción" -> "cancion").
func foldWord(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// sample cuts content after max runes at the last line break.
func sample(content string, max int) string {
	if max <= 0 {
		return content
	}
	n := 0
	for i := range content {
		if n == max {
			cut := content[:i]
			if j := strings.LastIndexByte(cut, '\n'); j > 0 {
				return cut[:j]
			}
			return cut
		}
		n++
	}
	return content
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
