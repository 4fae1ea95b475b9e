package classify

import "log/slog"

// Config holds every threshold used by the classifier.
type Config struct {
	// StructuredExtensions short-circuit to the json profile
	// (default: .json, .jsonl, .ndjson)
	StructuredExtensions []string

	// ShortLineMax is the longest logical line counted as short (default: 180)
	ShortLineMax int

	// VeryShortBlockMax is the longest block counted as very short (default: 100)
	VeryShortBlockMax int

	// ShortGroupLineMax is the longest raw line that can belong to a run of
	// short lines (default: 60)
	ShortGroupLineMax int

	// ShortLineRatio, VeryShortBlockRatio, BlankLineDensity and MinShortGroups
	// are the four verse criteria (defaults: 0.8, 0.6, 0.005, 2)
	ShortLineRatio      float64
	VeryShortBlockRatio float64
	BlankLineDensity    float64
	MinShortGroups      int

	// Weights of the four criteria in the verse score
	// (defaults: 0.4, 0.3, 0.2, 0.1)
	ShortLineWeight      float64
	VeryShortBlockWeight float64
	BlankLineWeight      float64
	ShortGroupWeight     float64

	// VerseScore is the score needed for verse, together with at least
	// MinCriteria satisfied criteria (defaults: 0.8, 2)
	VerseScore  float64
	MinCriteria int

	// TieBreakMargin lets a verse filename hint decide scores this close
	// below VerseScore (default: 0.1)
	TieBreakMargin float64

	// Strong indicators (defaults: 0.95, 0.95, 60, 3)
	StrongShortRatio    float64
	StrongBlockRatio    float64
	StrongAvgLineLength float64
	MinStrongIndicators int

	// Strong indicator confidence is min(StrongCap, StrongBase + StrongStep*n)
	// (defaults: 0.85, 0.6, 0.1)
	StrongCap  float64
	StrongBase float64
	StrongStep float64

	// Prose confidence without a hint, with an agreeing hint and with a verse
	// hint (defaults: 0.7, 0.8, 0.6)
	ProseConfidence         float64
	ProseAgreeConfidence    float64
	ProseConflictConfidence float64

	// MinLines is the number of non-empty lines below which the classifier
	// does not trust the metrics (default: 5)
	MinLines int

	// InsufficientConfidence is the prose confidence used below MinLines
	// (default: 0.6)
	InsufficientConfidence float64

	// MaxSampleRunes limits how much of the content is analysed; 0 means all
	// (default: 50000)
	MaxSampleRunes int

	// VerseKeywords and ProseKeywords are matched against the words of the
	// file name, ignoring case and accents
	VerseKeywords []string
	ProseKeywords []string

	// Logger receives debug output (default: slog.Default())
	Logger *slog.Logger
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		StructuredExtensions: []string{".json", ".jsonl", ".ndjson"},

		ShortLineMax:      180,
		VeryShortBlockMax: 100,
		ShortGroupLineMax: 60,

		ShortLineRatio:      0.8,
		VeryShortBlockRatio: 0.6,
		BlankLineDensity:    0.005,
		MinShortGroups:      2,

		ShortLineWeight:      0.4,
		VeryShortBlockWeight: 0.3,
		BlankLineWeight:      0.2,
		ShortGroupWeight:     0.1,

		VerseScore:     0.8,
		MinCriteria:    2,
		TieBreakMargin: 0.1,

		StrongShortRatio:    0.95,
		StrongBlockRatio:    0.95,
		StrongAvgLineLength: 60,
		MinStrongIndicators: 3,
		StrongCap:           0.85,
		StrongBase:          0.6,
		StrongStep:          0.1,

		ProseConfidence:         0.7,
		ProseAgreeConfidence:    0.8,
		ProseConflictConfidence: 0.6,

		MinLines:               5,
		InsufficientConfidence: 0.6,
		MaxSampleRunes:         50000,

		VerseKeywords: []string{
			"poema", "poemas", "poesia", "poesias", "poemario", "verso", "versos",
			"soneto", "sonetos", "cancion", "canciones", "copla", "coplas",
			"romance", "romancero", "oda", "odas", "elegia", "haiku", "haikus",
			"cancionero", "rimas", "poems", "poem", "poetry", "verse", "sonnet", "sonnets",
		},
		ProseKeywords: []string{
			"novela", "novelas", "cuento", "cuentos", "relato", "relatos",
			"ensayo", "ensayos", "cronica", "cronicas", "articulo", "articulos",
			"capitulo", "capitulos", "prosa", "memorias", "diario", "carta", "cartas",
			"novel", "essay", "essays", "story", "stories", "chapter", "prose", "article",
		},
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Thresholds returns the numeric thresholds keyed by name, as recorded in a
// detection report.
func (c Config) Thresholds() map[string]float64 {
	return map[string]float64{
		"short_line_max":            float64(c.ShortLineMax),
		"very_short_block_max":      float64(c.VeryShortBlockMax),
		"short_group_line_max":      float64(c.ShortGroupLineMax),
		"short_line_ratio":          c.ShortLineRatio,
		"very_short_block_ratio":    c.VeryShortBlockRatio,
		"blank_line_density":        c.BlankLineDensity,
		"min_short_groups":          float64(c.MinShortGroups),
		"verse_score":               c.VerseScore,
		"min_criteria":              float64(c.MinCriteria),
		"tie_break_margin":          c.TieBreakMargin,
		"strong_short_ratio":        c.StrongShortRatio,
		"strong_block_ratio":        c.StrongBlockRatio,
		"strong_avg_line_length":    c.StrongAvgLineLength,
		"min_strong_indicators":     float64(c.MinStrongIndicators),
		"min_lines":                 float64(c.MinLines),
		"prose_confidence":          c.ProseConfidence,
		"insufficient_confidence":   c.InsufficientConfidence,
		"strong_confidence_ceiling": c.StrongCap,
	}
}
