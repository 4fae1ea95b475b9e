package classify

import (
	"strings"
	"unicode/utf8"
)

// analysis holds the structural metrics of one text sample. It is derived
// from the text and discarded after classification.
type analysis struct {
	rawLines       int // all lines, blank included
	nonEmptyLines  int
	blankLines     int
	logicalLines   int
	shortLines     int
	blocks         int
	veryShort      int
	shortGroups    int
	totalRawLength int
}

func (a analysis) shortLineRatio() float64 {
	return ratio(a.shortLines, a.logicalLines)
}

func (a analysis) veryShortBlockRatio() float64 {
	return ratio(a.veryShort, a.blocks)
}

func (a analysis) blankLineDensity() float64 {
	return ratio(a.blankLines, a.rawLines)
}

func (a analysis) avgLineLength() float64 {
	return ratio(a.totalRawLength, a.nonEmptyLines)
}

func (a analysis) metrics() map[string]float64 {
	return map[string]float64{
		"short_line_ratio":              round2(a.shortLineRatio()),
		"very_short_block_ratio":        round2(a.veryShortBlockRatio()),
		"blank_line_density":            round4(a.blankLineDensity()),
		"consecutive_short_line_groups": float64(a.shortGroups),
		"avg_line_length":               round2(a.avgLineLength()),
		"non_empty_lines":               float64(a.nonEmptyLines),
		"logical_lines":                 float64(a.logicalLines),
	}
}

// analyze computes the metrics of text. Runs of non-blank lines are first
// joined into one logical line so that hard-wrapped prose does not count as
// a sequence of short lines; blank lines separate blocks.
func (c Config) analyze(text string) analysis {
	var a analysis
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	// a trailing newline does not make a blank line
	if n := len(raw); n > 0 && raw[n-1] == "" {
		raw = raw[:n-1]
	}
	a.rawLines = len(raw)

	var logical []string
	var cur []string
	run := 0
	flushRun := func() {
		if run >= 2 {
			a.shortGroups++
		}
		run = 0
	}
	flush := func() {
		if len(cur) > 0 {
			logical = append(logical, strings.Join(cur, " "))
			cur = cur[:0]
		}
		flushRun()
	}

	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			a.blankLines++
			flush()
			continue
		}
		n := utf8.RuneCountInString(l)
		a.nonEmptyLines++
		a.totalRawLength += n
		if n <= c.ShortGroupLineMax {
			run++
		} else {
			flushRun()
		}
		cur = append(cur, l)
	}
	flush()

	a.logicalLines = len(logical)
	a.blocks = len(logical)
	for _, l := range logical {
		n := utf8.RuneCountInString(l)
		if n <= c.ShortLineMax {
			a.shortLines++
		}
		if n <= c.VeryShortBlockMax {
			a.veryShort++
		}
	}
	return a
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
