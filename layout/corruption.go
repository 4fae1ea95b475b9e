package layout

import (
	"unicode"
	"unicode/utf8"
)

type repairOutcome int

const (
	lineClean repairOutcome = iota
	lineRepaired
	lineDropped
)

// corruptionFilter detects lines where the engine emitted every glyph twice
// ("HHoollaa"), a common artifact of fake-bold rendering.
type corruptionFilter struct {
	minRunes  int
	ratio     float64
	minRepair float64
}

// IsCorrupted reports whether line shows the doubled-glyph pattern using
// the default thresholds.
func IsCorrupted(line string) bool {
	return newCorruptionFilter(DefaultConfig()).corrupted([]rune(line))
}

func newCorruptionFilter(c Config) corruptionFilter {
	return corruptionFilter{minRunes: c.CorruptionMinRunes, ratio: c.CorruptionRatio, minRepair: c.RepairMinRatio}
}

func (f corruptionFilter) corrupted(rs []rune) bool {
	if len(rs) < f.minRunes || len(rs) < 2 {
		return false
	}
	doubled := 0
	for i := 1; i < len(rs); i++ {
		if rs[i] == rs[i-1] && unicode.IsLetter(rs[i]) {
			doubled++
		}
	}
	return float64(doubled)/float64(len(rs)-1) > f.ratio
}

// check returns the line to keep and what happened to it.
func (f corruptionFilter) check(line string) (string, repairOutcome) {
	rs := []rune(line)
	if !f.corrupted(rs) {
		return line, lineClean
	}
	fixed := collapseDoubled(rs)
	if isAlphabetic(fixed) && float64(utf8.RuneCountInString(fixed)) >= f.minRepair*float64(len(rs)) {
		return fixed, lineRepaired
	}
	return "", lineDropped
}

// collapseDoubled folds each pair of identical runes into one, so a
// legitimate double letter ("ll" doubled to "llll") survives.
func collapseDoubled(rs []rune) string {
	out := make([]rune, 0, len(rs)/2+1)
	for i := 0; i < len(rs); i++ {
		out = append(out, rs[i])
		if i+1 < len(rs) && rs[i+1] == rs[i] {
			i++
		}
	}
	return string(out)
}

func isAlphabetic(s string) bool {
	letters, other := 0, 0
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsSpace(r):
		default:
			other++
		}
	}
	return letters > 0 && letters >= other
}
