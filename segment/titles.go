package segment

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	markdownHeading = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)
	romanHeading    = regexp.MustCompile(`^M{0,3}(?:CM|CD|D?C{0,3})(?:XC|XL|L?X{0,3})(?:IX|IV|V?I{0,3})[.)]?$`)
	numberedPoem    = regexp.MustCompile(`^(?i:poema|soneto|canto|canción|cancion|oda|elegía|elegia|romance|salmo|poem|sonnet)\s+(?:\d+|[IVXLCDM]+)\b`)
	quotedTitle     = regexp.MustCompile(`^["“«'‘][^"”»'’]{1,80}["”»'’]$`)
	boldLabel       = regexp.MustCompile(`^\*\*[^*]{1,120}\*\*:?$`)
	dateBanner      = regexp.MustCompile(`^(?i)(?:[\p{L} .]+,\s*)?\d{1,2}\s+de\s+\p{L}+(?:\s+de(?:l)?\s+\d{4})?\.?$`)
	dialogueStart   = regexp.MustCompile(`^(?:[—–―]|-\s*\p{Lu}|[«"“])`)
)

// parseMarkdownHeading returns the level and text of a "# heading" line.
func parseMarkdownHeading(line string) (int, string, bool) {
	m := markdownHeading.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, "", false
	}
	return len(m[1]), m[2], true
}

// isAllCaps reports whether s is a short line written in capitals: at least
// three letters and more than 90% of them uppercase.
func isAllCaps(s string, maxRunes int) bool {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > maxRunes {
		return false
	}
	upper, lower := 0, 0
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsLower(r):
			lower++
		}
	}
	if upper+lower < 3 {
		return false
	}
	return lower == 0 || float64(upper)/float64(upper+lower) > 0.9
}

func isRomanHeading(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && strings.ContainsRune("IVXLCDM", rune(s[0])) &&
		utf8.RuneCountInString(s) <= 10 && romanHeading.MatchString(s)
}

func isDialogue(s string) bool {
	return dialogueStart.MatchString(strings.TrimSpace(s))
}

// clean collapses runs of whitespace to single spaces.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripMarkup removes heading markers and bold asterisks around a title.
func stripMarkup(s string) string {
	s = strings.TrimSpace(s)
	if _, t, ok := parseMarkdownHeading(s); ok {
		s = t
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "**"), ":")
	s = strings.TrimSuffix(s, "**")
	return clean(s)
}

func pagesOf(pages map[int]bool) []int {
	out := make([]int, 0, len(pages))
	for p := range pages {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}
