package layout

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// splitEndings are words after which a line break never ends a paragraph:
// determiners, prepositions and frequent attributive adjectives.
var splitEndings = map[string]bool{
	"el": true, "la": true, "los": true, "las": true, "un": true, "una": true,
	"unos": true, "unas": true, "lo": true, "al": true, "del": true, "de": true,
	"este": true, "esta": true, "estos": true, "estas": true, "ese": true, "esa": true,
	"esos": true, "esas": true, "aquel": true, "aquella": true, "mi": true, "mis": true,
	"tu": true, "tus": true, "su": true, "sus": true, "nuestro": true, "nuestra": true,
	"cada": true, "todo": true, "toda": true, "todos": true, "todas": true,
	"otro": true, "otra": true, "otros": true, "otras": true, "mismo": true, "misma": true,
	"gran": true, "grande": true, "pequeño": true, "pequeña": true, "nuevo": true, "nueva": true,
	"viejo": true, "vieja": true, "buen": true, "buena": true, "mal": true, "mala": true,
	"primer": true, "primera": true, "último": true, "última": true, "largo": true, "larga": true,
	"y": true, "o": true, "e": true, "u": true, "que": true, "en": true, "con": true,
	"por": true, "para": true, "sin": true, "sobre": true, "entre": true, "hacia": true,
	"the": true, "a": true, "an": true, "of": true, "and": true, "to": true,
}

// continuationWords open a line that continues the previous sentence.
var continuationWords = map[string]bool{
	"de": true, "del": true, "la": true, "el": true, "los": true, "las": true,
	"en": true, "con": true, "por": true, "para": true, "que": true, "y": true,
	"o": true, "pero": true, "sin": true, "sobre": true, "bajo": true, "esta": true,
	"este": true, "muy": true, "más": true, "tanto": true, "todos": true, "todas": true,
	"como": true, "cuando": true, "donde": true, "aunque": true, "porque": true,
	"mientras": true, "sino": true, "ni": true, "se": true, "lo": true, "le": true,
	"un": true, "una": true, "al": true, "entre": true, "hasta": true, "desde": true,
}

var listMarker = regexp.MustCompile(`^(?:[-•*·–]\s|\d{1,3}[.)]\s|[a-zA-Z][.)]\s)`)

// IsParagraphBreak reports whether curr starts a new paragraph after prev.
func IsParagraphBreak(prev, curr string) bool {
	return defaultBreaker.isBreak(prev, curr)
}

var defaultBreaker = paragraphBreaker{shortLine: 40}

type paragraphBreaker struct {
	shortLine int
}

func (p paragraphBreaker) isBreak(prev, curr string) bool {
	prev = strings.TrimSpace(prev)
	curr = strings.TrimSpace(curr)
	if prev == "" || curr == "" {
		return prev != "" || curr != ""
	}

	if listMarker.MatchString(curr) {
		return true
	}
	if isArtificialSplit(prev) {
		return false
	}

	terminal := endsTerminal(prev)
	first, _ := utf8.DecodeRuneInString(curr)
	switch {
	case !terminal:
		return false
	case isDialogueDash(first):
		return true
	case unicode.IsLower(first):
		return false
	case continuationWords[strings.ToLower(firstWord(curr))]:
		return false
	case utf8.RuneCountInString(prev) < p.shortLine && utf8.RuneCountInString(curr) < p.shortLine:
		return false
	}

	return unicode.IsUpper(first) || unicode.IsDigit(first)
}

// EndsSentence reports whether s ends with terminal punctuation (.!?…),
// optionally followed by one closing quote.
func EndsSentence(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && endsTerminal(s)
}

// StartsWithContinuation reports whether s opens with a lowercase letter
// and its first word is an article, preposition or conjunction that
// continues a sentence ("de", "la", "que", ...).
func StartsWithContinuation(s string) bool {
	s = strings.TrimSpace(s)
	first, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(first) && continuationWords[strings.ToLower(firstWord(s))]
}

// isDialogueDash reports whether r opens a line of dialogue.
func isDialogueDash(r rune) bool {
	return r == '—' || r == '―'
}

// isArtificialSplit detects a line cut in the middle of a phrase.
func isArtificialSplit(line string) bool {
	last, _ := utf8.DecodeLastRuneInString(line)
	switch last {
	case ',', ';', ':', '-':
		return true
	}
	return !endsTerminal(line) && splitEndings[strings.ToLower(lastWord(line))]
}

// endsTerminal reports whether line ends with sentence punctuation, allowing
// one trailing closing quote.
func endsTerminal(line string) bool {
	last, size := utf8.DecodeLastRuneInString(line)
	if strings.ContainsRune(`"”»')’`, last) {
		last, _ = utf8.DecodeLastRuneInString(line[:len(line)-size])
	}
	return strings.ContainsRune(".!?…", last)
}

func firstWord(s string) string {
	s = strings.TrimLeftFunc(s, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	if end < 0 {
		return s
	}
	return s[:end]
}

func lastWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimFunc(fields[len(fields)-1], func(r rune) bool { return !unicode.IsLetter(r) })
}

// splitParagraphs partitions the lines of a block into paragraphs.
func (p paragraphBreaker) splitParagraphs(lines []Line) [][]Line {
	if len(lines) == 0 {
		return nil
	}
	var out [][]Line
	cur := []Line{lines[0]}
	for _, l := range lines[1:] {
		if p.isBreak(cur[len(cur)-1].Text, l.Text) {
			out = append(out, cur)
			cur = nil
		}
		cur = append(cur, l)
	}
	return append(out, cur)
}
