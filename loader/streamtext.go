package loader

import (
	"bytes"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)

// streamText scans a decoded content stream for text showing operators.
// Vertical moves become line breaks and moves much larger than the usual
// leading become blank lines, so paragraphs can be split downstream.
func streamText(data []byte) string {
	var sb strings.Builder
	var leading float64

	newline := func(dy float64) {
		if sb.Len() == 0 {
			return
		}
		dy = math.Abs(dy)
		if leading > 0 && dy > leading*1.6 {
			sb.WriteString("\n\n")
		} else {
			sb.WriteByte('\n')
		}
		if leading == 0 || dy < leading {
			leading = dy
		}
	}

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			newline(leading)
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			fields := bytes.Fields(line)
			if len(fields) >= 3 {
				dy, _ := strconv.ParseFloat(string(fields[len(fields)-2]), 64)
				if dy != 0 {
					newline(dy)
				} else if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
			}
		case bytes.Equal(line, []byte("T*")):
			newline(leading)
		}
	}
	out := sb.String()
	if !utf8.ValidString(out) {
		if decoded, err := charmap.Windows1252.NewDecoder().String(out); err == nil {
			out = decoded
		}
	}
	return cleanStreamText(out)
}

// decodePDFString handles basic PDF escape sequences.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch c := raw[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(c)
		default:
			if c < '0' || c > '7' {
				sb.WriteByte(c)
				continue
			}
			val := int(c - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}

// cleanStreamText drops unprintable runes and collapses horizontal
// whitespace, keeping line breaks.
func cleanStreamText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		line = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return ' '
			}
			if !unicode.IsPrint(r) {
				return -1
			}
			return r
		}, line)
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
