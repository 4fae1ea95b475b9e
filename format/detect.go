// Package format provides source format detection for the segmentation
// pipeline.
package format

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format represents a supported source format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a paginated PDF document.
	PDF
	// Markdown indicates a markdown text file.
	Markdown
	// Text indicates a plain text file.
	Text
	// JSON indicates structured JSON or NDJSON data.
	JSON
	// HTML indicates an HTML document.
	HTML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case Markdown:
		return "Markdown"
	case Text:
		return "Text"
	case JSON:
		return "JSON"
	case HTML:
		return "HTML"
	default:
		return "Unknown"
	}
}

// Extension returns the canonical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PDF:
		return ".pdf"
	case Markdown:
		return ".md"
	case Text:
		return ".txt"
	case JSON:
		return ".json"
	case HTML:
		return ".html"
	default:
		return ""
	}
}

// IsStructured returns true for formats that carry structured data rather
// than running text.
func (f Format) IsStructured() bool {
	return f == JSON
}

var extensions = map[string]Format{
	".pdf":      PDF,
	".md":       Markdown,
	".markdown": Markdown,
	".txt":      Text,
	".text":     Text,
	".json":     JSON,
	".jsonl":    JSON,
	".ndjson":   JSON,
	".html":     HTML,
	".htm":      HTML,
}

// Detect determines the format from the filename extension.
func Detect(filename string) Format {
	if f, ok := extensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return f
	}
	return Unknown
}

// Extensions returns the recognized extensions for a format.
func Extensions(f Format) []string {
	var out []string
	for ext, ff := range extensions {
		if ff == f {
			out = append(out, ext)
		}
	}
	return out
}

// DetectFromMagic checks leading bytes to determine the format.
// Returns Unknown if the content is not recognized.
func DetectFromMagic(data []byte) Format {
	if len(data) >= 4 && bytes.HasPrefix(data, []byte("%PDF")) {
		return PDF
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n\uFEFF")
	if len(trimmed) == 0 {
		return Unknown
	}

	if detectHTMLMagic(trimmed) {
		return HTML
	}

	if trimmed[0] == '{' || trimmed[0] == '[' {
		return JSON
	}

	if bytes.HasPrefix(trimmed, []byte("# ")) || bytes.Contains(trimmed, []byte("\n## ")) {
		return Markdown
	}

	if utf8.Valid(data) || isMostlyPrintable(data) {
		return Text
	}

	return Unknown
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	upper := strings.ToUpper(string(head))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") || strings.HasPrefix(upper, "<HTML") {
		return true
	}
	// XML declaration followed by html-like content could be XHTML
	return strings.HasPrefix(upper, "<?XML") && strings.Contains(upper, "<HTML")
}

// isMostlyPrintable accepts single-byte encoded text (Latin-1, Windows-1252)
// that is not valid UTF-8.
func isMostlyPrintable(data []byte) bool {
	if len(data) > 4096 {
		data = data[:4096]
	}
	printable := 0
	for _, c := range data {
		if c == '\n' || c == '\r' || c == '\t' || (c >= 0x20 && c != 0x7f) {
			printable++
		}
	}
	return float64(printable)/float64(len(data)) > 0.95
}

// DetectFromReader inspects the content to determine the format, falling
// back to the extension when the content is ambiguous.
func DetectFromReader(r io.ReaderAt, filename string) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	byExt := Detect(filename)
	byMagic := DetectFromMagic(magic)

	switch {
	case byMagic == PDF || byMagic == HTML:
		return byMagic, nil
	case byExt != Unknown:
		return byExt, nil
	default:
		return byMagic, nil
	}
}
