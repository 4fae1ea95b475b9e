package loader

import (
	"bytes"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/Karasowl/biblioperson/layout"
	"github.com/Karasowl/biblioperson/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readText reads a text file as UTF-8, decoding it as Windows-1252 when it
// is not valid UTF-8. Line endings are normalised to "\n".
func readText(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	enc := "utf-8"
	if !utf8.Valid(data) {
		decoded, derr := charmap.Windows1252.NewDecoder().Bytes(data)
		if derr == nil {
			data = decoded
			enc = "windows-1252"
		}
	}
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n"), enc, nil
}

var paragraphSep = regexp.MustCompile(`\n\s*\n`)

// splitParagraphs splits text on blank lines, keeping the line breaks
// inside each paragraph.
func splitParagraphs(text string) []string {
	var out []string
	for _, p := range paragraphSep.Split(text, -1) {
		p = strings.Trim(p, "\n")
		if strings.TrimSpace(p) != "" {
			out = append(out, trimLinesRight(p))
		}
	}
	return out
}

func trimLinesRight(p string) string {
	lines := strings.Split(p, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.Join(lines, "\n")
}

// TextLoader loads plain text files.
type TextLoader struct {
	config Config
}

// NewTextLoader creates a plain text loader.
func NewTextLoader(cfg Config) *TextLoader {
	return &TextLoader{config: cfg}
}

// Load splits the file into one block per paragraph.
func (l *TextLoader) Load(path string) (Result, error) {
	meta := model.NewDocumentMetadata(path)
	meta.Format = "txt"
	text, enc, err := readText(path)
	if err != nil {
		return Result{Metadata: meta}, &layout.ExtractionError{Path: path, Err: err}
	}
	meta.Set("encoding", enc)

	var blocks []model.Block
	for _, p := range splitParagraphs(text) {
		blocks = append(blocks, model.Block{
			Text:   p,
			Page:   1,
			Type:   model.BlockText,
			Visual: model.VisualMetadata{LineCount: strings.Count(p, "\n") + 1, Alignment: model.AlignUnknown},
			Source: "text",
		})
	}
	meta.Title = firstLine(text)
	l.config.logger().Debug("loaded text", "path", path, "blocks", len(blocks), "encoding", enc)
	return Result{Blocks: blocks, Metadata: meta}, nil
}

// MarkdownLoader loads Markdown files. Level 1 headings become titles,
// level 2 sections and deeper levels poem titles; everything else is
// content.
type MarkdownLoader struct {
	config Config
}

// NewMarkdownLoader creates a Markdown loader.
func NewMarkdownLoader(cfg Config) *MarkdownLoader {
	return &MarkdownLoader{config: cfg}
}

var atxHeading = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)

// Load parses ATX headings and blank-line separated paragraphs.
func (l *MarkdownLoader) Load(path string) (Result, error) {
	meta := model.NewDocumentMetadata(path)
	meta.Format = "md"
	text, enc, err := readText(path)
	if err != nil {
		return Result{Metadata: meta}, &layout.ExtractionError{Path: path, Err: err}
	}
	meta.Set("encoding", enc)

	blocks := parseMarkdown(text)
	for _, b := range blocks {
		if b.Type == model.BlockTitle {
			meta.Title = b.Text
			break
		}
	}
	if meta.Title == "" {
		meta.Title = firstLine(text)
	}
	l.config.logger().Debug("loaded markdown", "path", path, "blocks", len(blocks))
	return Result{Blocks: blocks, Metadata: meta}, nil
}

func parseMarkdown(text string) []model.Block {
	var blocks []model.Block
	var para []string
	flush := func() {
		p := strings.Trim(strings.Join(para, "\n"), "\n")
		para = para[:0]
		if strings.TrimSpace(p) == "" {
			return
		}
		blocks = append(blocks, model.Block{
			Text:   p,
			Page:   1,
			Type:   model.BlockContent,
			Visual: model.VisualMetadata{LineCount: strings.Count(p, "\n") + 1, Alignment: model.AlignUnknown},
			Source: "markdown",
		})
	}

	inFence := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if !inFence {
			if m := atxHeading.FindStringSubmatch(trimmed); m != nil && m[2] != "" {
				flush()
				level := len(m[1])
				blocks = append(blocks, model.Block{
					Text:         m[2],
					Page:         1,
					Type:         headingType(level),
					HeadingLevel: level,
					Visual:       model.VisualMetadata{LineCount: 1, IsBold: true, FontFlags: model.FlagBold, Alignment: model.AlignUnknown},
					Source:       "markdown",
				})
				continue
			}
			if trimmed == "" {
				flush()
				continue
			}
		}
		para = append(para, strings.TrimRight(line, " \t"))
	}
	flush()
	return blocks
}

func headingType(level int) model.BlockType {
	switch level {
	case 1:
		return model.BlockTitle
	case 2:
		return model.BlockSection
	default:
		return model.BlockPoemTitle
	}
}
