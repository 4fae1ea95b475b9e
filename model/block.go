package model

import (
	"strings"
	"unicode"
)

// BlockType classifies a block as produced by a loader or the layout extractor
type BlockType string

const (
	BlockText      BlockType = "text"
	BlockTitle     BlockType = "title"
	BlockContent   BlockType = "content"
	BlockVerse     BlockType = "verse"
	BlockPoemTitle BlockType = "poem_title"
	BlockSection   BlockType = "section"
)

// IsHeading returns true for block types that open a new unit of content
func (t BlockType) IsHeading() bool {
	return t == BlockTitle || t == BlockPoemTitle || t == BlockSection
}

// Alignment is the horizontal alignment of a block on its page
type Alignment string

const (
	AlignUnknown   Alignment = "unknown"
	AlignLeft      Alignment = "left"
	AlignCenter    Alignment = "center"
	AlignRight     Alignment = "right"
	AlignJustified Alignment = "justified"
)

// Font flag bits, matching the layout used by common PDF engines
const (
	FlagSuperscript = 1 << 0
	FlagItalic      = 1 << 1
	FlagSerif       = 1 << 2
	FlagMonospace   = 1 << 3
	FlagBold        = 1 << 4
)

// VisualMetadata describes how a block looked on the page
type VisualMetadata struct {
	AvgFontSize  float64   `json:"avg_font_size"`
	IsBold       bool      `json:"is_bold"`
	IsItalic     bool      `json:"is_italic"`
	DominantFont string    `json:"dominant_font,omitempty"`
	Alignment    Alignment `json:"alignment,omitempty"`
	LineCount    int       `json:"line_count"`
	FontFlags    int       `json:"font_flags"`
}

// Block is a layout-extracted unit of text
type Block struct {
	Text   string         `json:"text"`
	Page   int            `json:"page"`
	BBox   BBox           `json:"bbox"`
	Type   BlockType      `json:"block_type"`
	Visual VisualMetadata `json:"visual_metadata"`

	// MergedFromPages lists the source pages of a cross-page merge
	MergedFromPages []int `json:"merged_from_pages,omitempty"`

	// HeadingLevel is the markup heading depth (1-6) when the source had one
	HeadingLevel int `json:"heading_level,omitempty"`

	// Source names the loader or fallback that produced the block
	Source string `json:"source,omitempty"`
}

// Clone returns a deep copy of the block
func (b Block) Clone() Block {
	c := b
	if b.MergedFromPages != nil {
		c.MergedFromPages = append([]int(nil), b.MergedFromPages...)
	}
	return c
}

// Lines returns the block text split on line breaks, without trailing spaces
func (b Block) Lines() []string {
	if b.Text == "" {
		return nil
	}
	lines := strings.Split(b.Text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRightFunc(l, unicode.IsSpace)
	}
	return lines
}

// IsEmpty returns true if the block carries no visible text
func (b Block) IsEmpty() bool {
	return strings.TrimSpace(b.Text) == ""
}

// Pages returns a copy of the pages this block was built from
func (b Block) Pages() []int {
	if len(b.MergedFromPages) > 0 {
		return append([]int(nil), b.MergedFromPages...)
	}
	return []int{b.Page}
}

// NonSpaceCount returns the number of non-whitespace runes in s
func NonSpaceCount(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// TotalNonSpace sums NonSpaceCount over all blocks
func TotalNonSpace(blocks []Block) int {
	total := 0
	for _, b := range blocks {
		total += NonSpaceCount(b.Text)
	}
	return total
}

// BlocksText joins the text of all blocks with blank lines, the way a
// plain-text rendition of the document would separate them
func BlocksText(blocks []Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		if b.IsEmpty() {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(b.Text)
	}
	return sb.String()
}
