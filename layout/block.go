package layout

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Karasowl/biblioperson/model"
)

// groupBlocks splits the lines of a page into spatial blocks. A new block
// starts at a vertical gap larger than BlockGapFactor line heights or when
// the line does not overlap the block horizontally.
func (e *Extractor) groupBlocks(lines []Line) [][]Line {
	if len(lines) == 0 {
		return nil
	}
	var blocks [][]Line
	cur := []Line{lines[0]}
	box := lines[0].BBox
	for _, l := range lines[1:] {
		prev := cur[len(cur)-1]
		gap := l.BBox.Y0 - prev.BBox.Y1
		limit := e.config.BlockGapFactor * math.Max(prev.Height(), 1)
		overlap := l.BBox.X0 < box.X1 && l.BBox.X1 > box.X0
		if gap > limit || !overlap {
			blocks = append(blocks, cur)
			cur = nil
			box = model.BBox{}
		}
		cur = append(cur, l)
		box = box.Union(l.BBox)
	}
	return append(blocks, cur)
}

// buildBlock assembles a block from the lines of one paragraph.
func (e *Extractor) buildBlock(lines []Line, page int, m margins, bodySize float64) model.Block {
	texts := make([]string, 0, len(lines))
	var box model.BBox
	for _, l := range lines {
		texts = append(texts, l.Text)
		box = box.Union(l.BBox)
	}
	b := model.Block{
		Text:   strings.Join(texts, "\n"),
		Page:   page,
		BBox:   box,
		Type:   model.BlockText,
		Visual: e.visualMetadata(lines, m),
		Source: "layout",
	}
	if e.isTitle(b, bodySize) {
		b.Type = model.BlockTitle
		b.HeadingLevel = headingLevel(b.Visual.AvgFontSize, bodySize)
	}
	return b
}

func (e *Extractor) isTitle(b model.Block, bodySize float64) bool {
	text := strings.TrimSpace(b.Text)
	if text == "" || b.Visual.LineCount > e.config.TitleMaxLines || utf8.RuneCountInString(text) > e.config.TitleMaxChars {
		return false
	}
	if strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "...") {
		return false
	}
	if b.Visual.IsBold {
		return true
	}
	return bodySize > 0 && b.Visual.AvgFontSize >= e.config.TitleFontRatio*bodySize
}

func headingLevel(size, body float64) int {
	if body <= 0 {
		return 3
	}
	switch r := size / body; {
	case r >= 1.8:
		return 1
	case r >= 1.4:
		return 2
	default:
		return 3
	}
}

// bodyFontSize returns the most frequent font size weighted by characters,
// rounded to half points.
func bodyFontSize(pages []PageLines) float64 {
	hist := map[float64]int{}
	for _, p := range pages {
		for _, l := range p.Lines {
			hist[math.Round(l.FontSize*2)/2] += utf8.RuneCountInString(l.Text)
		}
	}
	sizes := make([]float64, 0, len(hist))
	for s := range hist {
		sizes = append(sizes, s)
	}
	sort.Float64s(sizes)
	var best float64
	for _, s := range sizes {
		if hist[s] > hist[best] {
			best = s
		}
	}
	return best
}
