package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/Karasowl/biblioperson/model"
	"github.com/tsawler/tabula/text"
)

// Line is a single text line on a page in top-left coordinates.
type Line struct {
	Text      string
	BBox      model.BBox
	FontSize  float64
	Fragments []text.TextFragment
}

// Height returns the line height.
func (l Line) Height() float64 {
	return l.BBox.Height()
}

// lineGrouper groups fragments into lines.
type lineGrouper struct {
	tolerance float64
}

// group sorts fragments top to bottom, buckets them by baseline and orders
// each bucket left to right. pageHeight flips the Y axis.
func (g lineGrouper) group(fragments []text.TextFragment, pageHeight float64) []Line {
	frags := make([]text.TextFragment, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f.Text) != "" {
			frags = append(frags, f)
		}
	}
	if len(frags) == 0 {
		return nil
	}
	if pageHeight <= 0 {
		for _, f := range frags {
			pageHeight = math.Max(pageHeight, f.Y+f.Height)
		}
	}

	tol := g.adaptiveTolerance(frags)

	// Strict order first; the tolerance only applies when bucketing, since a
	// tolerance inside the comparator is not transitive.
	sort.SliceStable(frags, func(i, j int) bool {
		return frags[i].Y > frags[j].Y
	})

	var lines []Line
	var cur []text.TextFragment
	var sumY float64
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, buildLine(cur, pageHeight))
		}
		cur, sumY = nil, 0
	}
	for _, f := range frags {
		if len(cur) > 0 && math.Abs(f.Y-sumY/float64(len(cur))) > tol {
			flush()
		}
		cur = append(cur, f)
		sumY += f.Y
	}
	flush()
	return lines
}

// adaptiveTolerance shrinks the baseline tolerance when the document packs
// lines closer than half a glyph height (scaled content streams).
func (g lineGrouper) adaptiveTolerance(frags []text.TextFragment) float64 {
	var total float64
	ys := make(map[float64]struct{}, len(frags))
	for _, f := range frags {
		total += f.Height
		ys[math.Round(f.Y*10)/10] = struct{}{}
	}
	avgHeight := total / float64(len(frags))
	standard := avgHeight * g.tolerance
	if standard <= 0 {
		standard = 2.0
	}
	if len(ys) < 3 {
		return standard
	}

	uniq := make([]float64, 0, len(ys))
	for y := range ys {
		uniq = append(uniq, y)
	}
	sort.Float64s(uniq)
	gaps := make([]float64, 0, len(uniq))
	for i := 1; i < len(uniq); i++ {
		if d := uniq[i] - uniq[i-1]; d > 0.1 {
			gaps = append(gaps, d)
		}
	}
	if len(gaps) == 0 {
		return standard
	}
	sort.Float64s(gaps)
	minGap := gaps[len(gaps)/10]
	if minGap < avgHeight*0.5 {
		return math.Max(minGap*0.2, 0.15)
	}
	return standard
}

func buildLine(frags []text.TextFragment, pageHeight float64) Line {
	sort.SliceStable(frags, func(i, j int) bool {
		return frags[i].X < frags[j].X
	})

	var sb strings.Builder
	var box model.BBox
	var fontTotal float64
	for i, f := range frags {
		if i > 0 {
			prev := frags[i-1]
			gap := f.X - (prev.X + prev.Width)
			if gap > f.Height*0.1 && !strings.HasSuffix(prev.Text, " ") && !strings.HasPrefix(f.Text, " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(f.Text)
		fontTotal += f.FontSize
		box = box.Union(model.NewBBox(f.X, pageHeight-(f.Y+f.Height), f.X+f.Width, pageHeight-f.Y))
	}

	return Line{
		Text:      strings.TrimSpace(collapseSpaces(sb.String())),
		BBox:      box,
		FontSize:  fontTotal / float64(len(frags)),
		Fragments: frags,
	}
}

func collapseSpaces(s string) string {
	if !strings.Contains(s, "  ") {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}
