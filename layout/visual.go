package layout

import (
	"math"
	"strings"

	"github.com/Karasowl/biblioperson/model"
)

var serifFamilies = []string{
	"times", "georgia", "garamond", "palatino", "baskerville", "minion",
	"cambria", "bookman", "caslon", "didot", "bodoni", "century", "roman", "serif",
}

// FontFlags derives model font flag bits from a font name.
func FontFlags(fontName string) int {
	name := strings.ToLower(fontName)
	if i := strings.IndexByte(name, '+'); i >= 0 {
		name = name[i+1:]
	}
	flags := 0
	for _, k := range []string{"bold", "black", "heavy", "semibold", "demibold", "extrabold"} {
		if strings.Contains(name, k) {
			flags |= model.FlagBold
			break
		}
	}
	if strings.Contains(name, "italic") || strings.Contains(name, "oblique") {
		flags |= model.FlagItalic
	}
	if strings.Contains(name, "mono") || strings.Contains(name, "courier") || strings.Contains(name, "consol") {
		flags |= model.FlagMonospace
	}
	if !strings.Contains(name, "sans") {
		for _, k := range serifFamilies {
			if strings.Contains(name, k) {
				flags |= model.FlagSerif
				break
			}
		}
	}
	return flags
}

// margins is the text area of a page.
type margins struct {
	left, right float64
}

func pageMargins(lines []Line) margins {
	m := margins{left: math.MaxFloat64}
	for _, l := range lines {
		m.left = math.Min(m.left, l.BBox.X0)
		m.right = math.Max(m.right, l.BBox.X1)
	}
	if m.left == math.MaxFloat64 {
		return margins{}
	}
	return m
}

// visualMetadata summarises the fonts and alignment of a run of lines.
func (e *Extractor) visualMetadata(lines []Line, m margins) model.VisualMetadata {
	chars := map[string]int{}
	var total, bold, italic int
	var sizeSum float64
	flags := 0
	for _, l := range lines {
		for _, f := range l.Fragments {
			n := len([]rune(strings.TrimSpace(f.Text)))
			if n == 0 {
				continue
			}
			ff := FontFlags(f.FontName)
			chars[f.FontName] += n
			total += n
			sizeSum += f.FontSize * float64(n)
			if ff&model.FlagBold != 0 {
				bold += n
			}
			if ff&model.FlagItalic != 0 {
				italic += n
			}
			if l.FontSize > 0 && f.FontSize <= 0.7*l.FontSize && f.Y > minBaseline(l)+0.2*f.Height {
				flags |= model.FlagSuperscript
			}
		}
	}

	vm := model.VisualMetadata{LineCount: len(lines), Alignment: e.alignment(lines, m)}
	if total == 0 {
		return vm
	}
	for name, n := range chars {
		if n > chars[vm.DominantFont] || (n == chars[vm.DominantFont] && name < vm.DominantFont) {
			vm.DominantFont = name
		}
	}
	vm.AvgFontSize = math.Round(sizeSum/float64(total)*100) / 100
	vm.IsBold = bold*2 >= total
	vm.IsItalic = italic*2 >= total
	vm.FontFlags = flags | FontFlags(vm.DominantFont)
	if vm.IsBold {
		vm.FontFlags |= model.FlagBold
	}
	if vm.IsItalic {
		vm.FontFlags |= model.FlagItalic
	}
	return vm
}

func minBaseline(l Line) float64 {
	y := math.MaxFloat64
	for _, f := range l.Fragments {
		y = math.Min(y, f.Y)
	}
	return y
}

// alignment votes over the lines of a block. A block is justified when every
// line but the last fills the text width.
func (e *Extractor) alignment(lines []Line, m margins) model.Alignment {
	if len(lines) == 0 || m.right <= m.left {
		return model.AlignUnknown
	}
	tol := e.config.AlignmentTolerance
	width := m.right - m.left

	if len(lines) > 1 {
		full := true
		for _, l := range lines[:len(lines)-1] {
			if l.BBox.X0-m.left > tol || l.BBox.Width() < e.config.JustifiedThreshold*width {
				full = false
				break
			}
		}
		if full {
			return model.AlignJustified
		}
	}

	votes := map[model.Alignment]int{}
	for _, l := range lines {
		left := l.BBox.X0 - m.left
		right := m.right - l.BBox.X1
		switch {
		case left > tol && math.Abs(left-right) <= tol:
			votes[model.AlignCenter]++
		case left > tol && right <= tol:
			votes[model.AlignRight]++
		default:
			votes[model.AlignLeft]++
		}
	}
	best := model.AlignLeft
	for _, a := range []model.Alignment{model.AlignCenter, model.AlignRight} {
		if votes[a] > votes[best] {
			best = a
		}
	}
	return best
}
