package layout

import (
	"sort"
	"strings"

	"github.com/Karasowl/biblioperson/model"
)

// MergeAcrossPages joins a block with the block that follows it on the next
// page when the paragraph break rule says the text continues. It makes one
// pass over adjacent pairs; a merged block is not considered again in the
// same pass. The input slice is not modified.
func MergeAcrossPages(blocks []model.Block) []model.Block {
	return defaultBreaker.mergeAcrossPages(blocks)
}

func (p paragraphBreaker) mergeAcrossPages(blocks []model.Block) []model.Block {
	out := make([]model.Block, 0, len(blocks))
	for i := 0; i < len(blocks); i++ {
		if i+1 < len(blocks) && p.continuesOnNextPage(blocks[i], blocks[i+1]) {
			out = append(out, joinBlocks(blocks[i], blocks[i+1]))
			i++
			continue
		}
		out = append(out, blocks[i].Clone())
	}
	return out
}

func (p paragraphBreaker) continuesOnNextPage(a, b model.Block) bool {
	if b.Page-a.Page != 1 {
		return false
	}
	if a.Type.IsHeading() || b.Type.IsHeading() || a.IsEmpty() || b.IsEmpty() {
		return false
	}
	return !p.isBreak(lastLine(a.Text), firstLine(b.Text))
}

func joinBlocks(a, b model.Block) model.Block {
	m := a.Clone()
	m.Text = strings.TrimRight(a.Text, " \t\n") + " " + strings.TrimLeft(b.Text, " \t\n")
	m.Visual.LineCount = a.Visual.LineCount + b.Visual.LineCount

	seen := map[int]bool{}
	var pages []int
	for _, src := range [][]int{a.Pages(), b.Pages()} {
		for _, pg := range src {
			if !seen[pg] {
				seen[pg] = true
				pages = append(pages, pg)
			}
		}
	}
	sort.Ints(pages)
	m.MergedFromPages = pages
	return m
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
