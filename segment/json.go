package segment

import "github.com/Karasowl/biblioperson/model"

// JSONSegmenter emits one segment per non-empty block. Structured records
// already carry their own boundaries; only the type is mapped.
type JSONSegmenter struct{}

// NewJSONSegmenter creates a JSON segmenter.
func NewJSONSegmenter() *JSONSegmenter {
	return &JSONSegmenter{}
}

// Name implements Segmenter.
func (s *JSONSegmenter) Name() string { return NameJSON }

// Segment implements Segmenter.
func (s *JSONSegmenter) Segment(blocks []model.Block) []model.Segment {
	out := make([]model.Segment, 0, len(blocks))
	for i, b := range blocks {
		if b.IsEmpty() {
			continue
		}
		out = append(out, model.NewSegment(b.Text, segmentType(b.Type)).
			WithMeta("block_index", i).
			WithMeta("block_type", string(b.Type)))
	}
	return out
}

func segmentType(t model.BlockType) model.SegmentType {
	switch t {
	case model.BlockTitle:
		return model.SegmentTitle
	case model.BlockPoemTitle:
		return model.SegmentPoemTitle
	case model.BlockVerse:
		return model.SegmentVerse
	case model.BlockSection:
		return model.SegmentSection
	case model.BlockContent:
		return model.SegmentContent
	}
	return model.SegmentParagraph
}
