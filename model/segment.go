package model

// SegmentType classifies a unit of output
type SegmentType string

const (
	SegmentTitle     SegmentType = "title"
	SegmentPoemTitle SegmentType = "poem_title"
	SegmentVerse     SegmentType = "verse"
	SegmentContent   SegmentType = "content"
	SegmentParagraph SegmentType = "paragraph"
	SegmentSection   SegmentType = "section"
)

// Segment is one unit of the final structured output
type Segment struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Type     SegmentType    `json:"type"`
	Order    int            `json:"order"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewSegment creates a segment with an initialized metadata map
func NewSegment(text string, typ SegmentType) Segment {
	return Segment{
		Text:     text,
		Type:     typ,
		Metadata: make(map[string]any),
	}
}

// WithMeta sets a metadata key and returns the segment for chaining
func (s Segment) WithMeta(key string, value any) Segment {
	if s.Metadata == nil {
		s.Metadata = make(map[string]any)
	}
	s.Metadata[key] = value
	return s
}

// Renumber assigns contiguous 1-based order values in slice order
func Renumber(segments []Segment) {
	for i := range segments {
		segments[i].Order = i + 1
	}
}

// CountByType returns how many segments of each type are present
func CountByType(segments []Segment) map[SegmentType]int {
	counts := make(map[SegmentType]int)
	for _, s := range segments {
		counts[s.Type]++
	}
	return counts
}
