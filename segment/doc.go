// Package segment turns the blocks of one document into ordered segments.
//
// Several interchangeable [Segmenter] implementations exist, each a small
// state machine suited to one kind of content:
//
//   - [VerseSegmenter] ("verse") groups lines into poems under title-like
//     lines and yields nothing for prose
//   - [MarkdownSegmenter] ("markdown") subdivides long prose blocks and
//     merges fragments conservatively into paragraphs
//   - [MarkdownVerseSegmenter] ("markdown_verse") reads poems from typed
//     markdown blocks
//   - [HeadingSegmenter] ("heading") builds sections by heading depth
//   - [JSONSegmenter] ("json") emits one segment per structured record
//
// Segmenters are looked up by name in a [Registry] of factories, filled
// once at startup:
//
//	reg := segment.DefaultRegistry()
//	s, err := reg.New("markdown", segment.Options{})
//	if err != nil {
//	    return err
//	}
//	segments := s.Segment(blocks)
//
// Segmenters do not assign IDs or order numbers; the pipeline does that
// after choosing the final output.
package segment
