// Package model provides the data types shared by every stage of the
// segmentation pipeline.
//
// Loaders and the layout extractor produce [Block] values, the classifier
// produces a [ProfileCandidate], and segmenters turn blocks into ordered
// [Segment] values. [DocumentMetadata] travels alongside the blocks and
// collects warnings and errors so that a single document's anomalies never
// interrupt a batch.
//
// # Blocks
//
// A [Block] is a layout-extracted unit of text:
//
//	b := model.Block{
//	    Text: "Había una vez...",
//	    Page: 3,
//	    BBox: model.NewBBox(72, 100, 540, 160),
//	    Type: model.BlockText,
//	}
//
// Blocks are treated as values. Steps that merge or split blocks build new
// blocks with [Block.Clone] instead of mutating their inputs.
//
// # Segments
//
// A [Segment] is one unit of final output. Within one document the Order
// field is contiguous and 1-based; see [Renumber].
//
// # Geometry
//
// [BBox] uses page coordinates with the origin at the top-left corner, so
// Y0 is the top edge and Y1 the bottom edge. The zero value means the
// geometry is unknown (markdown and plain text sources).
package model
