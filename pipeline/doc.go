// Package pipeline turns source documents into ordered, classified segments.
//
// A [Coordinator] owns its registries and collaborators and runs every
// document through the same sequence:
//
//  1. dedup check (optional)
//  2. loader chosen by file extension
//  3. content-type classification when the profile is "auto"
//  4. profile lookup and segmenter construction
//  5. preprocessing
//  6. segmentation, escalating to the profile's fallback segmenter when a
//     verse segmenter returns nothing for non-empty input
//  7. enrichment: id, order, source file, profile, language, author
//  8. export (optional)
//
// The coordinator holds no segmentation or classification logic itself.
//
//	c, err := pipeline.New(pipeline.Config{})
//	res, err := c.Process(ctx, "poemas.pdf", pipeline.ProfileAuto, pipeline.Options{})
//	if res.Metadata.Failed() {
//	    // unknown profile, loader or segmenter
//	}
package pipeline
