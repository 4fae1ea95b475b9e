// Package export serializes segments for dataset construction.
//
// NDJSON is the default: one JSON object per segment with id, order, type,
// text and the lifted source_file, profile, language and author fields.
// The JSON format wraps all segments with the document metadata; CSV and
// TSV flatten segment metadata into meta_* columns.
//
//	exp := export.NewExporter()
//	err := exp.ExportSegments(segments, "out/poemas.ndjson", meta, "")
package export
