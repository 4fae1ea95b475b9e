// Package profile loads the named processing profiles that select a
// segmenter and its thresholds.
//
// Profiles are YAML documents:
//
//	name: verso
//	content_type: verso
//	segmenter: verse
//	fallback_segmenter: markdown
//	thresholds:
//	  max_verse_length: 150
//	title_patterns:
//	  - '^Soneto\s+\d+$'
//
// A [Manager] starts with the built-in profiles (prosa, verso, json,
// markdown_verso, capitulos); [Manager.LoadDir] adds or replaces profiles
// from a directory.
package profile
