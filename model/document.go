package model

import (
	"fmt"
	"path/filepath"
)

// Warning kinds recorded in DocumentMetadata.Warnings
const (
	WarnPageExtraction    = "page_extraction"
	WarnCorruption        = "corruption"
	WarnInsufficientData  = "insufficient_data"
	WarnSegmentationEmpty = "segmentation_empty"
	WarnOCR               = "ocr"
	WarnParse             = "parse"
	WarnDedup             = "dedup"
)

// DocumentMetadata collects document-level information and recoverable
// problems found while processing a document
type DocumentMetadata struct {
	SourcePath string         `json:"source_path"`
	FileName   string         `json:"file_name"`
	Format     string         `json:"format,omitempty"`
	Title      string         `json:"title,omitempty"`
	Author     string         `json:"author,omitempty"`
	PageCount  int            `json:"page_count,omitempty"`
	Language   string         `json:"language,omitempty"`
	Error      string         `json:"error,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// NewDocumentMetadata creates metadata for the given source path
func NewDocumentMetadata(path string) DocumentMetadata {
	return DocumentMetadata{
		SourcePath: path,
		FileName:   filepath.Base(path),
		Extra:      make(map[string]any),
	}
}

// Warn records a recoverable problem of the given kind
func (m *DocumentMetadata) Warn(kind, format string, args ...any) {
	m.Warnings = append(m.Warnings, kind+": "+fmt.Sprintf(format, args...))
}

// Set stores an extra metadata value
func (m *DocumentMetadata) Set(key string, value any) {
	if m.Extra == nil {
		m.Extra = make(map[string]any)
	}
	m.Extra[key] = value
}

// Get returns an extra metadata value
func (m DocumentMetadata) Get(key string) (any, bool) {
	v, ok := m.Extra[key]
	return v, ok
}

// Failed returns true when processing of the document was halted
func (m DocumentMetadata) Failed() bool {
	return m.Error != ""
}

// Clone returns a copy that does not share slices or maps with m
func (m DocumentMetadata) Clone() DocumentMetadata {
	c := m
	c.Warnings = append([]string(nil), m.Warnings...)
	c.Extra = make(map[string]any, len(m.Extra))
	for k, v := range m.Extra {
		c.Extra[k] = v
	}
	return c
}
