package pipeline

import (
	"fmt"

	"github.com/Karasowl/biblioperson/dedup"
	"github.com/Karasowl/biblioperson/model"
)

// AuthorInfo is an author attribution with its provenance.
type AuthorInfo struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method,omitempty"`
	Source     string  `json:"source,omitempty"`
}

// AuthorDetector attributes a document to an author. It returns nil when it
// has no answer.
type AuthorDetector interface {
	Detect(segments []model.Segment, profileType model.ProfileName, documentTitle, sourcePath string) *AuthorInfo
}

// Deduplicator registers documents by content hash.
type Deduplicator interface {
	CheckAndRegister(path string) (hash string, isNew bool, err error)
	DuplicateInfo(hash string) (*dedup.Record, error)
}

// Exporter writes the segments of one document.
type Exporter interface {
	ExportSegments(segments []model.Segment, outputPath string, meta model.DocumentMetadata, format string) error
}

// Kinds of ConfigurationError.
const (
	ConfigProfile      = "profile"
	ConfigLoader       = "loader"
	ConfigSegmenter    = "segmenter"
	ConfigPreprocessor = "preprocessor"
)

// ConfigurationError reports an unknown profile, loader or segmenter, or an
// invalid profile setting. The coordinator records it in
// DocumentMetadata.Error instead of returning it.
type ConfigurationError struct {
	Kind string
	Name string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
