package profile

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/Karasowl/biblioperson/model"
	"github.com/Karasowl/biblioperson/segment"
)

// DefaultFallbackSegmenter is used when a verse segmenter yields nothing and
// the profile names no fallback.
const DefaultFallbackSegmenter = segment.NameMarkdown

// Profile is a named processing configuration: which segmenter to run and
// with which thresholds and patterns.
type Profile struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	ContentType model.ProfileName `yaml:"content_type,omitempty" json:"content_type,omitempty"`

	// Segmenter is the registered segmenter name
	Segmenter string `yaml:"segmenter" json:"segmenter"`

	// FallbackSegmenter replaces a verse segmenter that produced nothing
	FallbackSegmenter string `yaml:"fallback_segmenter,omitempty" json:"fallback_segmenter,omitempty"`

	// FileTypes lists accepted extensions; empty accepts every format
	FileTypes []string `yaml:"file_types,omitempty" json:"file_types,omitempty"`

	Thresholds        map[string]float64 `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
	TitlePatterns     []string           `yaml:"title_patterns,omitempty" json:"title_patterns,omitempty"`
	ParagraphPatterns []string           `yaml:"paragraph_patterns,omitempty" json:"paragraph_patterns,omitempty"`
	SectionPatterns   []string           `yaml:"section_patterns,omitempty" json:"section_patterns,omitempty"`

	AuthorDetection    map[string]any `yaml:"author_detection,omitempty" json:"author_detection,omitempty"`
	PreProcessorConfig map[string]any `yaml:"pre_processor_config,omitempty" json:"pre_processor_config,omitempty"`
}

// Parse decodes a YAML profile and validates it.
func Parse(data []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks that the profile names itself and a segmenter.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile has no name")
	}
	if strings.TrimSpace(p.Segmenter) == "" {
		return fmt.Errorf("profile %q has no segmenter", p.Name)
	}
	if p.ContentType != "" && !p.ContentType.Valid() {
		return fmt.Errorf("profile %q: unknown content type %q", p.Name, p.ContentType)
	}
	return nil
}

// Fallback returns the segmenter used when the configured one yields no
// segments.
func (p Profile) Fallback() string {
	if p.FallbackSegmenter != "" {
		return p.FallbackSegmenter
	}
	return DefaultFallbackSegmenter
}

// Accepts reports whether the profile handles files with extension ext.
func (p Profile) Accepts(ext string) bool {
	if len(p.FileTypes) == 0 {
		return true
	}
	ext = strings.ToLower(ext)
	for _, ft := range p.FileTypes {
		if strings.ToLower(ft) == ext {
			return true
		}
	}
	return false
}

// SegmenterOptions returns the options passed to the segmenter factory.
func (p Profile) SegmenterOptions(logger *slog.Logger) segment.Options {
	return segment.Options{
		Thresholds:        p.Thresholds,
		TitlePatterns:     p.TitlePatterns,
		ParagraphPatterns: p.ParagraphPatterns,
		SectionPatterns:   p.SectionPatterns,
		Logger:            logger,
	}
}

// AuthorDetectionEnabled reports whether author_detection.enabled is set.
func (p Profile) AuthorDetectionEnabled() bool {
	v, ok := p.AuthorDetection["enabled"].(bool)
	return ok && v
}
