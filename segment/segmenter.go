package segment

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"

	"github.com/Karasowl/biblioperson/model"
)

// Registered segmenter names.
const (
	NameVerse         = "verse"
	NameMarkdown      = "markdown"
	NameMarkdownVerse = "markdown_verse"
	NameHeading       = "heading"
	NameJSON          = "json"
)

// ErrUnknownSegmenter is returned for a name that has no registered factory.
var ErrUnknownSegmenter = errors.New("unknown segmenter")

// Segmenter turns the blocks of one document into segments. Segment order
// follows block order; the caller assigns IDs and final order numbers.
type Segmenter interface {
	Name() string
	Segment(blocks []model.Block) []model.Segment
}

// StatsReporter is implemented by segmenters that keep statistics about
// their latest run.
type StatsReporter interface {
	Stats() map[string]any
}

// Options carries the per-profile settings a factory may use.
type Options struct {
	// Thresholds overrides numeric defaults by key, e.g. "max_verse_length"
	Thresholds map[string]float64

	// TitlePatterns, ParagraphPatterns and SectionPatterns are regular
	// expressions from the profile
	TitlePatterns     []string
	ParagraphPatterns []string
	SectionPatterns   []string

	Logger *slog.Logger
}

func (o Options) floatValue(key string, def float64) float64 {
	if v, ok := o.Thresholds[key]; ok {
		return v
	}
	return def
}

func (o Options) intValue(key string, def int) int {
	if v, ok := o.Thresholds[key]; ok {
		return int(v)
	}
	return def
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func compilePatterns(kind string, patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", kind, p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func matchAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Factory builds a segmenter from profile options.
type Factory func(Options) (Segmenter, error)

// Registry maps segmenter names to factories. It is filled once at startup
// and only read afterwards; it is not safe for concurrent registration.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with every built-in segmenter.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for name, f := range map[string]Factory{
		NameVerse:         func(o Options) (Segmenter, error) { return NewVerseSegmenterWithOptions(o) },
		NameMarkdown:      func(o Options) (Segmenter, error) { return NewMarkdownSegmenterWithOptions(o) },
		NameMarkdownVerse: func(o Options) (Segmenter, error) { return NewMarkdownVerseSegmenterWithOptions(o) },
		NameHeading:       func(o Options) (Segmenter, error) { return NewHeadingSegmenterWithOptions(o) },
		NameJSON:          func(o Options) (Segmenter, error) { return NewJSONSegmenter(), nil },
	} {
		// names are distinct, Register cannot fail here
		_ = r.Register(name, f)
	}
	return r
}

// Register adds a factory under name.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("register segmenter: empty name or nil factory")
	}
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("segmenter %q already registered", name)
	}
	r.factories[name] = f
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// New builds the segmenter registered under name.
func (r *Registry) New(name string, opts Options) (Segmenter, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSegmenter, name)
	}
	s, err := f(opts)
	if err != nil {
		return nil, fmt.Errorf("create segmenter %q: %w", name, err)
	}
	return s, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
