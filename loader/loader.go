package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Karasowl/biblioperson/format"
	"github.com/Karasowl/biblioperson/layout"
	"github.com/Karasowl/biblioperson/model"
	"github.com/Karasowl/biblioperson/ocr"
)

// ErrUnsupportedFormat is returned when no loader handles an extension.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Result is the output of a Loader.
type Result struct {
	Blocks   []model.Block
	Metadata model.DocumentMetadata
}

// Loader reads one document.
type Loader interface {
	Load(path string) (Result, error)
}

// Config holds settings shared by the built-in loaders.
type Config struct {
	// Layout configures the PDF block extractor
	Layout layout.Config

	// OCR enables recognition of image-only PDF pages. It has no effect
	// unless the binary is built with the "ocr" tag.
	OCR bool

	// OCRConfig configures the recognizer
	OCRConfig ocr.Config

	// JSONTextFields are the object keys searched, in order, for the text of
	// a JSON record (default: text, content, body, verse, texto, contenido)
	JSONTextFields []string

	// JSONTitleFields are the object keys searched for a record title
	// (default: title, titulo, heading)
	JSONTitleFields []string

	// Logger receives debug output; nil means slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns the default loader configuration.
func DefaultConfig() Config {
	return Config{
		Layout:          layout.DefaultConfig(),
		OCRConfig:       ocr.DefaultConfig(),
		JSONTextFields:  []string{"text", "content", "body", "verse", "texto", "contenido"},
		JSONTitleFields: []string{"title", "titulo", "heading"},
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Registry maps lower-case file extensions to loaders.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// DefaultRegistry registers the built-in loaders for every extension they handle.
func DefaultRegistry(cfg Config) *Registry {
	r := NewRegistry()
	pdf := NewPDFLoader(cfg)
	md := NewMarkdownLoader(cfg)
	txt := NewTextLoader(cfg)
	js := NewJSONLoader(cfg)
	htm := NewHTMLLoader(cfg)
	for ext, l := range map[string]Loader{
		".pdf": pdf, ".md": md, ".markdown": md, ".txt": txt, ".text": txt,
		".json": js, ".jsonl": js, ".ndjson": js, ".html": htm, ".htm": htm,
	} {
		r.loaders[ext] = l
	}
	return r
}

// Register adds a loader for ext. Registering an extension twice is an error.
func (r *Registry) Register(ext string, l Loader) error {
	ext = normalizeExt(ext)
	if _, ok := r.loaders[ext]; ok {
		return fmt.Errorf("loader for %q already registered", ext)
	}
	r.loaders[ext] = l
	return nil
}

// For returns the loader for the extension of path. A path without an
// extension is matched by content: PDF and HTML signatures, JSON, Markdown
// headings or plain text.
func (r *Registry) For(path string) (Loader, error) {
	ext := normalizeExt(filepath.Ext(path))
	if ext == "" {
		ext = sniff(path).Extension()
	}
	l, ok := r.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return l, nil
}

func sniff(path string) format.Format {
	f, err := os.Open(path)
	if err != nil {
		return format.Unknown
	}
	defer f.Close()
	ff, err := format.DetectFromReader(f, path)
	if err != nil {
		return format.Unknown
	}
	return ff
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// firstLine returns the first non-empty line of s, capped at 200 runes.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if rs := []rune(line); len(rs) > 200 {
			line = string(rs[:200])
		}
		return line
	}
	return ""
}
