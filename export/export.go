package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Karasowl/biblioperson/model"
)

// Format is an output serialization.
type Format int

const (
	// FormatNDJSON writes one JSON object per segment per line
	FormatNDJSON Format = iota
	// FormatJSON writes a single document object holding all segments
	FormatJSON
	// FormatCSV writes one row per segment
	FormatCSV
	// FormatTSV writes tab-separated rows
	FormatTSV
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown export format")

// String returns the format name accepted by ParseFormat.
func (f Format) String() string {
	switch f {
	case FormatNDJSON:
		return "ndjson"
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatTSV:
		return "tsv"
	default:
		return "unknown"
	}
}

// FileExtension returns the usual file extension for the format.
func (f Format) FileExtension() string {
	switch f {
	case FormatNDJSON:
		return ".ndjson"
	case FormatJSON:
		return ".json"
	case FormatCSV:
		return ".csv"
	case FormatTSV:
		return ".tsv"
	default:
		return ".txt"
	}
}

// ParseFormat maps a name to a Format. The empty string means NDJSON.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ndjson", "jsonl":
		return FormatNDJSON, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "tsv":
		return FormatTSV, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatForPath guesses the format from an output file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	case ".tsv":
		return FormatTSV
	default:
		return FormatNDJSON
	}
}

// Config holds configuration options for export
type Config struct {
	Format Format

	// IncludeMetadata writes the per-segment metadata map
	IncludeMetadata bool

	// MetadataFields restricts the metadata keys written (nil = all)
	MetadataFields []string

	// FlattenMetadata turns nested maps into dot-notation keys
	FlattenMetadata bool

	// PrettyPrint indents JSON output
	PrettyPrint bool

	// CSVDelimiter is the field separator for CSV
	CSVDelimiter rune

	// IncludeHeader writes a header row for CSV and TSV
	IncludeHeader bool
}

// DefaultConfig returns the NDJSON configuration used by the pipeline.
func DefaultConfig() Config {
	return Config{
		Format:          FormatNDJSON,
		IncludeMetadata: true,
		CSVDelimiter:    ',',
		IncludeHeader:   true,
	}
}

// Exporter writes segments in one of the supported formats.
type Exporter struct {
	config Config
}

// NewExporter creates an exporter with DefaultConfig.
func NewExporter() *Exporter {
	return &Exporter{config: DefaultConfig()}
}

// NewExporterWithConfig creates an exporter with custom configuration.
func NewExporterWithConfig(config Config) *Exporter {
	return &Exporter{config: config}
}

// Config returns the exporter configuration.
func (e *Exporter) Config() Config {
	return e.config
}

// Keys lifted from segment metadata into top-level record fields.
const (
	KeySourceFile = "source_file"
	KeyProfile    = "profile"
	KeyLanguage   = "language"
	KeyAuthor     = "author"
)

// Record is one exported segment.
type Record struct {
	ID         string            `json:"id"`
	Order      int               `json:"order"`
	Type       model.SegmentType `json:"type"`
	Text       string            `json:"text"`
	SourceFile string            `json:"source_file,omitempty"`
	Profile    string            `json:"profile,omitempty"`
	Language   string            `json:"language,omitempty"`
	Author     string            `json:"author,omitempty"`
	Metadata   map[string]any    `json:"metadata,omitempty"`
}

// Document is the JSON format envelope.
type Document struct {
	Document model.DocumentMetadata `json:"document"`
	Segments []Record               `json:"segments"`
}

// Export writes segments to w.
func (e *Exporter) Export(segments []model.Segment, meta model.DocumentMetadata, w io.Writer) error {
	switch e.config.Format {
	case FormatNDJSON:
		return e.exportNDJSON(segments, meta, w)
	case FormatJSON:
		return e.exportJSON(segments, meta, w)
	case FormatCSV, FormatTSV:
		return e.exportCSV(segments, meta, w)
	default:
		return fmt.Errorf("unsupported export format: %v", e.config.Format)
	}
}

// ExportToFile writes segments to path, creating parent directories.
func (e *Exporter) ExportToFile(segments []model.Segment, meta model.DocumentMetadata, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := e.Export(segments, meta, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ExportToString returns the serialized segments.
func (e *Exporter) ExportToString(segments []model.Segment, meta model.DocumentMetadata) (string, error) {
	var buf bytes.Buffer
	if err := e.Export(segments, meta, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ExportSegments writes segments to outputPath in the named format. An
// empty format is guessed from the file extension.
func (e *Exporter) ExportSegments(segments []model.Segment, outputPath string, meta model.DocumentMetadata, format string) error {
	cfg := e.config
	if format == "" {
		cfg.Format = FormatForPath(outputPath)
	} else {
		f, err := ParseFormat(format)
		if err != nil {
			return err
		}
		cfg.Format = f
	}
	if cfg.Format == FormatTSV {
		cfg.CSVDelimiter = '\t'
	}
	return NewExporterWithConfig(cfg).ExportToFile(segments, meta, outputPath)
}

// record converts a segment, falling back to document metadata for the
// lifted fields.
func (e *Exporter) record(s model.Segment, meta model.DocumentMetadata) Record {
	r := Record{
		ID:         s.ID,
		Order:      s.Order,
		Type:       s.Type,
		Text:       s.Text,
		SourceFile: stringMeta(s.Metadata, KeySourceFile, meta.FileName),
		Profile:    stringMeta(s.Metadata, KeyProfile, ""),
		Language:   stringMeta(s.Metadata, KeyLanguage, meta.Language),
		Author:     stringMeta(s.Metadata, KeyAuthor, meta.Author),
	}
	if e.config.IncludeMetadata {
		rest := make(map[string]any, len(s.Metadata))
		for k, v := range s.Metadata {
			switch k {
			case KeySourceFile, KeyProfile, KeyLanguage, KeyAuthor:
				continue
			}
			rest[k] = v
		}
		if m := e.filterMetadata(rest); len(m) > 0 {
			r.Metadata = m
		}
	}
	return r
}

func stringMeta(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// filterMetadata filters metadata based on configuration
func (e *Exporter) filterMetadata(metadata map[string]any) map[string]any {
	if e.config.MetadataFields != nil {
		filtered := make(map[string]any)
		for _, field := range e.config.MetadataFields {
			if val, ok := metadata[field]; ok {
				filtered[field] = val
			}
		}
		metadata = filtered
	}
	if e.config.FlattenMetadata {
		return flattenMetadata(metadata, "")
	}
	return metadata
}

// flattenMetadata flattens nested maps into dot-notation keys
func flattenMetadata(data map[string]any, prefix string) map[string]any {
	result := make(map[string]any)
	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			for nk, nv := range flattenMetadata(nested, fullKey) {
				result[nk] = nv
			}
			continue
		}
		result[fullKey] = value
	}
	return result
}

func (e *Exporter) encoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if e.config.PrettyPrint {
		enc.SetIndent("", "  ")
	}
	return enc
}

// exportNDJSON writes one record per line
func (e *Exporter) exportNDJSON(segments []model.Segment, meta model.DocumentMetadata, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, s := range segments {
		if err := enc.Encode(e.record(s, meta)); err != nil {
			return fmt.Errorf("encoding segment %d: %w", i, err)
		}
	}
	return nil
}

// exportJSON writes the document envelope
func (e *Exporter) exportJSON(segments []model.Segment, meta model.DocumentMetadata, w io.Writer) error {
	doc := Document{Document: meta, Segments: make([]Record, len(segments))}
	for i, s := range segments {
		doc.Segments[i] = e.record(s, meta)
	}
	if err := e.encoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return nil
}

var standardColumns = []string{"id", "order", "type", "text", KeySourceFile, KeyProfile, KeyLanguage, KeyAuthor}

// exportCSV writes segments as CSV or TSV
func (e *Exporter) exportCSV(segments []model.Segment, meta model.DocumentMetadata, w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = e.config.CSVDelimiter
	if e.config.Format == FormatTSV {
		cw.Comma = '\t'
	}
	if cw.Comma == 0 {
		cw.Comma = ','
	}

	records := make([]Record, len(segments))
	metaKeys := make(map[string]bool)
	for i, s := range segments {
		records[i] = e.record(s, meta)
		records[i].Metadata = flattenMetadata(records[i].Metadata, "")
		for k := range records[i].Metadata {
			metaKeys[k] = true
		}
	}
	keys := make([]string, 0, len(metaKeys))
	for k := range metaKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if e.config.IncludeHeader {
		header := append([]string(nil), standardColumns...)
		for _, k := range keys {
			header = append(header, "meta_"+k)
		}
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
	}

	for i, r := range records {
		row := []string{r.ID, strconv.Itoa(r.Order), string(r.Type), r.Text, r.SourceFile, r.Profile, r.Language, r.Author}
		for _, k := range keys {
			v, ok := r.Metadata[k]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, formatValue(v))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatValue formats a metadata value for a CSV cell
func formatValue(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []string:
		return "[" + strings.Join(v, ",") + "]"
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
