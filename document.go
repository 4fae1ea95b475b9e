package biblioperson

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Karasowl/biblioperson/dedup"
	"github.com/Karasowl/biblioperson/loader"
	"github.com/Karasowl/biblioperson/model"
	"github.com/Karasowl/biblioperson/pipeline"
	"github.com/Karasowl/biblioperson/profile"
)

// Document provides a fluent interface for processing one source file.
// Each configuration method returns a new Document, so a configured
// Document can be reused as a template.
type Document struct {
	path    string
	options processOptions
}

// clone creates a copy of the Document. processOptions has no reference
// fields besides the logger, which is shared.
func (d *Document) clone() *Document {
	return &Document{path: d.path, options: d.options}
}

// ============================================================================
// Configuration Methods (return new Document instance)
// ============================================================================

// Profile selects a processing profile by name ("verso", "prosa", "json",
// "markdown_verso", "capitulos" or a custom one). "auto" classifies the
// document first.
//
// Example:
//
//	segments, _, err := biblioperson.Open("libro.pdf").Profile("capitulos").Segments()
func (d *Document) Profile(name string) *Document {
	n := d.clone()
	n.options.profile = name
	return n
}

// Auto restores automatic profile detection.
func (d *Document) Auto() *Document {
	return d.Profile(pipeline.ProfileAuto)
}

// Language sets the language attached to every segment.
func (d *Document) Language(lang string) *Document {
	n := d.clone()
	n.options.language = lang
	return n
}

// Output writes the segments to path. The format follows the extension
// unless Format is called.
//
// Example:
//
//	_, err := biblioperson.Open("poemas.pdf").Output("poemas.ndjson").Process()
func (d *Document) Output(path string) *Document {
	n := d.clone()
	n.options.output = path
	return n
}

// OutputDir writes the segments to dir, naming the file after the source.
func (d *Document) OutputDir(dir string) *Document {
	n := d.clone()
	n.options.outputDir = dir
	return n
}

// Format selects the export format: ndjson, json, csv or tsv.
func (d *Document) Format(format string) *Document {
	n := d.clone()
	n.options.format = format
	return n
}

// ProfilesDir loads additional YAML profiles from dir. Profiles with a
// built-in name replace the built-in one.
func (d *Document) ProfilesDir(dir string) *Document {
	n := d.clone()
	n.options.profilesDir = dir
	return n
}

// Dedup registers the document in the SQLite registry at dbPath.
func (d *Document) Dedup(dbPath string) *Document {
	n := d.clone()
	n.options.dedupPath = dbPath
	return n
}

// SkipDuplicates stops processing when the document is already registered.
// It only has an effect together with Dedup.
func (d *Document) SkipDuplicates() *Document {
	n := d.clone()
	n.options.skipDuplicates = true
	return n
}

// OCR enables text recognition for image-only PDF pages. It requires a
// binary built with the "ocr" tag.
func (d *Document) OCR() *Document {
	n := d.clone()
	n.options.ocr = true
	return n
}

// Logger sets the structured logger used by every component.
func (d *Document) Logger(l *slog.Logger) *Document {
	n := d.clone()
	n.options.logger = l
	return n
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Process runs the pipeline and returns the full result. A configuration
// problem such as an unknown profile is returned as an error here.
func (d *Document) Process() (*pipeline.Result, error) {
	return d.ProcessContext(context.Background())
}

// ProcessContext is Process with a context checked before the document is
// read.
func (d *Document) ProcessContext(ctx context.Context) (*pipeline.Result, error) {
	c, closeFn, err := d.coordinator()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	res, err := c.Process(ctx, d.path, d.options.profile, d.options.pipelineOptions())
	if err != nil {
		return res, err
	}
	if res.ConfigError != nil {
		return res, res.ConfigError
	}
	if res.Metadata.Failed() {
		return res, errors.New(res.Metadata.Error)
	}
	return res, nil
}

// Segments returns the ordered segments of the document and the non-fatal
// warnings recorded while producing them.
//
// Example:
//
//	segments, warnings, err := biblioperson.Open("poemas.pdf").Segments()
func (d *Document) Segments() ([]model.Segment, []Warning, error) {
	res, err := d.Process()
	if res == nil {
		return nil, nil, err
	}
	return res.Segments, parseWarnings(res.Metadata.Warnings), err
}

// Text returns the text of the document as loaded, blocks separated by a
// blank line, without segmentation.
func (d *Document) Text() (string, []Warning, error) {
	blocks, meta, err := d.Blocks()
	return model.BlocksText(blocks), parseWarnings(meta.Warnings), err
}

// Blocks returns the blocks produced by the loader for the document's
// extension.
func (d *Document) Blocks() ([]model.Block, model.DocumentMetadata, error) {
	l, err := loader.DefaultRegistry(d.loaderConfig()).For(d.path)
	if err != nil {
		return nil, model.NewDocumentMetadata(d.path), err
	}
	res, err := l.Load(d.path)
	return res.Blocks, res.Metadata, err
}

// Detect classifies the document and returns the detection report.
//
// Example:
//
//	report, err := biblioperson.Open("poemas.txt").Detect()
//	fmt.Println(report.DetectedProfile, report.Confidence)
func (d *Document) Detect() (*model.DetectionReport, error) {
	c, closeFn, err := d.coordinator()
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return c.Detect(d.path)
}

func (d *Document) loaderConfig() loader.Config {
	lc := loader.DefaultConfig()
	lc.OCR = d.options.ocr
	lc.Logger = d.options.logger
	return lc
}

// coordinator builds a coordinator for one terminal operation. The returned
// function releases the dedup store.
func (d *Document) coordinator() (*pipeline.Coordinator, func(), error) {
	profiles, err := profile.NewManager()
	if err != nil {
		return nil, nil, err
	}
	if d.options.profilesDir != "" {
		if err := profiles.LoadDir(d.options.profilesDir); err != nil {
			return nil, nil, err
		}
	}

	cfg := pipeline.Config{
		Loaders:  loader.DefaultRegistry(d.loaderConfig()),
		Profiles: profiles,
		Logger:   d.options.logger,
	}
	closeFn := func() {}
	if d.options.dedupPath != "" {
		store, err := dedup.Open(d.options.dedupPath)
		if err != nil {
			return nil, nil, err
		}
		cfg.Dedup = store
		closeFn = func() { store.Close() }
	}

	c, err := pipeline.New(cfg)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("create pipeline: %w", err)
	}
	return c, closeFn, nil
}
