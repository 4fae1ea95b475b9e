package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Karasowl/biblioperson/classify"
	"github.com/Karasowl/biblioperson/export"
	"github.com/Karasowl/biblioperson/layout"
	"github.com/Karasowl/biblioperson/loader"
	"github.com/Karasowl/biblioperson/model"
	"github.com/Karasowl/biblioperson/preprocess"
	"github.com/Karasowl/biblioperson/profile"
	"github.com/Karasowl/biblioperson/segment"
)

// ProfileAuto asks the coordinator to classify the document first.
const ProfileAuto = "auto"

// ActualSegmenterKey is the metadata key set when the verse segmenter
// produced nothing and the prose fallback ran instead.
const (
	ActualSegmenterKey = "_actual_segmenter"
	ProseFallback      = "prosa_fallback"
)

// DefaultLanguage is attached to segments when neither the caller nor the
// source names a language.
const DefaultLanguage = "es"

// Config wires the coordinator's collaborators. Nil registries and
// collaborators are replaced by the built-in ones in New; Dedup and
// AuthorDetector stay optional.
type Config struct {
	Loaders    *loader.Registry
	Segmenters *segment.Registry
	Profiles   *profile.Manager
	Classifier *classify.Classifier

	// Preprocessor overrides the per-profile preprocess.Cleaner
	Preprocessor preprocess.Preprocessor

	Dedup          Deduplicator
	Exporter       Exporter
	AuthorDetector AuthorDetector

	// Language is the default segment language (default: "es")
	Language string

	Logger *slog.Logger
}

// Options tune a single Process call.
type Options struct {
	// OutputPath is the export destination; empty disables export unless
	// OutputDir is set
	OutputPath string

	// OutputDir receives <name><format extension> when OutputPath is empty
	OutputDir string

	// Format is the export format name (ndjson, json, csv, tsv); empty
	// means ndjson, or the OutputPath extension
	Format string

	// Language overrides the language attached to segments
	Language string

	// SkipDuplicates stops processing of a document already registered in
	// the dedup store
	SkipDuplicates bool
}

// Result is the outcome of processing one document.
type Result struct {
	Segments []model.Segment
	Stats    map[string]any
	Metadata model.DocumentMetadata

	// Detection is set when the profile was chosen automatically
	Detection *model.DetectionReport

	// ConfigError is the error recorded in Metadata.Error, if any
	ConfigError *ConfigurationError
}

// Coordinator sequences loading, classification, preprocessing,
// segmentation and enrichment. A Coordinator is not safe for concurrent
// use; create one per goroutine.
type Coordinator struct {
	config Config
}

// New creates a coordinator, filling unset collaborators with defaults.
func New(config Config) (*Coordinator, error) {
	if config.Loaders == nil {
		lc := loader.DefaultConfig()
		lc.Logger = config.Logger
		config.Loaders = loader.DefaultRegistry(lc)
	}
	if config.Segmenters == nil {
		config.Segmenters = segment.DefaultRegistry()
	}
	if config.Profiles == nil {
		m, err := profile.NewManager()
		if err != nil {
			return nil, fmt.Errorf("load built-in profiles: %w", err)
		}
		config.Profiles = m
	}
	if config.Classifier == nil {
		cc := classify.DefaultConfig()
		cc.Logger = config.Logger
		config.Classifier = classify.NewWithConfig(cc)
	}
	if config.Exporter == nil {
		config.Exporter = export.NewExporter()
	}
	if config.Language == "" {
		config.Language = DefaultLanguage
	}
	return &Coordinator{config: config}, nil
}

// Config returns the coordinator's configuration.
func (c *Coordinator) Config() Config {
	return c.config
}

func (c *Coordinator) logger() *slog.Logger {
	if c.config.Logger != nil {
		return c.config.Logger
	}
	return slog.Default()
}

// Process runs the pipeline on one document. profileName is a registered
// profile or "auto".
//
// Configuration problems and documents the loader could not parse are
// recorded in Result.Metadata.Error and returned with a nil error; nothing
// is segmented or exported for them. The returned error is ctx.Err() when ctx is
// already done, or a *layout.ExtractionError when the source cannot be read.
func (c *Coordinator) Process(ctx context.Context, path, profileName string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	log := c.logger().With("file", path)
	res := &Result{Stats: map[string]any{}, Metadata: model.NewDocumentMetadata(path)}

	pre := model.NewDocumentMetadata(path)
	if c.config.Dedup != nil {
		if skip := c.checkDuplicate(path, &pre, opts, log); skip {
			res.Metadata = pre
			res.Stats["skipped"] = "duplicate"
			return res, nil
		}
	}

	ld, err := c.config.Loaders.For(path)
	if err != nil {
		return c.configError(res, pre, ConfigLoader, strings.ToLower(filepath.Ext(path)), err, log), nil
	}
	loaded, err := ld.Load(path)
	if err != nil {
		res.Metadata = mergeMetadata(loaded.Metadata, pre)
		var exErr *layout.ExtractionError
		if !errors.As(err, &exErr) {
			err = &layout.ExtractionError{Path: path, Err: err}
		}
		log.Error("extraction failed", "error", err)
		return res, err
	}
	meta := mergeMetadata(loaded.Metadata, pre)
	blocks := loaded.Blocks
	res.Stats["blocks_loaded"] = len(blocks)
	if meta.Failed() {
		res.Metadata = meta
		res.Stats["elapsed"] = time.Since(start).String()
		log.Error("loader failed", "error", meta.Error)
		return res, nil
	}

	if profileName == "" || profileName == ProfileAuto {
		report := c.config.Classifier.Report(path, model.BlocksText(blocks))
		res.Detection = &report
		profileName = string(report.DetectedProfile)
		meta.Set("detected_profile", profileName)
		meta.Set("detection_confidence", report.Confidence)
		log.Info("profile detected", "profile", profileName, "confidence", report.Confidence)
	}

	prof, err := c.config.Profiles.Get(profileName)
	if err != nil {
		return c.configError(res, meta, ConfigProfile, profileName, err, log), nil
	}
	if !prof.Accepts(filepath.Ext(path)) {
		log.Debug("profile does not list file type", "profile", prof.Name, "ext", filepath.Ext(path))
	}

	segOpts := prof.SegmenterOptions(c.config.Logger)
	seg, err := c.config.Segmenters.New(prof.Segmenter, segOpts)
	if err != nil {
		return c.configError(res, meta, ConfigSegmenter, prof.Segmenter, err, log), nil
	}

	pp := c.config.Preprocessor
	if pp == nil {
		base := preprocess.DefaultConfig()
		base.Logger = c.config.Logger
		pc, err := preprocess.ConfigFromMap(base, prof.PreProcessorConfig)
		if err != nil {
			return c.configError(res, meta, ConfigPreprocessor, prof.Name, err, log), nil
		}
		pp = preprocess.NewWithConfig(pc)
	}
	blocks, meta = pp.Process(blocks, meta)
	res.Stats["blocks_preprocessed"] = len(blocks)

	segments := seg.Segment(blocks)
	actual := seg
	if len(segments) == 0 && len(blocks) > 0 {
		if isVerseSegmenter(prof.Segmenter) {
			fb, err := c.config.Segmenters.New(prof.Fallback(), segOpts)
			if err != nil {
				return c.configError(res, meta, ConfigSegmenter, prof.Fallback(), err, log), nil
			}
			segments = fb.Segment(blocks)
			actual = fb
			meta.Set(ActualSegmenterKey, ProseFallback)
			meta.Warn(model.WarnSegmentationEmpty, "%s segmenter produced no segments from %d blocks; re-segmented with %s",
				prof.Segmenter, len(blocks), fb.Name())
			log.Warn("verse segmentation empty, escalated to prose", "segmenter", prof.Segmenter, "fallback", fb.Name())
		} else {
			meta.Warn(model.WarnSegmentationEmpty, "%s segmenter produced no segments from %d blocks", prof.Segmenter, len(blocks))
		}
	}

	language := c.language(opts, meta)
	meta.Language = language
	author := c.detectAuthor(segments, prof, &meta)
	c.enrich(segments, meta.FileName, prof.Name, language, author)

	res.Segments = segments
	res.Stats["profile"] = prof.Name
	res.Stats["segmenter"] = prof.Segmenter
	res.Stats["actual_segmenter"] = actual.Name()
	res.Stats["segments"] = len(segments)
	res.Stats["segment_types"] = model.CountByType(segments)
	if sr, ok := actual.(segment.StatsReporter); ok {
		res.Stats["segmenter_stats"] = sr.Stats()
	}

	if out := outputPath(opts, path); out != "" {
		if err := c.config.Exporter.ExportSegments(segments, out, meta, opts.Format); err != nil {
			meta.Error = fmt.Sprintf("export %s: %v", out, err)
			log.Error("export failed", "output", out, "error", err)
		} else {
			res.Stats["output"] = out
		}
	}

	res.Stats["elapsed"] = time.Since(start).String()
	res.Metadata = meta
	log.Info("document processed", "profile", prof.Name, "segmenter", actual.Name(), "segments", len(segments))
	return res, nil
}

// ProcessBatch processes paths one after another. ctx is checked between
// documents only; a cancelled batch returns the results gathered so far
// with ctx.Err(). Extraction failures are recorded in the document's
// Metadata.Error and do not stop the batch. With more than one path
// opts.OutputPath is ignored; use opts.OutputDir.
func (c *Coordinator) ProcessBatch(ctx context.Context, paths []string, profileName string, opts Options) ([]*Result, error) {
	results := make([]*Result, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		o := opts
		if len(paths) > 1 {
			o.OutputPath = ""
		}
		res, err := c.Process(ctx, p, profileName, o)
		if err != nil {
			var exErr *layout.ExtractionError
			if !errors.As(err, &exErr) {
				return results, err
			}
			if res == nil {
				res = &Result{Stats: map[string]any{}, Metadata: model.NewDocumentMetadata(p)}
			}
			res.Metadata.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}

// Detect loads path and classifies its text without segmenting it.
func (c *Coordinator) Detect(path string) (*model.DetectionReport, error) {
	ld, err := c.config.Loaders.For(path)
	if err != nil {
		return nil, &ConfigurationError{Kind: ConfigLoader, Name: strings.ToLower(filepath.Ext(path)), Err: err}
	}
	loaded, err := ld.Load(path)
	if err != nil {
		return nil, err
	}
	report := c.config.Classifier.Report(path, model.BlocksText(loaded.Blocks))
	return &report, nil
}

func (c *Coordinator) checkDuplicate(path string, meta *model.DocumentMetadata, opts Options, log *slog.Logger) bool {
	hash, isNew, err := c.config.Dedup.CheckAndRegister(path)
	if err != nil {
		meta.Warn(model.WarnDedup, "%v", err)
		log.Warn("dedup check failed", "error", err)
		return false
	}
	meta.Set("content_hash", hash)
	if isNew {
		return false
	}
	info, err := c.config.Dedup.DuplicateInfo(hash)
	if err != nil {
		meta.Warn(model.WarnDedup, "%v", err)
	}
	if info != nil {
		meta.Set("duplicate_of", info.FilePath)
		meta.Set("first_seen", info.FirstSeen)
	}
	log.Info("duplicate document", "hash", hash, "skip", opts.SkipDuplicates)
	return opts.SkipDuplicates
}

func (c *Coordinator) configError(res *Result, meta model.DocumentMetadata, kind, name string, err error, log *slog.Logger) *Result {
	cerr := &ConfigurationError{Kind: kind, Name: name, Err: err}
	meta.Error = cerr.Error()
	res.Metadata = meta
	res.ConfigError = cerr
	log.Error("processing halted", "error", cerr)
	return res
}

func (c *Coordinator) language(opts Options, meta model.DocumentMetadata) string {
	switch {
	case opts.Language != "":
		return opts.Language
	case meta.Language != "":
		return meta.Language
	default:
		return c.config.Language
	}
}

// detectAuthor asks the detector unless the profile disables author
// detection. A result below the profile's confidence_threshold is recorded
// but not applied.
func (c *Coordinator) detectAuthor(segments []model.Segment, prof profile.Profile, meta *model.DocumentMetadata) string {
	if c.config.AuthorDetector == nil || len(segments) == 0 {
		return meta.Author
	}
	if enabled, ok := prof.AuthorDetection["enabled"].(bool); ok && !enabled {
		return meta.Author
	}
	info := c.config.AuthorDetector.Detect(segments, prof.ContentType, meta.Title, meta.SourcePath)
	if info == nil || info.Name == "" {
		return meta.Author
	}
	meta.Set("author_detection", *info)
	if info.Confidence < threshold(prof.AuthorDetection) {
		return meta.Author
	}
	if meta.Author == "" {
		meta.Author = info.Name
	}
	return info.Name
}

func threshold(m map[string]any) float64 {
	switch v := m["confidence_threshold"].(type) {
	case float64:
		return v
	case uint64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// enrich assigns identity, contiguous order and provenance to every segment.
func (c *Coordinator) enrich(segments []model.Segment, file, profileName, language, author string) {
	model.Renumber(segments)
	for i := range segments {
		s := &segments[i]
		s.ID = uuid.NewString()
		if s.Metadata == nil {
			s.Metadata = make(map[string]any)
		}
		s.Metadata[export.KeySourceFile] = file
		s.Metadata[export.KeyProfile] = profileName
		s.Metadata[export.KeyLanguage] = language
		if author != "" {
			s.Metadata[export.KeyAuthor] = author
		}
	}
}

func isVerseSegmenter(name string) bool {
	return name == segment.NameVerse || name == segment.NameMarkdownVerse
}

// mergeMetadata copies what was recorded before loading into the loader's
// metadata.
func mergeMetadata(loaded, pre model.DocumentMetadata) model.DocumentMetadata {
	if loaded.SourcePath == "" {
		loaded = model.NewDocumentMetadata(pre.SourcePath)
	}
	loaded.Warnings = append(pre.Warnings, loaded.Warnings...)
	for k, v := range pre.Extra {
		loaded.Set(k, v)
	}
	return loaded
}

func outputPath(opts Options, source string) string {
	if opts.OutputPath != "" {
		return opts.OutputPath
	}
	if opts.OutputDir == "" {
		return ""
	}
	f, err := export.ParseFormat(opts.Format)
	if err != nil {
		f = export.FormatNDJSON
	}
	base := filepath.Base(source)
	return filepath.Join(opts.OutputDir, strings.TrimSuffix(base, filepath.Ext(base))+f.FileExtension())
}
