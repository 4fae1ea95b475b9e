package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Karasowl/biblioperson/dedup"
	"github.com/Karasowl/biblioperson/export"
	"github.com/Karasowl/biblioperson/loader"
	"github.com/Karasowl/biblioperson/pipeline"
)

type segmentFlags struct {
	profile        string
	output         string
	outputDir      string
	format         string
	language       string
	profilesDir    string
	dedupDB        string
	skipDuplicates bool
	ocr            bool
}

func newSegmentCmd(c *cli) *cobra.Command {
	f := &segmentFlags{}
	cmd := &cobra.Command{
		Use:   "segment FILE...",
		Short: "Segment documents and write the segments",
		Long: `Segment runs every FILE through the pipeline. Without --output or
--output-dir the segments are written to standard output.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.profilesDir = pick(cmd, "profiles-dir", f.profilesDir, c.settings.ProfilesDir)
			f.dedupDB = pick(cmd, "dedup-db", f.dedupDB, c.settings.DedupDB)
			f.language = pick(cmd, "language", f.language, c.settings.Language)
			if f.output != "" && len(args) > 1 {
				return fmt.Errorf("--output takes a single file; use --output-dir")
			}
			return runSegment(cmd, c, f, args)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.profile, "profile", "p", pipeline.ProfileAuto, "profile name or auto")
	fl.StringVarP(&f.output, "output", "o", "", "output file")
	fl.StringVar(&f.outputDir, "output-dir", "", "output directory, one file per document")
	fl.StringVarP(&f.format, "format", "f", "", "ndjson, json, csv or tsv (default ndjson, or the output extension)")
	fl.StringVarP(&f.language, "language", "l", "", "segment language (default es)")
	fl.StringVar(&f.profilesDir, "profiles-dir", "", "directory of additional YAML profiles")
	fl.StringVar(&f.dedupDB, "dedup-db", "", "SQLite file recording processed documents")
	fl.BoolVar(&f.skipDuplicates, "skip-duplicates", false, "skip documents already in the dedup database")
	fl.BoolVar(&f.ocr, "ocr", false, "recognise image-only PDF pages (needs an ocr build)")
	return cmd
}

func runSegment(cmd *cobra.Command, c *cli, f *segmentFlags, paths []string) error {
	profiles, err := loadProfiles(f.profilesDir)
	if err != nil {
		return err
	}
	lc := loader.DefaultConfig()
	lc.OCR = f.ocr
	lc.Logger = c.logger

	cfg := pipeline.Config{
		Loaders:  loader.DefaultRegistry(lc),
		Profiles: profiles,
		Language: f.language,
		Logger:   c.logger,
	}
	if f.dedupDB != "" {
		store, err := dedup.Open(f.dedupDB)
		if err != nil {
			return err
		}
		defer store.Close()
		cfg.Dedup = store
	}
	coord, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	toStdout := f.output == "" && f.outputDir == ""
	var stdout *export.Exporter
	if toStdout {
		format, err := export.ParseFormat(f.format)
		if err != nil {
			return err
		}
		ec := export.DefaultConfig()
		ec.Format = format
		stdout = export.NewExporterWithConfig(ec)
	}

	opts := pipeline.Options{
		OutputPath:     f.output,
		OutputDir:      f.outputDir,
		Format:         f.format,
		SkipDuplicates: f.skipDuplicates,
	}
	results, err := coord.ProcessBatch(cmd.Context(), paths, f.profile, opts)
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		meta := res.Metadata
		if meta.Failed() {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", meta.SourcePath, meta.Error)
			continue
		}
		if toStdout {
			if err := stdout.Export(res.Segments, meta, cmd.OutOrStdout()); err != nil {
				return err
			}
		}
		summary := fmt.Sprintf("%s: %d segments (profile %v, segmenter %v)",
			meta.SourcePath, len(res.Segments), res.Stats["profile"], res.Stats["actual_segmenter"])
		if skipped, ok := res.Stats["skipped"]; ok {
			summary = fmt.Sprintf("%s: skipped (%v)", meta.SourcePath, skipped)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), summary)
		for _, w := range meta.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "  warning: %s\n", w)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}
