package biblioperson

import (
	"log/slog"

	"github.com/Karasowl/biblioperson/pipeline"
)

// processOptions holds the configuration collected by a Document.
type processOptions struct {
	profile        string
	language       string
	output         string
	outputDir      string
	format         string
	profilesDir    string
	dedupPath      string
	skipDuplicates bool
	ocr            bool
	logger         *slog.Logger
}

// defaultOptions returns the default processing options.
func defaultOptions() processOptions {
	return processOptions{
		profile: pipeline.ProfileAuto,
	}
}

// pipelineOptions returns the per-call options for the coordinator.
func (o processOptions) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		OutputPath:     o.output,
		OutputDir:      o.outputDir,
		Format:         o.format,
		Language:       o.language,
		SkipDuplicates: o.skipDuplicates,
	}
}
