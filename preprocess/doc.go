// Package preprocess cleans loaded blocks before segmentation.
//
// The default [Cleaner] normalises text to Unicode NFC, strips control and
// format characters, collapses runs of whitespace inside lines and drops
// blocks that are only a page number or are too short to carry content.
// Block order is never changed.
//
// Profiles tune the cleaner through their pre_processor_config map:
//
//	cfg, err := preprocess.ConfigFromMap(preprocess.DefaultConfig(), p.PreProcessorConfig)
//	blocks, meta = preprocess.NewWithConfig(cfg).Process(blocks, meta)
package preprocess
