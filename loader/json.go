package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/Karasowl/biblioperson/layout"
	"github.com/Karasowl/biblioperson/model"
)

// JSONLoader loads JSON arrays, single objects and NDJSON files. Each
// record yields an optional title block followed by a content block.
type JSONLoader struct {
	config Config
}

// NewJSONLoader creates a JSON loader.
func NewJSONLoader(cfg Config) *JSONLoader {
	return &JSONLoader{config: cfg}
}

// Load parses the file. Malformed input is reported in Metadata.Error;
// malformed NDJSON lines are skipped with a warning.
func (l *JSONLoader) Load(path string) (Result, error) {
	meta := model.NewDocumentMetadata(path)
	meta.Format = "json"
	text, _, err := readText(path)
	if err != nil {
		return Result{Metadata: meta}, &layout.ExtractionError{Path: path, Err: err}
	}

	var records []any
	ext := strings.ToLower(filepath.Ext(path))
	trimmed := strings.TrimSpace(text)
	if ext == ".jsonl" || ext == ".ndjson" || (ext == ".json" && looksLikeNDJSON(trimmed)) {
		for i, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			var v any
			if err := yaml.Unmarshal([]byte(line), &v); err != nil {
				meta.Warn(model.WarnParse, "line %d: %v", i+1, err)
				continue
			}
			records = append(records, v)
		}
	} else if trimmed != "" {
		var v any
		if err := yaml.Unmarshal([]byte(trimmed), &v); err != nil {
			meta.Error = fmt.Sprintf("invalid JSON: %v", err)
			return Result{Metadata: meta}, nil
		}
		records = topLevelRecords(v)
	}

	var blocks []model.Block
	for _, r := range records {
		blocks = append(blocks, l.recordBlocks(r)...)
	}
	meta.Set("records", len(records))
	if len(blocks) > 0 {
		meta.Title = firstLine(blocks[0].Text)
	}
	l.config.logger().Debug("loaded json", "path", path, "records", len(records), "blocks", len(blocks))
	return Result{Blocks: blocks, Metadata: meta}, nil
}

// looksLikeNDJSON reports whether s holds several top-level objects, one
// per line.
func looksLikeNDJSON(s string) bool {
	lines := strings.Split(s, "\n")
	return len(lines) > 1 && strings.HasPrefix(s, "{") && strings.HasSuffix(strings.TrimSpace(lines[0]), "}")
}

// topLevelRecords unwraps {"items": [...]} style containers.
func topLevelRecords(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		if len(t) == 1 {
			for _, val := range t {
				if arr, ok := val.([]any); ok {
					return arr
				}
			}
		}
		return []any{t}
	case nil:
		return nil
	default:
		return []any{t}
	}
}

func (l *JSONLoader) recordBlocks(r any) []model.Block {
	switch t := r.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return []model.Block{jsonBlock(t, model.BlockContent)}
	case map[string]any:
		var out []model.Block
		if title := pickString(t, l.config.JSONTitleFields); title != "" {
			out = append(out, jsonBlock(title, model.BlockTitle))
		}
		if text := pickString(t, l.config.JSONTextFields); text != "" {
			typ := model.BlockContent
			if bt, ok := t["block_type"].(string); ok && validBlockType(bt) {
				typ = model.BlockType(bt)
			} else if bt, ok := t["type"].(string); ok && validBlockType(bt) {
				typ = model.BlockType(bt)
			}
			out = append(out, jsonBlock(text, typ))
		}
		return out
	}
	return nil
}

func jsonBlock(text string, typ model.BlockType) model.Block {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	return model.Block{
		Text:   text,
		Page:   1,
		Type:   typ,
		Visual: model.VisualMetadata{LineCount: strings.Count(text, "\n") + 1, Alignment: model.AlignUnknown},
		Source: "json",
	}
}

func pickString(m map[string]any, keys []string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v
			}
		case []any:
			var parts []string
			for _, p := range v {
				if s, ok := p.(string); ok {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "\n")
			}
		}
	}
	return ""
}

func validBlockType(s string) bool {
	switch model.BlockType(s) {
	case model.BlockText, model.BlockTitle, model.BlockContent, model.BlockVerse, model.BlockPoemTitle, model.BlockSection:
		return true
	}
	return false
}
