package biblioperson

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Karasowl/biblioperson/layout"
	"github.com/Karasowl/biblioperson/model"
	"github.com/Karasowl/biblioperson/pipeline"
	"github.com/Karasowl/biblioperson/profile"
)

const poems = `Soneto I

Cuando la tarde cae
sobre el agua dormida

vuelve la voz antigua
de la rama perdida

Soneto II

Nadie sabe el nombre
de la piedra callada

y sin embargo canta
la noche a su llegada
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestOpen(t *testing.T) {
	// Test with non-existent file
	_, _, err := Open("nonexistent.txt").Segments()
	if err == nil {
		t.Fatal("expected error for non-existent file")
	}
	var exErr *layout.ExtractionError
	if !errors.As(err, &exErr) {
		t.Errorf("expected *layout.ExtractionError, got %T", err)
	}
}

func TestSegmentsAuto(t *testing.T) {
	path := writeFile(t, "poemas.txt", poems)

	segments, warnings, err := Open(path).Segments()
	if err != nil {
		t.Fatalf("Segments failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %s", FormatWarnings(warnings))
	}

	want := []model.SegmentType{
		model.SegmentPoemTitle, model.SegmentVerse, model.SegmentPoemTitle, model.SegmentVerse,
	}
	if len(segments) != len(want) {
		t.Fatalf("expected %d segments, got %d", len(want), len(segments))
	}
	for i, s := range segments {
		if s.Type != want[i] {
			t.Errorf("segment %d type = %s, want %s", i, s.Type, want[i])
		}
		if s.Order != i+1 {
			t.Errorf("segment %d order = %d", i, s.Order)
		}
		if s.Metadata["profile"] != "verso" {
			t.Errorf("segment %d profile = %v", i, s.Metadata["profile"])
		}
	}
}

func TestConfigurationIsImmutable(t *testing.T) {
	base := Open("poemas.txt")
	verse := base.Profile("verso").Language("en")

	if base.options.profile != pipeline.ProfileAuto {
		t.Errorf("base profile changed to %q", base.options.profile)
	}
	if base.options.language != "" {
		t.Errorf("base language changed to %q", base.options.language)
	}
	if verse.options.profile != "verso" || verse.options.language != "en" {
		t.Errorf("unexpected options: %+v", verse.options)
	}
	if verse.Auto().options.profile != pipeline.ProfileAuto {
		t.Error("Auto did not restore automatic detection")
	}
}

func TestUnknownProfileIsError(t *testing.T) {
	path := writeFile(t, "poemas.txt", poems)

	_, _, err := Open(path).Profile("teatro").Segments()
	if !errors.Is(err, profile.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
	var cerr *pipeline.ConfigurationError
	if !errors.As(err, &cerr) || cerr.Kind != pipeline.ConfigProfile {
		t.Errorf("expected profile ConfigurationError, got %v", err)
	}
}

func TestLanguageAndOutput(t *testing.T) {
	path := writeFile(t, "poemas.txt", poems)
	out := filepath.Join(t.TempDir(), "poemas.ndjson")

	res, err := Open(path).Profile("verso").Language("pt").Output(out).Process()
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if res.Segments[0].Metadata["language"] != "pt" {
		t.Errorf("language = %v", res.Segments[0].Metadata["language"])
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if lines := strings.Count(string(data), "\n"); lines != len(res.Segments) {
		t.Errorf("expected %d NDJSON lines, got %d", len(res.Segments), lines)
	}
}

func TestProfilesDir(t *testing.T) {
	dir := t.TempDir()
	custom := "name: poesia_libre\nsegmenter: markdown_verse\ncontent_type: verso\n"
	if err := os.WriteFile(filepath.Join(dir, "poesia_libre.yaml"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "poemas.txt", poems)

	res, err := Open(path).ProfilesDir(dir).Profile("poesia_libre").Process()
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if res.Stats["segmenter"] != "markdown_verse" {
		t.Errorf("segmenter = %v", res.Stats["segmenter"])
	}
	if len(res.Segments) == 0 {
		t.Error("expected segments")
	}

	_, err = Open(path).ProfilesDir(filepath.Join(dir, "missing")).Process()
	if err == nil {
		t.Error("expected error for missing profile directory")
	}
}

func TestDedup(t *testing.T) {
	path := writeFile(t, "poemas.txt", poems)
	db := filepath.Join(t.TempDir(), "dedup.db")

	doc := Open(path).Dedup(db).SkipDuplicates()
	first, err := doc.Process()
	if err != nil {
		t.Fatalf("first Process failed: %v", err)
	}
	if len(first.Segments) == 0 {
		t.Fatal("expected segments on first run")
	}

	second, err := doc.Process()
	if err != nil {
		t.Fatalf("second Process failed: %v", err)
	}
	if len(second.Segments) != 0 || second.Stats["skipped"] != "duplicate" {
		t.Errorf("expected skipped duplicate, got %d segments, stats %v", len(second.Segments), second.Stats)
	}
}

func TestDetect(t *testing.T) {
	report, err := Open(writeFile(t, "poemas.txt", poems)).Detect()
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if report.DetectedProfile != model.ProfileVerse {
		t.Errorf("detected %s, want verso", report.DetectedProfile)
	}
	if len(report.Reasons) == 0 {
		t.Error("expected reasons")
	}
}

func TestText(t *testing.T) {
	text, _, err := Open(writeFile(t, "poemas.txt", poems)).Text()
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if !strings.HasPrefix(text, "Soneto I\n\nCuando la tarde cae") {
		t.Errorf("unexpected text: %q", text)
	}

	if _, _, err := Open("hoja.xyz").Text(); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestParseWarnings(t *testing.T) {
	tests := []struct {
		in   string
		want Warning
	}{
		{"segmentation_empty: verse produced nothing", Warning{Kind: "segmentation_empty", Message: "verse produced nothing"}},
		{"plain message", Warning{Message: "plain message"}},
		{"two words: not a kind", Warning{Message: "two words: not a kind"}},
	}
	for _, tt := range tests {
		got := parseWarnings([]string{tt.in})
		if len(got) != 1 || got[0] != tt.want {
			t.Errorf("parseWarnings(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if parseWarnings(nil) != nil {
		t.Error("expected nil for no warnings")
	}

	got := FormatWarnings([]Warning{{Kind: "ocr", Message: "a"}, {Message: "b"}})
	if got != "ocr: a; b" {
		t.Errorf("FormatWarnings = %q", got)
	}
}

func TestMust(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Must(Open("nonexistent.txt").Detect())
}
