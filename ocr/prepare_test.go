package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// createTestPNG creates a white RGBA image with a black bar.
func createTestPNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	for x := width / 10; x < width/2; x++ {
		for y := height / 5; y < height/2; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func TestPrepareImage(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		height   int
		minWidth int
		wantW    int
		wantH    int
	}{
		{"upscale narrow scan", 100, 50, 400, 400, 200},
		{"keep wide scan", 800, 600, 400, 800, 600},
		{"upscaling disabled", 100, 50, 0, 100, 50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := PrepareImage(createTestPNG(tc.width, tc.height), tc.minWidth)
			if err != nil {
				t.Fatalf("PrepareImage: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("output is not a PNG: %v", err)
			}
			if got := img.Bounds(); got.Dx() != tc.wantW || got.Dy() != tc.wantH {
				t.Errorf("size = %dx%d, want %dx%d", got.Dx(), got.Dy(), tc.wantW, tc.wantH)
			}
			if _, ok := img.(*image.Gray); !ok {
				t.Errorf("expected grayscale output, got %T", img)
			}
		})
	}
}

func TestPrepareImageInvalid(t *testing.T) {
	if _, err := PrepareImage([]byte("not an image"), 100); err == nil {
		t.Error("expected error for undecodable data")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Language != "spa" {
		t.Errorf("Language = %q, want spa", cfg.Language)
	}
	if cfg.PageSegMode != PSM_AUTO {
		t.Errorf("PageSegMode = %d, want %d", cfg.PageSegMode, PSM_AUTO)
	}
}
