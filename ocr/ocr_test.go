//go:build ocr

package ocr

import "testing"

func TestRecognizeImage(t *testing.T) {
	client, err := NewWithConfig(Config{Language: "eng", PageSegMode: PSM_SINGLE_BLOCK, MinWidth: 200})
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer client.Close()

	// The image holds no glyphs; only the call path is checked.
	if _, err := client.RecognizeImage(createTestPNG(100, 50)); err != nil {
		t.Errorf("RecognizeImage failed: %v", err)
	}
}

func TestCloseTwice(t *testing.T) {
	client, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
