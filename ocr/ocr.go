//go:build ocr

package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps Tesseract for OCR operations.
type Client struct {
	client *gosseract.Client
	config Config
}

// New creates a client with default configuration.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a client with custom configuration.
func NewWithConfig(config Config) (*Client, error) {
	c := &Client{client: gosseract.NewClient(), config: config}
	if config.Language != "" {
		if err := c.SetLanguage(config.Language); err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to set language %q: %w", config.Language, err)
		}
	}
	if err := c.SetPageSegMode(config.PageSegMode); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return c, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// RecognizeImage prepares and recognises image data (PNG, JPEG).
// Returns the recognized text with leading/trailing whitespace trimmed.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	prepared, err := PrepareImage(imageData, c.config.MinWidth)
	if err != nil {
		prepared = imageData
	}
	if err := c.client.SetImageFromBytes(prepared); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// SetLanguage sets the language(s) for OCR recognition, e.g. "spa+eng".
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(strings.Split(lang, "+")...)
}

// SetPageSegMode sets the page segmentation mode.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	return c.client.SetPageSegMode(gosseract.PageSegMode(mode))
}
