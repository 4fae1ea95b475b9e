package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/tsawler/tabula/reader"

	"github.com/Karasowl/biblioperson/layout"
	"github.com/Karasowl/biblioperson/model"
	"github.com/Karasowl/biblioperson/ocr"
)

var errNoTextLayer = errors.New("page has no text layer")

// PDFLoader loads PDF files through the layout extractor.
type PDFLoader struct {
	config    Config
	extractor *layout.Extractor
}

// NewPDFLoader creates a PDF loader.
func NewPDFLoader(cfg Config) *PDFLoader {
	lc := cfg.Layout
	if lc.Logger == nil {
		lc.Logger = cfg.Logger
	}
	return &PDFLoader{config: cfg, extractor: layout.NewExtractorWithConfig(lc)}
}

// Load extracts blocks from every page. Pages the tabula engine cannot
// parse fall back to pdfcpu content stream text, or to OCR when enabled.
func (l *PDFLoader) Load(path string) (Result, error) {
	meta := model.NewDocumentMetadata(path)
	meta.Format = "pdf"
	log := l.config.logger()

	if _, err := os.Stat(path); err != nil {
		return Result{Metadata: meta}, &layout.ExtractionError{Path: path, Err: err}
	}

	src := &pdfSource{}
	defer src.Close()

	rd, rerr := reader.Open(path)
	if rerr == nil {
		src.rd = rd
	} else {
		log.Warn("pdf layout engine failed, using coarse text", "path", path, "error", rerr)
		meta.Warn(model.WarnPageExtraction, "layout engine could not open document: %v", rerr)
	}

	ctx, cerr := readPDFContext(path)
	if cerr == nil {
		src.ctx = ctx
		meta.Title = strings.TrimSpace(ctx.Title)
		meta.Author = strings.TrimSpace(ctx.Author)
	} else {
		log.Debug("pdfcpu could not read document", "path", path, "error", cerr)
	}

	if src.rd == nil && src.ctx == nil {
		return Result{Metadata: meta}, &layout.ExtractionError{Path: path, Err: errors.Join(rerr, cerr)}
	}

	if l.config.OCR {
		client, err := ocr.NewWithConfig(l.config.OCRConfig)
		if err != nil {
			meta.Warn(model.WarnOCR, "OCR unavailable: %v", err)
		} else {
			src.ocr = client
		}
	}

	blocks, emeta, err := l.extractor.Extract(src)
	if err != nil {
		var exErr *layout.ExtractionError
		if errors.As(err, &exErr) && exErr.Path == "" {
			exErr.Path = path
		}
		return Result{Metadata: meta}, err
	}

	meta.PageCount = emeta.PageCount
	meta.Warnings = append(meta.Warnings, emeta.Warnings...)
	for k, v := range emeta.Extra {
		meta.Set(k, v)
	}
	if src.ocrPages > 0 {
		meta.Set("ocr_pages", src.ocrPages)
	}
	if meta.Title == "" && len(blocks) > 0 {
		meta.Title = firstLine(blocks[0].Text)
	}
	log.Debug("loaded pdf", "path", path, "pages", meta.PageCount, "blocks", len(blocks), "warnings", len(meta.Warnings))
	return Result{Blocks: blocks, Metadata: meta}, nil
}

func readPDFContext(path string) (*pdfmodel.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, pdfmodel.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx, nil
}

// pdfSource adapts the tabula reader and the pdfcpu context to
// layout.PageSource. Either engine may be missing.
type pdfSource struct {
	rd       *reader.Reader
	ctx      *pdfmodel.Context
	ocr      ocr.Recognizer
	ocrPages int
}

func (s *pdfSource) PageCount() (int, error) {
	if s.rd != nil {
		if n, err := s.rd.PageCount(); err == nil {
			return n, nil
		} else if s.ctx == nil {
			return 0, err
		}
	}
	if s.ctx != nil {
		return s.ctx.PageCount, nil
	}
	return 0, errors.New("no PDF engine available")
}

func (s *pdfSource) PageFragments(i int) (layout.Page, error) {
	if s.rd == nil {
		return layout.Page{}, errors.New("layout engine unavailable")
	}
	page, err := s.rd.GetPage(i)
	if err != nil {
		return layout.Page{}, fmt.Errorf("get page: %w", err)
	}
	frags, err := s.rd.ExtractTextFragments(page)
	if err != nil {
		return layout.Page{}, fmt.Errorf("extract text: %w", err)
	}
	if len(frags) == 0 && s.ocr != nil {
		return layout.Page{}, errNoTextLayer
	}
	w, _ := page.Width()
	h, _ := page.Height()
	return layout.Page{Index: i, Width: w, Height: h, Fragments: frags}, nil
}

// CoarsePageText returns the text operators of the page content stream,
// or OCR text for pages without any.
func (s *pdfSource) CoarsePageText(i int) (string, error) {
	var txt string
	var err error
	if s.ctx != nil {
		txt, err = pageStreamText(s.ctx, i+1)
	} else {
		err = errors.New("pdfcpu context unavailable")
	}
	if strings.TrimSpace(txt) != "" || s.ocr == nil || s.rd == nil {
		return txt, err
	}
	return s.recognizePage(i)
}

func (s *pdfSource) recognizePage(i int) (string, error) {
	page, err := s.rd.GetPage(i)
	if err != nil {
		return "", err
	}
	images, err := s.rd.ExtractPageImages(page)
	if err != nil {
		return "", fmt.Errorf("extract images: %w", err)
	}
	var parts []string
	for _, img := range images {
		data, err := img.ToPNG()
		if err != nil {
			continue
		}
		txt, err := s.ocr.RecognizeImage(data)
		if err != nil {
			return "", fmt.Errorf("ocr: %w", err)
		}
		if txt != "" {
			parts = append(parts, txt)
		}
	}
	if len(parts) > 0 {
		s.ocrPages++
	}
	return strings.Join(parts, "\n\n"), nil
}

func (s *pdfSource) Close() {
	if s.rd != nil {
		s.rd.Close()
	}
	if s.ocr != nil {
		s.ocr.Close()
	}
}

func pageStreamText(ctx *pdfmodel.Context, pageNr int) (string, error) {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return "", fmt.Errorf("page content: %w", err)
	}
	if r == nil {
		return "", nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return streamText(data), nil
}
