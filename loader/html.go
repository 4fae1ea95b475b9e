package loader

import (
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/Karasowl/biblioperson/layout"
	"github.com/Karasowl/biblioperson/model"
)

// HTMLLoader loads HTML documents. Headings map like Markdown headings;
// paragraphs, list items, quotes and preformatted text become content
// blocks with <br> line breaks kept.
type HTMLLoader struct {
	config Config
}

// NewHTMLLoader creates an HTML loader.
func NewHTMLLoader(cfg Config) *HTMLLoader {
	return &HTMLLoader{config: cfg}
}

// Load parses the document body in order.
func (l *HTMLLoader) Load(path string) (Result, error) {
	meta := model.NewDocumentMetadata(path)
	meta.Format = "html"
	f, err := os.Open(path)
	if err != nil {
		return Result{Metadata: meta}, &layout.ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		meta.Error = "invalid HTML: " + err.Error()
		return Result{Metadata: meta}, nil
	}

	w := &htmlWalker{}
	w.head(doc, &meta)
	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}
	w.walk(body)

	if meta.Title == "" {
		for _, b := range w.blocks {
			if b.Type == model.BlockTitle {
				meta.Title = b.Text
				break
			}
		}
	}
	l.config.logger().Debug("loaded html", "path", path, "blocks", len(w.blocks))
	return Result{Blocks: w.blocks, Metadata: meta}, nil
}

type htmlWalker struct {
	blocks []model.Block
}

func (w *htmlWalker) head(n *html.Node, meta *model.DocumentMetadata) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			meta.Title = flattenLines(textContent(n, false))
			return
		case "meta":
			var name, content string
			for _, a := range n.Attr {
				switch a.Key {
				case "name", "property":
					name = strings.ToLower(a.Val)
				case "content":
					content = a.Val
				}
			}
			switch name {
			case "author", "dc.creator":
				meta.Author = strings.TrimSpace(content)
			case "language", "dc.language":
				meta.Language = strings.TrimSpace(content)
			}
			return
		case "body":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.head(c, meta)
	}
}

func (w *htmlWalker) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		if shouldSkipElement(n.Data) {
			return
		}
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(n.Data[1] - '0')
			w.add(flattenLines(textContent(n, false)), headingType(level), level)
			return
		case "pre":
			w.add(textContent(n, true), model.BlockContent, 0)
			return
		case "p", "li", "blockquote", "dd", "dt", "figcaption", "div", "td":
			if !isBlockContainer(n) {
				w.add(textContent(n, false), model.BlockContent, 0)
				return
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *htmlWalker) add(text string, typ model.BlockType, level int) {
	text = cleanHTMLText(text)
	if text == "" {
		return
	}
	b := model.Block{
		Text:         text,
		Page:         1,
		Type:         typ,
		HeadingLevel: level,
		Visual:       model.VisualMetadata{LineCount: strings.Count(text, "\n") + 1, Alignment: model.AlignUnknown},
		Source:       "html",
	}
	if typ.IsHeading() {
		b.Visual.IsBold = true
		b.Visual.FontFlags = model.FlagBold
	}
	w.blocks = append(w.blocks, b)
}

// shouldSkipElement returns true if the element should be skipped during content extraction.
func shouldSkipElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed", "head", "nav":
		return true
	}
	return false
}

// isBlockContainer returns true if the element has block-level children.
func isBlockContainer(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "div", "p", "ul", "ol", "table", "h1", "h2", "h3", "h4", "h5", "h6",
			"blockquote", "pre", "article", "section", "li", "dl":
			return true
		}
	}
	return false
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if r := findElement(c, tag); r != nil {
			return r
		}
	}
	return nil
}

// textContent collects the text below n. <br> becomes a line break; source
// newlines are kept only when keepNewlines is set (preformatted text).
func textContent(n *html.Node, keepNewlines bool) string {
	var sb strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if keepNewlines {
				sb.WriteString(n.Data)
			} else {
				sb.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
			}
			return
		case html.ElementNode:
			if shouldSkipElement(n.Data) {
				return
			}
			if n.Data == "br" {
				sb.WriteByte('\n')
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return sb.String()
}

// cleanHTMLText collapses whitespace within lines and drops empty lines.
func cleanHTMLText(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func flattenLines(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
