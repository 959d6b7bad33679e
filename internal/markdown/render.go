package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts initiative documents to HTML. It is stateless and safe
// for concurrent use.
type Renderer struct {
	engine goldmark.Markdown
}

// NewRenderer builds a goldmark engine with the GFM extensions (tables, task
// lists, linkify). Raw HTML in the source such as template placeholder
// comments is passed through unless safe is set.
func NewRenderer(safe bool) *Renderer {
	options := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if !safe {
		options = append(options, goldmark.WithRendererOptions(html.WithUnsafe()))
	}
	return &Renderer{engine: goldmark.New(options...)}
}

// Render returns the HTML for source.
func (r *Renderer) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return buf.String(), nil
}
