// Package markup converts Markdown bodies into the site's output formats:
// HTML fragments for templating plus the plain/xml/json context exports.
package markup

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ConvertError reports a conversion failure (or cancellation) for one
// document. One bad document never aborts a build.
type ConvertError struct {
	Path string
	Err  error
}

func (e *ConvertError) Error() string {
	return fmt.Sprintf("convert %s: %v", e.Path, e.Err)
}

func (e *ConvertError) Unwrap() error { return e.Err }

// Converter renders Markdown to HTML. It is stateless per call and safe for
// concurrent use across items.
type Converter struct {
	md goldmark.Markdown
}

// New returns a Converter with GFM extensions, auto heading IDs, and raw
// HTML passthrough. Content authors are trusted, so inline HTML is kept.
func New() *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithUnsafe(),
			),
		),
	}
}

// Convert renders src to an HTML fragment. The context bounds the call when
// the builder runs conversions with a per-item timeout.
func (c *Converter) Convert(ctx context.Context, src []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.md.Convert(src, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
