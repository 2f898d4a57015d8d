// Package render assembles the template context for a page and executes its
// resolved layout.
package render

import (
	"bytes"
	"fmt"

	"github.com/kgruel/ctxssg/internal/config"
	"github.com/kgruel/ctxssg/internal/content"
	"github.com/kgruel/ctxssg/internal/templates"
)

// Error reports a template execution failure for one page.
type Error struct {
	Template string
	Path     string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("render %s with template %q: %v", e.Path, e.Template, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Pager carries pagination state into listing templates.
type Pager struct {
	Number int
	Total  int
	URL    string
	Prev   string
	Next   string
}

// Context is the data every layout executes against. It is assembled fresh
// per render call and never persisted.
type Context struct {
	Site  *config.Site
	Page  *content.Item
	Posts []*content.Item
	Pages []*content.Item
	Pager *Pager
}

// Renderer turns a resolved layout name plus a Context into HTML bytes.
// Renders share no mutable state beyond the resolver's parse cache, which
// is lock-protected, so per-item rendering is safe to parallelize.
type Renderer struct {
	resolver *templates.Resolver
}

func New(resolver *templates.Resolver) *Renderer {
	return &Renderer{resolver: resolver}
}

// Render executes the named layout with ctx. The context passes through to
// the template engine unmodified.
func (r *Renderer) Render(name string, ctx Context) ([]byte, error) {
	t, err := r.resolver.Template(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		path := ""
		if ctx.Page != nil {
			path = ctx.Page.SourcePath
		}
		return nil, &Error{Template: name, Path: path, Err: err}
	}
	return buf.Bytes(), nil
}
