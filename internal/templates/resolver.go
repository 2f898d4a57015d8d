// Package templates locates and prepares the html/template layouts a page
// renders through.
//
// Layout files live in the site's templates directory. base.html defines the
// shared document shell ({{define "base"}} … {{block "content" .}} … {{end}});
// every other layout overrides "content" and invokes base. Files under
// partials/ are parsed into every layout's template set.
package templates

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/kgruel/ctxssg/internal/content"
)

// NotFoundError reports a layout that could not be resolved for an item.
// It is recorded per item; the rest of the build proceeds.
type NotFoundError struct {
	Name string
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("template %q not found", e.Name)
	}
	return fmt.Sprintf("template %q not found (wanted by %s)", e.Name, e.Path)
}

// Resolver maps layout names onto parsed templates. The templates directory
// is scanned once at construction and cached for the duration of one build.
type Resolver struct {
	fs  afero.Fs
	dir string

	base      *template.Template
	available map[string]string

	mu     sync.Mutex
	parsed map[string]*template.Template
}

// NewResolver scans dir for *.html layouts and parses base.html plus all
// partials into the shared base set.
func NewResolver(fs afero.Fs, dir string) (*Resolver, error) {
	r := &Resolver{
		fs:        fs,
		dir:       dir,
		base:      template.New("base"),
		available: map[string]string{},
		parsed:    map[string]*template.Template{},
	}

	err := afero.Walk(fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(p), ".html") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if rel == "base.html" || strings.HasPrefix(rel, "partials/") {
			return r.parseInto(r.base, p)
		}
		name := strings.TrimSuffix(rel, ".html")
		r.available[name] = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan templates %s: %w", dir, err)
	}
	return r, nil
}

// Resolve picks the layout for an item: the explicit layout key wins and
// must exist; otherwise the kind convention (post/default), then default.
// itemPath is only used to tag the error.
func (r *Resolver) Resolve(layout string, kind content.Kind, itemPath string) (string, error) {
	if layout != "" {
		if _, ok := r.available[layout]; !ok {
			return "", &NotFoundError{Name: layout, Path: itemPath}
		}
		return layout, nil
	}
	name := "default"
	if kind == content.KindPost {
		name = "post"
	}
	if _, ok := r.available[name]; ok {
		return name, nil
	}
	if _, ok := r.available["default"]; ok {
		return "default", nil
	}
	return "", &NotFoundError{Name: name, Path: itemPath}
}

// Has reports whether a layout of the given name exists. Optional listing
// pages (tags) use this to decide whether to render at all.
func (r *Resolver) Has(name string) bool {
	_, ok := r.available[name]
	return ok
}

// Template returns an executable template for a resolved layout name: a
// clone of the base set with the layout file parsed on top.
func (r *Resolver) Template(name string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.parsed[name]; ok {
		return t, nil
	}

	path, ok := r.available[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	set, err := r.base.Clone()
	if err != nil {
		return nil, fmt.Errorf("clone base templates: %w", err)
	}
	t := set.New(name)
	if err := r.parseInto(t, path); err != nil {
		return nil, err
	}
	r.parsed[name] = t
	return t, nil
}

func (r *Resolver) parseInto(t *template.Template, path string) error {
	raw, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return fmt.Errorf("read template %s: %w", path, err)
	}
	if _, err := t.Parse(string(raw)); err != nil {
		return fmt.Errorf("parse template %s: %w", path, err)
	}
	return nil
}
