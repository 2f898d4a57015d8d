// Package content defines the in-memory model for source documents and the
// loader that builds it from the content tree.
package content

import (
	"html/template"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind classifies a content item by where it lives in the content tree.
type Kind string

const (
	KindPost Kind = "post"
	KindPage Kind = "page"
)

// Item is one source content file. SourcePath is relative to the content
// root; OutputPath is relative to the output directory. HTML stays empty
// until the conversion phase runs.
type Item struct {
	SourcePath string
	Metadata   map[string]any
	Body       []byte

	HTML template.HTML

	OutputPath string
	URL        string
	Kind       Kind

	Title  string
	Date   time.Time
	Layout string
	Tags   []string
	Draft  bool
}

var titleCaser = cases.Title(language.English)

// NewItem derives the item's typed fields from its source path and metadata.
// sourcePath must use forward slashes and be relative to the content root.
func NewItem(sourcePath string, metadata map[string]any, body []byte) *Item {
	if metadata == nil {
		metadata = map[string]any{}
	}
	it := &Item{
		SourcePath: sourcePath,
		Metadata:   metadata,
		Body:       body,
	}
	it.Kind = deriveKind(sourcePath, metadata)
	it.Title = deriveTitle(sourcePath, metadata)
	it.Layout = cast.ToString(metadata["layout"])
	it.Tags = cast.ToStringSlice(metadata["tags"])
	it.Draft = cast.ToBool(metadata["draft"])

	if raw, ok := metadata["date"]; ok {
		if d, err := cast.ToTimeE(raw); err == nil {
			it.Date = d
		}
	}

	it.URL = deriveURL(sourcePath, metadata)
	it.OutputPath = outputPathFor(it.URL)
	return it
}

// deriveKind classifies files under a top-level "posts" directory as posts,
// everything else as pages. An explicit "kind" metadata key wins.
func deriveKind(sourcePath string, metadata map[string]any) Kind {
	if k := cast.ToString(metadata["kind"]); k != "" {
		if Kind(k) == KindPost {
			return KindPost
		}
		return KindPage
	}
	first, _, found := strings.Cut(path.Clean(sourcePath), "/")
	if found && first == "posts" {
		return KindPost
	}
	return KindPage
}

// deriveTitle prefers the frontmatter title, falling back to a title-cased
// version of the file name ("my-first-post.md" -> "My First Post").
func deriveTitle(sourcePath string, metadata map[string]any) string {
	if t := cast.ToString(metadata["title"]); t != "" {
		return t
	}
	base := strings.TrimSuffix(path.Base(sourcePath), path.Ext(sourcePath))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return titleCaser.String(base)
}

// deriveURL maps a source path onto its pretty URL: posts/hello.md becomes
// /posts/hello/ and about.md becomes /about/. A directory index file keeps
// the directory's URL. A "permalink" metadata key overrides the convention.
func deriveURL(sourcePath string, metadata map[string]any) string {
	if p := cast.ToString(metadata["permalink"]); p != "" {
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		if !strings.HasSuffix(p, "/") {
			p += "/"
		}
		return p
	}
	trimmed := strings.TrimSuffix(sourcePath, path.Ext(sourcePath))
	if path.Base(trimmed) == "index" {
		trimmed = path.Dir(trimmed)
	}
	if trimmed == "." || trimmed == "" {
		return "/"
	}
	return "/" + path.Clean(trimmed) + "/"
}

// outputPathFor turns a URL like /posts/hello/ into posts/hello/index.html
// using the platform's path separator.
func outputPathFor(url string) string {
	rel := strings.Trim(url, "/")
	if rel == "" {
		return "index.html"
	}
	return filepath.Join(filepath.FromSlash(rel), "index.html")
}

// FormatOutputPath is the sibling output path for a non-HTML format, e.g.
// posts/hello/index.txt.
func (it *Item) FormatOutputPath(ext string) string {
	return strings.TrimSuffix(it.OutputPath, filepath.Ext(it.OutputPath)) + "." + strings.TrimPrefix(ext, ".")
}

// Param looks up a metadata key, so templates can reach unrecognized
// frontmatter via .Page.Param "key".
func (it *Item) Param(key string) any {
	return it.Metadata[key]
}

// ByDateDesc sorts items newest first. Items without a date sort last, in
// their original order.
func ByDateDesc(items []*Item) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.Date.IsZero():
			return false
		case b.Date.IsZero():
			return true
		default:
			return a.Date.After(b.Date)
		}
	}
}
