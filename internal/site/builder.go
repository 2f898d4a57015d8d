// Package site orchestrates the build pipeline: configuration, content
// loading, markup conversion, template resolution, rendering, and output
// writing. Per-item failures are recorded and skipped; only configuration
// and output-write failures abort a build.
package site

import (
	"context"
	"fmt"
	htmltemplate "html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/kgruel/ctxssg/internal/config"
	"github.com/kgruel/ctxssg/internal/content"
	"github.com/kgruel/ctxssg/internal/markup"
	"github.com/kgruel/ctxssg/internal/render"
	"github.com/kgruel/ctxssg/internal/templates"
)

// Conventional directory names under the site root.
const (
	ContentDir   = "content"
	TemplatesDir = "templates"
	StaticDir    = "static"
)

// convertTimeout bounds a single markdown conversion so one pathological
// document cannot stall the whole build.
const convertTimeout = 30 * time.Second

// Options tune one build invocation.
type Options struct {
	// IncludeDrafts builds items marked draft: true instead of skipping them.
	IncludeDrafts bool
	// Formats overrides the configured output_formats when non-empty.
	Formats []string
	// Concurrency bounds parallel markdown conversion; 0 means GOMAXPROCS.
	Concurrency int
}

// Builder runs builds for one site root. Every Build call loads config and
// content fresh, so it doubles as the rebuild entry point for watch mode.
type Builder struct {
	fs   afero.Fs
	root string
	log  *slog.Logger
	conv *markup.Converter
}

func New(fs afero.Fs, root string, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{fs: fs, root: root, log: log, conv: markup.New()}
}

// Build runs the full pipeline once and returns its Result. It never
// returns an error: failures are carried in the Result so the watch loop
// and CLI share one reporting path.
func (b *Builder) Build(ctx context.Context, opts Options) *Result {
	start := time.Now()
	res := &Result{Success: true}

	cfg, err := config.Load(b.fs, b.root)
	if err != nil {
		res.Errors = append(res.Errors, err)
		res.Success = false
		res.Duration = time.Since(start)
		return res
	}
	res.Output = filepath.Join(b.root, cfg.OutputDir)

	formats := cfg.OutputFormats
	if len(opts.Formats) > 0 {
		formats = opts.Formats
	}

	items, drafts, loadErrs := content.Load(b.fs, filepath.Join(b.root, ContentDir))
	res.Errors = append(res.Errors, loadErrs...)
	res.Drafts = len(drafts)
	if opts.IncludeDrafts {
		items = append(items, drafts...)
	}
	for _, d := range drafts {
		b.log.Debug("draft skipped", "path", d.SourcePath)
	}

	// Buildable items are counted before conversion so a build where every
	// conversion fails still counts as unsuccessful.
	hadItems := len(items) > 0
	items = b.convertAll(ctx, items, opts.Concurrency, res)

	var posts, pages []*content.Item
	for _, it := range items {
		if it.Kind == content.KindPost {
			posts = append(posts, it)
		} else {
			pages = append(pages, it)
		}
	}
	sort.SliceStable(posts, content.ByDateDesc(posts))
	res.Posts, res.Pages = len(posts), len(pages)

	resolver, err := templates.NewResolver(b.fs, filepath.Join(b.root, TemplatesDir))
	if err != nil {
		res.Errors = append(res.Errors, err)
		res.Success = false
		res.Duration = time.Since(start)
		return res
	}
	renderer := render.New(resolver)

	if err := b.prepareOutput(res.Output); err != nil {
		res.Errors = append(res.Errors, err)
		res.Success = false
		res.Duration = time.Since(start)
		return res
	}

	writeFatal := b.writePages(cfg, renderer, resolver, posts, pages, formats, res)
	if !writeFatal {
		b.writeListings(cfg, renderer, resolver, posts, pages, res)
	}

	if hadItems && res.Rendered == 0 {
		res.Success = false
	}
	res.Duration = time.Since(start)
	b.log.Info("build finished",
		"rendered", res.Rendered, "drafts", res.Drafts,
		"errors", len(res.Errors), "output", res.Output,
		"duration", res.Duration.Round(time.Millisecond))
	return res
}

// convertAll populates HTML for every item, in parallel, bounded by limit.
// Items whose conversion fails are dropped from the returned slice and the
// failure is recorded on the result.
func (b *Builder) convertAll(ctx context.Context, items []*content.Item, limit int, res *Result) []*content.Item {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var mu sync.Mutex
	failed := make(map[*content.Item]bool)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, it := range items {
		it := it
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, convertTimeout)
			defer cancel()
			html, err := b.conv.Convert(cctx, it.Body)
			if err != nil {
				mu.Lock()
				failed[it] = true
				res.Errors = append(res.Errors, &markup.ConvertError{Path: it.SourcePath, Err: err})
				mu.Unlock()
				return nil
			}
			it.HTML = htmltemplate.HTML(html)
			return nil
		})
	}
	_ = g.Wait()

	ok := items[:0]
	for _, it := range items {
		if !failed[it] {
			ok = append(ok, it)
		}
	}
	return ok
}

// writePages renders and writes every content item plus its secondary
// formats. Returns true when a fatal write error stopped the phase.
func (b *Builder) writePages(cfg *config.Site, renderer *render.Renderer, resolver *templates.Resolver,
	posts, pages []*content.Item, formats []string, res *Result) bool {

	for _, it := range append(append([]*content.Item{}, pages...), posts...) {
		name, err := resolver.Resolve(it.Layout, it.Kind, it.SourcePath)
		if err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		out, err := renderer.Render(name, render.Context{
			Site:  cfg,
			Page:  it,
			Posts: posts,
			Pages: pages,
		})
		if err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		if err := b.writeFile(filepath.Join(res.Output, it.OutputPath), out); err != nil {
			res.Errors = append(res.Errors, err)
			res.Success = false
			return true
		}
		res.Rendered++
		b.log.Debug("page written", "source", it.SourcePath, "output", it.OutputPath, "layout", name)

		if fatal := b.writeFormats(it, formats, res); fatal {
			return true
		}
	}
	return false
}

// writeFormats emits the non-HTML renditions of an item next to its
// index.html. Unknown formats are per-item errors, not fatal ones.
func (b *Builder) writeFormats(it *content.Item, formats []string, res *Result) bool {
	for _, f := range formats {
		var (
			out []byte
			ext string
			err error
		)
		switch f {
		case "html":
			continue
		case "plain", "txt":
			ext = "txt"
			out, err = markup.ToPlain(pageMeta(it), it.Body)
		case "xml":
			ext = "xml"
			out, err = markup.ToXML(pageMeta(it), it.Body)
		case "json":
			ext = "json"
			out, err = markup.ToJSON(pageMeta(it), it.Body)
		default:
			err = fmt.Errorf("unsupported output format %q", f)
		}
		if err != nil {
			res.Errors = append(res.Errors, &markup.ConvertError{Path: it.SourcePath, Err: err})
			continue
		}
		if err := b.writeFile(filepath.Join(res.Output, it.FormatOutputPath(ext)), out); err != nil {
			res.Errors = append(res.Errors, err)
			res.Success = false
			return true
		}
	}
	return false
}

// writeListings renders the pages not backed by a single content file: the
// paginated home index and the per-tag listings.
func (b *Builder) writeListings(cfg *config.Site, renderer *render.Renderer, resolver *templates.Resolver,
	posts, pages []*content.Item, res *Result) {

	if !resolver.Has("index") {
		res.Errors = append(res.Errors, &templates.NotFoundError{Name: "index", Path: "(home page)"})
	} else {
		chunks := paginate(posts, cfg.Paginate)
		for i, chunk := range chunks {
			pseudo := listingItem(indexTitle(cfg), pagerURL(i+1))
			out, err := renderer.Render("index", render.Context{
				Site:  cfg,
				Page:  pseudo,
				Posts: chunk,
				Pages: pages,
				Pager: pagerFor(i+1, len(chunks)),
			})
			if err != nil {
				res.Errors = append(res.Errors, err)
				continue
			}
			if err := b.writeFile(filepath.Join(res.Output, pseudo.OutputPath), out); err != nil {
				res.Errors = append(res.Errors, err)
				res.Success = false
				return
			}
		}
	}

	if resolver.Has("tags") {
		for _, tag := range tagSet(posts) {
			pseudo := listingItem(tag, "/tags/"+markup.Slug(tag)+"/")
			out, err := renderer.Render("tags", render.Context{
				Site:  cfg,
				Page:  pseudo,
				Posts: withTag(posts, tag),
				Pages: pages,
			})
			if err != nil {
				res.Errors = append(res.Errors, err)
				continue
			}
			if err := b.writeFile(filepath.Join(res.Output, pseudo.OutputPath), out); err != nil {
				res.Errors = append(res.Errors, err)
				res.Success = false
				return
			}
		}
	}
}

// prepareOutput regenerates the output directory from scratch and copies
// the static tree into it. The output tree is never patched in place.
func (b *Builder) prepareOutput(out string) error {
	if err := b.fs.RemoveAll(out); err != nil {
		return &WriteError{Path: out, Err: err}
	}
	if err := b.fs.MkdirAll(out, 0o755); err != nil {
		return &WriteError{Path: out, Err: err}
	}

	static := filepath.Join(b.root, StaticDir)
	if ok, _ := afero.DirExists(b.fs, static); !ok {
		return nil
	}
	return b.copyDir(static, filepath.Join(out, StaticDir))
}

func (b *Builder) copyDir(src, dst string) error {
	return afero.Walk(b.fs, src, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return &WriteError{Path: p, Err: err}
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return &WriteError{Path: p, Err: err}
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			if err := b.fs.MkdirAll(target, 0o755); err != nil {
				return &WriteError{Path: target, Err: err}
			}
			return nil
		}
		return b.copyFile(p, target)
	})
}

func (b *Builder) copyFile(src, dst string) error {
	in, err := b.fs.Open(src)
	if err != nil {
		return &WriteError{Path: src, Err: err}
	}
	defer in.Close()

	if err := b.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return &WriteError{Path: dst, Err: err}
	}
	out, err := b.fs.Create(dst)
	if err != nil {
		return &WriteError{Path: dst, Err: err}
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return &WriteError{Path: dst, Err: err}
	}
	return nil
}

func (b *Builder) writeFile(path string, data []byte) error {
	if err := b.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := afero.WriteFile(b.fs, path, data, 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// pageMeta is the metadata mapping the plain/xml/json exports embed: the
// raw frontmatter overlaid with the derived title/date/layout fields.
func pageMeta(it *content.Item) map[string]any {
	meta := make(map[string]any, len(it.Metadata)+3)
	for k, v := range it.Metadata {
		meta[k] = v
	}
	meta["title"] = it.Title
	if !it.Date.IsZero() {
		meta["date"] = it.Date
	}
	if it.Layout != "" {
		meta["layout"] = it.Layout
	}
	delete(meta, "content")
	delete(meta, "url")
	return meta
}

func listingItem(title, url string) *content.Item {
	it := content.NewItem("index", map[string]any{"title": title, "permalink": url}, nil)
	return it
}

func indexTitle(cfg *config.Site) string {
	if cfg.Title != "" {
		return cfg.Title
	}
	return "Home"
}

func paginate(posts []*content.Item, size int) [][]*content.Item {
	if len(posts) == 0 {
		return [][]*content.Item{nil}
	}
	var chunks [][]*content.Item
	for i := 0; i < len(posts); i += size {
		end := i + size
		if end > len(posts) {
			end = len(posts)
		}
		chunks = append(chunks, posts[i:end])
	}
	return chunks
}

func pagerURL(number int) string {
	if number <= 1 {
		return "/"
	}
	return fmt.Sprintf("/page/%d/", number)
}

func pagerFor(number, total int) *render.Pager {
	p := &render.Pager{Number: number, Total: total, URL: pagerURL(number)}
	if number > 1 {
		p.Prev = pagerURL(number - 1)
	}
	if number < total {
		p.Next = pagerURL(number + 1)
	}
	return p
}

func tagSet(posts []*content.Item) []string {
	seen := map[string]bool{}
	var tags []string
	for _, p := range posts {
		for _, t := range p.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

func withTag(posts []*content.Item, tag string) []*content.Item {
	var out []*content.Item
	for _, p := range posts {
		for _, t := range p.Tags {
			if t == tag {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
