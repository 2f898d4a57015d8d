package render

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/kgruel/ctxssg/internal/config"
	"github.com/kgruel/ctxssg/internal/content"
	"github.com/kgruel/ctxssg/internal/templates"
)

func newRenderer(t *testing.T, files map[string]string) *Renderer {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, body := range files {
		require.NoError(t, afero.WriteFile(fs, "/tpl/"+path, []byte(body), 0o644))
	}
	r, err := templates.NewResolver(fs, "/tpl")
	require.NoError(t, err)
	return New(r)
}

func TestRender_PageThroughBaseLayout(t *testing.T) {
	r := newRenderer(t, map[string]string{
		"base.html":    `{{define "base"}}<title>{{.Site.Title}}</title>{{block "content" .}}{{end}}{{end}}`,
		"default.html": `{{define "content"}}<h1>{{.Page.Title}}</h1>{{.Page.HTML}}{{end}}{{template "base" .}}`,
	})

	page := content.NewItem("about.md", map[string]any{"title": "About"}, nil)
	page.HTML = "<p>hi</p>"

	out, err := r.Render("default", Context{
		Site: &config.Site{Title: "Test"},
		Page: page,
	})
	require.NoError(t, err)
	require.Contains(t, string(out), "<title>Test</title>")
	require.Contains(t, string(out), "<h1>About</h1>")
	require.Contains(t, string(out), "<p>hi</p>")
}

func TestRender_HTMLBodyNotEscaped(t *testing.T) {
	r := newRenderer(t, map[string]string{
		"default.html": `{{.Page.HTML}}`,
	})
	page := content.NewItem("a.md", nil, nil)
	page.HTML = "<em>kept</em>"

	out, err := r.Render("default", Context{Page: page})
	require.NoError(t, err)
	require.Equal(t, "<em>kept</em>", string(out))
}

func TestRender_PostListAndPager(t *testing.T) {
	r := newRenderer(t, map[string]string{
		"index.html": `{{range .Posts}}[{{.Title}}]{{end}}{{with .Pager}}p{{.Number}}/{{.Total}}{{end}}`,
	})

	posts := []*content.Item{
		content.NewItem("posts/a.md", map[string]any{"title": "A"}, nil),
		content.NewItem("posts/b.md", map[string]any{"title": "B"}, nil),
	}
	out, err := r.Render("index", Context{
		Posts: posts,
		Pager: &Pager{Number: 1, Total: 3},
	})
	require.NoError(t, err)
	require.Equal(t, "[A][B]p1/3", string(out))
}

func TestRender_ExecutionFailure_TypedError(t *testing.T) {
	r := newRenderer(t, map[string]string{
		"default.html": `{{.Page.NoSuchField}}`,
	})
	page := content.NewItem("a.md", nil, nil)

	_, err := r.Render("default", Context{Page: page})
	require.Error(t, err)
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, "default", rerr.Template)
	require.Equal(t, "a.md", rerr.Path)
}

func TestRender_UnknownTemplate_NotFound(t *testing.T) {
	r := newRenderer(t, map[string]string{"default.html": "x"})

	_, err := r.Render("nope", Context{})
	var nfe *templates.NotFoundError
	require.True(t, errors.As(err, &nfe))
}
