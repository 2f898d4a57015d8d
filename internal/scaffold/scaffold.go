// Package scaffold creates the starter skeleton for a new site and stubs
// for new content files. It is a thin layer over the filesystem; the build
// pipeline never depends on it.
package scaffold

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/kgruel/ctxssg/internal/markup"
)

type defaultConfig struct {
	Title         string   `yaml:"title"`
	URL           string   `yaml:"url"`
	Description   string   `yaml:"description"`
	Author        string   `yaml:"author"`
	OutputDir     string   `yaml:"output_dir"`
	OutputFormats []string `yaml:"output_formats"`
}

// Init writes a complete starter site into root: config, templates, sample
// content, and a default stylesheet. Existing files are overwritten.
func Init(fs afero.Fs, root, title string) error {
	for _, dir := range []string{
		filepath.Join(root, "content", "posts"),
		filepath.Join(root, "templates", "partials"),
		filepath.Join(root, "static", "css"),
		filepath.Join(root, "static", "js"),
	} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	cfg, err := yaml.Marshal(defaultConfig{
		Title:         title,
		URL:           "http://localhost:8000",
		Description:   "A static site generated with ctxssg",
		Author:        "Your Name",
		OutputDir:     "_site",
		OutputFormats: []string{"html"},
	})
	if err != nil {
		return err
	}

	files := map[string][]byte{
		filepath.Join(root, "config.yaml"):                    cfg,
		filepath.Join(root, "templates", "base.html"):         []byte(baseTemplate),
		filepath.Join(root, "templates", "default.html"):      []byte(defaultTemplate),
		filepath.Join(root, "templates", "index.html"):        []byte(indexTemplate),
		filepath.Join(root, "templates", "post.html"):         []byte(postTemplate),
		filepath.Join(root, "templates", "tags.html"):         []byte(tagsTemplate),
		filepath.Join(root, "content", "about.md"):            []byte(aboutContent),
		filepath.Join(root, "content", "posts", "welcome.md"): []byte(welcomeContent),
		filepath.Join(root, "static", "css", "style.css"):     []byte(defaultCSS),
	}
	for path, data := range files {
		if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

// NewContent writes a dated content stub and returns its path. Posts land
// in content/posts, pages directly in content. It refuses to overwrite.
func NewContent(fs afero.Fs, root, title string, page bool, now time.Time) (string, error) {
	slug := markup.Slug(title)
	if slug == "" {
		return "", fmt.Errorf("cannot derive a file name from title %q", title)
	}

	dir := filepath.Join(root, "content", "posts")
	layout := "post"
	if page {
		dir = filepath.Join(root, "content")
		layout = "default"
	}
	path := filepath.Join(dir, slug+".md")

	if ok, _ := afero.Exists(fs, path); ok {
		return "", fmt.Errorf("%s already exists", path)
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	stub := fmt.Sprintf("---\ntitle: %q\ndate: %s\nlayout: %s\ndraft: true\n---\n\nWrite something here.\n",
		title, now.Format("2006-01-02"), layout)
	if err := afero.WriteFile(fs, path, []byte(stub), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

const baseTemplate = `{{define "base"}}<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Page.Title}} - {{.Site.Title}}</title>
    <link rel="stylesheet" href="/static/css/style.css">
</head>
<body>
    <header>
        <h1><a href="/">{{.Site.Title}}</a></h1>
        <nav>
            <a href="/">Home</a>
            <a href="/about/">About</a>
        </nav>
    </header>

    <main>
        {{block "content" .}}{{end}}
    </main>

    <footer>
        <p>&copy; {{.Site.Author}} &mdash; built with ctxssg</p>
    </footer>
</body>
</html>
{{end}}`

const defaultTemplate = `{{define "content"}}
<article>
    <h1>{{.Page.Title}}</h1>
    {{.Page.HTML}}
</article>
{{end}}
{{template "base" .}}`

const indexTemplate = `{{define "content"}}
<div class="home">
    <h2>Recent Posts</h2>
    <ul class="post-list">
        {{range .Posts}}
        <li>
            <span class="post-date">{{.Date.Format "2006-01-02"}}</span>
            <a href="{{.URL}}">{{.Title}}</a>
        </li>
        {{end}}
    </ul>
    {{with .Pager}}{{if gt .Total 1}}
    <nav class="pagination">
        {{if .Prev}}<a href="{{.Prev}}">Newer</a>{{end}}
        <span>Page {{.Number}} of {{.Total}}</span>
        {{if .Next}}<a href="{{.Next}}">Older</a>{{end}}
    </nav>
    {{end}}{{end}}
</div>
{{end}}
{{template "base" .}}`

const postTemplate = `{{define "content"}}
<article class="post">
    <header>
        <h1>{{.Page.Title}}</h1>
        <time datetime="{{.Page.Date.Format "2006-01-02"}}">{{.Page.Date.Format "January 2, 2006"}}</time>
    </header>

    <div class="post-content">
        {{.Page.HTML}}
    </div>
</article>
{{end}}
{{template "base" .}}`

const tagsTemplate = `{{define "content"}}
<div class="tag-page">
    <h2>Posts tagged &ldquo;{{.Page.Title}}&rdquo;</h2>
    <ul class="post-list">
        {{range .Posts}}
        <li>
            <span class="post-date">{{.Date.Format "2006-01-02"}}</span>
            <a href="{{.URL}}">{{.Title}}</a>
        </li>
        {{end}}
    </ul>
</div>
{{end}}
{{template "base" .}}`

const aboutContent = `---
title: About
layout: default
---

# About This Site

This is a static site generated with ctxssg.

## Features

- Markdown content with YAML frontmatter
- Templates with shared base layouts
- Simple and fast
`

const welcomeContent = `---
title: Welcome to ctxssg
date: 2024-01-01
layout: post
---

Welcome to your new static site! This post was generated automatically when
you initialized your site.

## Getting Started

1. Add your content as Markdown files in the ` + "`content`" + ` directory
2. Customize templates in the ` + "`templates`" + ` directory
3. Add static assets to the ` + "`static`" + ` directory
4. Build your site with ` + "`ctxssg build`" + `

Happy writing!
`

const defaultCSS = `/* Default ctxssg stylesheet */
body { font-family: -apple-system, sans-serif; line-height: 1.6; max-width: 800px; margin: 0 auto; padding: 1rem; }
h1, h2, h3 { margin-top: 1.5rem; }
a { color: #0066cc; }
pre { background: #f5f5f5; padding: 1rem; overflow-x: auto; }
code { font-family: monospace; background: #f5f5f5; padding: 0.2em 0.4em; }
.post-date { color: #666; margin-right: 0.5rem; font-variant-numeric: tabular-nums; }
.pagination { margin-top: 1.5rem; display: flex; gap: 1rem; }
`
