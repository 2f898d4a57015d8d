package content

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/adrg/frontmatter"
	"github.com/spf13/afero"
)

// LoadError reports a single content file that could not be loaded. It
// never aborts the scan; the loader records it and moves on.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load walks the content tree rooted at root and parses every Markdown file
// into an Item. Items whose frontmatter declares draft: true are returned
// separately so the builder can report them without building them. Returned
// item order is filesystem traversal order; callers sort as needed.
func Load(fs afero.Fs, root string) (items, drafts []*Item, errs []error) {
	walkErr := afero.Walk(fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			errs = append(errs, &LoadError{Path: p, Err: err})
			return nil
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = p
		}
		rel = filepath.ToSlash(rel)

		item, err := loadFile(fs, p, rel)
		if err != nil {
			errs = append(errs, &LoadError{Path: rel, Err: err})
			return nil
		}
		if item.Draft {
			drafts = append(drafts, item)
		} else {
			items = append(items, item)
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, &LoadError{Path: root, Err: walkErr})
	}
	return items, drafts, errs
}

func loadFile(fs afero.Fs, fullPath, relPath string) (*Item, error) {
	raw, err := afero.ReadFile(fs, fullPath)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("not valid UTF-8 text")
	}

	// Files without a frontmatter block come back with empty metadata and
	// the whole file as body. A block that opens but does not parse is a
	// load failure for this file.
	meta := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: %w", err)
	}
	return NewItem(relPath, meta, body), nil
}
