package content

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fs afero.Fs, path, body string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(body), 0o644))
}

func TestLoad_ValidFiles_AllLoaded(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/site/content/about.md", "---\ntitle: About\n---\n\nHello.\n")
	writeFile(t, fs, "/site/content/posts/one.md", "---\ntitle: One\ndate: 2024-01-01\n---\n\nBody.\n")

	items, drafts, errs := Load(fs, "/site/content")
	require.Empty(t, errs)
	require.Empty(t, drafts)
	require.Len(t, items, 2)
}

func TestLoad_NoFrontmatter_WholeFileIsBody(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/site/content/plain.md", "# Just Markdown\n\nNo header here.\n")

	items, _, errs := Load(fs, "/site/content")
	require.Empty(t, errs)
	require.Len(t, items, 1)
	require.Empty(t, items[0].Metadata)
	require.Contains(t, string(items[0].Body), "# Just Markdown")
}

func TestLoad_MalformedFrontmatter_IsolatedToOneFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/site/content/good.md", "---\ntitle: Good\n---\n\nFine.\n")
	writeFile(t, fs, "/site/content/bad.md", "---\ntitle: [unclosed\n---\n\nBody.\n")
	writeFile(t, fs, "/site/content/also-good.md", "---\ntitle: Also\n---\n\nFine too.\n")

	items, _, errs := Load(fs, "/site/content")
	require.Len(t, items, 2)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.True(t, errors.As(errs[0], &loadErr))
	require.Equal(t, "bad.md", loadErr.Path)
}

func TestLoad_InvalidUTF8_ReportedAsLoadError(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/site/content/binary.md", []byte{0xff, 0xfe, 0x00}, 0o644))

	items, _, errs := Load(fs, "/site/content")
	require.Empty(t, items)
	require.Len(t, errs, 1)
}

func TestLoad_Drafts_PartitionedNotDropped(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/site/content/posts/wip.md", "---\ntitle: WIP\ndraft: true\n---\n\nSoon.\n")
	writeFile(t, fs, "/site/content/posts/done.md", "---\ntitle: Done\n---\n\nShipped.\n")

	items, drafts, errs := Load(fs, "/site/content")
	require.Empty(t, errs)
	require.Len(t, items, 1)
	require.Len(t, drafts, 1)
	require.Equal(t, "WIP", drafts[0].Title)
}

func TestLoad_NonMarkdownFiles_Ignored(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/site/content/notes.txt", "not content")
	writeFile(t, fs, "/site/content/real.md", "body\n")

	items, _, errs := Load(fs, "/site/content")
	require.Empty(t, errs)
	require.Len(t, items, 1)
	require.Equal(t, "real.md", items[0].SourcePath)
}

func TestLoad_SourcePaths_RelativeWithForwardSlashes(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/site/content/posts/deep/nested.md", "body\n")

	items, _, errs := Load(fs, "/site/content")
	require.Empty(t, errs)
	require.Len(t, items, 1)
	require.Equal(t, "posts/deep/nested.md", items[0].SourcePath)
}
