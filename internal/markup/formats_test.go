package markup

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleDoc = `# Getting Started

First paragraph.

- alpha
- beta

## Details

1. one
2. two

` + "```go\nfmt.Println(\"hi\")\n```" + `

> a quote
`

func TestSections_GroupsBlocksUnderHeadings(t *testing.T) {
	secs := Sections([]byte(sampleDoc))
	require.Len(t, secs, 2)

	require.Equal(t, "getting-started", secs[0].ID)
	require.Equal(t, 1, secs[0].Level)
	require.Equal(t, "Getting Started", secs[0].Title)
	require.Len(t, secs[0].Content, 2)
	require.Equal(t, BlockParagraph, secs[0].Content[0].Type)
	require.Equal(t, BlockList, secs[0].Content[1].Type)
	require.Equal(t, "bullet", secs[0].Content[1].Style)
	require.Equal(t, []string{"alpha", "beta"}, secs[0].Content[1].Items)

	details := secs[1]
	require.Equal(t, "details", details.ID)
	require.Equal(t, 2, details.Level)
	require.Equal(t, "ordered", details.Content[0].Style)
	require.Equal(t, BlockCode, details.Content[1].Type)
	require.Equal(t, "go", details.Content[1].Language)
	require.Contains(t, details.Content[1].Text, `fmt.Println("hi")`)
	require.Equal(t, BlockQuote, details.Content[2].Type)
	require.Equal(t, "a quote", details.Content[2].Text)
}

func TestSections_ContentBeforeFirstHeading_Dropped(t *testing.T) {
	secs := Sections([]byte("stray paragraph\n\n# Head\n\nkept\n"))
	require.Len(t, secs, 1)
	require.Len(t, secs[0].Content, 1)
	require.Equal(t, "kept", secs[0].Content[0].Text)
}

func TestToPlain_MetadataThenContent(t *testing.T) {
	meta := map[string]any{
		"title": "Hello",
		"date":  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	out, err := ToPlain(meta, []byte("# Hi\n\nBody text.\n"))
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, "METADATA:\n")
	require.Contains(t, s, "Title: Hello")
	require.Contains(t, s, "Date: 2024-01-02T00:00:00Z")
	require.Contains(t, s, "CONTENT:\n")
	require.Contains(t, s, "Body text.")
	require.NotContains(t, s, "# Hi")
}

func TestToJSON_StructureRoundTrips(t *testing.T) {
	out, err := ToJSON(map[string]any{"title": "T"}, []byte(sampleDoc))
	require.NoError(t, err)

	var doc struct {
		Metadata map[string]any `json:"metadata"`
		Content  struct {
			Sections []Section `json:"sections"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	require.Equal(t, "T", doc.Metadata["title"])
	require.Len(t, doc.Content.Sections, 2)
}

func TestToXML_EscapesAndStructures(t *testing.T) {
	out, err := ToXML(map[string]any{"title": "A & B"}, []byte("# One & Two\n\npara\n"))
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, "<document>")
	require.Contains(t, s, "<title>A &amp; B</title>")
	require.Contains(t, s, `<section id="one-two" level="1">`)
	require.Contains(t, s, "<title>One &amp; Two</title>")
	require.Contains(t, s, "<paragraph>para</paragraph>")
}

func TestSlug_StripsAndLowercases(t *testing.T) {
	require.Equal(t, "getting-started", Slug("Getting Started!"))
	require.Equal(t, "a-b", Slug("  A   b  "))
	require.Equal(t, "caf", Slug("café"))
}
