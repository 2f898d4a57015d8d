package markup

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Section is a heading-delimited slice of a document, used by the xml and
// json exports. Content appearing before the first heading is not part of
// any section and is dropped.
type Section struct {
	ID      string  `json:"id"`
	Level   int     `json:"level"`
	Title   string  `json:"title"`
	Content []Block `json:"content"`
}

// Block is one content element inside a Section.
type Block struct {
	Type     string   `json:"type"`
	Text     string   `json:"text,omitempty"`
	Style    string   `json:"style,omitempty"`
	Items    []string `json:"items,omitempty"`
	Language string   `json:"language,omitempty"`
}

const (
	BlockParagraph = "paragraph"
	BlockList      = "list"
	BlockCode      = "code"
	BlockQuote     = "quote"
)

// ToPlain renders a METADATA/CONTENT plain-text view of the document: the
// metadata as "Key: value" lines, then the body stripped of markup.
func ToPlain(metadata map[string]any, src []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("METADATA:\n")
	for _, k := range sortedMetaKeys(metadata) {
		fmt.Fprintf(&buf, "%s: %s\n", keyCaser.String(k), metaString(metadata[k]))
	}
	buf.WriteString("\nCONTENT:\n")
	buf.WriteString(strings.Repeat("=", 80))
	buf.WriteString("\n\n")
	buf.WriteString(plainBody(src))
	return buf.Bytes(), nil
}

// ToJSON renders the document as {"metadata": …, "content": {"sections": …}}.
func ToJSON(metadata map[string]any, src []byte) ([]byte, error) {
	meta := map[string]any{}
	for _, k := range sortedMetaKeys(metadata) {
		meta[k] = jsonValue(metadata[k])
	}
	doc := struct {
		Metadata map[string]any `json:"metadata"`
		Content  struct {
			Sections []Section `json:"sections"`
		} `json:"content"`
	}{Metadata: meta}
	doc.Content.Sections = Sections(src)
	return json.MarshalIndent(doc, "", "  ")
}

// ToXML renders the document as <document><meta>…</meta><content> with one
// <section> per heading.
func ToXML(metadata map[string]any, src []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<document>\n  <meta>\n")
	for _, k := range sortedMetaKeys(metadata) {
		name := xmlName(k)
		fmt.Fprintf(&buf, "    <%s>%s</%s>\n", name, xmlEscape(metaString(metadata[k])), name)
	}
	buf.WriteString("  </meta>\n  <content>\n")
	for _, sec := range Sections(src) {
		fmt.Fprintf(&buf, "    <section id=%q level=%q>\n", sec.ID, strconv.Itoa(sec.Level))
		fmt.Fprintf(&buf, "      <title>%s</title>\n", xmlEscape(sec.Title))
		for _, b := range sec.Content {
			writeBlockXML(&buf, b)
		}
		buf.WriteString("    </section>\n")
	}
	buf.WriteString("  </content>\n</document>\n")
	return buf.Bytes(), nil
}

func writeBlockXML(buf *bytes.Buffer, b Block) {
	switch b.Type {
	case BlockParagraph:
		fmt.Fprintf(buf, "      <paragraph>%s</paragraph>\n", xmlEscape(b.Text))
	case BlockList:
		fmt.Fprintf(buf, "      <list type=%q>\n", b.Style)
		for _, item := range b.Items {
			fmt.Fprintf(buf, "        <item>%s</item>\n", xmlEscape(item))
		}
		buf.WriteString("      </list>\n")
	case BlockCode:
		if b.Language != "" {
			fmt.Fprintf(buf, "      <code language=%q>%s</code>\n", b.Language, xmlEscape(b.Text))
		} else {
			fmt.Fprintf(buf, "      <code>%s</code>\n", xmlEscape(b.Text))
		}
	case BlockQuote:
		fmt.Fprintf(buf, "      <quote>%s</quote>\n", xmlEscape(b.Text))
	}
}

// Sections parses src and groups its top-level blocks under headings.
func Sections(src []byte) []Section {
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	sections := []Section{}
	var current *Section
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*gmast.Heading); ok {
			if current != nil {
				sections = append(sections, *current)
			}
			title := nodeText(h, src)
			current = &Section{
				ID:      Slug(title),
				Level:   h.Level,
				Title:   title,
				Content: []Block{},
			}
			continue
		}
		if current == nil {
			continue
		}
		if b, ok := blockFor(n, src); ok {
			current.Content = append(current.Content, b)
		}
	}
	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}

func blockFor(n gmast.Node, src []byte) (Block, bool) {
	switch node := n.(type) {
	case *gmast.Paragraph:
		t := nodeText(node, src)
		if t == "" {
			return Block{}, false
		}
		return Block{Type: BlockParagraph, Text: t}, true
	case *gmast.List:
		style := "bullet"
		if node.IsOrdered() {
			style = "ordered"
		}
		var items []string
		for li := node.FirstChild(); li != nil; li = li.NextSibling() {
			items = append(items, nodeText(li, src))
		}
		return Block{Type: BlockList, Style: style, Items: items}, true
	case *gmast.FencedCodeBlock:
		return Block{
			Type:     BlockCode,
			Text:     linesText(node, src),
			Language: string(node.Language(src)),
		}, true
	case *gmast.CodeBlock:
		return Block{Type: BlockCode, Text: linesText(node, src)}, true
	case *gmast.Blockquote:
		return Block{Type: BlockQuote, Text: nodeText(node, src)}, true
	}
	return Block{}, false
}

// plainBody flattens the Markdown AST into readable text: headings and
// paragraphs as lines, lists with markers, code verbatim.
func plainBody(src []byte) string {
	root := goldmark.New().Parser().Parse(text.NewReader(src))
	var parts []string
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *gmast.Heading:
			parts = append(parts, nodeText(node, src))
		case *gmast.Paragraph:
			if t := nodeText(node, src); t != "" {
				parts = append(parts, t)
			}
		case *gmast.List:
			var lines []string
			i := 1
			for li := node.FirstChild(); li != nil; li = li.NextSibling() {
				if node.IsOrdered() {
					lines = append(lines, fmt.Sprintf("%d. %s", i, nodeText(li, src)))
				} else {
					lines = append(lines, "- "+nodeText(li, src))
				}
				i++
			}
			parts = append(parts, strings.Join(lines, "\n"))
		case *gmast.FencedCodeBlock:
			parts = append(parts, strings.TrimRight(linesText(node, src), "\n"))
		case *gmast.CodeBlock:
			parts = append(parts, strings.TrimRight(linesText(node, src), "\n"))
		case *gmast.Blockquote:
			parts = append(parts, nodeText(node, src))
		}
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// nodeText collects the raw text under a node, ignoring inline markup.
func nodeText(n gmast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = gmast.Walk(n, func(child gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *gmast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *gmast.String:
			buf.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

func linesText(n gmast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.String()
}

var (
	keyCaser    = cases.Title(language.English)
	slugStrip   = regexp.MustCompile(`[^a-zA-Z0-9\s-]`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	xmlNameBad  = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	xmlReplacer = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;",
	)
)

// Slug derives a URL/id-safe identifier from a heading or tag.
func Slug(s string) string {
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.ToLower(strings.TrimSpace(s))
	return slugSpaces.ReplaceAllString(s, "-")
}

func xmlEscape(s string) string { return xmlReplacer.Replace(s) }

func xmlName(key string) string {
	name := xmlNameBad.ReplaceAllString(key, "-")
	if name == "" || !isLetter(rune(name[0])) {
		name = "x-" + name
	}
	return name
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func sortedMetaKeys(metadata map[string]any) []string {
	keys := make([]string, 0, len(metadata))
	for k, v := range metadata {
		if v == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func metaString(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

func jsonValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return v
}
