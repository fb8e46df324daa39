package processor

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/tlrun"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	urlPattern   = regexp.MustCompile(`(?i)^(https?://|ftp://|www\.)\S+$`)
	emailPattern = regexp.MustCompile(`^(?i:mailto:)?[^\s@]+@[^\s@]+\.[^\s@]+$`)

	documentPattern = regexp.MustCompile(`(?i)<(!doctype|html|head|body)[\s/>]`)
	firstTagPattern = regexp.MustCompile(`^\s*(?:<!--[\s\S]*?-->\s*)*<([a-zA-Z][a-zA-Z0-9]*)`)
)

// fragmentContext maps a fragment's first element to the parent it must be
// parsed in. Everything else is parsed in <body>.
var fragmentContext = map[string]atom.Atom{
	"caption":  atom.Table,
	"colgroup": atom.Table,
	"thead":    atom.Table,
	"tbody":    atom.Table,
	"tfoot":    atom.Table,
	"tr":       atom.Tbody,
	"td":       atom.Tr,
	"th":       atom.Tr,
	"col":      atom.Colgroup,
}

// HTMLProcessor extracts and applies translations to HTML content.
type HTMLProcessor struct {
	ignoredTags map[string]bool
}

// NewHTMLProcessor creates a new HTML processor with default ignored tags.
func NewHTMLProcessor() *HTMLProcessor {
	return &HTMLProcessor{
		ignoredTags: tlrun.IgnoredTags,
	}
}

// NewHTMLProcessorWithIgnoredTags creates a new HTML processor that skips
// exactly tags, replacing the defaults.
func NewHTMLProcessorWithIgnoredTags(tags []string) *HTMLProcessor {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			ignored[tag] = true
		}
	}
	return &HTMLProcessor{
		ignoredTags: ignored,
	}
}

// textRef ties a mutable text node to the hash of its trimmed content.
type textRef struct {
	node *html.Node
	hash string
}

// parsedHTML holds the parse tree and the text nodes to mutate.
type parsedHTML struct {
	// roots are the top-level nodes that were written in the input, in
	// order. Rendering them in turn reproduces the document or fragment.
	roots []*html.Node
	refs  []textRef
}

// Extract parses HTML and collects translatable text nodes in document order.
// Duplicate texts yield a single TextNode; every occurrence is still mutated by Apply.
func (p *HTMLProcessor) Extract(content string) (interface{}, []tlrun.TextNode, error) {
	roots, err := parse(content)
	if err != nil {
		return nil, nil, &tlrun.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: tlrun.ContentTypeHTML,
		}
	}

	parsed := &parsedHTML{roots: roots}
	var nodes []tlrun.TextNode
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if p.skipElement(n) {
				return
			}
		case html.TextNode:
			if !ShouldTranslate(n.Data) {
				return
			}
			trimmed := strings.TrimSpace(n.Data)
			hash := tlrun.HashText(trimmed)
			parsed.refs = append(parsed.refs, textRef{node: n, hash: hash})

			if !seen[hash] {
				seen[hash] = true
				node := tlrun.TextNode{
					ID:       fmt.Sprintf("node-%d", len(nodes)),
					Text:     trimmed,
					Hash:     hash,
					NodeType: "html_text",
					Metadata: map[string]string{},
				}
				if n.Parent != nil && n.Parent.Type == html.ElementNode {
					node.Metadata["parent_tag"] = n.Parent.Data
				}
				nodes = append(nodes, node)
			}
			return
		case html.CommentNode, html.DoctypeNode:
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, root := range roots {
		walk(root)
	}

	return parsed, nodes, nil
}

// Apply writes translations back into the parse tree and renders it.
// Text nodes without a translation keep their original content.
func (p *HTMLProcessor) Apply(parsed interface{}, nodes []tlrun.TextNode, translations map[string]string) (string, error) {
	ph, ok := parsed.(*parsedHTML)
	if !ok {
		return "", &tlrun.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: tlrun.ContentTypeHTML,
		}
	}

	for _, ref := range ph.refs {
		if translated, ok := translations[ref.hash]; ok {
			ref.node.Data = preserveWhitespace(ref.node.Data, translated)
		}
	}

	var buf bytes.Buffer
	for _, root := range ph.roots {
		if err := html.Render(&buf, root); err != nil {
			return "", &tlrun.ProcessorError{
				Message:     "failed to serialize HTML",
				Cause:       err,
				ContentType: tlrun.ContentTypeHTML,
			}
		}
	}

	return buf.String(), nil
}

// ContentType returns "html".
func (p *HTMLProcessor) ContentType() string {
	return tlrun.ContentTypeHTML
}

// PlainText returns the visible text of an HTML document or fragment.
func (p *HTMLProcessor) PlainText(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	return strings.TrimSpace(doc.Text()), nil
}

func (p *HTMLProcessor) skipElement(n *html.Node) bool {
	if p.ignoredTags[strings.ToLower(n.Data)] {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == "data-no-translate" {
			return true
		}
		if attr.Key == "translate" && strings.EqualFold(attr.Val, "no") {
			return true
		}
	}
	return false
}

// ShouldTranslate reports whether a text node is worth sending to a
// translator: at least two characters once trimmed, containing a letter, and
// not a bare URL or e-mail address.
func ShouldTranslate(text string) bool {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < 2 {
		return false
	}
	if !hasWordRune(trimmed) {
		return false
	}
	if urlPattern.MatchString(trimmed) || emailPattern.MatchString(trimmed) {
		return false
	}
	return true
}

// hasWordRune reports whether s has a word character other than a digit.
func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsMark(r) || r == '_' {
			return true
		}
	}
	return false
}

// parse picks the parser from the markup itself. Content naming an html,
// head or body element, or carrying a doctype, is parsed as a document;
// anything else is a fragment in the context its first element needs, so
// table rows and cells survive outside a <table>.
func parse(content string) ([]*html.Node, error) {
	content = strings.TrimPrefix(content, "\ufeff")

	if tags := documentTags(content); len(tags) > 0 {
		return parseDocument(content, tags)
	}

	context := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	if m := firstTagPattern.FindStringSubmatch(content); m != nil {
		if a, ok := fragmentContext[strings.ToLower(m[1])]; ok {
			context = &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
		}
	}
	return html.ParseFragment(strings.NewReader(content), context)
}

// documentTags returns the document-level tags written out in content.
func documentTags(content string) map[string]bool {
	tags := make(map[string]bool)
	for _, m := range documentPattern.FindAllStringSubmatch(content, -1) {
		tags[strings.ToLower(m[1])] = true
	}
	return tags
}

// parseDocument parses a full document and drops the html, head and body
// elements the parser implied, so only markup present in the input is
// rendered back.
func parseDocument(content string, tags map[string]bool) ([]*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	var roots []*html.Node
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Html {
			roots = append(roots, c)
			continue
		}
		unwrapImplied(c, tags)
		if tags["html"] {
			roots = append(roots, c)
			continue
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			roots = append(roots, gc)
		}
	}
	return roots, nil
}

// unwrapImplied replaces head and body children of root that were not in
// the input with their own children.
func unwrapImplied(root *html.Node, tags map[string]bool) {
	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		implied := c.Type == html.ElementNode &&
			(c.DataAtom == atom.Head || c.DataAtom == atom.Body) &&
			!tags[c.Data] && len(c.Attr) == 0
		if implied {
			for gc := c.FirstChild; gc != nil; {
				gnext := gc.NextSibling
				c.RemoveChild(gc)
				root.InsertBefore(gc, c)
				gc = gnext
			}
			root.RemoveChild(c)
		}
		c = next
	}
}

// preserveWhitespace reattaches the original leading/trailing whitespace.
func preserveWhitespace(original, translated string) string {
	trimmedLeft := strings.TrimLeftFunc(original, unicode.IsSpace)
	leading := original[:len(original)-len(trimmedLeft)]

	trimmedRight := strings.TrimRightFunc(original, unicode.IsSpace)
	trailing := ""
	if len(trimmedLeft) > 0 {
		trailing = original[len(trimmedRight):]
	}

	return leading + translated + trailing
}

// HTMLProcessor also feeds plain text to the language detector.
var (
	_ tlrun.ContentProcessor = (*HTMLProcessor)(nil)
	_ tlrun.TextExtractor    = (*HTMLProcessor)(nil)
)
