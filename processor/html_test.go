package processor

import (
	"strings"
	"testing"
)

func TestHTMLProcessor_Extract_Basic(t *testing.T) {
	p := NewHTMLProcessor()

	html := `<div><h1>Hello World</h1><p>Welcome to our site.</p></div>`
	parsed, nodes, err := p.Extract(html)

	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if parsed == nil {
		t.Fatal("parsed should not be nil")
	}

	if len(nodes) != 2 {
		t.Fatalf("Expected 2 nodes, got %d", len(nodes))
	}

	if nodes[0].Text != "Hello World" {
		t.Errorf("Expected 'Hello World', got %q", nodes[0].Text)
	}
	if nodes[0].Hash == "" {
		t.Error("Hash should not be empty")
	}
	if nodes[0].NodeType != "html_text" {
		t.Errorf("Expected node type 'html_text', got %q", nodes[0].NodeType)
	}
	if nodes[0].Metadata["parent_tag"] != "h1" {
		t.Errorf("Expected parent_tag h1, got %q", nodes[0].Metadata["parent_tag"])
	}

	if nodes[1].Text != "Welcome to our site." {
		t.Errorf("Expected 'Welcome to our site.', got %q", nodes[1].Text)
	}
}

func TestHTMLProcessor_Extract_DocumentOrder(t *testing.T) {
	p := NewHTMLProcessor()

	_, nodes, err := p.Extract(`<p>hola <b>mundo</b> y <i>adiós</i></p>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	want := []string{"hola", "mundo", "adiós"}
	if len(nodes) != len(want) {
		t.Fatalf("Expected %d nodes, got %d", len(want), len(nodes))
	}
	for i, w := range want {
		if nodes[i].Text != w {
			t.Errorf("node %d: expected %q, got %q", i, w, nodes[i].Text)
		}
	}
}

func TestHTMLProcessor_Extract_SkipsInsubstantialText(t *testing.T) {
	p := NewHTMLProcessor()

	html := `<table>
		<tr><td>1</td><td>42.00</td><td>-</td><td>x</td></tr>
		<tr><td>https://example.com/a</td><td>bob@example.com</td></tr>
		<tr><td>Total amount</td></tr>
	</table>`

	_, nodes, err := p.Extract(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(nodes) != 1 {
		t.Fatalf("Expected only 'Total amount', got %d nodes: %+v", len(nodes), nodes)
	}
	if nodes[0].Text != "Total amount" {
		t.Errorf("Expected 'Total amount', got %q", nodes[0].Text)
	}
}

func TestHTMLProcessor_Extract_IgnoredTags(t *testing.T) {
	p := NewHTMLProcessor()

	html := `<div>
		<p>Translate me</p>
		<script>doNotTranslate();</script>
		<style>.class { color: red; }</style>
		<code>const x = 1;</code>
		<pre>preformatted</pre>
		<textarea>form input</textarea>
	</div>`

	_, nodes, err := p.Extract(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(nodes) != 1 {
		t.Fatalf("Expected 1 node (only 'Translate me'), got %d", len(nodes))
	}

	if nodes[0].Text != "Translate me" {
		t.Errorf("Expected 'Translate me', got %q", nodes[0].Text)
	}
}

func TestHTMLProcessor_Extract_NoTranslateAttributes(t *testing.T) {
	p := NewHTMLProcessor()

	html := `<div>
		<p data-no-translate>Keep this</p>
		<p translate="no">Keep that</p>
		<p>Translate this</p>
	</div>`

	_, nodes, err := p.Extract(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(nodes) != 1 {
		t.Fatalf("Expected 1 node, got %d", len(nodes))
	}

	if nodes[0].Text != "Translate this" {
		t.Errorf("Expected 'Translate this', got %q", nodes[0].Text)
	}
}

func TestHTMLProcessor_Extract_Deduplication(t *testing.T) {
	p := NewHTMLProcessor()

	html := `<div>
		<p>Hello</p>
		<p>Hello</p>
		<p>Hello</p>
	</div>`

	_, nodes, err := p.Extract(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(nodes) != 1 {
		t.Fatalf("Expected 1 unique node, got %d", len(nodes))
	}
}

func TestHTMLProcessor_Apply_Uppercase(t *testing.T) {
	p := NewHTMLProcessor()

	in := `<p>hola <b>mundo</b>!</p>`
	parsed, nodes, err := p.Extract(in)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	translations := make(map[string]string)
	for _, n := range nodes {
		translations[n.Hash] = strings.ToUpper(n.Text)
	}

	out, err := p.Apply(parsed, nodes, translations)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if out != `<p>HOLA <b>MUNDO</b>!</p>` {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestHTMLProcessor_Apply_PreservesMarkup(t *testing.T) {
	p := NewHTMLProcessor()

	in := `<div class="greeting" id="g1"><!-- keep me --><a href="https://example.com" title="Home">Go home</a><img src="a.png" alt="logo"></div>`
	parsed, nodes, err := p.Extract(in)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	translations := map[string]string{nodes[0].Hash: "Ve a casa"}
	out, err := p.Apply(parsed, nodes, translations)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	for _, want := range []string{
		`<div class="greeting" id="g1">`,
		`<!-- keep me -->`,
		`<a href="https://example.com" title="Home">Ve a casa</a>`,
		`<img src="a.png" alt="logo"/>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got: %s", want, out)
		}
	}
}

func TestHTMLProcessor_Apply_FullDocument(t *testing.T) {
	p := NewHTMLProcessor()

	in := "<!DOCTYPE html>\n<html><head><title>Greeting</title></head><body><p>Hello</p></body></html>"
	parsed, nodes, err := p.Extract(in)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(nodes) != 2 {
		t.Fatalf("Expected title and paragraph, got %d nodes", len(nodes))
	}

	translations := map[string]string{}
	for _, n := range nodes {
		translations[n.Hash] = "[" + n.Text + "]"
	}

	out, err := p.Apply(parsed, nodes, translations)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Errorf("doctype should survive, got: %s", out)
	}
	if !strings.Contains(out, "<title>[Greeting]</title>") || !strings.Contains(out, "<p>[Hello]</p>") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestHTMLProcessor_Apply_MissingTranslationKeepsOriginal(t *testing.T) {
	p := NewHTMLProcessor()

	parsed, nodes, err := p.Extract(`<p>Hello</p><p>World</p>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	translations := map[string]string{nodes[0].Hash: "Hola"}
	out, err := p.Apply(parsed, nodes, translations)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if out != `<p>Hola</p><p>World</p>` {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestHTMLProcessor_Apply_PreservesWhitespace(t *testing.T) {
	p := NewHTMLProcessor()

	html := "<p>\n  Hello  </p>"
	parsed, nodes, err := p.Extract(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	translations := map[string]string{
		nodes[0].Hash: "Hola",
	}

	result, err := p.Apply(parsed, nodes, translations)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if result != "<p>\n  Hola  </p>" {
		t.Errorf("Result should preserve whitespace, got: %q", result)
	}
}

func TestHTMLProcessor_Apply_DuplicateTexts(t *testing.T) {
	p := NewHTMLProcessor()

	html := `<div><p>Hello</p><p>Hello</p></div>`
	parsed, nodes, err := p.Extract(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(nodes) != 1 {
		t.Fatalf("Expected 1 node, got %d", len(nodes))
	}

	translations := map[string]string{
		nodes[0].Hash: "Hola",
	}

	result, err := p.Apply(parsed, nodes, translations)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	count := strings.Count(result, "Hola")
	if count != 2 {
		t.Errorf("Expected 2 instances of 'Hola', got %d in: %s", count, result)
	}
}

func TestHTMLProcessor_Apply_InvalidParsed(t *testing.T) {
	p := NewHTMLProcessor()
	if _, err := p.Apply("not parsed", nil, nil); err == nil {
		t.Error("expected error for foreign parsed value")
	}
}

func TestHTMLProcessor_ContentType(t *testing.T) {
	p := NewHTMLProcessor()
	if p.ContentType() != "html" {
		t.Errorf("Expected 'html', got %q", p.ContentType())
	}
}

func TestHTMLProcessor_PlainText(t *testing.T) {
	p := NewHTMLProcessor()

	text, err := p.PlainText(`<p>Bonjour <b>tout le monde</b></p><script>var x = "ignored";</script>`)
	if err != nil {
		t.Fatalf("PlainText failed: %v", err)
	}
	if text != "Bonjour tout le monde" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestShouldTranslate(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"a", false},
		{" é ", false},
		{"12", false},
		{"3.14, 2.71", false},
		{"--- !!! ---", false},
		{"ok", true},
		{"Hello", true},
		{"  Bonjour à tous  ", true},
		{"http://example.com/path", false},
		{"www.example.com", false},
		{"someone@example.org", false},
		{"Visit https://example.com today", true},
		{"日本", true},
	}

	for _, tt := range tests {
		if got := ShouldTranslate(tt.text); got != tt.want {
			t.Errorf("ShouldTranslate(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestPreserveWhitespace(t *testing.T) {
	tests := []struct {
		original   string
		translated string
		expected   string
	}{
		{"Hello", "Hola", "Hola"},
		{"  Hello", "Hola", "  Hola"},
		{"Hello  ", "Hola", "Hola  "},
		{"  Hello  ", "Hola", "  Hola  "},
		{"\n\tHello\n", "Hola", "\n\tHola\n"},
		{" Hello", "Hola", " Hola"},
	}

	for _, tt := range tests {
		result := preserveWhitespace(tt.original, tt.translated)
		if result != tt.expected {
			t.Errorf("preserveWhitespace(%q, %q) = %q, want %q",
				tt.original, tt.translated, result, tt.expected)
		}
	}
}

func TestHTMLProcessor_EmptyContent(t *testing.T) {
	p := NewHTMLProcessor()

	_, nodes, err := p.Extract(`<div></div>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(nodes) != 0 {
		t.Errorf("Expected 0 nodes for empty content, got %d", len(nodes))
	}
}

// upperRoundTrip extracts in, uppercases every node and renders it back.
func upperRoundTrip(t *testing.T, p *HTMLProcessor, in string) string {
	t.Helper()
	parsed, nodes, err := p.Extract(in)
	if err != nil {
		t.Fatalf("Extract(%q) failed: %v", in, err)
	}
	translations := make(map[string]string)
	for _, n := range nodes {
		translations[n.Hash] = strings.ToUpper(n.Text)
	}
	out, err := p.Apply(parsed, nodes, translations)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	return out
}

func TestHTMLProcessor_Apply_DocumentStructureSurvives(t *testing.T) {
	p := NewHTMLProcessor()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "head and body with attributes",
			input:    `<head><title>Hola amigo</title></head><body style="margin:0"><p>Hola mundo</p></body>`,
			expected: `<head><title>HOLA AMIGO</title></head><body style="margin:0"><p>HOLA MUNDO</p></body>`,
		},
		{
			name:     "body only",
			input:    `<body bgcolor="#fff"><p>Hola mundo</p></body>`,
			expected: `<body bgcolor="#fff"><p>HOLA MUNDO</p></body>`,
		},
		{
			name:     "leading comment before html",
			input:    `<!-- x --><html><body><p>Hola mundo</p></body></html>`,
			expected: `<!-- x --><html><body><p>HOLA MUNDO</p></body></html>`,
		},
		{
			name:     "html attributes",
			input:    `<html lang="es"><head><meta charset="utf-8"></head><body><p>Hola mundo</p></body></html>`,
			expected: `<html lang="es"><head><meta charset="utf-8"/></head><body><p>HOLA MUNDO</p></body></html>`,
		},
		{
			name:     "doctype without explicit wrappers",
			input:    `<!DOCTYPE html><p>Hola mundo</p>`,
			expected: `<!DOCTYPE html><p>HOLA MUNDO</p>`,
		},
		{
			name:     "byte order mark",
			input:    "\ufeff<body><p>Hola mundo</p></body>",
			expected: `<body><p>HOLA MUNDO</p></body>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := upperRoundTrip(t, p, tt.input); got != tt.expected {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestHTMLProcessor_Apply_TableFragments(t *testing.T) {
	p := NewHTMLProcessor()

	tests := []struct {
		input    string
		expected string
	}{
		{`<tr><td>Hola mundo</td></tr>`, `<tr><td>HOLA MUNDO</td></tr>`},
		{`<td>Hola</td><td>mundo</td>`, `<td>HOLA</td><td>MUNDO</td>`},
		{`<!-- row --><tr><th>Hola mundo</th></tr>`, `<!-- row --><tr><th>HOLA MUNDO</th></tr>`},
		{`<tbody><tr><td>Hola mundo</td></tr></tbody>`, `<tbody><tr><td>HOLA MUNDO</td></tr></tbody>`},
	}

	for _, tt := range tests {
		if got := upperRoundTrip(t, p, tt.input); got != tt.expected {
			t.Errorf("%s: got %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestHTMLProcessor_Extract_DocumentHead(t *testing.T) {
	p := NewHTMLProcessor()

	_, nodes, err := p.Extract(`<head><title>Hola amigo</title><style>p{color:red}</style></head><body><p>Hola mundo</p></body>`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(nodes) != 2 || nodes[0].Text != "Hola amigo" || nodes[1].Text != "Hola mundo" {
		t.Errorf("unexpected nodes: %+v", nodes)
	}
}

func TestNewHTMLProcessorIgnoring(t *testing.T) {
	in := `<p>Hola</p><blockquote>Mensaje citado</blockquote><script>x()</script>`

	_, nodes, err := NewHTMLProcessorIgnoring("BlockQuote").Extract(in)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Text != "Hola" {
		t.Errorf("extra tag should be ignored along with the defaults, got %+v", nodes)
	}

	_, nodes, err = NewHTMLProcessorWithIgnoredTags([]string{" blockquote ", ""}).Extract(in)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(nodes) != 2 || nodes[0].Text != "Hola" || nodes[1].Text != "x()" {
		t.Errorf("custom tags should replace the defaults, got %+v", nodes)
	}
}
