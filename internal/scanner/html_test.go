package scanner

import (
	"strings"
	"testing"
)

const samplePage = `<!doctype html>
<html>
<head><title>Release notes</title><style>h1 { color: red }</style></head>
<body>
  <a class="sr-only" href="#main"><h2>Skip to content</h2></a>
  <header><h1>Product   <img alt="logo"></h1></header>
  <main id="main">
    <h2 aria-label="What's new">New <em>stuff</em></h2>
    <div role="heading" aria-level="3">Fixes</div>
    <div role="heading">Default level</div>
    <h4 hidden>Draft</h4>
    <div style="display: none"><h3>Collapsed</h3></div>
    <h3 aria-hidden="true">Decorative</h3>
    <h2 role="presentation">Not a heading</h2>
    <h5 aria-level="2">Overridden</h5>
    <script>document.write("<h1>nope</h1>")</script>
  </main>
</body>
</html>`

func TestHTMLScanner_Headings(t *testing.T) {
	p := &HTMLScanner{}
	page, err := p.Scan(strings.NewReader(samplePage), "notes.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.Title != "Release notes" {
		t.Errorf("expected title %q, got %q", "Release notes", page.Title)
	}

	want := []struct {
		level    int
		name     string
		onScreen bool
		toAT     bool
	}{
		{2, "Skip to content", false, true},
		{1, "Product logo", true, true},
		{2, "What's new", true, true},
		{3, "Fixes", true, true},
		{2, "Default level", true, true},
		{4, "Draft", false, false},
		{3, "Collapsed", false, false},
		{3, "Decorative", true, false},
		{2, "Overridden", true, true},
	}
	if len(page.Headings) != len(want) {
		for _, h := range page.Headings {
			t.Logf("got %+v", h)
		}
		t.Fatalf("expected %d headings, got %d", len(want), len(page.Headings))
	}
	for i, w := range want {
		h := page.Headings[i]
		if h.Level != w.level || h.Name != w.name {
			t.Errorf("heading[%d]: expected %d %q, got %d %q", i, w.level, w.name, h.Level, h.Name)
		}
		if h.VisibleOnScreen != w.onScreen || h.VisibleToAT != w.toAT {
			t.Errorf("heading[%d] %q: expected onScreen=%v toAT=%v, got %v %v", i, w.name, w.onScreen, w.toAT, h.VisibleOnScreen, h.VisibleToAT)
		}
		if h.Ordinal != i+1 {
			t.Errorf("heading[%d]: expected ordinal %d, got %d", i, i+1, h.Ordinal)
		}
	}
}

func TestHTMLScanner_NoTitleUsesFilename(t *testing.T) {
	p := &HTMLScanner{}
	page, err := p.Scan(strings.NewReader("<p>hello</p>"), "index.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Title != "index" {
		t.Errorf("expected title %q, got %q", "index", page.Title)
	}
	if len(page.Headings) != 0 {
		t.Errorf("expected no headings, got %d", len(page.Headings))
	}
}

func TestHTMLScanner_EmptyHeadingKeptWithEmptyName(t *testing.T) {
	p := &HTMLScanner{}
	page, err := p.Scan(strings.NewReader("<h2>   </h2><h2><span hidden>x</span></h2>"), "e.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Headings) != 2 {
		t.Fatalf("expected 2 headings, got %d", len(page.Headings))
	}
	for i, h := range page.Headings {
		if h.Name != "" {
			t.Errorf("heading[%d]: expected empty name, got %q", i, h.Name)
		}
	}
}
