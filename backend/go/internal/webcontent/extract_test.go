package webcontent

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"Abridge_1.0/backend/go/internal/config"
)

func newTestExtractor() *Extractor {
	return NewExtractor(config.Default().Extraction)
}

func TestExtractPrefersArticle(t *testing.T) {
	doc := `<html><head><title>t</title><script>var x = 1;</script></head><body>
<nav>Home About Contact</nav>
<article><h1>Headline</h1><p>` + strings.Repeat("The council approved the new budget today. ", 3) + `</p></article>
<footer>Copyright footer text</footer></body></html>`

	res, err := newTestExtractor().ExtractString(doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Source != SourceSelector || res.Match != "article" {
		t.Errorf("source = %s/%s, want selector/article", res.Source, res.Match)
	}
	for _, unwanted := range []string{"Home About", "Copyright", "var x"} {
		if strings.Contains(res.Text, unwanted) {
			t.Errorf("text contains %q: %q", unwanted, res.Text)
		}
	}
	if !strings.HasPrefix(res.Text, "Headline The council") {
		t.Errorf("unexpected text %q", res.Text)
	}
}

func TestExtractSkipsEmptyContainer(t *testing.T) {
	doc := `<html><body><article><img src="x.png"></article>
<main><p>` + strings.Repeat("Main body text that is long enough to count. ", 3) + `</p></main></body></html>`

	res, err := newTestExtractor().ExtractString(doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Match != "main" {
		t.Errorf("match = %q, want main", res.Match)
	}
}

func TestExtractFallsBackToBlocks(t *testing.T) {
	long := "This paragraph has comfortably more than ten words in it for sure."
	doc := `<html><body><p>Too short.</p><p>` + long + `</p><span>` + long + `</span></body></html>`

	res, err := newTestExtractor().ExtractString(doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Source != SourceBlocks {
		t.Errorf("source = %s, want blocks", res.Source)
	}
	if res.Text != long {
		t.Errorf("text = %q, want %q", res.Text, long)
	}
}

func TestExtractBlocksGroupedByTag(t *testing.T) {
	intro := "An introduction that runs well past the ten word threshold for blocks."
	para := "A nested paragraph that also runs past the ten word threshold here."
	doc := `<html><body><div>` + intro + `<p>` + para + `</p></div></body></html>`

	res, err := newTestExtractor().ExtractString(doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := para + " " + intro + " " + para
	if res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
}

func TestExtractFallsBackToDocument(t *testing.T) {
	doc := `<html><body><span>` + strings.Repeat("word ", 9) + `</span><span>` + strings.Repeat("more ", 9) + `</span></body></html>`

	res, err := newTestExtractor().ExtractString(doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Source != SourceDocument {
		t.Errorf("source = %s, want document", res.Source)
	}
}

func TestExtractTruncates(t *testing.T) {
	doc := `<article>` + strings.Repeat("é", 20000) + `</article>`

	res, err := newTestExtractor().ExtractString(doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if n := utf8.RuneCountInString(res.Text); n != 15000 {
		t.Errorf("length = %d, want 15000", n)
	}
}

func TestExtractNoContent(t *testing.T) {
	_, err := newTestExtractor().ExtractString(`<html><body><script>only code</script><p>Hi.</p></body></html>`)
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("Extract() error = %v, want ErrNoContent", err)
	}
}

func TestFlattenCollapsesWhitespace(t *testing.T) {
	res, err := newTestExtractor().ExtractString("<article>  a\n\n\tb <!-- c --> <b>d</b>" + strings.Repeat(" filler", 10) + "</article>")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.Text, "a b d filler") {
		t.Errorf("text = %q", res.Text)
	}
}
