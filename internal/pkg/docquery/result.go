package docquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Result outcome of a query: Found(selection) or NotFound
type Result struct {
	sel *goquery.Selection
}

// Found wraps a selection
func Found(sel *goquery.Selection) Result {
	return Result{sel: sel}
}

// NotFound empty outcome
func NotFound() Result {
	return Result{}
}

// Found reports whether the query matched
func (r Result) Found() bool {
	return r.sel != nil
}

// Selection underlying goquery selection, nil when not found
func (r Result) Selection() *goquery.Selection {
	return r.sel
}

// Text trimmed inner text of the first matched element
func (r Result) Text() string {
	if r.sel == nil {
		return ""
	}
	return strings.TrimSpace(r.sel.First().Text())
}

// Len number of matched elements
func (r Result) Len() int {
	if r.sel == nil {
		return 0
	}
	return r.sel.Length()
}

// Each yields every matched element as its own Result
func (r Result) Each(fn func(i int, item Result)) {
	if r.sel == nil {
		return
	}
	r.sel.Each(func(i int, s *goquery.Selection) {
		fn(i, Found(s))
	})
}

// Cells trimmed text of every descendant <tag>, e.g. the <td> cells of a row
func (r Result) Cells(tag string) []string {
	if r.sel == nil {
		return nil
	}
	var cells []string
	r.sel.Find(tag).Each(func(_ int, s *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(s.Text()))
	})
	return cells
}

// Parse builds a document from raw HTML
func Parse(raw string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(raw))
}
