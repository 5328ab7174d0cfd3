// Package docquery evaluates small declarative queries against HTML documents.
//
// A Query is a chain of steps (find by tag and exact text, climb to an ancestor,
// collect descendants). Evaluation yields a Result that is either Found or
// NotFound; absence is a value, never an error.
package docquery

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Op step kind
type Op int

const (
	// OpFind first descendant with Tag whose trimmed text equals Text.
	// An empty Text matches any element of Tag.
	OpFind Op = iota
	// OpFindText innermost descendant of any tag whose trimmed text equals Text
	OpFindText
	// OpUp climb Levels ancestors
	OpUp
	// OpAll every descendant with Tag; an empty set is still Found
	OpAll
)

// Step one navigation step
type Step struct {
	Op     Op
	Tag    string
	Text   string
	Levels int
}

// Find matches the first descendant <tag> with exact text
func Find(tag, text string) Step {
	return Step{Op: OpFind, Tag: tag, Text: text}
}

// First matches the first descendant <tag>
func First(tag string) Step {
	return Step{Op: OpFind, Tag: tag}
}

// FindText matches the innermost element whose text equals text
func FindText(text string) Step {
	return Step{Op: OpFindText, Text: text}
}

// Up climbs n ancestors
func Up(n int) Step {
	return Step{Op: OpUp, Levels: n}
}

// All collects every descendant <tag>
func All(tag string) Step {
	return Step{Op: OpAll, Tag: tag}
}

func (s Step) String() string {
	switch s.Op {
	case OpFind:
		if s.Text == "" {
			return fmt.Sprintf("find(%s)", s.Tag)
		}
		return fmt.Sprintf("find(%s=%q)", s.Tag, s.Text)
	case OpFindText:
		return fmt.Sprintf("text(%q)", s.Text)
	case OpUp:
		return fmt.Sprintf("up(%d)", s.Levels)
	case OpAll:
		return fmt.Sprintf("all(%s)", s.Tag)
	}
	return "unknown"
}

// Query named chain of steps
type Query struct {
	Name  string
	Steps []Step
}

// New builds a query
func New(name string, steps ...Step) Query {
	return Query{Name: name, Steps: steps}
}

func (q Query) String() string {
	parts := make([]string, len(q.Steps))
	for i, step := range q.Steps {
		parts[i] = step.String()
	}
	return q.Name + ": " + strings.Join(parts, " > ")
}

// Eval runs the query from root
func (q Query) Eval(root Result) Result {
	if !root.Found() {
		return NotFound()
	}

	sel := root.sel
	for _, step := range q.Steps {
		sel = apply(sel, step)
		if sel == nil {
			return NotFound()
		}
	}
	return Found(sel)
}

// EvalDocument runs the query from the document root
func (q Query) EvalDocument(doc *goquery.Document) Result {
	if doc == nil {
		return NotFound()
	}
	return q.Eval(Found(doc.Selection))
}

func apply(sel *goquery.Selection, step Step) *goquery.Selection {
	switch step.Op {
	case OpFind:
		match := sel.Find(step.Tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return step.Text == "" || ownText(s) == step.Text
		}).First()
		return nonEmpty(match)

	case OpFindText:
		var match *goquery.Selection
		sel.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if ownText(s) != step.Text {
				return true
			}
			// innermost: no child carries the same text
			inner := s.Children().FilterFunction(func(_ int, c *goquery.Selection) bool {
				return ownText(c) == step.Text
			})
			if inner.Length() > 0 {
				return true
			}
			match = s
			return false
		})
		return match

	case OpUp:
		cur := sel
		for i := 0; i < step.Levels; i++ {
			cur = cur.Parent()
			if cur.Length() == 0 {
				return nil
			}
		}
		return cur

	case OpAll:
		return sel.Find(step.Tag)
	}
	return nil
}

func nonEmpty(sel *goquery.Selection) *goquery.Selection {
	if sel == nil || sel.Length() == 0 {
		return nil
	}
	return sel
}

func ownText(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}
