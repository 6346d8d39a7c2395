// Package interaction reads annotated note markup back: it finds the
// hoverable wrappers, decodes their tooltips and renders the note for a
// terminal with the active tooltip.
package interaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/dmitrijs2005/notekeeper/internal/ai"
	"github.com/dmitrijs2005/notekeeper/internal/annotate"
)

// Wrapper is one hoverable span found in annotated markup.
type Wrapper struct {
	Style annotate.Style
	Text  string
	Data  string
	Title string
}

type TooltipKind string

const (
	TooltipDefinition TooltipKind = "definition"
	TooltipCorrection TooltipKind = "correction"
)

// Tooltip is the decoded payload of a wrapper: a term and its definition,
// or the original text and its suggested correction.
type Tooltip struct {
	Kind    TooltipKind
	Heading string
	Body    string
}

var ErrCorruptData = errors.New("corrupt wrapper data")

func wrapperStyle(t html.Token) (annotate.Style, string, string, bool) {
	var class, data, title string
	var style annotate.Style
	found := false

	for _, a := range t.Attr {
		switch a.Key {
		case "class":
			class = a.Val
		case "title":
			title = a.Val
		case annotate.GlossaryAttr, annotate.GrammarAttr:
			data = a.Val
		}
	}
	for _, c := range strings.Fields(class) {
		switch c {
		case annotate.GlossaryClass:
			style, found = annotate.Glossary, true
		case annotate.GrammarClass:
			style, found = annotate.Grammar, true
		}
	}
	return style, data, title, found
}

// Wrappers returns every wrapper in annotated, in document order.
func Wrappers(annotated string) []Wrapper {
	var out []Wrapper
	walk(annotated, func(ev event) {
		if ev.wrapper != nil {
			out = append(out, *ev.wrapper)
		}
	})
	return out
}

type event struct {
	text    string
	block   bool
	wrapper *Wrapper
}

// walk tokenizes markup and reports visible text, block breaks and whole
// wrappers. Text inside a wrapper is reported only through the wrapper.
func walk(markup string, fn func(event)) {
	z := html.NewTokenizer(strings.NewReader(markup))

	var cur *Wrapper
	depth := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				return
			}
			if cur != nil {
				fn(event{wrapper: cur})
			}
			return
		}

		tok := z.Token()
		switch tt {
		case html.TextToken:
			if cur != nil {
				cur.Text += tok.Data
			} else {
				fn(event{text: tok.Data})
			}
		case html.StartTagToken:
			if cur != nil {
				if tok.Data == "span" {
					depth++
				}
				continue
			}
			if tok.Data == "span" {
				if style, data, title, ok := wrapperStyle(tok); ok {
					cur = &Wrapper{Style: style, Data: data, Title: title}
					depth = 0
					continue
				}
			}
			if isBlock(tok.Data) {
				fn(event{block: true})
			}
		case html.EndTagToken:
			if cur != nil {
				if tok.Data != "span" {
					continue
				}
				if depth > 0 {
					depth--
					continue
				}
				fn(event{wrapper: cur})
				cur = nil
				continue
			}
			if isBlock(tok.Data) {
				fn(event{block: true})
			}
		case html.SelfClosingTagToken:
			if cur == nil && isBlock(tok.Data) {
				fn(event{block: true})
			}
		}
	}
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre":
		return true
	}
	return false
}

// ParseTooltip decodes the data attribute of w.
func ParseTooltip(w Wrapper) (Tooltip, error) {
	raw, err := url.PathUnescape(w.Data)
	if err != nil {
		return Tooltip{}, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}

	switch w.Style {
	case annotate.Grammar:
		var ge ai.GrammarError
		if err := json.Unmarshal([]byte(raw), &ge); err != nil {
			return Tooltip{}, fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
		if ge.Text == "" {
			return Tooltip{}, fmt.Errorf("%w: empty text", ErrCorruptData)
		}
		return Tooltip{Kind: TooltipCorrection, Heading: ge.Text, Body: ge.Suggestion}, nil
	default:
		var gt ai.GlossaryTerm
		if err := json.Unmarshal([]byte(raw), &gt); err != nil {
			return Tooltip{}, fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
		if gt.Term == "" {
			return Tooltip{}, fmt.Errorf("%w: empty term", ErrCorruptData)
		}
		return Tooltip{Kind: TooltipDefinition, Heading: gt.Term, Body: gt.Definition}, nil
	}
}
