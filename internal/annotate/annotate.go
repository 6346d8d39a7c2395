// Package annotate wraps located terms and grammar errors inside note markup
// with hoverable spans, leaving the visible text untouched.
package annotate

import (
	"encoding/json"
	"html"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/ai"
)

// Style selects the wrapper markup and the payload meaning of a Span.
type Style int

const (
	// Glossary spans carry a definition.
	Glossary Style = iota
	// Grammar spans carry a suggested correction.
	Grammar
)

const (
	GlossaryClass = "glossary-term"
	GrammarClass  = "grammar-error"

	GlossaryAttr = "data-term"
	GrammarAttr  = "data-error"

	// GrammarTitlePrefix starts the title of every grammar wrapper.
	GrammarTitlePrefix = "Grammar suggestion: "
)

// Span is one located term or error. Position only orders application;
// matching is by Text.
type Span struct {
	Text     string
	Payload  string
	Position int
}

func FromGlossary(terms []ai.GlossaryTerm) []Span {
	spans := make([]Span, 0, len(terms))
	for _, t := range terms {
		spans = append(spans, Span{Text: t.Term, Payload: t.Definition, Position: t.Position})
	}
	return spans
}

func FromGrammar(errs []ai.GrammarError) []Span {
	spans := make([]Span, 0, len(errs))
	for _, e := range errs {
		spans = append(spans, Span{Text: e.Text, Payload: e.Suggestion, Position: e.Position})
	}
	return spans
}

// markup matches tags and character entities, which are never matched into.
var markup = regexp.MustCompile(`<[^>]*>|&#?[a-zA-Z0-9]+;`)

type segment struct {
	s string
	// opaque segments are markup or an existing wrapper.
	opaque bool
}

func split(content string) []segment {
	var segs []segment
	last := 0
	for _, loc := range markup.FindAllStringIndex(content, -1) {
		if loc[0] > last {
			segs = append(segs, segment{s: content[last:loc[0]]})
		}
		segs = append(segs, segment{s: content[loc[0]:loc[1]], opaque: true})
		last = loc[1]
	}
	if last < len(content) {
		segs = append(segs, segment{s: content[last:]})
	}
	return segs
}

// Pattern returns the case-insensitive, word-bounded matcher for text, or
// nil when text is blank or cannot be compiled.
func Pattern(text string) *regexp.Regexp {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(text) + `\b`)
	if err != nil {
		return nil
	}
	return re
}

// Annotate wraps every occurrence of each span's text in content.
//
// Spans are applied in descending Position order (ties: longer text first).
// Only visible text is matched: tags, entities and text wrapped by an
// earlier span are skipped, so each occurrence is wrapped at most once and
// the wrappers never nest. With no spans content is returned as is.
func Annotate(content string, spans []Span, style Style) string {
	if len(spans) == 0 || content == "" {
		return content
	}

	ordered := make([]Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Position != ordered[j].Position {
			return ordered[i].Position > ordered[j].Position
		}
		return len(ordered[i].Text) > len(ordered[j].Text)
	})

	segs := split(content)
	changed := false

	for _, sp := range ordered {
		re := Pattern(sp.Text)
		if re == nil {
			continue
		}
		open := openTag(sp, style)

		next := make([]segment, 0, len(segs))
		for _, seg := range segs {
			if seg.opaque {
				next = append(next, seg)
				continue
			}
			locs := re.FindAllStringIndex(seg.s, -1)
			if len(locs) == 0 {
				next = append(next, seg)
				continue
			}
			changed = true
			last := 0
			for _, loc := range locs {
				if loc[0] > last {
					next = append(next, segment{s: seg.s[last:loc[0]]})
				}
				next = append(next, segment{s: open + seg.s[loc[0]:loc[1]] + "</span>", opaque: true})
				last = loc[1]
			}
			if last < len(seg.s) {
				next = append(next, segment{s: seg.s[last:]})
			}
		}
		segs = next
	}

	if !changed {
		return content
	}

	var b strings.Builder
	b.Grow(len(content))
	for _, seg := range segs {
		b.WriteString(seg.s)
	}
	return b.String()
}

func openTag(sp Span, style Style) string {
	var (
		class, attr, title string
		record             any
	)
	switch style {
	case Grammar:
		class, attr = GrammarClass, GrammarAttr
		title = GrammarTitlePrefix + sp.Payload
		record = ai.GrammarError{Text: sp.Text, Suggestion: sp.Payload, Position: sp.Position}
	default:
		class, attr = GlossaryClass, GlossaryAttr
		title = sp.Payload
		record = ai.GlossaryTerm{Term: sp.Text, Definition: sp.Payload, Position: sp.Position}
	}

	data, _ := json.Marshal(record)

	return `<span class="` + class + `" ` + attr + `="` + html.EscapeString(url.PathEscape(string(data))) +
		`" title="` + html.EscapeString(title) + `">`
}
