package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`["a"]`, `["a"]`},
		{"```json\n[\"a\"]\n```", `["a"]`},
		{"```\n{\"x\":1}\n```  ", `{"x":1}`},
		{"```", ""},
		{"  plain  ", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripFences(tt.in))
	}
}

func TestParseResponse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		body string
	}{
		{"summary array", KindSummary, `["a"]`},
		{"summary missing text", KindSummary, `{"keyPoints":["a"]}`},
		{"summary blank", KindSummary, `{"summary":"  "}`},
		{"summary bad points", KindSummary, `{"summary":"s","keyPoints":"a,b"}`},
		{"tags object", KindTags, `{"tags":["a"]}`},
		{"tags numbers", KindTags, `[1,2]`},
		{"tags null", KindTags, `null`},
		{"grammar missing suggestion", KindGrammar, `[{"text":"a","position":1}]`},
		{"grammar negative position", KindGrammar, `[{"text":"a","suggestion":"b","position":-1}]`},
		{"grammar fractional position", KindGrammar, `[{"text":"a","suggestion":"b","position":1.5}]`},
		{"glossary not array", KindGlossary, `{"term":"x"}`},
		{"glossary blank term", KindGlossary, `[{"term":" ","definition":"d"}]`},
		{"trailing data", KindTags, `["a"] ["b"]`},
		{"empty", KindTags, ""},
		{"prose", KindGlossary, "I could not find any terms."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseResponse(tt.kind, tt.body)
			require.Error(t, err)
			assert.ErrorIs(t, err, errShape)
		})
	}
}

func TestParseResponse_Accepts(t *testing.T) {
	r, err := parseResponse(KindSummary, `{"summary":"s","extra":true}`)
	require.NoError(t, err)
	assert.Equal(t, []string{}, r.Summary.KeyPoints)

	r, err = parseResponse(KindGlossary, `[{"term":"Sprint","definition":"a timebox"}]`)
	require.NoError(t, err)
	assert.Equal(t, []GlossaryTerm{{Term: "Sprint", Definition: "a timebox"}}, r.Glossary)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Glossary ")
	require.NoError(t, err)
	assert.Equal(t, KindGlossary, k)
	assert.True(t, k.Inline())
	assert.False(t, KindTags.Inline())

	_, err = ParseKind("poetry")
	assert.Error(t, err)
}

func TestFallback_Marked(t *testing.T) {
	for _, kind := range Kinds() {
		r := Fallback(kind)
		assert.True(t, r.Fallback)
		require.NoError(t, r.Validate())

		var marked bool
		switch kind {
		case KindSummary:
			marked = containsMarker(r.Summary.Summary)
		case KindTags:
			for _, tag := range r.Tags.Tags {
				marked = marked || containsMarker(tag)
			}
		case KindGrammar:
			for _, g := range r.Grammar {
				marked = marked || containsMarker(g.Text)
			}
		case KindGlossary:
			for _, g := range r.Glossary {
				marked = marked || containsMarker(g.Term)
			}
		}
		assert.True(t, marked, "fallback for %s must carry the marker", kind)
	}
}

func TestFallback_FreshSlices(t *testing.T) {
	a := Fallback(KindTags)
	a.Tags.Tags[0] = "mutated"
	assert.Equal(t, "general", Fallback(KindTags).Tags.Tags[0])
}

func TestResultValidate(t *testing.T) {
	assert.Error(t, Result{Kind: KindSummary}.Validate())
	assert.Error(t, Result{Kind: KindTags}.Validate())
	assert.Error(t, Result{Kind: KindTags, Tags: &Tags{Confidence: 2}}.Validate())
	assert.Error(t, Result{Kind: "poem"}.Validate())
	assert.NoError(t, Result{Kind: KindGrammar}.Validate())
}

func containsMarker(s string) bool {
	return strings.Contains(s, Marker)
}
