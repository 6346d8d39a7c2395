// Package ai runs note analyses (summary, tags, grammar, glossary) against a
// chat-completion backend and degrades every failure to fixed fallback data.
package ai

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/common"
)

// Kind names one analysis.
type Kind string

const (
	KindSummary  Kind = "summary"
	KindTags     Kind = "tags"
	KindGrammar  Kind = "grammar"
	KindGlossary Kind = "glossary"
)

// Kinds lists every analysis in display order.
func Kinds() []Kind {
	return []Kind{KindSummary, KindTags, KindGrammar, KindGlossary}
}

// ParseKind maps a case-insensitive name to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindSummary, KindTags, KindGrammar, KindGlossary:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown analysis %q", common.ErrorValidation, s)
}

// Inline reports whether results of this kind are marked inside the note
// content instead of being displayed on their own.
func (k Kind) Inline() bool {
	return k == KindGrammar || k == KindGlossary
}

func (k Kind) maxTokens() int {
	switch k {
	case KindSummary:
		return 300
	case KindTags:
		return 150
	case KindGrammar:
		return 400
	default:
		return 500
	}
}
