package ai

import (
	"fmt"
)

const (
	// Marker prefixes or tags every fallback value.
	Marker = "⚠️"

	liveTagConfidence     = 0.8
	fallbackTagConfidence = 0.3
)

type Summary struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
}

type Tags struct {
	Tags       []string `json:"tags"`
	Confidence float64  `json:"confidence"`
}

type GrammarError struct {
	Text       string `json:"text"`
	Suggestion string `json:"suggestion"`
	Position   int    `json:"position"`
}

type GlossaryTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Position   int    `json:"position"`
}

// Result is the outcome of one analysis. Exactly the field matching Kind is
// set. Fallback is true when the value is substitute data.
type Result struct {
	Kind     Kind           `json:"kind"`
	Fallback bool           `json:"fallback"`
	Summary  *Summary       `json:"summary,omitempty"`
	Tags     *Tags          `json:"tags,omitempty"`
	Grammar  []GrammarError `json:"grammar,omitempty"`
	Glossary []GlossaryTerm `json:"glossary,omitempty"`
}

// Validate checks that r is correctly shaped for its kind. Clients use it on
// results received over the wire.
func (r Result) Validate() error {
	switch r.Kind {
	case KindSummary:
		if r.Summary == nil {
			return fmt.Errorf("summary result without summary")
		}
	case KindTags:
		if r.Tags == nil {
			return fmt.Errorf("tags result without tags")
		}
		if r.Tags.Confidence < 0 || r.Tags.Confidence > 1 {
			return fmt.Errorf("tags confidence %v out of range", r.Tags.Confidence)
		}
	case KindGrammar, KindGlossary:
	default:
		return fmt.Errorf("unknown kind %q", r.Kind)
	}
	return nil
}
