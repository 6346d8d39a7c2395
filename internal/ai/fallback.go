package ai

const usageURL = "https://platform.openai.com/usage"

// Fallback returns the fixed substitute result for kind. Every call returns
// fresh slices so callers may modify them.
func Fallback(kind Kind) Result {
	r := Result{Kind: kind, Fallback: true}

	switch kind {
	case KindSummary:
		r.Summary = &Summary{
			Summary: Marker + " This note discusses important topics and key concepts relevant to the subject matter. " +
				"Live analysis is unavailable, check billing at " + usageURL,
			KeyPoints: []string{
				"Key concept 1",
				"Important point 2",
				"Main topic 3",
				"Significant detail 4",
				Marker + " OpenAI quota exceeded - check billing",
			},
		}
	case KindTags:
		r.Tags = &Tags{
			Tags:       []string{"general", "notes", "content", Marker + "-quota-exceeded"},
			Confidence: fallbackTagConfidence,
		}
	case KindGrammar:
		r.Grammar = []GrammarError{
			{Text: "teammates", Suggestion: "team members", Position: 45},
			{Text: "However", Suggestion: "However,", Position: 120},
			{Text: Marker + " OpenAI quota exceeded", Suggestion: "Check your billing at " + usageURL, Position: 0},
		}
	case KindGlossary:
		r.Glossary = []GlossaryTerm{
			{Term: "Agile methodology", Definition: "An iterative approach to project management", Position: 120},
			{Term: "Sprint planning", Definition: "A collaborative event where the team plans work", Position: 200},
			{Term: "Stakeholder", Definition: "Anyone with an interest in the project outcome", Position: 300},
			{Term: Marker + " OpenAI Quota", Definition: "Check your billing and usage at " + usageURL + " to resolve quota issues", Position: 0},
		}
	}

	return r
}
