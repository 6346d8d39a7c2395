package ai

import "fmt"

const (
	systemPrompt  = "You are a helpful AI assistant that analyzes text content and provides insights."
	maxInputRunes = 2000
)

// truncate cuts text to maxInputRunes characters.
func truncate(text string) string {
	r := []rune(text)
	if len(r) <= maxInputRunes {
		return text
	}
	return string(r[:maxInputRunes])
}

func buildPrompt(kind Kind, text string) string {
	text = truncate(text)

	switch kind {
	case KindSummary:
		return fmt.Sprintf(`Please provide a concise 1-2 line summary of the following text and list 3-5 key points. Format your response as JSON with "summary" and "keyPoints" fields:

Text: %s

Response format:
{
  "summary": "Brief summary here",
  "keyPoints": ["Point 1", "Point 2", "Point 3"]
}`, text)
	case KindTags:
		return fmt.Sprintf(`Analyze the following text and suggest 3-5 relevant tags. Return only a JSON array of tag strings:

Text: %s

Example response: ["tag1", "tag2", "tag3"]`, text)
	case KindGrammar:
		return fmt.Sprintf(`Analyze the following text for grammar errors and provide corrections. Return a JSON array of objects with "text", "suggestion", and "position" fields:

Text: %s

Example response:
[
  {
    "text": "incorrect text",
    "suggestion": "corrected text",
    "position": 45
  }
]`, text)
	default:
		return fmt.Sprintf(`Identify key terms, concepts, and technical words in the following text that might need explanation. For each term, provide a brief definition. Return a JSON array of objects with "term", "definition", and "position" fields:

Text: %s

Example response:
[
  {
    "term": "Agile methodology",
    "definition": "An iterative approach to project management",
    "position": 120
  }
]`, text)
	}
}
