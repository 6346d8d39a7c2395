package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errShape = errors.New("response shape mismatch")

// stripFences removes a surrounding Markdown code fence (``` or ```json).
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func decodeStrict(raw string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errShape, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errShape)
	}
	return nil
}

// parseResponse validates a completion body against the schema of kind.
func parseResponse(kind Kind, body string) (Result, error) {
	raw := stripFences(body)
	if raw == "" {
		return Result{}, fmt.Errorf("%w: empty response", errShape)
	}

	switch kind {
	case KindSummary:
		s, err := parseSummary(raw)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: kind, Summary: s}, nil
	case KindTags:
		t, err := parseTags(raw)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: kind, Tags: t}, nil
	case KindGrammar:
		g, err := parseGrammar(raw)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: kind, Grammar: g}, nil
	case KindGlossary:
		g, err := parseGlossary(raw)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: kind, Glossary: g}, nil
	}
	return Result{}, fmt.Errorf("%w: unknown kind %q", errShape, kind)
}

func parseSummary(raw string) (*Summary, error) {
	var v struct {
		Summary   *string   `json:"summary"`
		KeyPoints *[]string `json:"keyPoints"`
	}
	if err := decodeStrict(raw, &v); err != nil {
		return nil, err
	}
	if v.Summary == nil || strings.TrimSpace(*v.Summary) == "" {
		return nil, fmt.Errorf("%w: summary missing", errShape)
	}

	points := []string{}
	if v.KeyPoints != nil {
		for _, p := range *v.KeyPoints {
			if strings.TrimSpace(p) != "" {
				points = append(points, p)
			}
		}
	}
	return &Summary{Summary: *v.Summary, KeyPoints: points}, nil
}

func parseTags(raw string) (*Tags, error) {
	var v *[]string
	if err := decodeStrict(raw, &v); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: tags must be an array", errShape)
	}

	tags := make([]string, 0, len(*v))
	for _, t := range *v {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return &Tags{Tags: tags, Confidence: liveTagConfidence}, nil
}

type rawLocated struct {
	Text       *string      `json:"text"`
	Suggestion *string      `json:"suggestion"`
	Term       *string      `json:"term"`
	Definition *string      `json:"definition"`
	Position   *json.Number `json:"position"`
}

func (r rawLocated) position() (int, error) {
	if r.Position == nil {
		return 0, nil
	}
	n, err := r.Position.Int64()
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: bad position %q", errShape, r.Position.String())
	}
	return int(n), nil
}

func parseGrammar(raw string) ([]GrammarError, error) {
	var items *[]rawLocated
	if err := decodeStrict(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		return nil, fmt.Errorf("%w: grammar must be an array", errShape)
	}

	out := make([]GrammarError, 0, len(*items))
	for i, it := range *items {
		if it.Text == nil || strings.TrimSpace(*it.Text) == "" || it.Suggestion == nil {
			return nil, fmt.Errorf("%w: grammar item %d incomplete", errShape, i)
		}
		pos, err := it.position()
		if err != nil {
			return nil, err
		}
		out = append(out, GrammarError{Text: *it.Text, Suggestion: *it.Suggestion, Position: pos})
	}
	return out, nil
}

func parseGlossary(raw string) ([]GlossaryTerm, error) {
	var items *[]rawLocated
	if err := decodeStrict(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		return nil, fmt.Errorf("%w: glossary must be an array", errShape)
	}

	out := make([]GlossaryTerm, 0, len(*items))
	for i, it := range *items {
		if it.Term == nil || strings.TrimSpace(*it.Term) == "" || it.Definition == nil {
			return nil, fmt.Errorf("%w: glossary item %d incomplete", errShape, i)
		}
		pos, err := it.position()
		if err != nil {
			return nil, err
		}
		out = append(out, GlossaryTerm{Term: *it.Term, Definition: *it.Definition, Position: pos})
	}
	return out, nil
}
