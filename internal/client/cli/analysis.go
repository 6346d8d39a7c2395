package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/notekeeper/internal/ai"
	"github.com/dmitrijs2005/notekeeper/internal/client/view"
	"github.com/dmitrijs2005/notekeeper/internal/interaction"
)

var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("63")).
	Padding(0, 1)

var panelTitles = map[ai.Kind]string{
	ai.KindSummary:  "AI Summary",
	ai.KindTags:     "Suggested Tags",
	ai.KindGrammar:  "Grammar Check",
	ai.KindGlossary: "Glossary",
}

// Analyze toggles the panel of kind on the open note, waiting for the
// analysis when one starts.
func (a *App) Analyze(ctx context.Context, kind ai.Kind) error {
	o, err := a.current()
	if err != nil {
		return err
	}

	done, err := o.view.Toggle(kind)
	if err != nil {
		return err
	}
	if o.view.State(kind).Status == view.Loading {
		a.println(mutedStyle.Render("Analyzing…"))
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	st := o.view.State(kind)
	if !st.Visible {
		a.println(panelTitles[kind], "hidden.")
		return nil
	}
	if st.Status != view.Ready {
		return nil
	}

	if kind.Inline() {
		o.hover.Leave()
		content := o.view.Content()
		a.println(interaction.Render(content, o.hover))
		a.println()
		a.println(renderPanel(kind, st.Result))
		a.println(mutedStyle.Render("Use 'hover <n>' to see details of a marked word."))
		return nil
	}
	a.println(renderPanel(kind, st.Result))
	return nil
}

// Hover shows the tooltip of the n-th marked word of the open note.
func (a *App) Hover(ctx context.Context, n int) error {
	o, err := a.current()
	if err != nil {
		return err
	}
	content := o.view.Content()
	ws := interaction.Wrappers(content)
	if len(ws) == 0 {
		return fmt.Errorf("nothing is marked; run 'analyze glossary' or 'analyze grammar' first")
	}
	if n < 1 || n > len(ws) {
		return fmt.Errorf("choose a number between 1 and %d", len(ws))
	}

	if !o.hover.Enter(ctx, n-1, ws[n-1]) {
		a.println("No details available for this word.")
	}
	a.println(interaction.Render(content, o.hover))
	return nil
}

func (a *App) Leave(ctx context.Context) error {
	o, err := a.current()
	if err != nil {
		return err
	}
	o.hover.Leave()
	a.println(interaction.Render(o.view.Content(), o.hover))
	return nil
}

func renderPanel(kind ai.Kind, r *ai.Result) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(panelTitles[kind]))
	b.WriteString("\n")

	switch {
	case r == nil:
	case kind == ai.KindSummary && r.Summary != nil:
		b.WriteString(r.Summary.Summary)
		for _, p := range r.Summary.KeyPoints {
			b.WriteString("\n • " + p)
		}
	case kind == ai.KindTags && r.Tags != nil:
		tags := make([]string, len(r.Tags.Tags))
		for i, t := range r.Tags.Tags {
			tags[i] = "#" + t
		}
		b.WriteString(strings.Join(tags, " "))
		b.WriteString(mutedStyle.Render(fmt.Sprintf("\nconfidence %.0f%%", r.Tags.Confidence*100)))
	case kind == ai.KindGrammar:
		if len(r.Grammar) == 0 {
			b.WriteString("No issues found.")
		}
		for _, g := range r.Grammar {
			b.WriteString(fmt.Sprintf("\n %q → %q", g.Text, g.Suggestion))
		}
	case kind == ai.KindGlossary:
		if len(r.Glossary) == 0 {
			b.WriteString("No terms found.")
		}
		for _, g := range r.Glossary {
			b.WriteString(fmt.Sprintf("\n %s: %s", g.Term, g.Definition))
		}
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}
