package interaction

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/notekeeper/internal/annotate"
)

var (
	glossaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45")).
			Underline(true)

	grammarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Underline(true)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("226"))

	indexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	tooltipStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	headingStyle = lipgloss.NewStyle().Bold(true)
)

// Render returns the visible text of annotated with each wrapper
// highlighted and numbered from 1, followed by the tooltip of h if one is
// active. h may be nil.
func Render(annotated string, h *Hover) string {
	var (
		b      strings.Builder
		n      int
		tip    Tooltip
		active = -1
		hasTip bool
	)
	if h != nil {
		tip, active, hasTip = h.Current()
	}

	walk(annotated, func(ev event) {
		switch {
		case ev.block:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
		case ev.wrapper != nil:
			style := glossaryStyle
			if ev.wrapper.Style == annotate.Grammar {
				style = grammarStyle
			}
			if hasTip && n == active {
				style = activeStyle
			}
			n++
			b.WriteString(style.Render(ev.wrapper.Text))
			b.WriteString(indexStyle.Render(fmt.Sprintf("[%d]", n)))
		default:
			b.WriteString(ev.text)
		}
	})

	out := strings.TrimRight(b.String(), "\n")
	if hasTip {
		out += "\n\n" + RenderTooltip(tip)
	}
	return out
}

// RenderTooltip draws tip as a bordered box.
func RenderTooltip(tip Tooltip) string {
	var body string
	switch tip.Kind {
	case TooltipCorrection:
		body = headingStyle.Render(tip.Heading) + "\n" + "Suggestion: " + tip.Body
	default:
		body = headingStyle.Render(tip.Heading) + "\n" + tip.Body
	}
	return tooltipStyle.Render(body)
}
