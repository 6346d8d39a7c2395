package cli

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/view"
	"github.com/dmitrijs2005/notekeeper/internal/textx"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

const previewLength = 60

// List fetches the notes and prints them with filter applied.
func (a *App) List(ctx context.Context, filter view.Filter) error {
	if err := a.refreshList(ctx); err != nil {
		return err
	}

	a.mu.Lock()
	a.list.SetFilter(filter)
	a.list.SetQuery("")
	notes := a.list.Visible()
	stats := a.list.Stats()
	a.listed = notes
	a.mu.Unlock()

	a.println(headerStyle.Render(fmt.Sprintf("%d notes · %d pinned · %d locked · %d recent",
		stats.Total, stats.Pinned, stats.Locked, stats.Recent)))
	a.printNotes(notes, "No notes yet. Create one with 'new'.")
	return nil
}

// Search asks the server for notes whose title or content contains query.
func (a *App) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("usage: search <text>")
	}
	notes, err := a.notes.List(ctx, client.ListOptions{Query: query})
	if err != nil {
		return err
	}
	view.SortNotes(notes)

	a.mu.Lock()
	a.listed = notes
	a.mu.Unlock()

	a.println(headerStyle.Render(fmt.Sprintf("%d results for %q", len(notes), query)))
	a.printNotes(notes, "Nothing matches.")
	return nil
}

func (a *App) printNotes(notes []models.Note, empty string) {
	if len(notes) == 0 {
		a.println(mutedStyle.Render(empty))
		return
	}
	for i, n := range notes {
		a.println(fmt.Sprintf("%3d. %s%s", i+1, badges(n), n.Title))
		a.println("     " + mutedStyle.Render(preview(n)+" · "+n.UpdatedAt.Local().Format(time.DateTime)))
	}
}

func badges(n models.Note) string {
	var b string
	if n.IsPinned {
		b += "📌 "
	}
	if n.IsEncrypted {
		b += "🔒 "
	}
	return b
}

func preview(n models.Note) string {
	if n.Locked {
		return "encrypted"
	}
	p := []rune(html.UnescapeString(textx.PlainText(n.Content)))
	if len(p) > previewLength {
		return string(p[:previewLength]) + "…"
	}
	return string(p)
}

// resolve maps a list number from the last printed list, or an id, to a
// note id.
func (a *App) resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("a note number or id is required")
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return ref, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if n < 1 || n > len(a.listed) {
		return "", fmt.Errorf("no note number %d in the last list", n)
	}
	return a.listed[n-1].ID, nil
}
