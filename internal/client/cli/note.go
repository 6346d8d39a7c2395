package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/ai"
	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/services"
	"github.com/dmitrijs2005/notekeeper/internal/client/view"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/filex"
	"github.com/dmitrijs2005/notekeeper/internal/interaction"
	"github.com/dmitrijs2005/notekeeper/internal/netx"
)

// maxUnlockAttempts bounds the password prompts of one unlock command.
const maxUnlockAttempts = 3

var titleStyle = headerStyle.Underline(true)

// Open shows a note and starts refreshing it in the background.
func (a *App) Open(ctx context.Context, ref string) error {
	id, err := a.resolve(ref)
	if err != nil {
		return err
	}
	n, err := a.notes.Get(ctx, id)
	if err != nil {
		return err
	}
	a.show(n)
	return a.Show(ctx)
}

// show replaces the open note with n. The same note keeps its analyses.
func (a *App) show(n models.Note) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.open != nil && a.open.view.Note().ID == n.ID {
		a.open.view.SetNote(n)
		return
	}
	a.closeLocked()

	ctx, cancel := context.WithCancel(a.baseCtx)
	o := &openNote{
		view:   view.NewNoteView(n, a.analyzer, a.logger),
		hover:  interaction.NewHover(a.logger),
		cancel: cancel,
	}
	o.refresher = view.NewRefresher(a.cfg.DetailRefreshInterval, func(ctx context.Context) error {
		return a.refreshOpen(ctx, o)
	}, a.logger)
	a.open = o
	go o.refresher.Run(ctx)
}

func (a *App) refreshOpen(ctx context.Context, o *openNote) error {
	id := o.view.Note().ID

	var (
		n   models.Note
		err error
	)
	a.mu.Lock()
	password := o.password
	a.mu.Unlock()
	if password != "" {
		n, err = a.notes.Unlock(ctx, id, password)
	} else {
		n, err = a.notes.Get(ctx, id)
	}

	switch {
	case errors.Is(err, client.ErrNotFound):
		o.refresher.SetVisible(false)
		a.println("\nThis note no longer exists. Returning to the list.")
		a.mu.Lock()
		o.closing = time.AfterFunc(notFoundDelay, func() { a.closeNote(o) })
		a.mu.Unlock()
		return nil
	case errors.Is(err, client.ErrWrongPassword):
		// password changed elsewhere; fall back to the locked view
		a.mu.Lock()
		o.password = ""
		a.mu.Unlock()
		return err
	case err != nil:
		return err
	}
	o.view.SetNote(n)
	return nil
}

// closeNote closes o if it is still the open note.
func (a *App) closeNote(o *openNote) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.open == o {
		a.closeLocked()
	}
}

func (a *App) Close(ctx context.Context) error {
	o, err := a.current()
	if err != nil {
		return err
	}
	a.closeNote(o)
	return nil
}

// Show prints the open note with its visible analyses and active tooltip.
func (a *App) Show(ctx context.Context) error {
	o, err := a.current()
	if err != nil {
		return err
	}
	n := o.view.Note()

	a.println(titleStyle.Render(n.Title))
	a.println(mutedStyle.Render(badges(n) + "updated " + n.UpdatedAt.Local().Format(time.DateTime)))
	a.println()

	if n.Locked {
		a.println("🔒 This note is encrypted. Type 'unlock' to view it.")
		return nil
	}
	body := interaction.Render(o.view.Content(), o.hover)
	if strings.TrimSpace(body) == "" {
		body = mutedStyle.Render("(empty)")
	}
	a.println(body)

	for _, k := range []ai.Kind{ai.KindSummary, ai.KindTags} {
		if st := o.view.State(k); st.Visible && st.Status == view.Ready {
			a.println()
			a.println(renderPanel(k, st.Result))
		}
	}
	return nil
}

// New reads a title and content and saves the note, auto-saving while the
// content is typed.
func (a *App) New(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	if strings.TrimSpace(title) == "" {
		return common.ErrorEmptyTitle
	}
	n, _, err := a.compose(ctx, services.Draft{Title: title}, false)
	if err != nil {
		return err
	}
	a.show(n)
	a.println("Saved.")
	return nil
}

// Edit changes the title and content of the open note. Empty answers keep
// the current values.
func (a *App) Edit(ctx context.Context) error {
	o, err := a.current()
	if err != nil {
		return err
	}
	n := o.view.Note()
	if n.Locked {
		return view.ErrNoteLocked
	}

	title, err := getSimpleText(a.reader, fmt.Sprintf("Title [%s]", n.Title), a.out)
	if err != nil {
		return err
	}
	if strings.TrimSpace(title) == "" {
		title = n.Title
	}

	a.mu.Lock()
	password := o.password
	a.mu.Unlock()

	saved, content, err := a.compose(ctx, services.Draft{
		ID:          n.ID,
		Title:       title,
		Content:     n.Content,
		IsPinned:    n.IsPinned,
		IsEncrypted: n.IsEncrypted,
		Password:    password,
	}, true)
	if err != nil {
		return err
	}
	if saved.Locked && password != "" {
		saved.Content, saved.Locked = content, false
	}
	a.show(saved)
	a.println("Saved.")
	return nil
}

// compose reads content lines, auto-saving the draft after each pause, and
// saves the final draft. With keepEmpty, no lines keeps d.Content. The
// saved content is returned along with the note.
func (a *App) compose(ctx context.Context, d services.Draft, keepEmpty bool) (models.Note, string, error) {
	var (
		last    models.Note
		lastErr error
	)
	saver := services.NewAutosaver(ctx, a.notes, a.cfg.AutosaveDelay, a.logger, func(n models.Note, err error) {
		last, lastErr = n, err
	})
	defer saver.Stop()

	lines, err := ReadLines(a.reader, "Content", a.out, func(lines []string) {
		draft := d
		draft.Content = linesToMarkup(lines)
		saver.Edit(draft)
	})
	if err != nil {
		return models.Note{}, "", err
	}
	if len(lines) > 0 || !keepEmpty {
		d.Content = linesToMarkup(lines)
	}
	saver.Edit(d)
	saver.Flush()

	return last, d.Content, lastErr
}

// Delete removes the note given by ref, or the open note, after
// confirmation.
func (a *App) Delete(ctx context.Context, ref string) error {
	var id string
	if strings.TrimSpace(ref) == "" {
		o, err := a.current()
		if err != nil {
			return err
		}
		id = o.view.Note().ID
	} else {
		var err error
		if id, err = a.resolve(ref); err != nil {
			return err
		}
	}

	answer, err := getSimpleText(a.reader, "Delete this note? [y/N]", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		a.println("Cancelled.")
		return nil
	}

	if err := a.notes.Delete(ctx, id); err != nil {
		return err
	}

	a.mu.Lock()
	if a.open != nil && a.open.view.Note().ID == id {
		a.closeLocked()
	}
	a.list.Remove(id)
	a.mu.Unlock()

	a.println("Deleted.")
	return nil
}

func (a *App) Pin(ctx context.Context) error {
	o, err := a.current()
	if err != nil {
		return err
	}
	n, err := a.notes.TogglePin(ctx, o.view.Note().ID)
	if err != nil {
		return err
	}
	a.keepContent(o, &n)
	o.view.SetNote(n)
	if n.IsPinned {
		a.println("Pinned.")
	} else {
		a.println("Unpinned.")
	}
	return nil
}

// Lock toggles encryption of the open note. Removing it requires the
// account password.
func (a *App) Lock(ctx context.Context) error {
	o, err := a.current()
	if err != nil {
		return err
	}
	cur := o.view.Note()

	var password string
	if cur.IsEncrypted {
		if password, err = getPassword(a.reader, "Account password", a.out); err != nil {
			return err
		}
	}

	n, err := a.notes.ToggleLock(ctx, cur.ID, password)
	if err != nil {
		return err
	}

	a.mu.Lock()
	o.password = ""
	a.mu.Unlock()
	o.view.SetNote(n)

	if n.IsEncrypted {
		a.println("Note is now encrypted.")
	} else {
		a.println("Encryption removed.")
	}
	return nil
}

// Unlock asks for the account password and shows the content of the open
// encrypted note. A wrong password can be retried at once.
func (a *App) Unlock(ctx context.Context) error {
	o, err := a.current()
	if err != nil {
		return err
	}
	cur := o.view.Note()
	if !cur.Locked {
		a.println("This note is not locked.")
		return nil
	}

	for attempt := 1; ; attempt++ {
		password, err := getPassword(a.reader, "Account password", a.out)
		if err != nil {
			return err
		}
		n, err := a.notes.Unlock(ctx, cur.ID, password)
		if errors.Is(err, client.ErrWrongPassword) && attempt < maxUnlockAttempts {
			a.println("Wrong password, try again.")
			continue
		}
		if err != nil {
			return err
		}

		a.mu.Lock()
		o.password = password
		a.mu.Unlock()
		o.view.SetNote(n)
		return a.Show(ctx)
	}
}

// keepContent carries unlocked content over to n, which the server
// returned redacted.
func (a *App) keepContent(o *openNote, n *models.Note) {
	cur := o.view.Note()
	if n.Locked && !cur.Locked && cur.ID == n.ID {
		n.Content = cur.Content
		n.Locked = false
	}
}

// exportDir is where "export save" puts downloaded exports.
var exportDir = "exports"

// Export asks the server for a Markdown export of every note and prints the
// link. With save the file is also downloaded into exportDir.
func (a *App) Export(ctx context.Context, save bool) error {
	url, err := a.notes.Export(ctx)
	if err != nil {
		return err
	}
	a.println("Export ready (link expires soon):")
	a.println(url)
	if !save {
		return nil
	}

	data, err := netx.DownloadFromPresignedURL(ctx, &http.Client{Timeout: a.cfg.RequestTimeout}, url)
	if err != nil {
		return fmt.Errorf("download export: %w", err)
	}
	dir, err := filex.EnsureSubDir(exportDir)
	if err != nil {
		return err
	}
	p, err := filex.WriteNew(dir, filex.NameFromURL(url, "notes.md"), data)
	if err != nil {
		return err
	}
	a.println("Saved to", p)
	return nil
}
