package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

// AutosaveDelay is the editor idle time before a draft is saved.
const AutosaveDelay = 2 * time.Second

// Autosaver saves the latest draft once edits pause for the delay. Drafts
// with a blank title are never saved.
type Autosaver struct {
	saveMu  sync.Mutex
	mu      sync.Mutex
	id      string
	notes   NoteService
	delay   time.Duration
	timer   *time.Timer
	pending *Draft
	saved   func(models.Note, error)
	logger  logging.Logger
	ctx     context.Context
}

// NewAutosaver calls onSaved after each save attempt. onSaved may be nil.
func NewAutosaver(ctx context.Context, notes NoteService, delay time.Duration, logger logging.Logger, onSaved func(models.Note, error)) *Autosaver {
	return &Autosaver{
		notes:  notes,
		delay:  delay,
		saved:  onSaved,
		logger: logger.With("module", "autosave"),
		ctx:    ctx,
	}
}

// Edit records a new draft and restarts the idle timer.
func (a *Autosaver) Edit(d Draft) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pending = &d
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

// Flush saves a pending draft now.
func (a *Autosaver) Flush() {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()
	a.fire()
}

// Stop discards a pending draft.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.pending = nil
}

// fire saves the pending draft. A draft of a new note picks up the id
// assigned by the first successful save so later saves update it.
func (a *Autosaver) fire() {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	d := a.pending
	a.pending = nil
	if d != nil && d.ID == "" {
		d.ID = a.id
	}
	a.mu.Unlock()

	if d == nil || strings.TrimSpace(d.Title) == "" {
		return
	}

	n, err := a.notes.Save(a.ctx, *d)
	if err != nil {
		a.logger.Warn(a.ctx, "auto-save failed", "error", err)
	} else {
		a.mu.Lock()
		if a.id == "" {
			a.id = n.ID
		}
		a.mu.Unlock()
	}
	if a.saved != nil {
		a.saved(n, err)
	}
}
