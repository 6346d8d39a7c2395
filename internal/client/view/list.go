package view

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
)

// RecentWindow is how far back a note counts as recently updated.
const RecentWindow = 7 * 24 * time.Hour

type Filter int

const (
	FilterAll Filter = iota
	FilterPinned
)

// SortNotes orders notes pinned first, then by UpdatedAt descending. Equal
// timestamps fall back to id so the order is total.
func SortNotes(notes []models.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
}

// Matches reports whether n matches query, case-insensitively, in its title
// or, when the content is available, its content.
func Matches(n models.Note, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(n.Title), q) {
		return true
	}
	if n.IsEncrypted || n.Locked {
		return false
	}
	return strings.Contains(strings.ToLower(n.Content), q)
}

type ListStats struct {
	Total  int
	Pinned int
	Locked int
	Recent int
}

func Stats(notes []models.Note, now time.Time) ListStats {
	var s ListStats
	for _, n := range notes {
		s.Total++
		if n.IsPinned {
			s.Pinned++
		}
		if n.IsEncrypted {
			s.Locked++
		}
		if now.Sub(n.UpdatedAt) <= RecentWindow {
			s.Recent++
		}
	}
	return s
}

// ListView holds the last fetched notes and the user's filter and query.
type ListView struct {
	mu     sync.RWMutex
	notes  []models.Note
	filter Filter
	query  string
	now    func() time.Time
}

func NewListView() *ListView {
	return &ListView{now: time.Now}
}

// Set replaces the fetched notes.
func (l *ListView) Set(notes []models.Note) {
	cp := make([]models.Note, len(notes))
	copy(cp, notes)
	SortNotes(cp)

	l.mu.Lock()
	l.notes = cp
	l.mu.Unlock()
}

func (l *ListView) SetFilter(f Filter) {
	l.mu.Lock()
	l.filter = f
	l.mu.Unlock()
}

func (l *ListView) SetQuery(q string) {
	l.mu.Lock()
	l.query = q
	l.mu.Unlock()
}

// Visible returns the notes passing the current filter and query, in
// display order.
func (l *ListView) Visible() []models.Note {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Note, 0, len(l.notes))
	for _, n := range l.notes {
		if l.filter == FilterPinned && !n.IsPinned {
			continue
		}
		if !Matches(n, l.query) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Stats summarises all fetched notes regardless of filter.
func (l *ListView) Stats() ListStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Stats(l.notes, l.now())
}

// Remove drops a note locally, e.g. after a delete event.
func (l *ListView) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, n := range l.notes {
		if n.ID == id {
			l.notes = append(l.notes[:i], l.notes[i+1:]...)
			return true
		}
	}
	return false
}
