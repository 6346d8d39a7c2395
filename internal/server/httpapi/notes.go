package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/notekeeper/internal/ai"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
)

// notePatch is the PATCH body. Password is needed for content edits of an
// encrypted note.
type notePatch struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	IsPinned    *bool   `json:"is_pinned"`
	IsEncrypted *bool   `json:"is_encrypted"`
	Password    string  `json:"password"`
}

func userID(r *http.Request) string {
	sess, _ := sessionFrom(r.Context())
	return sess.UserID
}

func (a *API) listNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.NoteFilter{
		PinnedOnly: strings.EqualFold(q.Get("filter"), "pinned"),
		Query:      q.Get("q"),
	}
	notes, err := a.notes.List(r.Context(), userID(r), filter)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (a *API) createNote(w http.ResponseWriter, r *http.Request) {
	var in services.NewNote
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	n, err := a.notes.Create(r.Context(), userID(r), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (a *API) getNote(w http.ResponseWriter, r *http.Request) {
	n, err := a.notes.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (a *API) updateNote(w http.ResponseWriter, r *http.Request) {
	var in notePatch
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	upd := models.NoteUpdate{Title: in.Title, Content: in.Content, IsPinned: in.IsPinned, IsEncrypted: in.IsEncrypted}
	n, err := a.notes.Update(r.Context(), userID(r), chi.URLParam(r, "id"), upd, in.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (a *API) deleteNote(w http.ResponseWriter, r *http.Request) {
	if err := a.notes.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) togglePin(w http.ResponseWriter, r *http.Request) {
	n, err := a.notes.TogglePin(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (a *API) toggleLock(w http.ResponseWriter, r *http.Request) {
	var in passwordRequest
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	n, err := a.notes.ToggleLock(r.Context(), userID(r), chi.URLParam(r, "id"), in.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (a *API) unlock(w http.ResponseWriter, r *http.Request) {
	var in passwordRequest
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	n, err := a.notes.Unlock(r.Context(), userID(r), chi.URLParam(r, "id"), in.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (a *API) exportNotes(w http.ResponseWriter, r *http.Request) {
	url, err := a.exporter.Export(r.Context(), userID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

type analyzeRequest struct {
	Text string `json:"text"`
}

// analyze always answers 200 for a known kind; backend trouble shows up
// as a fallback result.
func (a *API) analyze(w http.ResponseWriter, r *http.Request) {
	kind, err := ai.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var in analyzeRequest
	if err := decode(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.analyzer.Analyze(r.Context(), kind, in.Text))
}

func (a *API) streamEvents(w http.ResponseWriter, r *http.Request) {
	a.events.ServeWS(w, r, userID(r))
}
