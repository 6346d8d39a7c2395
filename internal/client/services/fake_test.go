package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/notekeeper/internal/ai"
	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
)

type fakeClient struct {
	mu sync.Mutex

	signUpErr  error
	signInErr  error
	signOutErr error
	signUps    []string
	signIns    []string

	notes     map[string]models.Note
	nextID    int
	creates   int
	updates   []models.NotePatch
	unlockPwd string

	analyzeErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{notes: map[string]models.Note{}, unlockPwd: "secret1"}
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Ping(context.Context) error { return nil }

func (f *fakeClient) SignUp(_ context.Context, email, _ string) error {
	f.signUps = append(f.signUps, email)
	return f.signUpErr
}

func (f *fakeClient) SignIn(_ context.Context, email, _ string) (models.Session, error) {
	f.signIns = append(f.signIns, email)
	if f.signInErr != nil {
		return models.Session{}, f.signInErr
	}
	return models.Session{UserID: "u1", Email: email}, nil
}

func (f *fakeClient) SignOut(context.Context) error { return f.signOutErr }

func (f *fakeClient) CurrentSession() (models.Session, bool) {
	return models.Session{UserID: "u1"}, true
}

func (f *fakeClient) OnSessionChange(func(models.SessionEvent, *models.Session)) func() {
	return func() {}
}

func (f *fakeClient) VerifyPassword(_ context.Context, p string) (bool, error) {
	return p == f.unlockPwd, nil
}

func (f *fakeClient) ListNotes(context.Context, client.ListOptions) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Note, 0, len(f.notes))
	for _, n := range f.notes {
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeClient) GetNote(_ context.Context, id string) (models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return models.Note{}, client.ErrNotFound
	}
	return n, nil
}

func (f *fakeClient) CreateNote(_ context.Context, nn models.NewNote) (models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	f.nextID++
	n := models.Note{ID: fmt.Sprint(f.nextID), Title: nn.Title, Content: nn.Content, IsPinned: nn.IsPinned, IsEncrypted: nn.IsEncrypted}
	f.notes[n.ID] = n
	return n, nil
}

func (f *fakeClient) UpdateNote(_ context.Context, id string, p models.NotePatch) (models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return models.Note{}, client.ErrNotFound
	}
	f.updates = append(f.updates, p)
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	f.notes[id] = n
	return n, nil
}

func (f *fakeClient) DeleteNote(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.notes[id]; !ok {
		return client.ErrNotFound
	}
	delete(f.notes, id)
	return nil
}

func (f *fakeClient) TogglePin(_ context.Context, id string) (models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.notes[id]
	n.IsPinned = !n.IsPinned
	f.notes[id] = n
	return n, nil
}

func (f *fakeClient) ToggleLock(_ context.Context, id, _ string) (models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.notes[id]
	n.IsEncrypted = !n.IsEncrypted
	f.notes[id] = n
	return n, nil
}

func (f *fakeClient) Unlock(_ context.Context, id, password string) (models.Note, error) {
	if password != f.unlockPwd {
		return models.Note{}, client.ErrWrongPassword
	}
	return f.GetNote(context.Background(), id)
}

func (f *fakeClient) Export(context.Context) (string, error) {
	return "https://bucket.example/export.md?sig=1", nil
}

func (f *fakeClient) Analyze(_ context.Context, kind ai.Kind, _ string) (ai.Result, error) {
	if f.analyzeErr != nil {
		return ai.Result{}, f.analyzeErr
	}
	return ai.Result{Kind: kind, Tags: &ai.Tags{Tags: []string{"live"}, Confidence: 0.8}}, nil
}

func (f *fakeClient) Subscribe(context.Context, func(models.NoteEvent)) error { return nil }
