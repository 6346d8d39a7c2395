package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/cryptox"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	notesrepo "github.com/dmitrijs2005/notekeeper/internal/server/repositories/notes"
	refreshtokensrepo "github.com/dmitrijs2005/notekeeper/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/notekeeper/internal/server/repositories/users"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		S3Bucket:                     "notekeeper",
		ExportLinkExpiry:             10 * time.Minute,
	}
}

// newAccount builds a user whose password is password.
func newAccount(id, email, password string) *models.User {
	salt := []byte("0123456789abcdef0123456789abcdef")
	return &models.User{ID: id, UserName: email, Salt: salt, Verifier: cryptox.MakeVerifier([]byte(password), salt)}
}

type fakeUsersRepo struct {
	mu        sync.Mutex
	byID      map[string]*models.User
	createErr error
	getErr    error
	created   []*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsersRepo {
	f := &fakeUsersRepo{byID: map[string]*models.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if existing.UserName == u.UserName {
			return nil, common.ErrorLoginAlreadyExists
		}
	}
	u.ID = fmt.Sprintf("u%d", len(f.byID)+1)
	f.byID[u.ID] = u
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.UserName == login {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type fakeRefreshRepo struct {
	mu        sync.Mutex
	tokens    map[string]*models.RefreshToken
	findErr   error
	delErr    error
	createErr error
	pruned    []string
}

func newFakeRefresh() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID, token string, validity time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if rt, ok := f.tokens[token]; ok {
		return rt, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(_ context.Context, userID string, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruned = append(f.pruned, userID)
	var n int64
	for k, rt := range f.tokens {
		if rt.UserID == userID && rt.Expired(now) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

type fakeNotesRepo struct {
	mu      sync.Mutex
	notes   map[string]*models.Note
	tick    time.Time
	listErr error
	updates int
}

func newFakeNotes(notes ...*models.Note) *fakeNotesRepo {
	f := &fakeNotesRepo{notes: map[string]*models.Note{}, tick: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	for _, n := range notes {
		f.notes[n.ID] = n
	}
	return f
}

func (f *fakeNotesRepo) next() time.Time {
	f.tick = f.tick.Add(time.Minute)
	return f.tick
}

func (f *fakeNotesRepo) List(_ context.Context, userID string, filter models.NoteFilter) ([]*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	q := strings.ToLower(strings.TrimSpace(filter.Query))
	out := []*models.Note{}
	for _, n := range f.notes {
		if n.UserID != userID || (filter.PinnedOnly && !n.IsPinned) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(n.Title), q) &&
			(n.IsEncrypted || !strings.Contains(strings.ToLower(n.Content), q)) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (f *fakeNotesRepo) Get(_ context.Context, userID, id string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok || n.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNotesRepo) Create(_ context.Context, n *models.Note) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *n
	cp.CreatedAt = f.next()
	cp.UpdatedAt = cp.CreatedAt
	f.notes[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeNotesRepo) Update(_ context.Context, userID, id string, upd models.NoteUpdate) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok || n.UserID != userID {
		return nil, common.ErrorNotFound
	}
	if upd.Title != nil {
		n.Title = *upd.Title
	}
	if upd.Content != nil {
		n.Content = *upd.Content
	}
	if upd.IsPinned != nil {
		n.IsPinned = *upd.IsPinned
	}
	if upd.IsEncrypted != nil {
		n.IsEncrypted = *upd.IsEncrypted
	}
	n.UpdatedAt = f.next()
	f.updates++
	cp := *n
	return &cp, nil
}

func (f *fakeNotesRepo) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok || n.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.notes, id)
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	n *fakeNotesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error         { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository { return m.r }
func (m *fakeRepoManager) Notes(dbx.DBTX) notesrepo.Repository                 { return m.n }

type recordedEvent struct {
	userID string
	ev     models.NoteEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) Publish(userID string, ev models.NoteEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{userID, ev})
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.ev.Type)
	}
	return out
}
