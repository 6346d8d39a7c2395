package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/notekeeper/internal/ai"
	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/config"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/view"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

const accountPassword = "secret1"

type fakeAPI struct {
	mu      sync.Mutex
	notes   map[string]models.Note
	nextID  int
	creates int
	deleted []string
	results map[ai.Kind]ai.Result

	exportURL string
}

func newFakeAPI(notes ...models.Note) *fakeAPI {
	f := &fakeAPI{notes: map[string]models.Note{}, results: map[ai.Kind]ai.Result{}}
	for _, n := range notes {
		f.notes[n.ID] = n
	}
	return f
}

var _ client.Client = (*fakeAPI)(nil)

func redact(n models.Note) models.Note {
	if n.IsEncrypted {
		n.Content, n.Locked = "", true
	}
	return n
}

func (f *fakeAPI) Ping(context.Context) error                   { return nil }
func (f *fakeAPI) SignUp(context.Context, string, string) error { return nil }
func (f *fakeAPI) SignIn(_ context.Context, email, password string) (models.Session, error) {
	if password != accountPassword {
		return models.Session{}, client.ErrUnauthorized
	}
	return models.Session{UserID: "u1", Email: email}, nil
}
func (f *fakeAPI) SignOut(context.Context) error { return nil }
func (f *fakeAPI) CurrentSession() (models.Session, bool) {
	return models.Session{}, false
}
func (f *fakeAPI) OnSessionChange(func(models.SessionEvent, *models.Session)) func() {
	return func() {}
}
func (f *fakeAPI) VerifyPassword(_ context.Context, p string) (bool, error) {
	return p == accountPassword, nil
}

func (f *fakeAPI) ListNotes(_ context.Context, opts client.ListOptions) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Note
	for _, n := range f.notes {
		if opts.Query != "" && !strings.Contains(strings.ToLower(n.Title), strings.ToLower(opts.Query)) {
			continue
		}
		out = append(out, redact(n))
	}
	return out, nil
}

func (f *fakeAPI) GetNote(_ context.Context, id string) (models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return models.Note{}, client.ErrNotFound
	}
	return redact(n), nil
}

func (f *fakeAPI) CreateNote(_ context.Context, nn models.NewNote) (models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	f.nextID++
	n := models.Note{ID: fmt.Sprintf("new-%d", f.nextID), Title: nn.Title, Content: nn.Content, UpdatedAt: time.Now()}
	f.notes[n.ID] = n
	return n, nil
}

func (f *fakeAPI) UpdateNote(_ context.Context, id string, p models.NotePatch) (models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return models.Note{}, client.ErrNotFound
	}
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		if n.IsEncrypted && p.Password != accountPassword {
			return models.Note{}, client.ErrWrongPassword
		}
		n.Content = *p.Content
	}
	f.notes[id] = n
	return redact(n), nil
}

func (f *fakeAPI) DeleteNote(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.notes, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) TogglePin(_ context.Context, id string) (models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.notes[id]
	n.IsPinned = !n.IsPinned
	f.notes[id] = n
	return redact(n), nil
}

func (f *fakeAPI) ToggleLock(_ context.Context, id, password string) (models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.notes[id]
	if n.IsEncrypted && password != accountPassword {
		return models.Note{}, client.ErrWrongPassword
	}
	n.IsEncrypted = !n.IsEncrypted
	f.notes[id] = n
	return redact(n), nil
}

func (f *fakeAPI) Unlock(_ context.Context, id, password string) (models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return models.Note{}, client.ErrNotFound
	}
	if password != accountPassword {
		return models.Note{}, client.ErrWrongPassword
	}
	return n, nil
}

func (f *fakeAPI) Export(context.Context) (string, error) {
	if f.exportURL != "" {
		return f.exportURL, nil
	}
	return "https://storage.example/export.md?X-Amz-Signature=abc", nil
}

func (f *fakeAPI) Analyze(_ context.Context, kind ai.Kind, _ string) (ai.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.results[kind]; ok {
		return r, nil
	}
	return ai.Fallback(kind), nil
}

func (f *fakeAPI) Subscribe(ctx context.Context, _ func(models.NoteEvent)) error {
	<-ctx.Done()
	return nil
}

type testApp struct {
	*App
	api *fakeAPI
	out *bytes.Buffer
}

func testConfig() *config.Config {
	var c config.Config
	c.LoadDefaults()
	c.ListRefreshInterval = time.Hour
	c.DetailRefreshInterval = time.Hour
	c.AutosaveDelay = time.Hour
	return &c
}

// newTestApp builds a signed-in app reading typed input from in.
func newTestApp(t *testing.T, in string, notes ...models.Note) *testApp {
	t.Helper()
	api := newFakeAPI(notes...)
	out := &bytes.Buffer{}
	a := newApp(testConfig(), api, logging.Discard(), strings.NewReader(in), out)

	ctx, cancel := context.WithCancel(context.Background())
	a.baseCtx = ctx
	t.Cleanup(func() {
		a.endSession()
		cancel()
	})
	a.startSession(models.Session{UserID: "u1", Email: "me@example.com"})
	return &testApp{App: a, api: api, out: out}
}

// stubPrompts answers getSimpleText and getPassword from fixed lists.
func stubPrompts(t *testing.T, texts []string, passwords []string) {
	t.Helper()
	origText, origPass := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		s := texts[0]
		texts = texts[1:]
		return s, nil
	}
	getPassword = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(passwords) == 0 {
			return "", io.EOF
		}
		s := passwords[0]
		passwords = passwords[1:]
		return s, nil
	}
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPass })
}

func day(d int) time.Time {
	return time.Now().Add(-time.Duration(d) * 24 * time.Hour)
}

func sampleNotes() []models.Note {
	return []models.Note{
		{ID: "a", Title: "Groceries", Content: "<p>milk &amp; eggs</p>", UpdatedAt: day(1)},
		{ID: "b", Title: "Plans", Content: "<p>Kubernetes rollout</p>", IsPinned: true, UpdatedAt: day(30)},
		{ID: "c", Title: "Diary", Content: "<p>dear diary</p>", IsEncrypted: true, UpdatedAt: day(2)},
	}
}

func TestApp_SignInAndOut(t *testing.T) {
	api := newFakeAPI()
	out := &bytes.Buffer{}
	a := newApp(testConfig(), api, logging.Discard(), strings.NewReader(""), out)
	t.Cleanup(func() { a.endSession() })

	stubPrompts(t, []string{"me@example.com", "me@example.com"}, []string{"wrong-pw", accountPassword})

	err := a.SignIn(context.Background())
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, a.isLoggedIn())

	require.NoError(t, a.SignIn(context.Background()))
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "me@example.com", a.status())
	assert.Contains(t, out.String(), "Signed in as me@example.com")

	require.NoError(t, a.SignOut(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.ErrorIs(t, a.SignOut(context.Background()), errSignedOut)
}

func TestApp_SignUpPasswordMismatch(t *testing.T) {
	a := newApp(testConfig(), newFakeAPI(), logging.Discard(), strings.NewReader(""), io.Discard)
	stubPrompts(t, []string{"me@example.com"}, []string{accountPassword, "other1"})

	assert.ErrorIs(t, a.SignUp(context.Background()), errPasswordMismatch)
	assert.False(t, a.isLoggedIn())
}

func TestApp_ListOrderAndStats(t *testing.T) {
	a := newTestApp(t, "", sampleNotes()...)

	require.NoError(t, a.List(context.Background(), view.FilterAll))
	out := a.out.String()

	assert.Contains(t, out, "3 notes · 1 pinned · 1 locked · 2 recent")
	assert.Less(t, strings.Index(out, "Plans"), strings.Index(out, "Groceries"), "pinned first")
	assert.Less(t, strings.Index(out, "Groceries"), strings.Index(out, "Diary"), "newest next")
	assert.Contains(t, out, "milk & eggs")
	assert.NotContains(t, out, "dear diary")

	a.out.Reset()
	require.NoError(t, a.List(context.Background(), view.FilterPinned))
	assert.Contains(t, a.out.String(), "Plans")
	assert.NotContains(t, a.out.String(), "Groceries")

	id, err := a.resolve("1")
	require.NoError(t, err)
	assert.Equal(t, "b", id)
	_, err = a.resolve("9")
	assert.Error(t, err)
}

func TestApp_Search(t *testing.T) {
	a := newTestApp(t, "", sampleNotes()...)

	require.NoError(t, a.Search(context.Background(), "plan"))
	assert.Contains(t, a.out.String(), `1 results for "plan"`)

	assert.Error(t, a.Search(context.Background(), "  "))
}

func TestApp_OpenAnalyzeAndHover(t *testing.T) {
	a := newTestApp(t, "", sampleNotes()...)
	a.api.results[ai.KindGlossary] = ai.Result{Kind: ai.KindGlossary, Glossary: []ai.GlossaryTerm{
		{Term: "Kubernetes", Definition: "A container orchestrator.", Position: 0},
	}}
	ctx := context.Background()

	assert.ErrorIs(t, a.Analyze(ctx, ai.KindGlossary), errNotOpen)

	require.NoError(t, a.Open(ctx, "b"))
	assert.Equal(t, "me@example.com | Plans", a.status())

	require.NoError(t, a.Analyze(ctx, ai.KindGlossary))
	assert.Contains(t, a.out.String(), "Kubernetes: A container orchestrator.")
	assert.Contains(t, a.open.view.Content(), `class="glossary-term"`)

	a.out.Reset()
	require.NoError(t, a.Hover(ctx, 1))
	assert.Contains(t, a.out.String(), "A container orchestrator.")
	assert.Error(t, a.Hover(ctx, 2))

	a.out.Reset()
	require.NoError(t, a.Leave(ctx))
	assert.NotContains(t, a.out.String(), "A container orchestrator.")

	a.out.Reset()
	require.NoError(t, a.Analyze(ctx, ai.KindGlossary))
	assert.Contains(t, a.out.String(), "Glossary hidden.")
	assert.NotContains(t, a.open.view.Content(), "glossary-term")
}

func TestApp_SummaryFallbackShown(t *testing.T) {
	a := newTestApp(t, "", sampleNotes()...)
	ctx := context.Background()

	require.NoError(t, a.Open(ctx, "a"))
	require.NoError(t, a.Analyze(ctx, ai.KindSummary))
	assert.Contains(t, a.out.String(), ai.Marker)
}

func TestApp_UnlockRetriesWrongPassword(t *testing.T) {
	a := newTestApp(t, "", sampleNotes()...)
	ctx := context.Background()
	stubPrompts(t, nil, []string{"guess", accountPassword})

	require.NoError(t, a.Open(ctx, "c"))
	assert.Contains(t, a.out.String(), "This note is encrypted")
	assert.ErrorIs(t, a.Analyze(ctx, ai.KindSummary), view.ErrNoteLocked)
	assert.ErrorIs(t, a.Edit(ctx), view.ErrNoteLocked)

	require.NoError(t, a.Unlock(ctx))
	out := a.out.String()
	assert.Contains(t, out, "Wrong password, try again.")
	assert.Contains(t, out, "dear diary")
	assert.False(t, a.open.view.Note().Locked)
}

func TestApp_UnlockGivesUpAfterAttempts(t *testing.T) {
	a := newTestApp(t, "", sampleNotes()...)
	ctx := context.Background()
	stubPrompts(t, nil, []string{"x1", "x2", "x3", accountPassword})

	require.NoError(t, a.Open(ctx, "c"))
	assert.ErrorIs(t, a.Unlock(ctx), client.ErrWrongPassword)
	assert.True(t, a.open.view.Note().Locked)
}

func TestApp_NewSavesOnce(t *testing.T) {
	a := newTestApp(t, "first line\nsecond <line>\n\n")
	stubPrompts(t, []string{"Meeting"}, nil)

	require.NoError(t, a.New(context.Background()))

	assert.Equal(t, 1, a.api.creates)
	n := a.open.view.Note()
	assert.Equal(t, "Meeting", n.Title)
	assert.Equal(t, "<p>first line</p><p>second &lt;line&gt;</p>", n.Content)
	assert.Contains(t, a.out.String(), "Saved.")
}

func TestApp_NewRequiresTitle(t *testing.T) {
	a := newTestApp(t, "body\n\n")
	stubPrompts(t, []string{"   "}, nil)

	assert.Equal(t, "Title is required.", describe(a.New(context.Background())))
	assert.Zero(t, a.api.creates)
}

func TestApp_EditEncryptedKeepsUnlockedContent(t *testing.T) {
	a := newTestApp(t, "new words\n\n", sampleNotes()...)
	ctx := context.Background()
	stubPrompts(t, []string{""}, []string{accountPassword})

	require.NoError(t, a.Open(ctx, "c"))
	require.NoError(t, a.Unlock(ctx))
	require.NoError(t, a.Edit(ctx))

	n := a.open.view.Note()
	assert.Equal(t, "Diary", n.Title)
	assert.Equal(t, "<p>new words</p>", n.Content)
	assert.False(t, n.Locked)
	assert.Equal(t, "<p>new words</p>", a.api.notes["c"].Content)
}

func TestApp_PinLockAndDelete(t *testing.T) {
	a := newTestApp(t, "", sampleNotes()...)
	ctx := context.Background()
	stubPrompts(t, []string{"n", "y"}, []string{accountPassword})

	require.NoError(t, a.Open(ctx, "a"))
	require.NoError(t, a.Pin(ctx))
	assert.True(t, a.open.view.Note().IsPinned)

	require.NoError(t, a.Lock(ctx))
	assert.True(t, a.open.view.Note().Locked)
	require.NoError(t, a.Lock(ctx))
	assert.False(t, a.open.view.Note().IsEncrypted)

	require.NoError(t, a.Delete(ctx, ""))
	assert.Contains(t, a.out.String(), "Cancelled.")
	require.NoError(t, a.Delete(ctx, ""))
	assert.Equal(t, []string{"a"}, a.api.deleted)
	_, err := a.current()
	assert.ErrorIs(t, err, errNotOpen)
}

func TestApp_DeletedElsewhereReturnsToList(t *testing.T) {
	orig := notFoundDelay
	notFoundDelay = 10 * time.Millisecond
	t.Cleanup(func() { notFoundDelay = orig })

	a := newTestApp(t, "", sampleNotes()...)
	ctx := context.Background()

	require.NoError(t, a.Open(ctx, "a"))
	o, err := a.current()
	require.NoError(t, err)

	a.api.mu.Lock()
	delete(a.api.notes, "a")
	a.api.mu.Unlock()

	require.NoError(t, a.refreshOpen(ctx, o))
	assert.Eventually(t, func() bool {
		_, err := a.current()
		return err != nil
	}, time.Second, 5*time.Millisecond)
}

func TestApp_Export(t *testing.T) {
	a := newTestApp(t, "")
	require.NoError(t, a.Export(context.Background(), false))
	assert.Contains(t, a.out.String(), "https://storage.example/export.md")
}

func TestApp_ExportSave(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("---\ntitle: a\n---\n"))
	}))
	defer ts.Close()

	t.Chdir(t.TempDir())
	a := newTestApp(t, "")
	a.api.exportURL = ts.URL + "/notekeeper/exports/u1/abc.md?X-Amz-Signature=x"

	require.NoError(t, a.Export(context.Background(), true))
	require.NoError(t, a.Export(context.Background(), true))

	b, err := os.ReadFile(filepath.Join(exportDir, "abc.md"))
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: a\n---\n", string(b))
	_, err = os.Stat(filepath.Join(exportDir, "abc-1.md"))
	assert.NoError(t, err)
	assert.Contains(t, a.out.String(), "Saved to")
}
