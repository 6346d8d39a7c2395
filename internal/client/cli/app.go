package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/config"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/services"
	"github.com/dmitrijs2005/notekeeper/internal/client/view"
	"github.com/dmitrijs2005/notekeeper/internal/interaction"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

const resubscribeDelay = 5 * time.Second

// notFoundDelay is how long a vanished note stays on screen before the view
// returns to the list.
var notFoundDelay = 2 * time.Second

var (
	errNotOpen   = errors.New("no note is open")
	errSignedOut = errors.New("not signed in")
)

type App struct {
	cfg      *config.Config
	api      client.Client
	auth     services.AuthService
	notes    services.NoteService
	analyzer view.Analyzer
	logger   logging.Logger

	reader *bufio.Reader
	out    io.Writer

	mu          sync.Mutex
	baseCtx     context.Context
	session     *models.Session
	list        *view.ListView
	listed      []models.Note
	listRefresh *view.Refresher
	open        *openNote
	stopSession context.CancelFunc
}

// openNote is the detail screen of one note.
type openNote struct {
	view      *view.NoteView
	hover     *interaction.Hover
	refresher *view.Refresher
	cancel    context.CancelFunc

	// password that unlocked the note, reused for refreshes and saves
	password string
	closing  *time.Timer
}

// NewApp wires the HTTP API client and services for cfg.
func NewApp(cfg *config.Config, logger logging.Logger) *App {
	api := client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout)
	return newApp(cfg, api, logger, os.Stdin, os.Stdout)
}

func newApp(cfg *config.Config, api client.Client, logger logging.Logger, in io.Reader, out io.Writer) *App {
	a := &App{
		cfg:      cfg,
		api:      api,
		auth:     services.NewAuthService(api, logger),
		notes:    services.NewNoteService(api, logger),
		analyzer: services.NewAnalyzer(api, logger),
		logger:   logger.With("module", "cli"),
		reader:   bufio.NewReader(in),
		out:      out,
		baseCtx:  context.Background(),
		list:     view.NewListView(),
	}
	api.OnSessionChange(a.onSessionChange)
	return a
}

// Run starts the REPL and blocks until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	a.mu.Lock()
	a.baseCtx = ctx
	a.mu.Unlock()
	defer a.endSession()

	a.println("Welcome to notekeeper (type 'help' for commands)")
	if err := a.auth.Ping(ctx); err != nil {
		a.println("Server is unreachable at", a.cfg.ServerURL, "- commands will fail until it is back.")
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) status() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return ""
	}
	s := a.session.Email
	if a.open != nil {
		s += " | " + a.open.view.Note().Title
	}
	return s
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session != nil
}

func (a *App) onSessionChange(ev models.SessionEvent, s *models.Session) {
	switch ev {
	case models.SessionSignedOut:
		if a.endSession() {
			a.println("\nYour session has ended. Sign in again with 'signin'.")
		}
	case models.SessionRefreshed:
		if s != nil {
			a.mu.Lock()
			if a.session != nil {
				cp := *s
				a.session = &cp
			}
			a.mu.Unlock()
		}
	}
}

// startSession starts the background list refresh and the event stream.
func (a *App) startSession(s models.Session) {
	a.endSession()

	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, cancel := context.WithCancel(a.baseCtx)
	a.session = &s
	a.stopSession = cancel
	a.list = view.NewListView()
	a.listRefresh = view.NewRefresher(a.cfg.ListRefreshInterval, a.refreshList, a.logger)

	go a.listRefresh.Run(ctx)
	a.listRefresh.Trigger()
	go a.watchEvents(ctx)
}

// endSession stops background work and closes the open note. It reports
// whether a session was active.
func (a *App) endSession() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.closeLocked()
	if a.stopSession != nil {
		a.stopSession()
		a.stopSession = nil
	}
	active := a.session != nil
	a.session = nil
	a.listRefresh = nil
	a.listed = nil
	return active
}

func (a *App) refreshList(ctx context.Context) error {
	notes, err := a.notes.List(ctx, client.ListOptions{})
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.list.Set(notes)
	a.mu.Unlock()
	return nil
}

func (a *App) watchEvents(ctx context.Context) {
	for {
		err := a.api.Subscribe(ctx, a.onNoteEvent)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			a.logger.Debug(ctx, "event stream dropped", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(resubscribeDelay):
		}
	}
}

func (a *App) onNoteEvent(ev models.NoteEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.listRefresh != nil {
		a.listRefresh.Trigger()
	}
	if a.open != nil && a.open.view.Note().ID == ev.NoteID {
		a.open.refresher.Trigger()
	}
}

func (a *App) current() (*openNote, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.open == nil {
		return nil, errNotOpen
	}
	return a.open, nil
}

// closeLocked must be called with mu held.
func (a *App) closeLocked() {
	if a.open == nil {
		return
	}
	if a.open.closing != nil {
		a.open.closing.Stop()
	}
	a.open.cancel()
	a.open.view.Close()
	a.open = nil
}
