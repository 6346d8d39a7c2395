// Package httpapi is the JSON-over-HTTP surface of the server: accounts,
// notes, analysis, note events and the operational endpoints.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/notekeeper/internal/ai"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
)

type UserService interface {
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*models.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	SignOut(ctx context.Context, refreshToken string) error
	Session(accessToken string) (*models.Session, error)
	VerifyPassword(ctx context.Context, userID, password string) (bool, error)
}

type NoteService interface {
	List(ctx context.Context, userID string, filter models.NoteFilter) ([]models.Note, error)
	Get(ctx context.Context, userID, id string) (models.Note, error)
	Create(ctx context.Context, userID string, in services.NewNote) (models.Note, error)
	Update(ctx context.Context, userID, id string, upd models.NoteUpdate, password string) (models.Note, error)
	Delete(ctx context.Context, userID, id string) error
	TogglePin(ctx context.Context, userID, id string) (models.Note, error)
	ToggleLock(ctx context.Context, userID, id, password string) (models.Note, error)
	Unlock(ctx context.Context, userID, id, password string) (models.Note, error)
}

type Exporter interface {
	Export(ctx context.Context, userID string) (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, kind ai.Kind, text string) ai.Result
}

// EventStream serves the websocket of note events for one user.
type EventStream interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID string)
}

// Deps are the collaborators of the API. Gatherer backs /metrics and
// Registerer receives the HTTP metrics; both may be nil.
type Deps struct {
	Users      UserService
	Notes      NoteService
	Exporter   Exporter
	Analyzer   Analyzer
	Events     EventStream
	Logger     logging.Logger
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

type API struct {
	users    UserService
	notes    NoteService
	exporter Exporter
	analyzer Analyzer
	events   EventStream
	logger   logging.Logger
	metrics  *httpMetrics
	gatherer prometheus.Gatherer
}

func New(d Deps) *API {
	return &API{
		users:    d.Users,
		notes:    d.Notes,
		exporter: d.Exporter,
		analyzer: d.Analyzer,
		events:   d.Events,
		logger:   d.Logger.With("module", "http"),
		metrics:  newHTTPMetrics(d.Registerer),
		gatherer: d.Gatherer,
	}
}

// Routes builds the chi router.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if a.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", a.signUp)
			r.Post("/signin", a.signIn)
			r.Post("/refresh", a.refresh)
			r.Post("/signout", a.signOut)

			r.Group(func(r chi.Router) {
				r.Use(a.requireAuth)
				r.Get("/session", a.session)
				r.Post("/verify", a.verify)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth)

			r.Get("/notes", a.listNotes)
			r.Post("/notes", a.createNote)
			r.Post("/notes/export", a.exportNotes)
			r.Get("/notes/{id}", a.getNote)
			r.Patch("/notes/{id}", a.updateNote)
			r.Delete("/notes/{id}", a.deleteNote)
			r.Post("/notes/{id}/pin", a.togglePin)
			r.Post("/notes/{id}/lock", a.toggleLock)
			r.Post("/notes/{id}/unlock", a.unlock)

			r.Post("/analyze/{kind}", a.analyze)
			r.Get("/events", a.streamEvents)
		})
	})
	return r
}
