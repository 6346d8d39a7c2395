package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/ai"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
)

const (
	goodToken    = "good-access"
	expiredToken = "expired-access"
)

type fakeUsers struct {
	signUpErr  error
	signInErr  error
	refreshErr error
	signedOut  []string
}

func (f *fakeUsers) SignUp(_ context.Context, email, _ string) (*models.User, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &models.User{ID: "u-new", UserName: email}, nil
}

func (f *fakeUsers) SignIn(context.Context, string, string) (*models.TokenPair, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &models.TokenPair{AccessToken: goodToken, RefreshToken: "r1"}, nil
}

func (f *fakeUsers) RefreshToken(_ context.Context, token string) (*models.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &models.TokenPair{AccessToken: goodToken, RefreshToken: token + "-next"}, nil
}

func (f *fakeUsers) SignOut(_ context.Context, token string) error {
	f.signedOut = append(f.signedOut, token)
	return nil
}

func (f *fakeUsers) Session(token string) (*models.Session, error) {
	switch token {
	case goodToken:
		return &models.Session{UserID: "u1", Email: "alice@example.com", ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
	case expiredToken:
		return nil, common.ErrTokenExpired
	}
	return nil, common.ErrInvalidToken
}

func (f *fakeUsers) VerifyPassword(_ context.Context, _ string, password string) (bool, error) {
	return password == "secret1", nil
}

type fakeNotes struct {
	lastUser   string
	lastFilter models.NoteFilter
	lastUpdate models.NoteUpdate
	lastPwd    string
	created    services.NewNote
}

var storedNote = models.Note{ID: "n1", UserID: "u1", Title: "T", Content: "<p>c</p>"}

func (f *fakeNotes) List(_ context.Context, userID string, filter models.NoteFilter) ([]models.Note, error) {
	f.lastUser, f.lastFilter = userID, filter
	return []models.Note{storedNote}, nil
}

func (f *fakeNotes) Get(_ context.Context, userID, id string) (models.Note, error) {
	f.lastUser = userID
	if id != "n1" {
		return models.Note{}, common.ErrorNotFound
	}
	return storedNote, nil
}

func (f *fakeNotes) Create(_ context.Context, userID string, in services.NewNote) (models.Note, error) {
	f.lastUser, f.created = userID, in
	if err := common.ValidateTitle(in.Title); err != nil {
		return models.Note{}, err
	}
	return models.Note{ID: "n2", UserID: userID, Title: in.Title, Content: in.Content}, nil
}

func (f *fakeNotes) Update(_ context.Context, _ string, id string, upd models.NoteUpdate, password string) (models.Note, error) {
	f.lastUpdate, f.lastPwd = upd, password
	if id != "n1" {
		return models.Note{}, common.ErrorNotFound
	}
	n := storedNote
	if upd.Title != nil {
		n.Title = *upd.Title
	}
	return n, nil
}

func (f *fakeNotes) Delete(_ context.Context, _ string, id string) error {
	if id != "n1" {
		return common.ErrorNotFound
	}
	return nil
}

func (f *fakeNotes) TogglePin(_ context.Context, _ string, _ string) (models.Note, error) {
	n := storedNote
	n.IsPinned = true
	return n, nil
}

func (f *fakeNotes) ToggleLock(_ context.Context, _ string, _ string, password string) (models.Note, error) {
	f.lastPwd = password
	return models.Note{ID: "n1", Title: "T", IsEncrypted: true}.Redacted(), nil
}

func (f *fakeNotes) Unlock(_ context.Context, _ string, _ string, password string) (models.Note, error) {
	if password != "secret1" {
		return models.Note{}, common.ErrorWrongPassword
	}
	return models.Note{ID: "n1", Title: "T", Content: "<p>secret</p>", IsEncrypted: true}, nil
}

type fakeExporter struct{ err error }

func (f fakeExporter) Export(_ context.Context, userID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.local/exports/" + userID + ".md", nil
}

type fakeAnalyzer struct{ lastText string }

func (f *fakeAnalyzer) Analyze(_ context.Context, kind ai.Kind, text string) ai.Result {
	f.lastText = text
	return ai.Fallback(kind)
}

type fakeEvents struct{ userID string }

func (f *fakeEvents) ServeWS(w http.ResponseWriter, _ *http.Request, userID string) {
	f.userID = userID
	w.WriteHeader(http.StatusOK)
}
