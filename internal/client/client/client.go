package client

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/ai"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
)

// ListOptions narrows ListNotes.
type ListOptions struct {
	PinnedOnly bool
	Query      string
}

type Client interface {
	Ping(ctx context.Context) error

	SignUp(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) (models.Session, error)
	SignOut(ctx context.Context) error
	CurrentSession() (models.Session, bool)
	OnSessionChange(fn func(models.SessionEvent, *models.Session)) (unsubscribe func())
	VerifyPassword(ctx context.Context, password string) (bool, error)

	ListNotes(ctx context.Context, opts ListOptions) ([]models.Note, error)
	GetNote(ctx context.Context, id string) (models.Note, error)
	CreateNote(ctx context.Context, n models.NewNote) (models.Note, error)
	UpdateNote(ctx context.Context, id string, patch models.NotePatch) (models.Note, error)
	DeleteNote(ctx context.Context, id string) error
	TogglePin(ctx context.Context, id string) (models.Note, error)
	ToggleLock(ctx context.Context, id string, password string) (models.Note, error)
	Unlock(ctx context.Context, id string, password string) (models.Note, error)
	Export(ctx context.Context) (string, error)

	Analyze(ctx context.Context, kind ai.Kind, text string) (ai.Result, error)
	Subscribe(ctx context.Context, fn func(models.NoteEvent)) error
}
