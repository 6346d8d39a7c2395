package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/ai"
	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

type NoteService interface {
	List(ctx context.Context, opts client.ListOptions) ([]models.Note, error)
	Get(ctx context.Context, id string) (models.Note, error)
	Unlock(ctx context.Context, id, password string) (models.Note, error)
	Save(ctx context.Context, draft Draft) (models.Note, error)
	Delete(ctx context.Context, id string) error
	TogglePin(ctx context.Context, id string) (models.Note, error)
	ToggleLock(ctx context.Context, id, password string) (models.Note, error)
	Export(ctx context.Context) (string, error)
}

// Draft is the editor state of a note. An empty ID creates a new note.
// Password is needed when the content of an encrypted note changes.
type Draft struct {
	ID          string
	Title       string
	Content     string
	IsPinned    bool
	IsEncrypted bool
	Password    string
}

type noteService struct {
	client client.Client
	logger logging.Logger
}

func NewNoteService(c client.Client, logger logging.Logger) NoteService {
	return &noteService{client: c, logger: logger.With("module", "notes")}
}

func (s *noteService) List(ctx context.Context, opts client.ListOptions) ([]models.Note, error) {
	return s.client.ListNotes(ctx, opts)
}

func (s *noteService) Get(ctx context.Context, id string) (models.Note, error) {
	return s.client.GetNote(ctx, id)
}

// Unlock opens an encrypted note. A wrong password yields
// client.ErrWrongPassword and may be retried immediately.
func (s *noteService) Unlock(ctx context.Context, id, password string) (models.Note, error) {
	if password == "" {
		return models.Note{}, client.ErrWrongPassword
	}
	return s.client.Unlock(ctx, id, password)
}

func (s *noteService) Save(ctx context.Context, d Draft) (models.Note, error) {
	if err := common.ValidateTitle(d.Title); err != nil {
		return models.Note{}, err
	}
	title := strings.TrimSpace(d.Title)

	if d.ID == "" {
		n, err := s.client.CreateNote(ctx, models.NewNote{
			Title:       title,
			Content:     d.Content,
			IsPinned:    d.IsPinned,
			IsEncrypted: d.IsEncrypted,
		})
		if err != nil {
			return models.Note{}, fmt.Errorf("create note: %w", err)
		}
		return n, nil
	}

	patch := models.NotePatch{Title: &title, Content: &d.Content, Password: d.Password}
	n, err := s.client.UpdateNote(ctx, d.ID, patch)
	if err != nil {
		return models.Note{}, fmt.Errorf("update note: %w", err)
	}
	return n, nil
}

func (s *noteService) Delete(ctx context.Context, id string) error {
	return s.client.DeleteNote(ctx, id)
}

func (s *noteService) TogglePin(ctx context.Context, id string) (models.Note, error) {
	return s.client.TogglePin(ctx, id)
}

func (s *noteService) ToggleLock(ctx context.Context, id, password string) (models.Note, error) {
	return s.client.ToggleLock(ctx, id, password)
}

func (s *noteService) Export(ctx context.Context) (string, error) {
	return s.client.Export(ctx)
}

// Analyzer adapts the remote analysis endpoint to view.Analyzer: transport
// errors become the fallback of the requested kind.
type Analyzer struct {
	client client.Client
	logger logging.Logger
}

func NewAnalyzer(c client.Client, logger logging.Logger) *Analyzer {
	return &Analyzer{client: c, logger: logger.With("module", "analyzer")}
}

func (a *Analyzer) Analyze(ctx context.Context, kind ai.Kind, text string) ai.Result {
	r, err := a.client.Analyze(ctx, kind, text)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			a.logger.Warn(ctx, "analysis request failed, using fallback", "kind", string(kind), "error", err)
		}
		return ai.Fallback(kind)
	}
	return r
}
