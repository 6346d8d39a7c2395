package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
)

// PasswordVerifier re-authenticates a signed-in user.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, userID, password string) (bool, error)
}

// EventPublisher fans note changes out to the owner's subscribers.
type EventPublisher interface {
	Publish(userID string, ev models.NoteEvent)
}

// NewNote is the input of NoteService.Create.
type NewNote struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsPinned    bool   `json:"is_pinned"`
	IsEncrypted bool   `json:"is_encrypted"`
}

// NoteService owns the note rules: title validation, the password gate
// on encrypted notes and change notifications. Every note it returns is
// redacted except the one produced by Unlock.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	verifier    PasswordVerifier
	events      EventPublisher
	now         func() time.Time
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, verifier PasswordVerifier, events EventPublisher) *NoteService {
	return &NoteService{db: db, repomanager: m, verifier: verifier, events: events, now: time.Now}
}

func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	return nil
}

func redactAll(in []*models.Note) []models.Note {
	out := make([]models.Note, 0, len(in))
	for _, n := range in {
		out = append(out, n.Redacted())
	}
	return out
}

func (s *NoteService) publish(userID, typ, noteID string) {
	if s.events == nil {
		return
	}
	s.events.Publish(userID, models.NoteEvent{Type: typ, NoteID: noteID, At: s.now().UTC()})
}

// checkPassword returns nil only when password belongs to userID.
func (s *NoteService) checkPassword(ctx context.Context, userID, password string) error {
	if password == "" {
		return common.ErrorNoteLocked
	}
	ok, err := s.verifier.VerifyPassword(ctx, userID, password)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorWrongPassword
	}
	return nil
}

func (s *NoteService) List(ctx context.Context, userID string, filter models.NoteFilter) ([]models.Note, error) {
	notes, err := s.repomanager.Notes(s.db).List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return redactAll(notes), nil
}

func (s *NoteService) get(ctx context.Context, userID, id string) (*models.Note, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Notes(s.db).Get(ctx, userID, id)
}

func (s *NoteService) Get(ctx context.Context, userID, id string) (models.Note, error) {
	n, err := s.get(ctx, userID, id)
	if err != nil {
		return models.Note{}, err
	}
	return n.Redacted(), nil
}

func (s *NoteService) Create(ctx context.Context, userID string, in NewNote) (models.Note, error) {
	if err := common.ValidateTitle(in.Title); err != nil {
		return models.Note{}, err
	}

	n, err := s.repomanager.Notes(s.db).Create(ctx, &models.Note{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		IsPinned:    in.IsPinned,
		IsEncrypted: in.IsEncrypted,
	})
	if err != nil {
		return models.Note{}, err
	}
	s.publish(userID, models.NoteCreated, n.ID)
	return n.Redacted(), nil
}

// Update applies a partial update. Changing the content of an encrypted
// note, or dropping its encryption, requires the account password.
func (s *NoteService) Update(ctx context.Context, userID, id string, upd models.NoteUpdate, password string) (models.Note, error) {
	if upd.Title != nil {
		if err := common.ValidateTitle(*upd.Title); err != nil {
			return models.Note{}, err
		}
		t := strings.TrimSpace(*upd.Title)
		upd.Title = &t
	}

	cur, err := s.get(ctx, userID, id)
	if err != nil {
		return models.Note{}, err
	}
	if upd.Empty() {
		return cur.Redacted(), nil
	}

	unlocking := upd.IsEncrypted != nil && !*upd.IsEncrypted
	if cur.IsEncrypted && (upd.Content != nil || unlocking) {
		if err := s.checkPassword(ctx, userID, password); err != nil {
			return models.Note{}, err
		}
	}

	return s.update(ctx, userID, id, upd)
}

func (s *NoteService) update(ctx context.Context, userID, id string, upd models.NoteUpdate) (models.Note, error) {
	n, err := s.repomanager.Notes(s.db).Update(ctx, userID, id, upd)
	if err != nil {
		return models.Note{}, err
	}
	s.publish(userID, models.NoteUpdated, n.ID)
	return n.Redacted(), nil
}

func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	if err := s.repomanager.Notes(s.db).Delete(ctx, userID, id); err != nil {
		return err
	}
	s.publish(userID, models.NoteDeleted, id)
	return nil
}

func (s *NoteService) TogglePin(ctx context.Context, userID, id string) (models.Note, error) {
	cur, err := s.get(ctx, userID, id)
	if err != nil {
		return models.Note{}, err
	}
	pinned := !cur.IsPinned
	return s.update(ctx, userID, id, models.NoteUpdate{IsPinned: &pinned})
}

// ToggleLock encrypts a plain note, or with the right password turns an
// encrypted note back into a plain one.
func (s *NoteService) ToggleLock(ctx context.Context, userID, id, password string) (models.Note, error) {
	cur, err := s.get(ctx, userID, id)
	if err != nil {
		return models.Note{}, err
	}
	if cur.IsEncrypted {
		if err := s.checkPassword(ctx, userID, password); err != nil {
			return models.Note{}, err
		}
	}
	encrypted := !cur.IsEncrypted
	return s.update(ctx, userID, id, models.NoteUpdate{IsEncrypted: &encrypted})
}

// Unlock returns the full content of a note once password is verified.
func (s *NoteService) Unlock(ctx context.Context, userID, id, password string) (models.Note, error) {
	cur, err := s.get(ctx, userID, id)
	if err != nil {
		return models.Note{}, err
	}
	if err := s.checkPassword(ctx, userID, password); err != nil {
		return models.Note{}, err
	}
	cur.Locked = false
	return *cur, nil
}
