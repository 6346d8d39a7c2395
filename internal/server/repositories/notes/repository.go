package notes

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// Repository persists notes. Every method is scoped by the owning user; a
// note of another user behaves exactly like a missing one.
type Repository interface {
	List(ctx context.Context, userID string, filter models.NoteFilter) ([]*models.Note, error)
	Get(ctx context.Context, userID, id string) (*models.Note, error)
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	Update(ctx context.Context, userID, id string, upd models.NoteUpdate) (*models.Note, error)
	Delete(ctx context.Context, userID, id string) error
}
