// Package notes provides the PostgreSQL-backed note store.
package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

const noteColumns = `id, user_id, title, content, is_pinned, is_encrypted, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*models.Note, error) {
	n := &models.Note{}
	err := s.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.IsPinned, &n.IsEncrypted, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// likePattern turns a free-text query into an ILIKE substring pattern.
// An empty query yields "" which disables the search predicate.
func likePattern(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// List returns the user's notes, pinned first and then most recently
// updated. The search predicate never looks into encrypted content.
func (r *PostgresRepository) List(ctx context.Context, userID string, filter models.NoteFilter) ([]*models.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE user_id = $1
		  AND ($2 = false OR is_pinned)
		  AND ($3 = '' OR title ILIKE $3 OR (NOT is_encrypted AND content ILIKE $3))
		ORDER BY is_pinned DESC, updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, filter.PinnedOnly, likePattern(filter.Query))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE id = $1 AND user_id = $2
	`
	n, err := scanNote(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// Create inserts note with the id chosen by the caller. Both timestamps are
// assigned by the database.
func (r *PostgresRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	query := `
		INSERT INTO notes (id, user_id, title, content, is_pinned, is_encrypted)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + noteColumns
	n, err := scanNote(r.db.QueryRowContext(ctx, query,
		note.ID, note.UserID, note.Title, note.Content, note.IsPinned, note.IsEncrypted))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// Update applies the non-nil fields of upd and bumps updated_at.
func (r *PostgresRepository) Update(ctx context.Context, userID, id string, upd models.NoteUpdate) (*models.Note, error) {
	query := `
		UPDATE notes SET
			title = COALESCE($3, title),
			content = COALESCE($4, content),
			is_pinned = COALESCE($5, is_pinned),
			is_encrypted = COALESCE($6, is_encrypted),
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + noteColumns
	n, err := scanNote(r.db.QueryRowContext(ctx, query,
		id, userID, upd.Title, upd.Content, upd.IsPinned, upd.IsEncrypted))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `
		DELETE FROM notes
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
