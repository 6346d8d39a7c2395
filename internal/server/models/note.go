package models

import "time"

// Note is a single user note as stored in the notes table.
type Note struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	IsPinned    bool      `json:"is_pinned"`
	IsEncrypted bool      `json:"is_encrypted"`
	Locked      bool      `json:"locked"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Redacted returns a copy safe to hand out without the password gate:
// encrypted notes lose their content and are marked locked.
func (n Note) Redacted() Note {
	if n.IsEncrypted {
		n.Content = ""
		n.Locked = true
	}
	return n
}

// NoteFilter narrows a note listing.
type NoteFilter struct {
	PinnedOnly bool
	Query      string
}

// NoteUpdate carries a partial update; nil fields keep their stored value.
type NoteUpdate struct {
	Title       *string
	Content     *string
	IsPinned    *bool
	IsEncrypted *bool
}

// Empty reports whether the update changes nothing.
func (u NoteUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.IsPinned == nil && u.IsEncrypted == nil
}
