// Package models defines the note, session and event types the client
// exchanges with the server.
package models

import "time"

// Note as returned by the server. For an encrypted note that was not
// unlocked, Content is empty and Locked is true.
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

// NotePatch carries a partial update. Nil fields are left unchanged.
// Password is required when changing the content of an encrypted note.
type NotePatch struct {
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
	IsPinned    *bool   `json:"is_pinned,omitempty"`
	IsEncrypted *bool   `json:"is_encrypted,omitempty"`
	Password    string  `json:"password,omitempty"`
}

type NewNote struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsPinned    bool   `json:"is_pinned"`
	IsEncrypted bool   `json:"is_encrypted"`
}
