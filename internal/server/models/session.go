package models

import "time"

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Session describes the owner of a valid access token.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NoteEvent is pushed to a user's subscribers when one of their notes changes.
type NoteEvent struct {
	Type   string    `json:"type"`
	NoteID string    `json:"note_id"`
	At     time.Time `json:"at"`
}

const (
	NoteCreated = "created"
	NoteUpdated = "updated"
	NoteDeleted = "deleted"
)
