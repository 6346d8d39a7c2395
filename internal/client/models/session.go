package models

import "time"

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Session describes the signed-in user.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionEvent names what changed the current session.
type SessionEvent string

const (
	SessionSignedIn  SessionEvent = "signed_in"
	SessionSignedOut SessionEvent = "signed_out"
	SessionRefreshed SessionEvent = "token_refreshed"
)

// NoteEvent is pushed by the server when one of the user's notes changes.
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
