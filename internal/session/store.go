package session

import "context"

// Store persists session records.
type Store interface {
	// Save persists a session record, overwriting any previous version
	Save(ctx context.Context, sess *Session) error

	// Load retrieves a session by ID
	Load(ctx context.Context, id string) (*Session, error)

	// List returns all recorded sessions, newest first
	List(ctx context.Context) ([]*Session, error)
}
