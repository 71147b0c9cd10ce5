package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Wes1101/T4-1000-netdiag/internal/filemanager"
)

// FileStore implements Store with one YAML file per session. Files are
// read and written through filemanager so a listing command never sees a
// half-written record from a concurrent run.
type FileStore struct {
	dir   string
	files *filemanager.Manager[Session]
}

// NewFileStore creates a file-based session store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:   dir,
		files: filemanager.NewManager[Session](),
	}
}

// sessionFile returns the path of a session's record file.
func (s *FileStore) sessionFile(id string) string {
	return filepath.Join(s.dir, fmt.Sprintf("session-%s.yaml", id))
}

// Save persists a session record.
func (s *FileStore) Save(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		return fmt.Errorf("session has no ID")
	}
	if err := s.files.Write(ctx, s.sessionFile(sess.ID), sess); err != nil {
		return fmt.Errorf("failed to save session %s: %w", sess.ID, err)
	}
	return nil
}

// Load retrieves a session by ID.
func (s *FileStore) Load(ctx context.Context, id string) (*Session, error) {
	sess, err := s.files.Read(ctx, s.sessionFile(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return sess, nil
}

// List returns all recorded sessions, newest first. Records that fail to
// parse are skipped rather than failing the whole listing.
func (s *FileStore) List(ctx context.Context) ([]*Session, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	var sessions []*Session
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "session-") || !strings.HasSuffix(name, ".yaml") {
			continue
		}

		id := strings.TrimSuffix(strings.TrimPrefix(name, "session-"), ".yaml")
		sess, err := s.Load(ctx, id)
		if err != nil {
			continue
		}
		sessions = append(sessions, sess)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})

	return sessions, nil
}
