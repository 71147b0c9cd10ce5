// Package outputfile prepares the agent's output path before a session.
package outputfile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Prepare creates any missing ancestor directories of path and moves an
// existing file aside to <path>.<unixTimestamp>.bak. A previous session's
// events are never deleted or appended to; each run starts with a free
// path and the old file remains readable under the backup name.
func Prepare(path string) (backup string, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat output file: %w", err)
	}

	backup = fmt.Sprintf("%s.%d.bak", path, time.Now().Unix())
	if err := os.Rename(path, backup); err != nil {
		return "", fmt.Errorf("failed to archive previous output: %w", err)
	}

	return backup, nil
}

// Exists reports whether the output file exists and is non-empty. The
// file is written exclusively by the agent; its contents are never parsed
// here.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
