// Package sweep prunes files left behind by earlier runs.
package sweep

import (
	"io/fs"
	"path/filepath"
	"time"

	"github.com/vidctl/vidctl/filesystem"
	"github.com/vidctl/vidctl/log"
	"github.com/vidctl/vidctl/where"
)

const (
	// SocketTTL is how long an engine socket may outlive its session.
	SocketTTL = 24 * time.Hour
	// LogTTL is how long log files are kept.
	LogTTL = 7 * 24 * time.Hour
)

// CollectGarbage removes stale engine sockets and old log files.
func CollectGarbage() {
	now := time.Now()

	removed := Prune(where.Temp(), "*.sock", now.Add(-SocketTTL))
	removed += Prune(where.Logs(), "*.log", now.Add(-LogTTL))

	if removed > 0 {
		log.Infof("swept %d stale files", removed)
	}
}

// Prune removes files under dir matching pattern that were last modified
// before cutoff, and returns how many were removed. Errors are skipped.
func Prune(dir, pattern string, cutoff time.Time) (removed int) {
	fsys := filesystem.API()

	_ = fsys.Walk(dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		if ok, _ := filepath.Match(pattern, info.Name()); !ok {
			return nil
		}

		if info.ModTime().Before(cutoff) && fsys.Remove(path) == nil {
			removed++
		}
		return nil
	})

	return removed
}
