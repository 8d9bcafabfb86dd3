package folio

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const DefaultBackupsKept = 3

// BackupManager copies generated pages aside before a build overwrites them.
//
// Output pages are sometimes patched by hand after a build, so the previous
// version is kept as <page>.<timestamp>.bak. Only the newest Keep backups of
// each page are retained.
type BackupManager struct {
	// Keep is the number of backups retained per page, 0 keeps all of them
	Keep int
	now  func() time.Time
}

func NewBackupManager() *BackupManager {
	return &BackupManager{
		Keep: DefaultBackupsKept,
		now:  time.Now,
	}
}

// CreateBackupOf creates a backup of the page at path if it already exists
//
// Returns the path to the backup file, or an empty string if no backup was created
func (bm *BackupManager) CreateBackupOf(path string) (backupPath string, err error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("checking page existence: %w", err)
	}

	backupPath = fmt.Sprintf("%s.%s.bak", path, bm.now().Format("20060102_150405.000"))

	if err := copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("creating backup: %w", err)
	}
	slog.Debug("Backed up existing page", "backup", backupPath, "page", path)

	if err := bm.prune(path); err != nil {
		return backupPath, fmt.Errorf("pruning backups: %w", err)
	}

	return backupPath, nil
}

// prune removes all but the newest Keep backups of path. Backup names sort
// by creation time.
func (bm *BackupManager) prune(path string) error {
	if bm.Keep <= 0 {
		return nil
	}

	backups, err := filepath.Glob(path + ".*.bak")
	if err != nil {
		return err
	}
	if len(backups) <= bm.Keep {
		return nil
	}

	sort.Strings(backups)
	for _, old := range backups[:len(backups)-bm.Keep] {
		if err := os.Remove(old); err != nil {
			return err
		}
		slog.Debug("Removed old backup", "backup", old)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying file: %w", err)
	}

	return nil
}
