package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// maxSameSecond bounds the numbered names tried for one timestamp.
const maxSameSecond = 100

// BackupFileName is the timestamped name used for on-demand copies. Snapshots
// taken in the same second get a _2, _3 ... suffix, which sorts after the
// unnumbered name.
func BackupFileName(now time.Time, n int) string {
	stamp := now.Format("20060102_150405")
	if n > 1 {
		stamp += "_" + strconv.Itoa(n)
	}
	return "backup_almoxarifado_" + stamp + ".db"
}

// Backup writes a consistent snapshot of the database into dir and returns the
// created file path. VACUUM INTO runs on the writer so no write can interleave.
func (db *DB) Backup(ctx context.Context, dir string, now time.Time) (string, error) {
	if db == nil || db.WriteSQL == nil {
		return "", fmt.Errorf("write db is not initialized")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	dest, err := reserveBackupFile(dir, now)
	if err != nil {
		return "", err
	}
	// VACUUM INTO accepts an existing empty file.
	if _, err := db.WriteSQL.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("vacuum into %s: %w", dest, err)
	}
	return dest, nil
}

// reserveBackupFile creates an empty file under the first free name.
func reserveBackupFile(dir string, now time.Time) (string, error) {
	for n := 1; n <= maxSameSecond; n++ {
		dest := filepath.Join(dir, BackupFileName(now, n))
		f, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create backup file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("create backup file: %w", err)
		}
		return dest, nil
	}
	return "", fmt.Errorf("too many backups at %s", now.Format(time.DateTime))
}
