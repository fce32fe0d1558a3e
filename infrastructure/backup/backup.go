// Package backup takes SQLite snapshots on demand and on the configured schedule.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/metrics"
	"almoxarifado/infrastructure/sqlite"
	"almoxarifado/infrastructure/store"
	"almoxarifado/models"
)

const filePrefix = "backup_almoxarifado_"

// SystemActor is recorded in the audit log for scheduled backups.
var SystemActor = access.Principal{Username: "system", Level: models.LevelSuperAdmin}

// File describes one snapshot on disk.
type File struct {
	Name    string
	Size    int64
	ModTime time.Time
}

type Service struct {
	db      *sqlite.DB
	store   *store.Store
	metrics *metrics.Metrics
	dir     string
	now     func() time.Time
}

func NewService(db *sqlite.DB, st *store.Store, m *metrics.Metrics, dir string) *Service {
	return &Service{db: db, store: st, metrics: m, dir: dir, now: time.Now}
}

// Dir is where snapshots are written.
func (s *Service) Dir() string {
	return s.dir
}

// Run writes a snapshot and stamps last_backup_at. It returns the file name.
func (s *Service) Run(ctx context.Context, actor access.Principal) (string, error) {
	now := s.now()
	path, err := s.db.Backup(ctx, s.dir, now)
	if err == nil {
		err = s.store.MarkBackup(ctx, actor, now, filepath.Base(path))
	}
	s.metrics.BackupFinished(err)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	log.Info().Str("file", path).Str("by", actor.Username).Msg("database backup written")
	return filepath.Base(path), nil
}

// List returns snapshots newest first.
func (s *Service) List() ([]File, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !validName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, File{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name > files[j].Name })
	return files, nil
}

// Path resolves a snapshot name to a path inside the backup dir.
func (s *Service) Path(name string) (string, error) {
	if !validName(name) {
		return "", models.ErrNotFound
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", models.ErrNotFound
	}
	return path, nil
}

func validName(name string) bool {
	return name == filepath.Base(name) &&
		strings.HasPrefix(name, filePrefix) &&
		strings.HasSuffix(name, ".db")
}

// RunIfDue takes a snapshot when automatic backups are enabled and overdue.
func (s *Service) RunIfDue(ctx context.Context) (bool, error) {
	cfg, err := s.store.Settings(ctx)
	if err != nil {
		return false, err
	}
	if !store.BackupDue(cfg, s.now()) {
		return false, nil
	}
	if _, err := s.Run(ctx, SystemActor); err != nil {
		return false, err
	}
	return true, nil
}

// Schedule checks every interval until ctx is done.
func (s *Service) Schedule(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := s.RunIfDue(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("scheduled backup failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
