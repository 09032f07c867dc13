// Package storage persists delivered posts to a single JSON file next to its
// timestamped backup and quarantine copies. The file is the bot's only durable state:
// losing it means re-announcing a few recent posts, which is why decode failures are
// healed by quarantining the file instead of refusing to start.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/0x0BSoD/nevaNews/internal/model"
)

const (
	backupSuffix    = ".backup.json"
	timestampLayout = "20060102_150405"
)

type PostStorage struct {
	path string

	maxPostsCount  int
	maxPostAge     time.Duration
	maxStorageSize int64
}

// New ensures the storage directory and file exist. An unwritable location is the one
// storage failure that is fatal: without a file there is nothing to dedup against.
func New(path string, maxPostsCount int, maxPostAge time.Duration, maxStorageSize int64) (*PostStorage, error) {
	s := &PostStorage{
		path:           path,
		maxPostsCount:  maxPostsCount,
		maxPostAge:     maxPostAge,
		maxStorageSize: maxStorageSize,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.Save(nil); err != nil {
			return nil, fmt.Errorf("initialize storage: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat storage file: %w", err)
	}

	return s, nil
}

// Load reads the persisted history. Corruption is not an error: the unreadable file
// is renamed to a timestamped quarantine copy and an empty history is returned, so a
// damaged file can never crash-loop the bot.
func (s *PostStorage) Load() []model.NewsPost {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[ERROR] failed to read storage file %s: %v", s.path, err)
		}
		return nil
	}

	var stored []storedPost
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Printf("[ERROR] storage file %s is corrupted, quarantining: %v", s.path, err)
		s.quarantine()
		return nil
	}

	posts := make([]model.NewsPost, 0, len(stored))
	for _, sp := range stored {
		posts = append(posts, sp.toPost())
	}
	return posts
}

// Save atomically replaces the persisted history with items. A failed save is
// returned to the caller: it risks re-delivering already-sent posts after a restart
// and the operator should hear about it.
func (s *PostStorage) Save(items []model.NewsPost) error {
	stored := make([]storedPost, 0, len(items))
	for _, p := range items {
		stored = append(stored, newStoredPost(p))
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("encode posts: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace storage file: %w", err)
	}

	return nil
}

// RotateIfOversized checks the on-disk size against the configured cap. Meant to run
// once at startup: when the cap is exceeded the current file is copied to a
// timestamped backup and replaced by its age-filtered, count-capped content. Reports
// whether a rotation happened.
func (s *PostStorage) RotateIfOversized(now time.Time) (bool, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return false, fmt.Errorf("stat storage file: %w", err)
	}
	if info.Size() <= s.maxStorageSize {
		return false, nil
	}

	log.Printf("[INFO] storage file %s is %d bytes, rotating", s.path, info.Size())

	posts := s.Load()
	posts = lo.Filter(posts, func(p model.NewsPost, _ int) bool {
		return now.Sub(p.PostedAt) <= s.maxPostAge
	})
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PostedAt.After(posts[j].PostedAt)
	})
	if len(posts) > s.maxPostsCount {
		posts = posts[:s.maxPostsCount]
	}

	backup := s.timestampedSibling(now, backupSuffix)
	if err := copyFile(s.path, backup); err != nil {
		return false, fmt.Errorf("backup storage file: %w", err)
	}

	if err := s.Save(posts); err != nil {
		return false, err
	}

	return true, nil
}

// CleanupOldBackups removes backup files older than maxAge. Best-effort: every
// failure is logged and swallowed.
func (s *PostStorage) CleanupOldBackups(maxAge time.Duration) {
	pattern := filepath.Join(filepath.Dir(s.path), s.stem()+"*"+backupSuffix)
	backups, err := filepath.Glob(pattern)
	if err != nil {
		log.Printf("[ERROR] failed to list backups: %v", err)
		return
	}

	for _, backup := range backups {
		info, err := os.Stat(backup)
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) <= maxAge {
			continue
		}
		if err := os.Remove(backup); err != nil {
			log.Printf("[ERROR] failed to remove old backup %s: %v", backup, err)
			continue
		}
		log.Printf("[INFO] removed old backup: %s", backup)
	}
}

// Path returns the location of the history file.
func (s *PostStorage) Path() string {
	return s.path
}

// quarantine moves the unreadable file aside as <stem>.corrupted_<ts>.json so its
// bytes stay available for inspection while the bot restarts from an empty history.
func (s *PostStorage) quarantine() {
	dst := filepath.Join(filepath.Dir(s.path),
		fmt.Sprintf("%s.corrupted_%s.json", s.stem(), time.Now().Format(timestampLayout)))
	if err := os.Rename(s.path, dst); err != nil {
		log.Printf("[ERROR] failed to quarantine storage file: %v", err)
	}
}

func (s *PostStorage) stem() string {
	base := filepath.Base(s.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s *PostStorage) timestampedSibling(now time.Time, suffix string) string {
	return filepath.Join(filepath.Dir(s.path),
		fmt.Sprintf("%s.%s%s", s.stem(), now.Format(timestampLayout), suffix))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
