package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	applogger "StockPulse/pkg/logger"
)

// FileStore keeps one JSON file per entry under a cache directory. Entry age
// is the file's mtime, stamped from the store clock on every write, so a
// refetch that overwrites the file resets the clock.
type FileStore struct {
	dir    string
	expiry time.Duration
	now    func() time.Time
	l      *applogger.Logger
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string, opts ...FileOption) (*FileStore, error) {
	cfg := &FileConfig{
		Expiry: 24 * time.Hour,
		Now:    time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &FileStore{
		dir:    dir,
		expiry: cfg.Expiry,
		now:    cfg.Now,
		l:      cfg.Logger,
	}, nil
}

func (s *FileStore) Get(_ context.Context, key string, dest interface{}) error {
	path := s.pathFor(key)

	info, err := os.Stat(path)
	if err != nil {
		return ErrCacheMiss
	}
	if s.now().Sub(info.ModTime()) >= s.expiry {
		// Stale entries remain on disk until a sweep.
		return ErrCacheMiss
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Put(_ context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}

	path := s.pathFor(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	// Rename keeps the entry atomic: readers see the old payload or the new
	// one, never a partial write.
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit cache entry %s: %w", key, err)
	}
	// The entry's write time must come from the store clock, not the
	// filesystem, so Get and the sweep age entries consistently.
	now := s.now()
	if err := os.Chtimes(path, now, now); err != nil {
		return fmt.Errorf("stamp cache entry %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) InvalidateExpired(_ context.Context) (int, error) {
	entries, err := s.entryPaths()
	if err != nil {
		return 0, err
	}

	removed := 0
	now := s.now()
	for _, path := range entries {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < s.expiry {
			continue
		}
		if err := os.Remove(path); err != nil {
			if s.l != nil {
				s.l.Warn("cache sweep: cannot remove entry",
					applogger.String("path", path),
					applogger.Error(err),
				)
			}
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *FileStore) ClearAll(_ context.Context) error {
	entries, err := s.entryPaths()
	if err != nil {
		return err
	}
	for _, path := range entries {
		if err := os.Remove(path); err != nil && s.l != nil {
			s.l.Warn("cache clear: cannot remove entry",
				applogger.String("path", path),
				applogger.Error(err),
			)
		}
	}
	return nil
}

func (s *FileStore) Stats(_ context.Context) (Stats, error) {
	entries, err := s.entryPaths()
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	for _, path := range entries {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		st.Entries++
		st.TotalBytes += info.Size()
	}
	return st, nil
}

func (s *FileStore) entryPaths() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list cache dir: %w", err)
	}
	return paths, nil
}

func (s *FileStore) pathFor(key string) string {
	// Keys use ':' as a separator, which is unfriendly to filesystems.
	name := strings.ReplaceAll(key, ":", "_")
	return filepath.Join(s.dir, name+".json")
}
