package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrNotFound is returned when neither the requested nor the fallback locale has a profile.
var ErrNotFound = errors.New("content: profile not found")

const reloadDebounce = 200 * time.Millisecond

// Store holds one Profile per locale, loaded from <dir>/<locale>.yaml.
type Store struct {
	dir      string
	fallback string
	renderer *Renderer
	logger   *zap.Logger

	mu       sync.RWMutex
	profiles map[string]Profile
	onReload []func()
}

// NewStore loads every profile under dir. The fallback locale must be present.
func NewStore(dir, fallback string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		dir:      dir,
		fallback: strings.ToLower(strings.TrimSpace(fallback)),
		renderer: NewRenderer(),
		logger:   logger,
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load rereads the directory and swaps the profile set atomically. On error
// the previous set stays in place.
func (s *Store) Load() error {
	profiles, err := s.loadFS(os.DirFS(s.dir))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.profiles = profiles
	s.mu.Unlock()
	return nil
}

func (s *Store) loadFS(fsys fs.FS) (map[string]Profile, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}
	profiles := map[string]Profile{}
	for _, e := range entries {
		name := e.Name()
		ext := filepath.Ext(name)
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		locale := strings.ToLower(strings.TrimSuffix(name, ext))
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		p, err := s.renderer.Parse(locale, data)
		if err != nil {
			return nil, err
		}
		profiles[locale] = p
	}
	if _, ok := profiles[s.fallback]; !ok {
		return nil, fmt.Errorf("content: fallback locale %q has no profile in %s", s.fallback, s.dir)
	}
	return profiles, nil
}

// Profile returns the copy for locale, or the fallback locale's copy.
func (s *Store) Profile(locale string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[strings.ToLower(locale)]; ok {
		return p, nil
	}
	if p, ok := s.profiles[s.fallback]; ok {
		return p, nil
	}
	return Profile{}, ErrNotFound
}

// Locales lists the locales with a profile.
func (s *Store) Locales() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.profiles))
	for l := range s.profiles {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// OnReload registers fn to run after each successful watcher-driven reload.
func (s *Store) OnReload(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.onReload = append(s.onReload, fn)
	s.mu.Unlock()
}

// Watch reloads the store when a YAML file in its directory changes, until ctx
// is cancelled. Bursts of events are coalesced.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	s.logger.Info("content watcher started", zap.String("dir", s.dir))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(reloadDebounce)
			fire = timer.C
			return
		}
		timer.Reset(reloadDebounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			s.logger.Info("content watcher stopped")
			return nil

		case <-fire:
			if err := s.Load(); err != nil {
				s.logger.Warn("content reload failed, keeping previous copy", zap.Error(err))
				continue
			}
			s.logger.Info("content reloaded", zap.Strings("locales", s.Locales()))
			s.mu.RLock()
			hooks := append([]func(){}, s.onReload...)
			s.mu.RUnlock()
			for _, fn := range hooks {
				fn()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			ext := filepath.Ext(ev.Name)
			if ext != ".yaml" && ext != ".yml" {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("content watcher error", zap.Error(watchErr))
		}
	}
}
