// Package history persists which locators were played, how often, and whether they ran to the end.
package history

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/anisan-cli/playerview/filesystem"
	"github.com/anisan-cli/playerview/where"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Store is a disk-backed registry of entries keyed by locator.
type Store struct {
	mu    sync.Mutex
	cache *gache.Cache[map[string]*Entry]
	now   func() time.Time
}

// Open returns a store persisted at path through the active filesystem backend.
func Open(path string) *Store {
	return &Store{
		cache: gache.New[map[string]*Entry](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
		now: time.Now,
	}
}

// Default returns the store living at where.History().
var Default = sync.OnceValue(func() *Store {
	return Open(where.History())
})

func (s *Store) load() (map[string]*Entry, error) {
	cached, expired, err := s.cache.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

func (s *Store) update(locator string, fn func(*Entry)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return err
	}

	entry, ok := saved[locator]
	if !ok {
		entry = &Entry{Locator: locator}
		saved[locator] = entry
	}
	fn(entry)

	return s.cache.Set(saved)
}

// Get returns the entry for locator, if any.
func (s *Store) Get(locator string) (mo.Option[*Entry], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return mo.None[*Entry](), err
	}

	if entry, ok := saved[locator]; ok {
		return mo.Some(entry), nil
	}
	return mo.None[*Entry](), nil
}

// Entries returns every entry, most recently played first.
func (s *Store) Entries() ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	slices.SortFunc(entries, func(a, b *Entry) int {
		if c := b.LastPlayed.Compare(a.LastPlayed); c != 0 {
			return c
		}
		return cmp.Compare(a.Locator, b.Locator)
	})
	return entries, nil
}

// Latest returns the most recently played entry, if any.
func (s *Store) Latest() (mo.Option[*Entry], error) {
	entries, err := s.Entries()
	if err != nil {
		return mo.None[*Entry](), err
	}
	if len(entries) == 0 {
		return mo.None[*Entry](), nil
	}
	return mo.Some(entries[0]), nil
}

// RecordPlay counts a new playback of locator.
func (s *Store) RecordPlay(locator string) error {
	return s.update(locator, func(e *Entry) {
		e.Plays++
		e.LastPlayed = s.now()
	})
}

// RecordDuration remembers the last known duration of locator.
func (s *Store) RecordDuration(locator string, d time.Duration) error {
	return s.update(locator, func(e *Entry) {
		e.LastDuration = d
	})
}

// RecordEnd counts a playback of locator that reached its end.
func (s *Store) RecordEnd(locator string) error {
	return s.update(locator, func(e *Entry) {
		e.Ends++
	})
}

// Remove deletes the entry for locator.
func (s *Store) Remove(locator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return err
	}

	delete(saved, locator)
	return s.cache.Set(saved)
}

// Clear deletes every entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cache.Set(make(map[string]*Entry))
}
