// Package history persists where playback of each source left off.
package history

import (
	"time"

	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vidctl/vidctl/filesystem"
	"github.com/vidctl/vidctl/source"
	"github.com/vidctl/vidctl/where"
	"golang.org/x/exp/slices"
)

// cacher provides an abstracted, disk-backed registry of resume entries keyed by URI.
var cacher = gache.New[map[string]*Entry](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns every entry keyed by URI.
func Get() (map[string]*Entry, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// Recent returns entries, most recently played first.
func Recent() ([]*Entry, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	slices.SortFunc(entries, func(a, b *Entry) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return entries, nil
}

// Lookup returns the entry for uri, if any.
func Lookup(uri string) (mo.Option[*Entry], error) {
	saved, err := Get()
	if err != nil {
		return mo.None[*Entry](), err
	}

	entry, ok := saved[uri]
	if !ok {
		return mo.None[*Entry](), nil
	}
	return mo.Some(entry), nil
}

// Save records the position reached in a source. The watched percentage
// never decreases, so re-watching the beginning keeps earlier progress.
func Save(d source.Descriptor, position, duration int64) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	entry := newEntry(d, position, duration)
	if existing, ok := saved[entry.URI]; ok {
		entry.WatchedPercentage = max(entry.WatchedPercentage, existing.WatchedPercentage)
	}
	saved[entry.URI] = entry

	return cacher.Set(saved)
}

// Remove permanently deletes the entry for uri.
func Remove(uri string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, uri)
	return cacher.Set(saved)
}

// Clear removes every entry.
func Clear() error {
	return cacher.Set(make(map[string]*Entry))
}

func now() time.Time {
	return time.Now().UTC()
}
