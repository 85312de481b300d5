package aliases

import (
	"fmt"
	"os"
	"time"

	"github.com/rNothingTech/NothingTechBot/internal/metrics"
)

// Source is where the dataset document lives. Revised must be cheap: the
// loader calls it before every dispatch cycle and only fetches content
// when the revision time advances.
type Source interface {
	Revised() (time.Time, error)
	Fetch() ([]byte, error)
}

// FileSource reads the dataset from a local file, keyed off its mtime.
type FileSource struct {
	Path string
}

func (f FileSource) Revised() (time.Time, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat alias dataset: %w", err)
	}
	return info.ModTime(), nil
}

func (f FileSource) Fetch() ([]byte, error) {
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read alias dataset: %w", err)
	}
	return content, nil
}

// Loader hands out immutable Index snapshots, replacing the snapshot
// wholesale when the source's revision time advances. It is owned by the
// single dispatch goroutine and needs no locking.
type Loader struct {
	source    Source
	sanitizer Normalizer
	current   *Index
	revision  time.Time
}

func NewLoader(source Source, s Normalizer) *Loader {
	return &Loader{source: source, sanitizer: s}
}

// Snapshot returns the current Index, reloading first if the backing
// document changed. When a reload fails after a successful initial load,
// the previous snapshot is returned alongside the error so a broken edit
// to the dataset never takes the bot down.
func (l *Loader) Snapshot() (*Index, error) {
	revised, err := l.source.Revised()
	if err != nil {
		return l.current, l.wrapIfStale(err)
	}
	if l.current != nil && !revised.After(l.revision) {
		return l.current, nil
	}

	content, err := l.source.Fetch()
	if err != nil {
		return l.current, l.wrapIfStale(err)
	}
	ix, err := Parse(content, l.sanitizer)
	if err != nil {
		return l.current, l.wrapIfStale(err)
	}

	l.current = ix
	l.revision = revised
	metrics.AliasReloadsTotal.Inc()
	return ix, nil
}

func (l *Loader) wrapIfStale(err error) error {
	if l.current == nil {
		return fmt.Errorf("initial alias dataset load: %w", err)
	}
	return fmt.Errorf("alias dataset reload (serving stale snapshot): %w", err)
}
