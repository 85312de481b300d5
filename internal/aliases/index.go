// Package aliases loads the canonical reference dataset and serves
// immutable, versioned snapshots of it.
package aliases

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rNothingTech/NothingTechBot/internal/domain"
)

// Normalizer sanitizes alias strings into the same normal form applied
// to incoming arguments. Satisfied by *sanitize.Sanitizer.
type Normalizer interface {
	Sanitize(string) string
}

// Entry is an alias entry with its pre-sanitized alias forms, computed
// once at load so exact lookups never re-sanitize the dataset side.
type Entry struct {
	domain.AliasEntry

	// Normalized holds the sanitized form of each alias, index-aligned
	// with Aliases.
	Normalized []string
}

// Index is one immutable snapshot of the alias dataset. Entry order
// within a category follows document order; exact-match ties are broken
// by that order.
type Index struct {
	categories map[domain.AliasCategory][]Entry
}

// Category returns the entries of a category in document order.
func (ix *Index) Category(cat domain.AliasCategory) []Entry {
	return ix.categories[cat]
}

// Len reports the total number of entries across all categories.
func (ix *Index) Len() int {
	n := 0
	for _, entries := range ix.categories {
		n += len(entries)
	}
	return n
}

// document mirrors the YAML layout of the externally maintained dataset.
// Explicit fields rather than a map keep category entry order stable.
type document struct {
	Link     []entryDoc `yaml:"link"`
	Wiki     []entryDoc `yaml:"wiki"`
	Glyph    []entryDoc `yaml:"glyph"`
	App      []entryDoc `yaml:"app"`
	Toy      []entryDoc `yaml:"toy"`
	Firmware []entryDoc `yaml:"firmware"`
}

type entryDoc struct {
	Name    string   `yaml:"name"`
	Link    string   `yaml:"link"`
	Aliases []string `yaml:"aliases"`
}

// Parse builds an Index from the raw dataset document. Alias strings are
// sanitized with the same sanitizer applied to incoming arguments, so
// both sides of a lookup share one normal form.
func Parse(content []byte, s Normalizer) (*Index, error) {
	var doc document
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parsing alias dataset: %w", err)
	}

	ix := &Index{categories: make(map[domain.AliasCategory][]Entry)}
	for cat, entries := range map[domain.AliasCategory][]entryDoc{
		domain.CategoryLink:     doc.Link,
		domain.CategoryWiki:     doc.Wiki,
		domain.CategoryGlyph:    doc.Glyph,
		domain.CategoryApp:      doc.App,
		domain.CategoryToy:      doc.Toy,
		domain.CategoryFirmware: doc.Firmware,
	} {
		for _, e := range entries {
			if e.Name == "" || e.Link == "" {
				return nil, fmt.Errorf("%w: alias entry in %q missing name or link", domain.ErrMalformedDocument, cat)
			}
			entry := Entry{
				AliasEntry: domain.AliasEntry{
					DisplayName: e.Name,
					Link:        e.Link,
					Aliases:     e.Aliases,
					Category:    cat,
				},
				Normalized: make([]string, len(e.Aliases)),
			}
			for i, alias := range e.Aliases {
				entry.Normalized[i] = s.Sanitize(alias)
			}
			ix.categories[cat] = append(ix.categories[cat], entry)
		}
	}
	return ix, nil
}
