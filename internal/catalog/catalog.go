// Package catalog holds the set of presets known to a session.
package catalog

import (
	"sort"

	"github.com/san-kum/pam/internal/preset"
)

// Catalog maps preset names to presets. It is not safe for concurrent use;
// a session owns exactly one.
type Catalog struct {
	entries map[string]preset.Preset
}

func New() *Catalog {
	return &Catalog{entries: make(map[string]preset.Preset)}
}

// WithBuiltins builds a catalog from stored entries with the shipped presets
// laid over them, so a stored entry can never shadow a built-in.
func WithBuiltins(stored map[string]preset.Preset) *Catalog {
	c := FromMap(stored)
	for _, p := range preset.Builtins() {
		c.entries[p.Name()] = p
	}
	return c
}

// FromMap copies m into a new catalog.
func FromMap(m map[string]preset.Preset) *Catalog {
	c := &Catalog{entries: make(map[string]preset.Preset, len(m))}
	for name, p := range m {
		c.entries[name] = p
	}
	return c
}

func (c *Catalog) Get(name string) (preset.Preset, bool) {
	p, ok := c.entries[name]
	return p, ok
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.entries[name]
	return ok
}

// Put inserts or replaces the entry under name.
func (c *Catalog) Put(name string, p preset.Preset) {
	c.entries[name] = p
}

// Delete removes name and reports whether it was present.
func (c *Catalog) Delete(name string) bool {
	if _, ok := c.entries[name]; !ok {
		return false
	}
	delete(c.entries, name)
	return true
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// Map returns a copy of the entries.
func (c *Catalog) Map() map[string]preset.Preset {
	m := make(map[string]preset.Preset, len(c.entries))
	for name, p := range c.entries {
		m[name] = p
	}
	return m
}

// User returns the entries that are not shipped presets.
func (c *Catalog) User() map[string]preset.Preset {
	m := make(map[string]preset.Preset)
	for name, p := range c.entries {
		if !preset.IsBuiltin(name) {
			m[name] = p
		}
	}
	return m
}

func (c *Catalog) Clone() *Catalog {
	return FromMap(c.entries)
}

// Replace makes c hold exactly the entries of other.
func (c *Catalog) Replace(other *Catalog) {
	c.entries = other.Map()
}

// Names lists every entry: built-ins first in shipped order, then the rest
// sorted by name.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for _, name := range preset.BuiltinNames() {
		if c.Has(name) {
			names = append(names, name)
		}
	}
	rest := make([]string, 0, len(c.entries))
	for name := range c.entries {
		if !preset.IsBuiltin(name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// Selectable lists the names a selection control offers. The default seed
// and blank names are hidden.
func (c *Catalog) Selectable() []string {
	all := c.Names()
	out := all[:0]
	for _, name := range all {
		if name == "" || name == preset.NameDefault {
			continue
		}
		out = append(out, name)
	}
	return out
}
