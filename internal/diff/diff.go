// Package diff compares control surface snapshots against presets and
// derives the display name that follows from the comparison.
package diff

import (
	"strings"

	"github.com/san-kum/pam/internal/preset"
)

// SettingsChanged reports whether snapshot differs from original in any field
// other than the name. Either side being empty means there is nothing to
// compare and yields false. Values are compared exactly.
func SettingsChanged(snapshot, original preset.Snapshot) bool {
	if snapshot.IsZero() || original.IsZero() {
		return false
	}
	if snapshot.Description != original.Description {
		return true
	}
	return snapshot.Params != original.Params
}

// DerivedName returns base prefixed with the custom marker when snapshot has
// diverged from original, and base unchanged otherwise. base must be the
// unprefixed name of the preset the edit started from; see StripCustomPrefix.
func DerivedName(base string, snapshot, original preset.Snapshot) string {
	if SettingsChanged(snapshot, original) {
		return preset.CustomPrefix + base
	}
	return base
}

// MatchPreset returns p's name when every field of snapshot, name included,
// equals p; otherwise it returns the Custom sentinel.
func MatchPreset(snapshot preset.Snapshot, p preset.Preset) string {
	if snapshot != preset.SnapshotOf(p) {
		return preset.NameCustom
	}
	return p.Name()
}

// StripCustomPrefix removes every leading custom marker from name.
func StripCustomPrefix(name string) string {
	for strings.HasPrefix(name, preset.CustomPrefix) {
		name = strings.TrimPrefix(name, preset.CustomPrefix)
	}
	return name
}

// Change is a single differing field.
type Change struct {
	Key   string
	Label string
	From  string
	To    string
	Delta float64
}

// Changes lists the fields, excluding the name, on which snapshot differs
// from original, in attribute order. Delta is To minus From for attributes
// and zero for the description. Like SettingsChanged, an empty side yields
// no changes.
func Changes(snapshot, original preset.Snapshot) []Change {
	if snapshot.IsZero() || original.IsZero() {
		return nil
	}
	var out []Change
	if snapshot.Description != original.Description {
		out = append(out, Change{
			Key:   "description",
			Label: "Description",
			From:  original.Description,
			To:    snapshot.Description,
		})
	}
	for _, f := range preset.Fields() {
		from, to := f.Get(original.Params), f.Get(snapshot.Params)
		if from == to {
			continue
		}
		out = append(out, Change{
			Key:   f.Key,
			Label: f.Label,
			From:  f.Format(original.Params),
			To:    f.Format(snapshot.Params),
			Delta: to - from,
		})
	}
	return out
}
