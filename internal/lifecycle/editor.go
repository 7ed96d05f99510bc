package lifecycle

import (
	"github.com/san-kum/pam/internal/diff"
	"github.com/san-kum/pam/internal/preset"
)

// Editor tracks which preset the live controls started from. The originating
// preset is held apart from the displayed name so that repeated edits never
// stack the custom marker.
type Editor struct {
	original preset.Preset
	baseline preset.Snapshot
}

func NewEditor(seed preset.Preset) *Editor {
	e := &Editor{}
	e.Select(seed)
	return e
}

// Select makes p the preset the controls are compared against.
func (e *Editor) Select(p preset.Preset) {
	e.original = p
	e.baseline = preset.SnapshotOf(p)
}

// Reset selects the Custom baseline.
func (e *Editor) Reset() {
	custom, _ := preset.Builtin(preset.NameCustom)
	e.Select(custom)
}

func (e *Editor) Original() preset.Preset { return e.original }

// Baseline is the snapshot the controls showed right after Select.
func (e *Editor) Baseline() preset.Snapshot { return e.baseline }

// Changed reports whether live has diverged from the selected preset.
func (e *Editor) Changed(live preset.Snapshot) bool {
	return diff.SettingsChanged(live, e.baseline)
}

// DisplayName is the name field the controls should show for live. Edits
// made from the Custom sentinel carry the bare prefix.
func (e *Editor) DisplayName(live preset.Snapshot) string {
	base := diff.StripCustomPrefix(e.original.Name())
	if base == preset.NameCustom {
		base = ""
	}
	if name := diff.DerivedName(base, live, e.baseline); name != "" {
		return name
	}
	return e.original.Name()
}

// Changes lists the fields live has changed relative to the selection.
func (e *Editor) Changes(live preset.Snapshot) []diff.Change {
	return diff.Changes(live, e.baseline)
}
