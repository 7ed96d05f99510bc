// Package lifecycle creates, saves and deletes presets against a catalog and
// its store, and keeps the editing state a host needs.
package lifecycle

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/san-kum/pam/internal/apply"
	"github.com/san-kum/pam/internal/catalog"
	"github.com/san-kum/pam/internal/preset"
	"github.com/san-kum/pam/internal/storage"
)

// Confirmer asks the user to approve an operation.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm approves everything.
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) bool { return true })

type options struct {
	log     *slog.Logger
	confirm Confirmer
	applier apply.Applier
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithConfirmer installs the prompt used before save, delete and apply.
// Without one every operation is treated as already confirmed.
func WithConfirmer(c Confirmer) Option {
	return func(o *options) { o.confirm = c }
}

func WithApplier(a apply.Applier) Option {
	return func(o *options) { o.applier = a }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.confirm == nil {
		o.confirm = AlwaysConfirm
	}
	return o
}

type Manager struct {
	store   *storage.Store
	confirm Confirmer
	log     *slog.Logger
}

// NewManager wraps an initialized store.
func NewManager(store *storage.Store, opts ...Option) *Manager {
	o := buildOptions(opts)
	return &Manager{store: store, confirm: o.confirm, log: o.log}
}

// InitializeCatalog seeds an empty store with the built-in presets and loads
// the catalog. A store that already holds entries is never reseeded.
func (m *Manager) InitializeCatalog() (*catalog.Catalog, error) {
	r, err := m.store.LoadReport()
	if err != nil {
		return nil, err
	}
	if m.store.IsNew() || (len(r.Presets) == 0 && len(r.Skipped) == 0) {
		seed := make(map[string]preset.Preset)
		for _, p := range preset.Builtins() {
			seed[p.Name()] = p
		}
		if err := m.store.SaveAll(seed); err != nil {
			return nil, err
		}
		m.store.MarkSeeded()
		m.log.Info("seeded preset store", "path", m.store.Path(), "presets", len(seed))
	}
	return m.Reload()
}

// Reload rebuilds the catalog from the store.
func (m *Manager) Reload() (*catalog.Catalog, error) {
	stored, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	return catalog.WithBuiltins(stored), nil
}

// Save stores the snapshot as a new preset under its trimmed name. On success
// cat is replaced by the catalog reloaded from the store and the reloaded
// preset is returned. A rejected or declined save changes neither cat nor
// the store.
func (m *Manager) Save(snap preset.Snapshot, cat *catalog.Catalog) (preset.Preset, error) {
	name, err := preset.ValidateUserName(snap.Name)
	if err != nil {
		return preset.Preset{}, &ValidationError{Op: "save", Name: snap.Name, Reason: "preset name cannot be empty", Err: err}
	}
	if name == preset.ReservedCustom {
		return preset.Preset{}, &ValidationError{Op: "save", Name: name, Reason: "name is reserved, choose another name"}
	}
	if cat.Has(name) || preset.IsBuiltin(name) {
		return preset.Preset{}, &ValidationError{Op: "save", Name: name, Reason: "preset already exists, choose another name"}
	}

	snap.Name = name
	p, err := snap.ToPreset()
	if err != nil {
		return preset.Preset{}, &ValidationError{Op: "save", Name: name, Reason: err.Error(), Err: err}
	}

	if !m.confirm.Confirm(fmt.Sprintf("Are you sure you want to save: '%s'?", name)) {
		return preset.Preset{}, ErrCanceled
	}

	if err := m.store.Upsert(name, p); err != nil {
		return preset.Preset{}, fmt.Errorf("save %q: %w", name, err)
	}

	reloaded, err := m.Reload()
	if err != nil {
		// the write landed; keep memory in step with it
		cat.Put(name, p)
		return p, fmt.Errorf("save %q: reload: %w", name, err)
	}
	cat.Replace(reloaded)
	m.log.Info("saved preset", "preset", name)

	if stored, ok := cat.Get(name); ok {
		return stored, nil
	}
	return p, nil
}

// Delete removes a user preset from cat and rewrites the store with what is
// left. Built-in names are refused; an unknown name yields a NotFoundError
// and changes nothing.
func (m *Manager) Delete(name string, cat *catalog.Catalog) error {
	name = strings.TrimSpace(name)
	if preset.IsProtected(name) {
		return &ValidationError{Op: "delete", Name: name, Reason: "built-in preset cannot be deleted"}
	}
	if !cat.Has(name) {
		m.log.Warn("delete of unknown preset", "preset", name)
		return &NotFoundError{Name: name}
	}

	if !m.confirm.Confirm(fmt.Sprintf("Are you sure you want to delete preset '%s'?", name)) {
		return ErrCanceled
	}

	next := cat.Clone()
	next.Delete(name)
	if err := m.store.SaveAll(next.Map()); err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	cat.Replace(next)
	m.log.Info("deleted preset", "preset", name)
	return nil
}
