package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/san-kum/pam/internal/apply"
	"github.com/san-kum/pam/internal/catalog"
	"github.com/san-kum/pam/internal/diff"
	"github.com/san-kum/pam/internal/preset"
	"github.com/san-kum/pam/internal/storage"
)

// Session is what a host talks to: one store, the catalog loaded from it and
// the editing state of the controls.
type Session struct {
	store   *storage.Store
	mgr     *Manager
	cat     *catalog.Catalog
	editor  *Editor
	confirm Confirmer
	applier apply.Applier
}

// Open initializes the store at location, seeding it with the built-in
// presets when it is new or empty, and loads the catalog. Opening the same
// location twice yields the same catalog.
func Open(location string, opts ...Option) (*Session, error) {
	o := buildOptions(opts)

	st := storage.New(location, storage.WithLogger(o.log))
	if err := st.Init(); err != nil {
		return nil, err
	}
	mgr := &Manager{store: st, confirm: o.confirm, log: o.log}
	cat, err := mgr.InitializeCatalog()
	if err != nil {
		return nil, err
	}

	seed, _ := cat.Get(preset.NameDefault)
	return &Session{
		store:   st,
		mgr:     mgr,
		cat:     cat,
		editor:  NewEditor(seed),
		confirm: o.confirm,
		applier: o.applier,
	}, nil
}

// Catalog returns a copy of the current catalog.
func (s *Session) Catalog() *catalog.Catalog {
	return s.cat.Clone()
}

func (s *Session) Store() *storage.Store { return s.store }

func (s *Session) Editor() *Editor { return s.editor }

// Select points the editor at the named preset.
func (s *Session) Select(name string) (preset.Preset, error) {
	p, ok := s.cat.Get(name)
	if !ok {
		return preset.Preset{}, &NotFoundError{Name: name}
	}
	s.editor.Select(p)
	return p, nil
}

// Save stores snap as a new preset and selects it.
func (s *Session) Save(snap preset.Snapshot) (preset.Preset, error) {
	p, err := s.mgr.Save(snap, s.cat)
	if err != nil {
		return p, err
	}
	s.editor.Select(p)
	return p, nil
}

// Delete removes the named preset and puts the editor back on the Custom
// baseline, whichever preset was selected.
func (s *Session) Delete(name string) error {
	if err := s.mgr.Delete(name, s.cat); err != nil {
		return err
	}
	s.editor.Reset()
	return nil
}

// Import saves every preset of an export file through the normal save rules.
// It returns the names saved and the per-entry failures.
func (s *Session) Import(path string) ([]string, []error, error) {
	r, err := storage.Import(path)
	if err != nil {
		return nil, nil, err
	}
	var (
		saved []string
		errs  []error
	)
	for _, e := range r.Skipped {
		errs = append(errs, e)
	}
	for _, name := range sortedNames(r.Presets) {
		snap := preset.SnapshotOf(r.Presets[name])
		snap.Name = name
		p, err := s.mgr.Save(snap, s.cat)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		saved = append(saved, p.Name())
	}
	return saved, errs, nil
}

// Export writes the user presets to path.
func (s *Session) Export(path string) (int, error) {
	user := s.cat.User()
	if err := storage.Export(path, user); err != nil {
		return 0, err
	}
	return len(user), nil
}

// Resolve decides which preset the live controls stand for: the selected
// catalog preset when every field still matches it, otherwise an ad-hoc
// preset built from the snapshot.
func (s *Session) Resolve(live preset.Snapshot) (preset.Preset, error) {
	name := diff.MatchPreset(live, s.editor.Original())
	if name != preset.NameCustom {
		if p, ok := s.cat.Get(name); ok {
			return p, nil
		}
	}
	p, err := live.ToPreset()
	if err != nil {
		return preset.Preset{}, &ValidationError{Op: "apply", Name: live.Name, Reason: err.Error(), Err: err}
	}
	return p, nil
}

// Apply resolves live and hands the result to the applier for targets.
func (s *Session) Apply(ctx context.Context, live preset.Snapshot, targets []string) (preset.Preset, error) {
	if s.applier == nil {
		return preset.Preset{}, fmt.Errorf("apply: no applier configured")
	}
	if len(targets) == 0 {
		return preset.Preset{}, apply.ErrNoTargets
	}
	p, err := s.Resolve(live)
	if err != nil {
		return preset.Preset{}, err
	}
	prompt := fmt.Sprintf("Are you sure you'd like to apply Preset '%s' to %s?", p.Name(), strings.Join(targets, ", "))
	if !s.confirm.Confirm(prompt) {
		return preset.Preset{}, ErrCanceled
	}
	if err := s.applier.Apply(ctx, p, targets); err != nil {
		return preset.Preset{}, err
	}
	return p, nil
}

// Collide makes each target a passive collider for the nCloth solver.
func (s *Session) Collide(ctx context.Context, targets []string) error {
	c, ok := s.applier.(apply.Collider)
	if !ok {
		return fmt.Errorf("collide: applier cannot make colliders")
	}
	if len(targets) == 0 {
		return apply.ErrNoTargets
	}
	prompt := fmt.Sprintf("Are you sure you'd like to apply passive collider to: %s?", strings.Join(targets, ", "))
	if !s.confirm.Confirm(prompt) {
		return ErrCanceled
	}
	return c.Collide(ctx, targets)
}

func sortedNames(m map[string]preset.Preset) []string {
	return catalog.FromMap(m).Names()
}
