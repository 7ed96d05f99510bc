package lifecycle_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/pam/internal/apply"
	"github.com/san-kum/pam/internal/lifecycle"
	"github.com/san-kum/pam/internal/preset"
)

func openSession(t *testing.T, opts ...lifecycle.Option) (*lifecycle.Session, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := lifecycle.Open(dir, opts...)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	return s, dir
}

func TestOpen_Idempotent(t *testing.T) {
	s1, dir := openSession(t)
	s2, err := lifecycle.Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	n1, n2 := s1.Catalog().Names(), s2.Catalog().Names()
	if len(n1) != len(n2) || len(n1) != len(preset.Builtins()) {
		t.Fatalf("catalogs differ: %v vs %v", n1, n2)
	}
	if s1.Store().Path() != filepath.Join(dir, "presets.json") {
		t.Errorf("unexpected store path %s", s1.Store().Path())
	}
}

func TestOpen_StartsFromDefault(t *testing.T) {
	s, _ := openSession(t)
	if got := s.Editor().Original().Name(); got != preset.NameDefault {
		t.Errorf("expected editor seeded with Default, got %q", got)
	}
}

func TestSession_CatalogIsACopy(t *testing.T) {
	s, _ := openSession(t)
	c := s.Catalog()
	c.Delete("Silk")
	if !s.Catalog().Has("Silk") {
		t.Error("mutating the returned catalog changed the session")
	}
}

func TestEditor_DisplayName(t *testing.T) {
	s, _ := openSession(t)
	silk, err := s.Select("Silk")
	if err != nil {
		t.Fatal(err)
	}

	live := preset.SnapshotOf(silk)
	if got := s.Editor().DisplayName(live); got != "Silk" {
		t.Errorf("unchanged: got %q", got)
	}

	live.Bounce = 0.3
	live.Name = s.Editor().DisplayName(live)
	if live.Name != "Custom - Silk" {
		t.Fatalf("changed: got %q", live.Name)
	}

	// a further edit keeps a single marker
	live.Friction = 1.2
	if got := s.Editor().DisplayName(live); got != "Custom - Silk" {
		t.Errorf("second edit: got %q", got)
	}

	// editing back to the original values restores the plain name
	live = preset.SnapshotOf(silk)
	live.Name = "Custom - Silk"
	if got := s.Editor().DisplayName(live); got != "Silk" {
		t.Errorf("reverted: got %q", got)
	}
	if changes := s.Editor().Changes(live); len(changes) != 0 {
		t.Errorf("expected no changes, got %+v", changes)
	}
}

func TestSession_SelectUnknown(t *testing.T) {
	s, _ := openSession(t)
	if _, err := s.Select("Tweed"); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSession_SaveSelectsAndDeleteResets(t *testing.T) {
	s, dir := openSession(t)
	denim, _ := s.Select("Heavy Denim")

	live := preset.SnapshotOf(denim)
	live.Damp = 3
	live.Name = "Stiff Denim"
	saved, err := s.Save(live)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if s.Editor().Original().Name() != "Stiff Denim" {
		t.Errorf("expected saved preset selected, got %q", s.Editor().Original().Name())
	}
	if saved.Params().Damp != 3 {
		t.Errorf("unexpected damp %v", saved.Params().Damp)
	}

	reopened, err := lifecycle.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !reopened.Catalog().Has("Stiff Denim") {
		t.Error("saved preset missing after reopen")
	}

	if err := s.Delete("Stiff Denim"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got := s.Editor().Original().Name(); got != preset.NameCustom {
		t.Errorf("expected editor reset to Custom, got %q", got)
	}
}

func TestSession_DeleteOtherResetsSelection(t *testing.T) {
	s, _ := openSession(t)
	silk, _ := s.Select("Silk")
	wool := preset.SnapshotOf(silk)
	wool.Name = "Wool"
	wool.Friction = 0.45
	if _, err := s.Save(wool); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Select("Silk"); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete("Wool"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got := s.Editor().Original().Name(); got != preset.NameCustom {
		t.Errorf("expected editor reset to Custom, got %q", got)
	}
}

func TestEditor_DisplayNameAfterReset(t *testing.T) {
	s, _ := openSession(t)
	s.Editor().Reset()
	live := preset.SnapshotOf(s.Editor().Original())
	if got := s.Editor().DisplayName(live); got != preset.NameCustom {
		t.Errorf("unchanged: got %q", got)
	}

	live.Bounce = 0.4
	if got := s.Editor().DisplayName(live); got != preset.CustomPrefix {
		t.Errorf("edited: expected %q, got %q", preset.CustomPrefix, got)
	}

	// the bare prefix is reserved, so it has to be renamed before saving
	live.Name = s.Editor().DisplayName(live)
	if _, err := s.Save(live); !errors.Is(err, lifecycle.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestSession_Resolve(t *testing.T) {
	s, _ := openSession(t)
	lava, _ := s.Select("Lava")

	p, err := s.Resolve(preset.SnapshotOf(lava))
	if err != nil {
		t.Fatal(err)
	}
	if !p.Equal(lava) {
		t.Error("matching snapshot should resolve to the catalog preset")
	}

	live := preset.SnapshotOf(lava)
	live.PointMass = 12
	live.Name = s.Editor().DisplayName(live)
	p, err = s.Resolve(live)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "Custom - Lava" || p.Params().PointMass != 12 {
		t.Errorf("expected ad-hoc preset, got %q mass %v", p.Name(), p.Params().PointMass)
	}
}

func TestSession_Apply(t *testing.T) {
	rec := &apply.Recorder{}
	var prompts []string
	s, _ := openSession(t,
		lifecycle.WithApplier(rec),
		lifecycle.WithConfirmer(lifecycle.ConfirmFunc(func(p string) bool {
			prompts = append(prompts, p)
			return true
		})),
	)
	jelly, _ := s.Select("Jelly")

	if _, err := s.Apply(context.Background(), preset.SnapshotOf(jelly), nil); !errors.Is(err, apply.ErrNoTargets) {
		t.Fatalf("expected ErrNoTargets, got %v", err)
	}

	p, err := s.Apply(context.Background(), preset.SnapshotOf(jelly), []string{"pSphere1", "pSphere2"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "Jelly" {
		t.Errorf("expected Jelly, got %s", p.Name())
	}
	calls := rec.Calls()
	if len(calls) != 1 || len(calls[0].Targets) != 2 {
		t.Fatalf("unexpected calls %+v", calls)
	}
	want := "Are you sure you'd like to apply Preset 'Jelly' to pSphere1, pSphere2?"
	if len(prompts) != 1 || prompts[0] != want {
		t.Errorf("unexpected prompts %q", prompts)
	}
}

func TestSession_ApplyDeclined(t *testing.T) {
	rec := &apply.Recorder{}
	s, _ := openSession(t,
		lifecycle.WithApplier(rec),
		lifecycle.WithConfirmer(lifecycle.ConfirmFunc(func(string) bool { return false })),
	)
	silk, _ := s.Select("Silk")
	if _, err := s.Apply(context.Background(), preset.SnapshotOf(silk), []string{"a"}); !errors.Is(err, lifecycle.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if len(rec.Calls()) != 0 {
		t.Error("declined apply reached the applier")
	}
}

func TestSession_Collide(t *testing.T) {
	rec := &apply.Recorder{}
	var prompts []string
	answer := false
	s, _ := openSession(t,
		lifecycle.WithApplier(rec),
		lifecycle.WithConfirmer(lifecycle.ConfirmFunc(func(p string) bool {
			prompts = append(prompts, p)
			return answer
		})),
	)
	ctx := context.Background()

	if err := s.Collide(ctx, nil); !errors.Is(err, apply.ErrNoTargets) {
		t.Fatalf("expected ErrNoTargets, got %v", err)
	}
	if err := s.Collide(ctx, []string{"ground", "wall"}); !errors.Is(err, lifecycle.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if len(rec.Colliders()) != 0 {
		t.Fatal("declined collide reached the applier")
	}

	answer = true
	if err := s.Collide(ctx, []string{"ground", "wall"}); err != nil {
		t.Fatal(err)
	}
	if got := rec.Colliders(); len(got) != 1 || len(got[0]) != 2 {
		t.Errorf("unexpected colliders %v", got)
	}
	want := "Are you sure you'd like to apply passive collider to: ground, wall?"
	if len(prompts) != 2 || prompts[1] != want {
		t.Errorf("unexpected prompts %q", prompts)
	}
}

func TestSession_ExportImport(t *testing.T) {
	src, _ := openSession(t)
	silk, _ := src.Select("Silk")
	live := preset.SnapshotOf(silk)
	live.Name = "Wool"
	live.Friction = 0.4
	if _, err := src.Save(live); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "user.yaml")
	n, err := src.Export(out)
	if err != nil || n != 1 {
		t.Fatalf("export: %d %v", n, err)
	}

	dst, _ := openSession(t)
	saved, errs, err := dst.Import(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 1 || saved[0] != "Wool" || len(errs) != 0 {
		t.Fatalf("unexpected import result %v %v", saved, errs)
	}

	// importing again collides with the existing name
	saved, errs, err = dst.Import(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 0 || len(errs) != 1 || !errors.Is(errs[0], lifecycle.ErrValidation) {
		t.Errorf("expected one validation error, got %v %v", saved, errs)
	}
}

func TestOpen_UnreadableStore(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "presets.json"), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := lifecycle.Open(dir); err == nil {
		t.Fatal("expected error for corrupt store")
	}
}
