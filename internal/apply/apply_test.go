package apply

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/pam/internal/preset"
)

func TestMEL_Apply(t *testing.T) {
	jelly, _ := preset.Builtin("Jelly")
	var buf bytes.Buffer

	if err := NewMEL(&buf).Apply(context.Background(), jelly, []string{"pSphere1", "pCube1"}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	out := buf.String()

	if strings.Count(out, "createNCloth 0;") != 2 {
		t.Errorf("expected one createNCloth per target:\n%s", out)
	}
	for _, want := range []string{
		`select -replace "pSphere1";`,
		`setAttr ($node + ".bounce") 0.5;`,
		`setAttr ($node + ".pressureMethod") 1;`,
		`setAttr ($node + ".maxIterations") 1000;`,
		`setAttr ($node + ".pushOutRadius") 0.1;`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
	if got := strings.Count(out, "setAttr"); got != 2*len(preset.Fields()) {
		t.Errorf("expected %d setAttr lines, got %d", 2*len(preset.Fields()), got)
	}
}

func TestMEL_NoTargets(t *testing.T) {
	var buf bytes.Buffer
	err := NewMEL(&buf).Apply(context.Background(), preset.Preset{}, nil)
	if !errors.Is(err, ErrNoTargets) {
		t.Fatalf("expected ErrNoTargets, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written")
	}
}

func TestMEL_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if err := NewMEL(&buf).Apply(ctx, preset.Preset{}, []string{"a"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMEL_Collide(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMEL(&buf).Collide(context.Background(), []string{"ground", "pCube1"}); err != nil {
		t.Fatalf("collide failed: %v", err)
	}
	want := "// passive collider\n" +
		"select -replace \"ground\";\nmakeCollideNCloth;\n" +
		"select -replace \"pCube1\";\nmakeCollideNCloth;\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected script:\n%s", got)
	}

	buf.Reset()
	if err := NewMEL(&buf).Collide(context.Background(), nil); !errors.Is(err, ErrNoTargets) {
		t.Errorf("expected ErrNoTargets, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written")
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	silk, _ := preset.Builtin("Silk")
	targets := []string{"cloth"}
	if err := r.Apply(context.Background(), silk, targets); err != nil {
		t.Fatal(err)
	}
	targets[0] = "mutated"

	calls := r.Calls()
	if len(calls) != 1 || calls[0].Targets[0] != "cloth" || calls[0].Preset.Name() != "Silk" {
		t.Errorf("unexpected calls %+v", calls)
	}
}

func TestRecorder_Collide(t *testing.T) {
	r := &Recorder{}
	if err := r.Collide(context.Background(), []string{"floor"}); err != nil {
		t.Fatal(err)
	}
	if got := r.Colliders(); len(got) != 1 || got[0][0] != "floor" {
		t.Errorf("unexpected colliders %v", got)
	}
	if len(r.Calls()) != 0 {
		t.Error("collide should not record an apply")
	}
}
