// Package apply hands resolved presets to the simulation host.
package apply

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/san-kum/pam/internal/preset"
)

// ErrNoTargets indicates an apply request with nothing selected.
var ErrNoTargets = errors.New("apply: no mesh selected")

// Applier writes a preset's attributes onto the named scene objects.
type Applier interface {
	Apply(ctx context.Context, p preset.Preset, targets []string) error
}

// Collider turns the named scene objects into passive colliders.
type Collider interface {
	Collide(ctx context.Context, targets []string) error
}

// MEL emits a Maya MEL script that turns each target into nCloth and sets
// every preset attribute on the connected nCloth nodes.
type MEL struct {
	w io.Writer
}

func NewMEL(w io.Writer) *MEL {
	return &MEL{w: w}
}

func (m *MEL) Apply(ctx context.Context, p preset.Preset, targets []string) error {
	if len(targets) == 0 {
		return ErrNoTargets
	}
	var b strings.Builder
	fmt.Fprintf(&b, "// preset: %s\n", p.Name())
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		writeTarget(&b, target, p.Params())
	}
	_, err := io.WriteString(m.w, b.String())
	return err
}

// Collide emits makeCollideNCloth for each target in turn.
func (m *MEL) Collide(ctx context.Context, targets []string) error {
	if len(targets) == 0 {
		return ErrNoTargets
	}
	var b strings.Builder
	b.WriteString("// passive collider\n")
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(&b, "select -replace %s;\n", strconv.Quote(target))
		b.WriteString("makeCollideNCloth;\n")
	}
	_, err := io.WriteString(m.w, b.String())
	return err
}

func writeTarget(b *strings.Builder, target string, params preset.Params) {
	q := strconv.Quote(target)
	fmt.Fprintf(b, "select -replace %s;\n", q)
	b.WriteString("createNCloth 0;\n")
	b.WriteString("{\n")
	fmt.Fprintf(b, "    string $shapes[] = `listRelatives -shapes %s`;\n", q)
	b.WriteString("    for ($shape in $shapes) {\n")
	b.WriteString("        string $nodes[] = `listConnections -type \"nCloth\" $shape`;\n")
	b.WriteString("        for ($node in $nodes) {\n")
	for _, f := range preset.Fields() {
		fmt.Fprintf(b, "            setAttr ($node + \".%s\") %s;\n", f.Key, melValue(f, params))
	}
	b.WriteString("        }\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
}

func melValue(f preset.Field, params preset.Params) string {
	v := f.Get(params)
	if f.Kind != preset.KindFloat {
		return strconv.Itoa(int(v))
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Call is one recorded Apply.
type Call struct {
	Preset  preset.Preset
	Targets []string
}

// Recorder keeps every Apply and Collide call; useful for dry runs and tests.
type Recorder struct {
	mu        sync.Mutex
	calls     []Call
	colliders [][]string
}

func (r *Recorder) Apply(ctx context.Context, p preset.Preset, targets []string) error {
	if len(targets) == 0 {
		return ErrNoTargets
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Preset: p, Targets: append([]string(nil), targets...)})
	return nil
}

func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

func (r *Recorder) Collide(ctx context.Context, targets []string) error {
	if len(targets) == 0 {
		return ErrNoTargets
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.colliders = append(r.colliders, append([]string(nil), targets...))
	return nil
}

// Colliders returns the targets of each recorded Collide call.
func (r *Recorder) Colliders() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.colliders...)
}
