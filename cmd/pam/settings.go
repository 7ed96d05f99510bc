package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/pam/internal/catalog"
	"github.com/san-kum/pam/internal/preset"
	"gopkg.in/yaml.v3"
)

// readSnapshot loads a control surface state written as YAML.
func readSnapshot(path string) (preset.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return preset.Snapshot{}, err
	}
	var s preset.Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return preset.Snapshot{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := s.Params.Validate(); err != nil {
		return preset.Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// parseSetting reads a key=value pair. Enum attributes accept their display
// label or numeric code.
func parseSetting(s string) (string, float64, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, fmt.Errorf("setting %q: expected key=value", s)
	}
	k, v = strings.TrimSpace(k), strings.TrimSpace(v)
	f, ok := preset.Lookup(k)
	if !ok {
		return "", 0, fmt.Errorf("setting %q: %w: unknown attribute %q", s, preset.ErrInvalidParam, k)
	}
	if f.Kind == preset.KindEnum {
		for i, label := range f.Options() {
			if strings.EqualFold(label, v) {
				return k, float64(i), nil
			}
		}
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return "", 0, fmt.Errorf("setting %q: %w: %q is not a number", s, preset.ErrInvalidParam, v)
	}
	return k, n, nil
}

// applySettings returns snap with every key=value setting applied in order.
func applySettings(snap preset.Snapshot, settings []string) (preset.Snapshot, error) {
	for _, s := range settings {
		k, v, err := parseSetting(s)
		if err != nil {
			return snap, err
		}
		if snap, err = snap.Set(k, v); err != nil {
			return snap, fmt.Errorf("setting %q: %w", s, err)
		}
	}
	return snap, nil
}

// buildSnapshot assembles the state of the controls: read from file when
// from is set, otherwise the values of the base preset, then settings.
func buildSnapshot(cat *catalog.Catalog, base, from string, settings []string) (preset.Snapshot, error) {
	var snap preset.Snapshot
	if from != "" {
		s, err := readSnapshot(from)
		if err != nil {
			return snap, err
		}
		snap = s
	} else {
		p, ok := cat.Get(base)
		if !ok {
			return snap, fmt.Errorf("preset %q not found", base)
		}
		snap = preset.SnapshotOf(p)
	}
	return applySettings(snap, settings)
}

// promptConfirmer asks on out and reads a y/n answer from in.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptConfirmer(in io.Reader, out io.Writer) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}

func (c *promptConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// clip shortens s to n runes for table output.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
