// Package preset defines nCloth attribute presets, the snapshots captured
// from a control surface, and the built-in preset table.
package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidParam indicates a non-finite or unknown attribute value.
	ErrInvalidParam = errors.New("preset: invalid parameter")

	// ErrInvalidEnum indicates an enum attribute holding an unknown code.
	ErrInvalidEnum = errors.New("preset: invalid enum code")

	// ErrEmptyName indicates a preset name that is blank after trimming.
	ErrEmptyName = errors.New("preset: empty name")
)

// Preset is a named, immutable bundle of attribute values. The zero value is
// an unnamed preset with all attributes zero.
type Preset struct {
	name        string
	description string
	params      Params
}

// New builds a preset after validating its attributes. The name is stored as
// given; callers that persist user presets trim and check it first.
func New(name, description string, params Params) (Preset, error) {
	if err := params.Validate(); err != nil {
		return Preset{}, fmt.Errorf("preset %q: %w", name, err)
	}
	return Preset{name: name, description: description, params: params}, nil
}

// MustNew is New for static tables.
func MustNew(name, description string, params Params) Preset {
	p, err := New(name, description, params)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Preset) Name() string        { return p.name }
func (p Preset) Description() string { return p.description }
func (p Preset) Params() Params      { return p.params }

// WithName returns a copy of p under another name.
func (p Preset) WithName(name string) Preset {
	p.name = name
	return p
}

func (p Preset) WithDescription(description string) Preset {
	p.description = description
	return p
}

// WithParams returns a copy of p carrying params, rejecting invalid values.
func (p Preset) WithParams(params Params) (Preset, error) {
	return New(p.name, p.description, params)
}

// Equal reports whether both presets carry identical name, description and
// attributes. Floats are compared exactly.
func (p Preset) Equal(o Preset) bool {
	return p == o
}

// ValidateUserName trims name and rejects it when blank.
func ValidateUserName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyName
	}
	return trimmed, nil
}

// record is the flat on-disk shape: name, description and every attribute
// at the same level.
type record struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Params      `yaml:",inline"`
}

func (p Preset) MarshalJSON() ([]byte, error) {
	return json.Marshal(record{Name: p.name, Description: p.description, Params: p.params})
}

func (p *Preset) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	np, err := New(r.Name, r.Description, r.Params)
	if err != nil {
		return err
	}
	*p = np
	return nil
}

func (p Preset) MarshalYAML() (interface{}, error) {
	return record{Name: p.name, Description: p.description, Params: p.params}, nil
}

func (p *Preset) UnmarshalYAML(value *yaml.Node) error {
	var r record
	if err := value.Decode(&r); err != nil {
		return err
	}
	np, err := New(r.Name, r.Description, r.Params)
	if err != nil {
		return err
	}
	*p = np
	return nil
}

// AttributeKeys lists every key of the on-disk record in order.
func AttributeKeys() []string {
	keys := make([]string, 0, len(fields)+2)
	keys = append(keys, "name", "description")
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	return keys
}
