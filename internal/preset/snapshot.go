package preset

// Snapshot is the state of a control surface at one moment: the name and
// description fields plus every attribute. Hosts build one per comparison or
// save and drop it afterwards.
type Snapshot struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Params      `yaml:",inline"`
}

// SnapshotOf captures the values a control surface would show for p.
func SnapshotOf(p Preset) Snapshot {
	return Snapshot{Name: p.name, Description: p.description, Params: p.params}
}

// IsZero reports whether nothing was captured.
func (s Snapshot) IsZero() bool {
	return s == Snapshot{}
}

// ToPreset builds a preset from the captured values, as is, under the
// captured name.
func (s Snapshot) ToPreset() (Preset, error) {
	return New(s.Name, s.Description, s.Params)
}

// Set returns a copy of s with one attribute changed.
func (s Snapshot) Set(key string, v float64) (Snapshot, error) {
	p, err := s.Params.Set(key, v)
	if err != nil {
		return s, err
	}
	s.Params = p
	return s, nil
}
