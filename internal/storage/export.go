package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/pam/internal/preset"
	"gopkg.in/yaml.v3"
)

// Format selects the encoding of an export file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension, defaulting to JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Export writes presets to path in the format implied by its extension.
func Export(path string, presets map[string]preset.Preset) error {
	var (
		data []byte
		err  error
	)
	switch FormatFor(path) {
	case FormatYAML:
		data, err = yaml.Marshal(presets)
	default:
		data, err = json.MarshalIndent(presets, "", "    ")
		data = append(data, '\n')
	}
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// Import reads an export file. Entries are checked the same way stored
// entries are; malformed ones are reported and skipped.
func Import(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, &ReadError{Path: path, Err: err}
	}

	if FormatFor(path) == FormatJSON {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return Report{}, &ReadError{Path: path, Err: err}
		}
		r := Report{Presets: make(map[string]preset.Preset, len(raw))}
		for _, name := range sortedKeys(raw) {
			p, err := decodeEntry(raw[name])
			if err != nil {
				r.Skipped = append(r.Skipped, &EntryError{Name: name, Err: err})
				continue
			}
			r.Presets[name] = p
		}
		return r, nil
	}

	var nodes map[string]yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return Report{}, &ReadError{Path: path, Err: err}
	}
	r := Report{Presets: make(map[string]preset.Preset, len(nodes))}
	for _, name := range sortedKeys(nodes) {
		node := nodes[name]
		p, err := decodeYAMLEntry(&node)
		if err != nil {
			r.Skipped = append(r.Skipped, &EntryError{Name: name, Err: err})
			continue
		}
		r.Presets[name] = p
	}
	return r, nil
}

func decodeYAMLEntry(node *yaml.Node) (preset.Preset, error) {
	if node.Kind != yaml.MappingNode {
		return preset.Preset{}, fmt.Errorf("%w: not a mapping", ErrMalformedEntry)
	}
	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	if err := checkKeys(keys); err != nil {
		return preset.Preset{}, err
	}

	var p preset.Preset
	if err := node.Decode(&p); err != nil {
		return preset.Preset{}, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}
	return p, nil
}
