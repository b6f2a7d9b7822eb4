package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Spec defines a single worker's configuration (from agents.yaml).
type Spec struct {
	ID          string            `yaml:"id" json:"id"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Enabled     *bool             `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Settings    map[string]string `yaml:"settings,omitempty" json:"settings,omitempty"`
}

// IsEnabled reports whether the spec enables its worker. Specs default
// to enabled.
func (s Spec) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// specsFile is the top-level structure of agents.yaml.
type specsFile struct {
	Agents []Spec `yaml:"agents"`
}

// LoadSpecs reads and parses an agents.yaml file. A missing file means
// all default workers run, so it returns nil, nil.
func LoadSpecs(path string) ([]Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read agents.yaml: %w", err)
	}

	var f specsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse agents.yaml: %w", err)
	}
	return f.Agents, nil
}
