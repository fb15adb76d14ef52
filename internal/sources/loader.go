package sources

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoSources indicates no sources were found in the configuration.
	ErrNoSources = errors.New("no sources found in configuration")
	// ErrInvalidSourceFormat indicates the sources file shape is invalid.
	ErrInvalidSourceFormat = errors.New("invalid source format")
)

// sourcesFile is the top-level shape of a sources.yml file.
type sourcesFile struct {
	Sources []map[string]any `yaml:"sources"`
}

// LoadFile reads source descriptors from a YAML file. Each entry is decoded
// through mapstructure so unknown keys are tolerated.
func LoadFile(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSourceFormat, err)
	}
	if len(file.Sources) == 0 {
		return nil, ErrNoSources
	}

	result := make([]Source, 0, len(file.Sources))
	for i, raw := range file.Sources {
		var src Source
		if err := mapstructure.Decode(raw, &src); err != nil {
			return nil, fmt.Errorf("%w: source %d: %w", ErrInvalidSourceFormat, i, err)
		}
		if err := src.Validate(); err != nil {
			return nil, fmt.Errorf("source %d (%s): %w", i, src.ID, err)
		}
		result = append(result, src)
	}

	return result, nil
}
