package script

import (
	"os"

	"gopkg.in/yaml.v3"
)

// WriteScript writes a script to a YAML file
func WriteScript(s *Script, path string) error {
	if s.Version == "" {
		s.Version = Version
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadScript reads a script from a YAML file
func ReadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}

	return &s, nil
}
