package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes the config to the per-user config directory and returns the
// path it wrote.
func (c *Config) Save() (string, error) {
	dir := ConfigDir()
	if dir == "" {
		return "", errors.New("no user config directory")
	}
	path := filepath.Join(dir, "config.yaml")
	return path, c.SaveTo(path)
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
