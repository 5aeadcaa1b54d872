package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// appName names the per-user config directory.
const appName = "depthlab"

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// An explicit -config must exist; the search path is best effort.
	path := ConfigPath()
	if path == "" {
		path = findConfigFile(searchPaths())
	}
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// searchPaths lists config locations, most specific first.
func searchPaths() []string {
	paths := []string{"config.yaml", "config.json"}
	if dir := ConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, "config.yaml"))
	}
	return paths
}

// findConfigFile returns the first regular file among paths.
func findConfigFile(paths []string) string {
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

// ConfigDir returns the per-user config directory, or "" when the OS
// reports none (e.g. HOME unset).
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, appName)
}

// LoadFile merges a YAML or JSON file into cfg. Keys missing from the file
// keep their current values; unknown keys are an error.
//
// Files in the flat legacy layout (depthMapPath, lightingMode,
// lightPositionX, ...) are recognized and mapped onto cfg.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	legacy, err := isLegacy(data)
	if err != nil {
		return err
	}
	if legacy {
		lc := newLegacyConfig(cfg)
		if err := decodeStrict(data, lc); err != nil {
			return err
		}
		lc.apply(cfg)
		return nil
	}
	return decodeStrict(data, cfg)
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// isLegacy reports whether the top-level mapping uses any legacy key.
func isLegacy(data []byte) (bool, error) {
	var top map[string]yaml.Node
	if err := yaml.Unmarshal(data, &top); err != nil {
		return false, err
	}
	for key := range top {
		if legacyKeys[key] {
			return true, nil
		}
	}
	return false, nil
}
