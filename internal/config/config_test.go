package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/depthlab/internal/engine/lighting"
	"github.com/Faultbox/depthlab/internal/engine/raster"
	"github.com/Faultbox/depthlab/pkg/meshio"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Input.DepthMap != "depthmap.dat" {
		t.Errorf("expected depth map depthmap.dat, got %s", cfg.Input.DepthMap)
	}

	// Test scene defaults
	if cfg.Scene.Light != (Vec3{X: 500, Y: 300, Z: -1}) {
		t.Errorf("unexpected light position %+v", cfg.Scene.Light)
	}
	if cfg.Scene.Observer != (Vec3{}) {
		t.Errorf("expected observer at origin, got %+v", cfg.Scene.Observer)
	}
	m, err := cfg.Model()
	if err != nil || m != lighting.Lambert {
		t.Errorf("expected lambert, got %v (%v)", m, err)
	}

	// Test material defaults
	if cfg.LightingMaterial() != lighting.DefaultMaterial() {
		t.Errorf("expected default material, got %+v", cfg.Material)
	}

	// Test output defaults
	if cfg.Output.ModelFormat != "stl" {
		t.Errorf("expected model format stl, got %s", cfg.Output.ModelFormat)
	}
	if cfg.Output.ImageFormat != "png" {
		t.Errorf("expected image format png, got %s", cfg.Output.ImageFormat)
	}
	if cfg.Output.ImageScale != 1 {
		t.Errorf("expected image scale 1, got %f", cfg.Output.ImageScale)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
input:
  depth_map: "scans/head.dat"

scene:
  light: {x: 10, y: 20, z: -30}
  observer: {x: 1, y: 2, z: -3}
  lighting_mode: 2

material:
  kd: 0.8
  alpha: 50

output:
  dir: "results"
  model_format: "ply"
  image_format: "tiff"
  image_scale: 2

logging:
  level: "debug"
  log_file: "depthlab.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := LoadFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Input.DepthMap != "scans/head.dat" {
		t.Errorf("expected depth map scans/head.dat, got %s", cfg.Input.DepthMap)
	}
	if cfg.Scene.Light != (Vec3{X: 10, Y: 20, Z: -30}) {
		t.Errorf("unexpected light %+v", cfg.Scene.Light)
	}
	if cfg.LightingScene().Observer.Z != -3 {
		t.Errorf("unexpected observer %+v", cfg.Scene.Observer)
	}
	m, err := cfg.Model()
	if err != nil || m != lighting.OrenNayar {
		t.Errorf("expected oren-nayar, got %v (%v)", m, err)
	}

	// Unset keys keep defaults
	if cfg.Material.Kd != 0.8 || cfg.Material.Alpha != 50 {
		t.Errorf("unexpected material %+v", cfg.Material)
	}
	if cfg.Material.Sigma != lighting.DefaultMaterial().Sigma {
		t.Errorf("expected default sigma, got %f", cfg.Material.Sigma)
	}
	if cfg.Output.ModelName != "model" {
		t.Errorf("expected default model name, got %s", cfg.Output.ModelName)
	}

	formats, err := cfg.ModelFormats()
	if err != nil || len(formats) != 1 || formats[0] != meshio.PLY {
		t.Errorf("expected [ply], got %v (%v)", formats, err)
	}
	img, err := cfg.ImageFormat()
	if err != nil || img != raster.TIFF {
		t.Errorf("expected tiff, got %v (%v)", img, err)
	}
	if cfg.Logging.LogFile != "depthlab.log" {
		t.Errorf("expected log file 'depthlab.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFileJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	jsonContent := `{
  "input": {"depth_map": "depthmap.dat"},
  "scene": {"light": {"x": 1, "y": 2, "z": 3}, "lighting_mode": "cook-torrance"},
  "output": {"model_format": "all"}
}`
	if err := os.WriteFile(configPath, []byte(jsonContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := LoadFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Scene.Light != (Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("unexpected light %+v", cfg.Scene.Light)
	}
	m, _ := cfg.Model()
	if m != lighting.CookTorrance {
		t.Errorf("expected cook-torrance, got %v", m)
	}
	formats, err := cfg.ModelFormats()
	if err != nil || len(formats) != len(meshio.Formats) {
		t.Errorf("expected every format, got %v (%v)", formats, err)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
scene:
  light: not a vector
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := LoadFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	err := LoadFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty depth map", func(c *Config) { c.Input.DepthMap = "" }},
		{"unknown mode", func(c *Config) { c.Scene.LightingMode = "toon" }},
		{"mode out of range", func(c *Config) { c.Scene.LightingMode = "4" }},
		{"unknown model format", func(c *Config) { c.Output.ModelFormat = "obj" }},
		{"bad format in list", func(c *Config) { c.Output.ModelFormat = "stl,obj" }},
		{"unknown image format", func(c *Config) { c.Output.ImageFormat = "webp" }},
		{"negative scale", func(c *Config) { c.Output.ImageScale = -1 }},
		{"negative alpha", func(c *Config) { c.Material.Alpha = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestModelFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []meshio.Format
	}{
		{"", nil},
		{"none", nil},
		{"wrl", []meshio.Format{meshio.WRL}},
		{"stl, amf", []meshio.Format{meshio.STL, meshio.AMF}},
		{"ALL", meshio.Formats},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.Output.ModelFormat = tt.in
		got, err := cfg.ModelFormats()
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.in, tt.want, got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%q: expected %v, got %v", tt.in, tt.want, got)
			}
		}
	}
}

func TestImageDisabled(t *testing.T) {
	cfg := Default()
	cfg.Output.ImageName = ""
	cfg.Output.ImageFormat = "anything"

	f, err := cfg.ImageFormat()
	if err != nil || f != "" {
		t.Errorf("expected disabled image output, got %q (%v)", f, err)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "xdg"))
	t.Setenv("HOME", t.TempDir())

	dir := ConfigDir()
	if dir == "" {
		t.Fatal("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
	if filepath.Base(dir) != appName {
		t.Errorf("expected %s directory, got %s", appName, dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	jsonPath := filepath.Join(dir, "config.json")
	paths := []string{yamlPath, jsonPath}

	if got := findConfigFile(paths); got != "" {
		t.Errorf("expected empty path when no config exists, got %s", got)
	}

	if err := os.WriteFile(jsonPath, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if got := findConfigFile(paths); got != jsonPath {
		t.Errorf("expected %s, got %q", jsonPath, got)
	}

	// a directory named like a config file is skipped
	if err := os.Mkdir(yamlPath, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if got := findConfigFile(paths); got != jsonPath {
		t.Errorf("expected directory to be skipped, got %q", got)
	}
}

func TestSearchPathsOrder(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "xdg"))
	t.Setenv("HOME", t.TempDir())

	paths := searchPaths()
	if len(paths) != 3 || paths[0] != "config.yaml" || paths[1] != "config.json" {
		t.Fatalf("unexpected search order %v", paths)
	}
	if paths[2] != filepath.Join(ConfigDir(), "config.yaml") {
		t.Errorf("expected user config last, got %s", paths[2])
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "depthmap flag",
			setup: func() { *flagDepthMap = "other.dat" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Input.DepthMap != "other.dat" {
					t.Errorf("expected other.dat, got %s", cfg.Input.DepthMap)
				}
			},
			teardown: func() { *flagDepthMap = "" },
		},
		{
			name:  "mode flag",
			setup: func() { *flagMode = "3" },
			verify: func(t *testing.T, cfg *Config) {
				if m, _ := cfg.Model(); m != lighting.CookTorrance {
					t.Errorf("expected cook-torrance, got %v", m)
				}
			},
			teardown: func() { *flagMode = "" },
		},
		{
			name: "output flags",
			setup: func() {
				*flagFormat = "all"
				*flagImage = "bmp"
				*flagOut = "elsewhere"
				*flagScale = 0.5
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Output.ModelFormat != "all" {
					t.Errorf("expected model format all, got %s", cfg.Output.ModelFormat)
				}
				if cfg.Output.ImageFormat != "bmp" {
					t.Errorf("expected image format bmp, got %s", cfg.Output.ImageFormat)
				}
				if cfg.Output.Dir != "elsewhere" {
					t.Errorf("expected dir elsewhere, got %s", cfg.Output.Dir)
				}
				if cfg.Output.ImageScale != 0.5 {
					t.Errorf("expected scale 0.5, got %f", cfg.Output.ImageScale)
				}
			},
			teardown: func() {
				*flagFormat = ""
				*flagImage = ""
				*flagOut = ""
				*flagScale = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
scene:
  lighting_mode: phong-blinn
output:
  dir: from-file
  model_format: amf
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagOut = "from-flag"
	defer func() {
		*flagConfig = ""
		*flagOut = ""
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Dir should be from flag, not file
	if cfg.Output.Dir != "from-flag" {
		t.Errorf("expected dir from flag, got %s", cfg.Output.Dir)
	}

	// Format and mode should be from file since no flag override
	if cfg.Output.ModelFormat != "amf" {
		t.Errorf("expected model format amf from file, got %s", cfg.Output.ModelFormat)
	}
	if m, _ := cfg.Model(); m != lighting.PhongBlinn {
		t.Errorf("expected phong-blinn from file, got %v", m)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("scene:\n  lighting_mode: toon\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestLoadFileUnknownKeys(t *testing.T) {
	tests := map[string]string{
		"typo in section": "scene:\n  lightning_mode: 2\n",
		"unknown section": "render:\n  width: 10\n",
		"json typo":       `{"output": {"model_fromat": "ply"}}`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			if err := LoadFile(Default(), path); err == nil {
				t.Error("expected error for unknown key, got nil")
			}
		})
	}
}

func TestLoadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if *cfg != *Default() {
		t.Error("empty file should leave defaults untouched")
	}
}

func TestLoadFileLegacyJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "lightPositionX": 500, "lightPositionY": 300, "lightPositionZ": -20,
  "observerPositionX": 1, "observerPositionY": 2, "observerPositionZ": 3,
  "depthMapPath": "scan.dat",
  "outputModelName": "head", "outputModelFormat": "ply",
  "outputImageName": "head", "outputImageFormat": "bmp",
  "lightingMode": 3
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatalf("failed to load legacy config: %v", err)
	}

	if cfg.Input.DepthMap != "scan.dat" {
		t.Errorf("expected depth map scan.dat, got %s", cfg.Input.DepthMap)
	}
	if m, _ := cfg.Model(); m != lighting.CookTorrance {
		t.Errorf("expected cook-torrance, got %v", m)
	}
	if cfg.Scene.Light != (Vec3{X: 500, Y: 300, Z: -20}) {
		t.Errorf("unexpected light %+v", cfg.Scene.Light)
	}
	if cfg.Scene.Observer != (Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("unexpected observer %+v", cfg.Scene.Observer)
	}
	if cfg.Output.ModelName != "head" || cfg.Output.ModelFormat != "ply" {
		t.Errorf("unexpected model output %+v", cfg.Output)
	}
	if f, _ := cfg.ImageFormat(); f != raster.BMP {
		t.Errorf("expected bmp, got %v", f)
	}

	// settings the legacy layout lacks keep their defaults
	if cfg.Output.Dir != Default().Output.Dir || cfg.Material != Default().Material {
		t.Error("legacy load should not touch output dir or material")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("legacy config should validate: %v", err)
	}
}

func TestLoadFileLegacyPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"lightingMode": "oren-nayar"}`), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatalf("failed to load legacy config: %v", err)
	}
	if m, _ := cfg.Model(); m != lighting.OrenNayar {
		t.Errorf("expected oren-nayar, got %v", m)
	}
	if cfg.Scene.Light != Default().Scene.Light || cfg.Input.DepthMap != Default().Input.DepthMap {
		t.Error("absent legacy keys should keep current values")
	}
}

func TestLoadFileLegacyMixedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"depthMapPath": "scan.dat", "output": {"dir": "x"}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := LoadFile(Default(), path); err == nil {
		t.Error("expected error mixing legacy and nested keys")
	}
}

func TestSave(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "xdg"))
	t.Setenv("HOME", t.TempDir())

	path, err := Default().Save()
	if err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	if path != filepath.Join(ConfigDir(), "config.yaml") {
		t.Errorf("unexpected save path %s", path)
	}

	loaded := Default()
	loaded.Output.Dir = "changed"
	if err := LoadFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if *loaded != *Default() {
		t.Error("saved defaults should reload as defaults")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Scene.LightingMode = "oren-nayar"
	cfg.Scene.Light = Vec3{X: 1.5, Y: -2, Z: 8}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := LoadFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}
