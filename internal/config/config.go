// Package config handles pipeline configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/depthlab/internal/engine/lighting"
	"github.com/Faultbox/depthlab/internal/engine/raster"
	"github.com/Faultbox/depthlab/pkg/meshio"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// AllFormats selects every model format for output.
const AllFormats = "all"

// Config holds all settings for one pipeline run.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Scene    SceneConfig    `yaml:"scene"`
	Material MaterialConfig `yaml:"material"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InputConfig holds input file paths.
type InputConfig struct {
	DepthMap string `yaml:"depth_map"`
}

// Vec3 is a position in depth map space: x is the row, y the column, z depth.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// R3 converts v to a gonum vector.
func (v Vec3) R3() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// SceneConfig holds the light, the observer and the reflectance model.
type SceneConfig struct {
	Light    Vec3 `yaml:"light"`
	Observer Vec3 `yaml:"observer"`
	// LightingMode is a model number (0-3) or name, e.g. "oren-nayar".
	LightingMode string `yaml:"lighting_mode"`
}

// MaterialConfig holds surface coefficients.
type MaterialConfig struct {
	Kd        float64 `yaml:"kd"`
	Id        float64 `yaml:"id"`
	Alpha     float64 `yaml:"alpha"`
	Roughness float64 `yaml:"roughness"`
	Sigma     float64 `yaml:"sigma"`
}

// OutputConfig holds output names and formats.
type OutputConfig struct {
	Dir         string  `yaml:"dir"`
	ModelName   string  `yaml:"model_name"`
	ModelFormat string  `yaml:"model_format"` // stl, ply, amf, wrl or all
	ImageName   string  `yaml:"image_name"`
	ImageFormat string  `yaml:"image_format"`
	ImageScale  float64 `yaml:"image_scale"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	mat := lighting.DefaultMaterial()
	return &Config{
		Input: InputConfig{
			DepthMap: "depthmap.dat",
		},
		Scene: SceneConfig{
			Light:        Vec3{X: 500, Y: 300, Z: -1},
			Observer:     Vec3{},
			LightingMode: "lambert",
		},
		Material: MaterialConfig{
			Kd:        mat.Kd,
			Id:        mat.Id,
			Alpha:     mat.Alpha,
			Roughness: mat.Roughness,
			Sigma:     mat.Sigma,
		},
		Output: OutputConfig{
			Dir:         "out",
			ModelName:   "model",
			ModelFormat: "stl",
			ImageName:   "render",
			ImageFormat: "png",
			ImageScale:  1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Model returns the selected reflectance model.
func (c *Config) Model() (lighting.Model, error) {
	return lighting.ParseModel(c.Scene.LightingMode)
}

// LightingMaterial returns the material as the lighting package expects it.
func (c *Config) LightingMaterial() lighting.Material {
	return lighting.Material{
		Kd:        c.Material.Kd,
		Id:        c.Material.Id,
		Alpha:     c.Material.Alpha,
		Roughness: c.Material.Roughness,
		Sigma:     c.Material.Sigma,
	}
}

// LightingScene returns the light and observer positions.
func (c *Config) LightingScene() lighting.Scene {
	return lighting.Scene{
		Light:    c.Scene.Light.R3(),
		Observer: c.Scene.Observer.R3(),
	}
}

// ModelFormats returns the model formats to export. An empty format
// disables model output.
func (c *Config) ModelFormats() ([]meshio.Format, error) {
	s := strings.TrimSpace(c.Output.ModelFormat)
	switch strings.ToLower(s) {
	case "", "none":
		return nil, nil
	case AllFormats:
		return append([]meshio.Format(nil), meshio.Formats...), nil
	}
	var out []meshio.Format
	for _, name := range strings.Split(s, ",") {
		f, err := meshio.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// ImageFormat returns the image output format, or "" when image output is
// disabled by an empty image name.
func (c *Config) ImageFormat() (raster.ImageFormat, error) {
	if c.Output.ImageName == "" {
		return "", nil
	}
	return raster.ParseImageFormat(c.Output.ImageFormat)
}

// Validate checks that the config describes a runnable pipeline.
func (c *Config) Validate() error {
	if c.Input.DepthMap == "" {
		return fmt.Errorf("%w: input.depth_map is empty", ErrInvalid)
	}
	if _, err := c.Model(); err != nil {
		return fmt.Errorf("%w: scene.lighting_mode: %v", ErrInvalid, err)
	}
	if _, err := c.ModelFormats(); err != nil {
		return fmt.Errorf("%w: output.model_format: %v", ErrInvalid, err)
	}
	if _, err := c.ImageFormat(); err != nil {
		return fmt.Errorf("%w: output.image_format: %v", ErrInvalid, err)
	}
	if c.Output.ImageScale < 0 {
		return fmt.Errorf("%w: output.image_scale must not be negative", ErrInvalid)
	}
	if c.Material.Alpha < 0 {
		return fmt.Errorf("%w: material.alpha must not be negative", ErrInvalid)
	}
	return nil
}
