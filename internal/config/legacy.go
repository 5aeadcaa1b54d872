package config

// legacyConfig is the flat config.json layout of earlier releases. It has
// no material, output dir or logging settings; those keep their values.
type legacyConfig struct {
	LightPositionX float64 `yaml:"lightPositionX"`
	LightPositionY float64 `yaml:"lightPositionY"`
	LightPositionZ float64 `yaml:"lightPositionZ"`

	ObserverPositionX float64 `yaml:"observerPositionX"`
	ObserverPositionY float64 `yaml:"observerPositionY"`
	ObserverPositionZ float64 `yaml:"observerPositionZ"`

	DepthMapPath string `yaml:"depthMapPath"`

	OutputModelName   string `yaml:"outputModelName"`
	OutputModelFormat string `yaml:"outputModelFormat"`
	OutputImageName   string `yaml:"outputImageName"`
	OutputImageFormat string `yaml:"outputImageFormat"`

	LightingMode string `yaml:"lightingMode"`
}

var legacyKeys = map[string]bool{
	"lightPositionX":    true,
	"lightPositionY":    true,
	"lightPositionZ":    true,
	"observerPositionX": true,
	"observerPositionY": true,
	"observerPositionZ": true,
	"depthMapPath":      true,
	"outputModelName":   true,
	"outputModelFormat": true,
	"outputImageName":   true,
	"outputImageFormat": true,
	"lightingMode":      true,
}

// newLegacyConfig seeds a legacy view with cfg's values so absent keys
// leave cfg unchanged.
func newLegacyConfig(cfg *Config) *legacyConfig {
	return &legacyConfig{
		LightPositionX:    cfg.Scene.Light.X,
		LightPositionY:    cfg.Scene.Light.Y,
		LightPositionZ:    cfg.Scene.Light.Z,
		ObserverPositionX: cfg.Scene.Observer.X,
		ObserverPositionY: cfg.Scene.Observer.Y,
		ObserverPositionZ: cfg.Scene.Observer.Z,
		DepthMapPath:      cfg.Input.DepthMap,
		OutputModelName:   cfg.Output.ModelName,
		OutputModelFormat: cfg.Output.ModelFormat,
		OutputImageName:   cfg.Output.ImageName,
		OutputImageFormat: cfg.Output.ImageFormat,
		LightingMode:      cfg.Scene.LightingMode,
	}
}

func (lc *legacyConfig) apply(cfg *Config) {
	cfg.Scene.Light = Vec3{X: lc.LightPositionX, Y: lc.LightPositionY, Z: lc.LightPositionZ}
	cfg.Scene.Observer = Vec3{X: lc.ObserverPositionX, Y: lc.ObserverPositionY, Z: lc.ObserverPositionZ}
	cfg.Scene.LightingMode = lc.LightingMode
	cfg.Input.DepthMap = lc.DepthMapPath
	cfg.Output.ModelName = lc.OutputModelName
	cfg.Output.ModelFormat = lc.OutputModelFormat
	cfg.Output.ImageName = lc.OutputImageName
	cfg.Output.ImageFormat = lc.OutputImageFormat
}
