package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagDepthMap = flag.String("depthmap", "", "Depth map file")
	flagMode     = flag.String("mode", "", "Lighting mode: 0-3 or lambert, phong-blinn, oren-nayar, cook-torrance")
	flagFormat   = flag.String("format", "", "Model format: stl, ply, amf, wrl or all")
	flagImage    = flag.String("image", "", "Image format: png, bmp, tiff, jpeg or gif")
	flagOut      = flag.String("out", "", "Output directory")
	flagScale    = flag.Float64("scale", 0, "Image scale factor")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagDepthMap != "" {
		cfg.Input.DepthMap = *flagDepthMap
	}
	if *flagMode != "" {
		cfg.Scene.LightingMode = *flagMode
	}
	if *flagFormat != "" {
		cfg.Output.ModelFormat = *flagFormat
	}
	if *flagImage != "" {
		cfg.Output.ImageFormat = *flagImage
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagScale > 0 {
		cfg.Output.ImageScale = *flagScale
	}
}
