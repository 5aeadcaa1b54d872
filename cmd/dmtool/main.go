// dmtool is a CLI utility for inspecting, generating and converting depth maps.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/depthlab/internal/config"
	"github.com/Faultbox/depthlab/internal/engine/raster"
	"github.com/Faultbox/depthlab/internal/engine/surface"
	"github.com/Faultbox/depthlab/internal/logger"
	"github.com/Faultbox/depthlab/internal/pipeline"
	"github.com/Faultbox/depthlab/pkg/formats"
	"github.com/Faultbox/depthlab/pkg/mesh"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	// stage warnings only; stdout carries the command output
	_ = logger.Init("warn", "")
	defer logger.Sync()

	switch command {
	case "info":
		cmdInfo(args)
	case "synth", "gen":
		cmdSynth(args)
	case "export", "x":
		cmdExport(args)
	case "render":
		cmdRender(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`dmtool - depth map utility

Usage:
  dmtool <command> [options]

Commands:
  info <depthmap>                    Show dimensions, depth range and mesh size
  synth [options] <output>           Write a synthetic depth map
  export [options] <depthmap>        Export the mesh (stl, ply, amf, wrl)
  render [options] <depthmap>        Shade the depth map to an image
  config init [-o path] [-force]     Write a default config file
  config check <path>                Load and validate a config file

Examples:
  dmtool synth -shape hemisphere -h 256 -w 256 dome.dat
  dmtool info dome.dat
  dmtool export -format all -o out dome.dat
  dmtool render -mode oren-nayar -light 128,128,-500 -o dome.png dome.dat
  dmtool config init -o config.yaml`)
}

func loadMap(path string) *formats.DepthMap {
	dm, err := formats.ParseDepthMapFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return dm
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: dmtool info <depthmap>")
		os.Exit(1)
	}

	dm := loadMap(args[0])
	st := dm.Stats()

	fmt.Printf("Depth map: %s\n", args[0])
	fmt.Printf("Size:      %d x %d (%d samples)\n", dm.Height(), dm.Width(), st.Samples)
	fmt.Printf("Holes:     %d (%.1f%%)\n", st.Holes, percent(st.Holes, st.Samples))
	fmt.Printf("Negative:  %d\n", st.Negative)
	if st.Samples > st.Holes {
		fmt.Printf("Depth:     %g .. %g\n", st.Min, st.Max)
	}
	fmt.Println()

	m := mesh.Triangulate(dm)
	fmt.Printf("Quads:     %d\n", m.Quads)
	fmt.Printf("Triangles: %d\n", m.FaceCount())
	fmt.Printf("Vertices:  %d\n", m.VertexCount())
	fmt.Printf("WRL quads: %d\n", mesh.CountQuads(dm, mesh.RequirePositive))
	if field, err := surface.Field(context.Background(), dm); err == nil {
		fmt.Printf("Normals:   %d\n", field.Valid())
	}
	if !m.Bounds.Empty() {
		size := m.Bounds.Size()
		fmt.Printf("Bounds:    %.3g x %.3g x %.3g\n", size.X, size.Y, size.Z)
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}

func cmdSynth(args []string) {
	fs := flag.NewFlagSet("synth", flag.ExitOnError)
	shape := fs.String("shape", "hemisphere", "Shape: "+strings.Join(generatorNames(), ", "))
	height := fs.Int("h", 64, "Height (rows)")
	width := fs.Int("w", 64, "Width (columns)")
	holes := fs.Float64("holes", 0, "Fraction of samples to turn into holes")
	seed := fs.Int64("seed", 1, "Random seed")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: dmtool synth [options] <output>")
		os.Exit(1)
	}

	dm, err := synthesize(*shape, *height, *width, *holes, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out := fs.Arg(0)
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}
	if err := formats.WriteDepthMapFile(out, dm); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote: %s (%d x %d %s)\n", out, dm.Height(), dm.Width(), *shape)
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "all", "Model format(s): stl, ply, amf, wrl or all")
	outDir := fs.String("o", ".", "Output directory")
	name := fs.String("name", "", "Output file name without extension (default: input name)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: dmtool export [options] <depthmap>")
		os.Exit(1)
	}

	input := fs.Arg(0)
	cfg := config.Default()
	cfg.Output.ModelFormat = *format
	mfs, err := cfg.ModelFormats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	base := *name
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}

	dm := loadMap(input)
	paths, err := pipeline.ExportAll(context.Background(), dm, *outDir, base, mfs)
	for _, p := range paths {
		fmt.Printf("Exported: %s\n", p)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdRender(args []string) {
	cfg := config.Default()

	fs := flag.NewFlagSet("render", flag.ExitOnError)
	mode := fs.String("mode", cfg.Scene.LightingMode, "Lighting mode: 0-3 or lambert, phong-blinn, oren-nayar, cook-torrance")
	light := fs.String("light", formatVec(cfg.Scene.Light), "Light position x,y,z")
	observer := fs.String("observer", formatVec(cfg.Scene.Observer), "Observer position x,y,z")
	out := fs.String("o", "render.png", "Output image (format from extension)")
	scale := fs.Float64("scale", 1, "Image scale factor")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: dmtool render [options] <depthmap>")
		os.Exit(1)
	}

	var err error
	cfg.Scene.LightingMode = *mode
	cfg.Output.ImageScale = *scale
	if cfg.Scene.Light, err = parseVec(*light); err != nil {
		fmt.Fprintf(os.Stderr, "Error: -light: %v\n", err)
		os.Exit(1)
	}
	if cfg.Scene.Observer, err = parseVec(*observer); err != nil {
		fmt.Fprintf(os.Stderr, "Error: -observer: %v\n", err)
		os.Exit(1)
	}
	format, err := raster.ParseImageFormat(filepath.Ext(*out))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	dm := loadMap(fs.Arg(0))
	stats, err := pipeline.RenderImage(context.Background(), dm, cfg, *out, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rendered: %s (%d shaded, %d blank, %d border)\n", *out, stats.Shaded, stats.Blank, stats.Border)
}

func cmdConfig(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: dmtool config <init|check> [options]")
		os.Exit(1)
	}

	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("config init", flag.ExitOnError)
		out := fs.String("o", "", "Output path (default: user config directory)")
		force := fs.Bool("force", false, "Overwrite an existing file")
		fs.Parse(args[1:])

		path, err := writeDefaultConfig(*out, *force)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote: %s\n", path)
	case "check":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: dmtool config check <path>")
			os.Exit(1)
		}
		if _, err := checkConfig(args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", args[1], err)
			os.Exit(1)
		}
		fmt.Printf("OK: %s\n", args[1])
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		os.Exit(1)
	}
}

// writeDefaultConfig writes the default settings to path, or to the user
// config directory when path is empty, and returns where it wrote.
func writeDefaultConfig(path string, force bool) (string, error) {
	cfg := config.Default()
	if path == "" {
		if dir := config.ConfigDir(); dir != "" {
			path = filepath.Join(dir, "config.yaml")
		}
	}
	if path != "" && !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s exists (use -force to overwrite)", path)
		}
	}
	if path == "" {
		return cfg.Save()
	}
	return path, cfg.SaveTo(path)
}

// checkConfig loads path over the defaults and validates the result.
func checkConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if err := config.LoadFile(cfg, path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
