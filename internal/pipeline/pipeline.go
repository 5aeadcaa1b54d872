// Package pipeline runs one batch pass: load a depth map, render it and
// export its mesh.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/depthlab/internal/config"
	"github.com/Faultbox/depthlab/internal/engine/lighting"
	"github.com/Faultbox/depthlab/internal/engine/raster"
	"github.com/Faultbox/depthlab/internal/logger"
	"github.com/Faultbox/depthlab/pkg/formats"
	"github.com/Faultbox/depthlab/pkg/meshio"
)

// Result describes what a run produced.
type Result struct {
	DepthMap   *formats.DepthMap
	Model      lighting.Model
	Raster     raster.Stats
	ImagePath  string   // empty when image output is disabled
	ModelPaths []string // one per exported format, in request order
	Elapsed    time.Duration
}

// Run executes the pipeline described by cfg. The image and the models are
// independent outputs: a failed export does not discard the rendered image,
// and the returned error lists every failed output.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model, _ := cfg.Model()
	modelFormats, _ := cfg.ModelFormats()
	imageFormat, _ := cfg.ImageFormat()

	log := logger.Named("pipeline")

	dm, err := formats.ParseDepthMapFile(cfg.Input.DepthMap)
	if err != nil {
		return nil, fmt.Errorf("load depth map: %w", err)
	}
	st := dm.Stats()
	log.Info("depth map loaded",
		zap.String("path", cfg.Input.DepthMap),
		zap.Int("height", dm.Height()),
		zap.Int("width", dm.Width()),
		zap.Int("holes", st.Holes))

	res := &Result{DepthMap: dm, Model: model}

	var errs error
	if imageFormat != "" {
		path := filepath.Join(cfg.Output.Dir, cfg.Output.ImageName+"."+imageFormat.Ext())
		stats, err := RenderImage(ctx, dm, cfg, path, imageFormat)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			errs = multierr.Append(errs, err)
		} else {
			res.ImagePath = path
			res.Raster = stats
			log.Info("image written",
				zap.String("path", path),
				zap.Stringer("model", model),
				zap.Int("shaded", stats.Shaded),
				zap.Int("blank", stats.Blank),
				zap.Int("border", stats.Border))
		}
	}

	paths, err := ExportAll(ctx, dm, cfg.Output.Dir, cfg.Output.ModelName, modelFormats)
	res.ModelPaths = paths
	errs = multierr.Append(errs, err)

	res.Elapsed = time.Since(start)
	if errs != nil {
		return res, errs
	}
	log.Info("run complete", zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// RenderImage shades dm with the model and scene of cfg and saves it to path.
func RenderImage(ctx context.Context, dm *formats.DepthMap, cfg *config.Config, path string, format raster.ImageFormat) (raster.Stats, error) {
	model, err := cfg.Model()
	if err != nil {
		return raster.Stats{}, err
	}
	eng, err := lighting.NewEngine(model, cfg.LightingMaterial())
	if err != nil {
		return raster.Stats{}, err
	}

	img, stats, err := raster.Render(ctx, dm, eng, cfg.LightingScene())
	if err != nil {
		return raster.Stats{}, err
	}
	if err := raster.Save(path, img, format, cfg.Output.ImageScale); err != nil {
		return raster.Stats{}, fmt.Errorf("save image %s: %w", path, err)
	}
	return stats, nil
}

// ExportAll writes dm to dir/name.<ext> for every format. Exporters run
// independently; the paths of the successful ones are returned along with
// the combined errors of the rest.
func ExportAll(ctx context.Context, dm *formats.DepthMap, dir, name string, fs []meshio.Format) ([]string, error) {
	log := logger.Named("export")

	var paths []string
	var errs error
	for _, f := range fs {
		if err := ctx.Err(); err != nil {
			return paths, multierr.Append(errs, err)
		}
		path := filepath.Join(dir, name+"."+f.Ext())
		if err := meshio.ExportFile(path, f, dm, meshio.Options{}); err != nil {
			log.Warn("export failed", zap.Stringer("format", f), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		log.Debug("model written", zap.Stringer("format", f), zap.String("path", path))
		paths = append(paths, path)
	}
	return paths, errs
}
