// Package raster turns reflectance intensities into 8-bit grayscale images.
package raster

import (
	"context"
	"image"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/depthlab/internal/engine/lighting"
	"github.com/Faultbox/depthlab/internal/engine/surface"
	"github.com/Faultbox/depthlab/pkg/formats"
)

// Pixel values of unshaded samples.
const (
	// Blank marks a sample whose quad touches a hole or has no normal.
	Blank uint8 = 255
	// Border marks the last row and column, which have no quad at all.
	Border uint8 = 0
)

// Clamp maps an unclamped intensity to a pixel value.
// (0,1) scales to 255·I, values at or below 0 (and NaN) give 0,
// values at or above 1 give 255.
func Clamp(i float64) uint8 {
	switch {
	case math.IsNaN(i) || i <= 0:
		return 0
	case i >= 1:
		return 255
	default:
		return uint8(math.Round(255 * i))
	}
}

// Stats counts the kinds of pixels written by Render.
type Stats struct {
	Shaded int
	Blank  int
	Border int
}

// Render shades every sample of dm. Pixel (x=j, y=i) holds sample (i, j).
// The last row and column are Border; other samples without a normal
// are Blank.
func Render(ctx context.Context, dm *formats.DepthMap, eng *lighting.Engine, sc lighting.Scene) (*image.Gray, Stats, error) {
	img := image.NewGray(image.Rect(0, 0, dm.Width(), dm.Height()))
	shaded := make([]int, dm.Height())
	blank := make([]int, dm.Height())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < dm.Height(); i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// rows are disjoint slices of Pix
			row := img.Pix[i*img.Stride : i*img.Stride+dm.Width()]
			for j := range row {
				if i == dm.Height()-1 || j == dm.Width()-1 {
					row[j] = Border
					continue
				}
				n, ok := surface.Normal(dm, i, j)
				if !ok {
					row[j] = Blank
					blank[i]++
					continue
				}
				row[j] = Clamp(eng.Intensity(n, surface.Point(dm, i, j), sc))
				shaded[i]++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	var st Stats
	for i := range shaded {
		st.Shaded += shaded[i]
		st.Blank += blank[i]
	}
	st.Border = dm.Height()*dm.Width() - st.Shaded - st.Blank
	return img, st, nil
}
