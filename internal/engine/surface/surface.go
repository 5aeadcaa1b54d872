// Package surface estimates tangent-plane normals over depth map quads.
package surface

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/depthlab/pkg/formats"
)

// degenerateNorm is the cross product magnitude below which a normal is undefined.
const degenerateNorm = 1e-12

// Point returns the surface point of sample (i, j).
func Point(dm *formats.DepthMap, i, j int) r3.Vec {
	return r3.Vec{X: float64(i), Y: float64(j), Z: dm.At(i, j)}
}

// Normal returns the unit normal of the quad anchored at (i, j).
// Only the corners (i,j), (i+1,j) and (i,j+1) are used; the quad is
// rejected if any of them is a hole or the tangents are parallel.
func Normal(dm *formats.DepthMap, i, j int) (r3.Vec, bool) {
	if i < 0 || j < 0 || i+1 >= dm.Height() || j+1 >= dm.Width() {
		return r3.Vec{}, false
	}
	if dm.IsHole(i, j) || dm.IsHole(i+1, j) || dm.IsHole(i, j+1) {
		return r3.Vec{}, false
	}

	d := dm.At(i, j)
	v1 := r3.Vec{X: 0, Y: 1, Z: dm.At(i, j+1) - d}
	v2 := r3.Vec{X: 1, Y: 0, Z: dm.At(i+1, j) - d}
	return Unit(r3.Cross(v1, v2))
}

// Unit normalizes v. It reports false when v is too short to have a direction.
func Unit(v r3.Vec) (r3.Vec, bool) {
	n := r3.Norm(v)
	if n < degenerateNorm || math.IsNaN(n) || math.IsInf(n, 0) {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, v), true
}

// NormalField holds the normal of every quad of a depth map.
type NormalField struct {
	Height int
	Width  int

	normals []r3.Vec
	valid   []bool
}

// At returns the normal at (i, j) and whether it is defined.
func (f *NormalField) At(i, j int) (r3.Vec, bool) {
	if i < 0 || j < 0 || i >= f.Height || j >= f.Width {
		return r3.Vec{}, false
	}
	k := i*f.Width + j
	return f.normals[k], f.valid[k]
}

// Valid returns the number of defined normals.
func (f *NormalField) Valid() int {
	n := 0
	for _, ok := range f.valid {
		if ok {
			n++
		}
	}
	return n
}

// Field computes the normals of all quads, fanning rows out over workers.
func Field(ctx context.Context, dm *formats.DepthMap) (*NormalField, error) {
	f := &NormalField{
		Height:  dm.Height(),
		Width:   dm.Width(),
		normals: make([]r3.Vec, dm.Height()*dm.Width()),
		valid:   make([]bool, dm.Height()*dm.Width()),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < dm.Height()-1; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for j := 0; j < dm.Width()-1; j++ {
				k := i*dm.Width() + j
				f.normals[k], f.valid[k] = Normal(dm, i, j)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return f, nil
}
