package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/Faultbox/depthlab/pkg/formats"
)

// generator fills an h x w depth map.
type generator func(h, w int, rng *rand.Rand) []float64

var generators = map[string]generator{
	"plane":      genPlane,
	"ramp":       genRamp,
	"hemisphere": genHemisphere,
	"noise":      genNoise,
}

func generatorNames() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// synthesize builds a depth map from a named generator, then punches
// holes at the given rate.
func synthesize(shape string, h, w int, holes float64, seed int64) (*formats.DepthMap, error) {
	gen, ok := generators[shape]
	if !ok {
		return nil, fmt.Errorf("unknown shape %q (have %v)", shape, generatorNames())
	}
	if h <= 0 || w <= 0 || h > formats.MaxDepthMapSide || w > formats.MaxDepthMapSide {
		return nil, fmt.Errorf("%w: %dx%d", formats.ErrInvalidDepthMapDimensions, h, w)
	}
	rng := rand.New(rand.NewSource(seed))
	samples := gen(h, w, rng)
	if holes > 0 {
		for k := range samples {
			if rng.Float64() < holes {
				samples[k] = formats.Hole
			}
		}
	}
	return formats.NewDepthMap(h, w, samples)
}

func genPlane(h, w int, _ *rand.Rand) []float64 {
	s := make([]float64, h*w)
	for k := range s {
		s[k] = 100
	}
	return s
}

func genRamp(h, w int, _ *rand.Rand) []float64 {
	s := make([]float64, h*w)
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			s[i*w+j] = 100 + float64(i) + 0.5*float64(j)
		}
	}
	return s
}

// genHemisphere is a dome facing the viewer; samples outside it are holes.
func genHemisphere(h, w int, _ *rand.Rand) []float64 {
	s := make([]float64, h*w)
	ci, cj := float64(h-1)/2, float64(w-1)/2
	r := math.Min(ci, cj)
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			di, dj := float64(i)-ci, float64(j)-cj
			d2 := r*r - di*di - dj*dj
			if d2 <= 0 {
				continue
			}
			s[i*w+j] = 100 + r - math.Sqrt(d2)
		}
	}
	return s
}

func genNoise(h, w int, rng *rand.Rand) []float64 {
	s := make([]float64, h*w)
	for k := range s {
		s[k] = 100 + rng.NormFloat64()
	}
	return s
}
