package lighting

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Scene holds the light and observer positions for one render.
type Scene struct {
	Light    r3.Vec
	Observer r3.Vec
}

// Engine evaluates one reflectance model with a fixed material.
type Engine struct {
	model  Model
	fn     ReflectanceFunc
	params Params
}

// NewEngine returns an engine for the given model and material.
func NewEngine(model Model, mat Material) (*Engine, error) {
	fn := model.Func()
	if fn == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModel, int(model))
	}
	return &Engine{
		model:  model,
		fn:     fn,
		params: NewParams(mat),
	}, nil
}

// Model returns the selected model.
func (e *Engine) Model() Model { return e.model }

// Params returns the material and its derived coefficients.
func (e *Engine) Params() Params { return e.params }

// Intensity returns the unclamped intensity at point with normal n.
func (e *Engine) Intensity(n, point r3.Vec, sc Scene) float64 {
	return e.fn(NewSample(n, point, sc.Light, sc.Observer), e.params)
}
