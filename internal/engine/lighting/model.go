// Package lighting evaluates reflectance models over depth map surfaces.
package lighting

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownModel is returned for a selector outside the known models.
var ErrUnknownModel = errors.New("unknown lighting model")

// Model selects a reflectance model.
type Model int

// Model constants. The numeric values match the lighting_mode config field.
const (
	Lambert      Model = 0
	PhongBlinn   Model = 1
	OrenNayar    Model = 2
	CookTorrance Model = 3
)

// Models lists every known model in selector order.
var Models = []Model{Lambert, PhongBlinn, OrenNayar, CookTorrance}

// String returns the model name.
func (m Model) String() string {
	switch m {
	case Lambert:
		return "lambert"
	case PhongBlinn:
		return "phong-blinn"
	case OrenNayar:
		return "oren-nayar"
	case CookTorrance:
		return "cook-torrance"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Valid reports whether m is a known model.
func (m Model) Valid() bool {
	return m >= Lambert && m <= CookTorrance
}

// ParseModel accepts a model name or its numeric selector.
func ParseModel(s string) (Model, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if m := Model(n); m.Valid() {
			return m, nil
		}
		return 0, fmt.Errorf("%w: %d", ErrUnknownModel, n)
	}
	switch strings.NewReplacer("_", "", "-", "", " ", "").Replace(s) {
	case "lambert":
		return Lambert, nil
	case "phongblinn", "blinnphong", "phong":
		return PhongBlinn, nil
	case "orennayar":
		return OrenNayar, nil
	case "cooktorrance":
		return CookTorrance, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModel, s)
}
