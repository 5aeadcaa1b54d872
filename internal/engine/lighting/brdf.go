package lighting

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon guards every near-zero division in the Cook-Torrance terms.
const Epsilon = 1e-7

// Material holds the surface parameters shared by all models.
type Material struct {
	Kd        float64 // diffuse coefficient
	Id        float64 // incident diffuse intensity
	Alpha     float64 // specular exponent
	Roughness float64 // Cook-Torrance microfacet roughness
	Sigma     float64 // Oren-Nayar roughness
}

// DefaultMaterial returns the material the renderer has always shipped with.
func DefaultMaterial() Material {
	return Material{
		Kd:        0.5,
		Id:        1,
		Alpha:     100,
		Roughness: 0.05,
		Sigma:     2,
	}
}

// OrenNayarCoefficients returns the A and B terms derived from Sigma.
func (m Material) OrenNayarCoefficients() (a, b float64) {
	s2 := m.Sigma * m.Sigma
	a = 1 - 0.5*s2/(s2+0.33)
	b = 0.45 * s2 / (s2 + 0.09)
	return a, b
}

// Params is a material with its derived coefficients.
type Params struct {
	Material
	A, B float64
}

// NewParams precomputes the derived coefficients of m.
func NewParams(m Material) Params {
	a, b := m.OrenNayarCoefficients()
	return Params{Material: m, A: a, B: b}
}

// Sample holds the unit vectors at one surface point.
// N is the normal, L points to the light, V to the observer and H is the half vector.
type Sample struct {
	N, L, V, H r3.Vec
}

// NewSample builds the direction vectors for a surface point.
// Directions with no length (light or observer on the point) become zero vectors.
func NewSample(n, point, light, observer r3.Vec) Sample {
	l := unit(r3.Sub(light, point))
	v := unit(r3.Sub(observer, point))
	return Sample{N: n, L: l, V: v, H: unit(r3.Add(l, v))}
}

func unit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// ReflectanceFunc computes the unclamped intensity of a sample.
type ReflectanceFunc func(s Sample, p Params) float64

var reflectance = map[Model]ReflectanceFunc{
	Lambert:      LambertIntensity,
	PhongBlinn:   PhongBlinnIntensity,
	OrenNayar:    OrenNayarIntensity,
	CookTorrance: CookTorranceIntensity,
}

// Func returns the reflectance function of m, or nil for an unknown model.
func (m Model) Func() ReflectanceFunc {
	return reflectance[m]
}

// LambertIntensity is the purely diffuse term id·kd·(L·N).
func LambertIntensity(s Sample, p Params) float64 {
	return p.Id * p.Kd * r3.Dot(s.L, s.N)
}

// Specular is the Blinn highlight max(N·H, 0)^alpha.
func Specular(s Sample, p Params) float64 {
	return math.Pow(math.Max(r3.Dot(s.N, s.H), 0), p.Alpha)
}

// PhongBlinnIntensity is the Lambert term plus the Blinn highlight.
func PhongBlinnIntensity(s Sample, p Params) float64 {
	return LambertIntensity(s, p) + Specular(s, p)
}

// OrenNayarIntensity evaluates the Oren-Nayar approximation.
// sin and tan take the dot products themselves, not the angles they are
// cosines of.
func OrenNayarIntensity(s Sample, p Params) float64 {
	nl := r3.Dot(s.N, s.L)
	nv := r3.Dot(s.N, s.V)
	angMax := math.Max(nl, nv)
	angMin := math.Min(nl, nv)

	lProj := unit(r3.Sub(s.L, r3.Scale(nl, s.N)))
	vProj := unit(r3.Sub(s.V, r3.Scale(nv, s.N)))
	cx := math.Max(r3.Dot(lProj, vProj), 0)

	return nl * (p.A + p.B*cx) * math.Sin(angMax) * math.Tan(angMin)
}

// CookTorranceTerms holds the intermediate Cook-Torrance factors.
type CookTorranceTerms struct {
	D  float64 // Beckmann distribution
	G  float64 // geometric attenuation, never above 1
	F  float64 // approximate Fresnel
	Rs float64 // specular response, never above 1
}

// CookTorranceFactors computes D, G, F and Rs for a sample.
func CookTorranceFactors(s Sample, p Params) CookTorranceTerms {
	nv := r3.Dot(s.N, s.V)
	nh := r3.Dot(s.N, s.H)
	nl := r3.Dot(s.N, s.L)
	vh := r3.Dot(s.V, s.H)

	r2 := p.Roughness * p.Roughness
	nh2 := nh * nh

	d := 1 / guard(4*r2*nh2*nh2) * math.Exp((nh2-1)/guard(r2*nh2))

	g1 := 2 * nh * nv / guard(vh)
	g2 := 2 * nh * nl / guard(vh)
	g := math.Min(1, math.Min(g1, g2))

	f := 1 / guard(1+nv)
	rs := math.Min(1, f*d*g/guard(nl*nv+Epsilon))

	return CookTorranceTerms{D: d, G: g, F: f, Rs: finite(rs)}
}

// CookTorranceIntensity evaluates NdotL·(kd·(L·N) + specular·Rs).
func CookTorranceIntensity(s Sample, p Params) float64 {
	nl := r3.Dot(s.N, s.L)
	t := CookTorranceFactors(s, p)
	return finite(nl * (p.Kd*r3.Dot(s.L, s.N) + Specular(s, p)*t.Rs))
}

// guard keeps x at least Epsilon away from zero, preserving its sign.
func guard(x float64) float64 {
	if math.Abs(x) >= Epsilon {
		return x
	}
	if x < 0 {
		return -Epsilon
	}
	return Epsilon
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
