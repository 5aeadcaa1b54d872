// Package mesh triangulates depth map quads into triangle lists.
package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Policy decides which depth samples count as measured surface.
type Policy int

const (
	// ExcludeZero accepts every sample except the zero hole sentinel.
	ExcludeZero Policy = iota
	// RequirePositive accepts only samples strictly greater than zero.
	RequirePositive
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case ExcludeZero:
		return "exclude-zero"
	case RequirePositive:
		return "require-positive"
	default:
		return "unknown"
	}
}

// Accepts reports whether a sample is measured surface under p.
func (p Policy) Accepts(depth float64) bool {
	if p == RequirePositive {
		return depth > 0
	}
	return depth != 0
}

// Triangle is three vertices in a fixed winding. Vertices are not shared.
type Triangle struct {
	V [3]r3.Vec
}

// Normal returns the unit normal implied by the winding.
func (t Triangle) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(t.V[1], t.V[0]), r3.Sub(t.V[2], t.V[0]))
	l := r3.Norm(n)
	if l == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, n)
}

// Quad is a valid 2x2 block of samples with its corners in emission order.
type Quad struct {
	Row, Col int
	Corners  [4]r3.Vec
}

// Bounds is the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min r3.Vec
	Max r3.Vec
}

func emptyBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{
		Min: r3.Vec{X: inf, Y: inf, Z: inf},
		Max: r3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

// Empty reports whether no vertex has been added.
func (b Bounds) Empty() bool {
	return b.Min.X > b.Max.X
}

// Size returns the box extent.
func (b Bounds) Size() r3.Vec {
	if b.Empty() {
		return r3.Vec{}
	}
	return r3.Sub(b.Max, b.Min)
}

func (b *Bounds) add(p r3.Vec) {
	b.Min = r3.Vec{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
	b.Max = r3.Vec{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
}

// Mesh holds the triangles of a depth map in row-major quad order.
type Mesh struct {
	Triangles []Triangle
	Quads     int // valid quads; always len(Triangles)/2
	Bounds    Bounds
}

// VertexCount returns the number of (unshared) vertices.
func (m *Mesh) VertexCount() int { return 3 * len(m.Triangles) }

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int { return len(m.Triangles) }
