package meshio

import (
	"io"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/depthlab/pkg/mesh"
)

// WriteSTL writes m as an ASCII STL solid.
// Facet normals are written as 0 0 0; readers that need lit normals
// must recompute them from the vertices.
func WriteSTL(w io.Writer, m *mesh.Mesh, name string) error {
	ew := &errWriter{w: w}
	ew.println("solid " + name)
	for _, t := range m.Triangles {
		ew.println("facet normal 0 0 0")
		ew.println("outer loop")
		for _, v := range t.V {
			ew.println(stlVertex(v))
		}
		ew.println("endloop")
		ew.println("endfacet")
	}
	ew.println("endsolid " + name)
	return ew.err
}

func stlVertex(v r3.Vec) string {
	return "vertex " + formatFloat(v.X) + " " + formatFloat(v.Y) + " " + strconv.FormatFloat(v.Z, 'E', 6, 64)
}
