package meshio

import (
	"io"

	"github.com/Faultbox/depthlab/pkg/mesh"
)

// WritePLY writes m as ASCII PLY. Every triangle gets three fresh vertices
// numbered in emission order, so the header counts are known before the
// body is written.
func WritePLY(w io.Writer, m *mesh.Mesh) error {
	ew := &errWriter{w: w}
	ew.println("ply")
	ew.println("format ascii 1.0")
	ew.printf("element vertex %d\n", m.VertexCount())
	ew.println("property float x")
	ew.println("property float y")
	ew.println("property float z")
	ew.printf("element face %d\n", m.FaceCount())
	ew.println("property list int int vertex_index")
	ew.println("end_header")

	for _, t := range m.Triangles {
		for _, v := range t.V {
			ew.println(formatFloat(v.X) + " " + formatFloat(v.Y) + " " + formatFloat(v.Z))
		}
	}
	for k := range m.Triangles {
		base := 3 * k
		ew.printf("3 %d %d %d\n", base, base+1, base+2)
	}
	return ew.err
}
