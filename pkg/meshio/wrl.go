package meshio

import (
	"io"

	"github.com/Faultbox/depthlab/pkg/mesh"
)

// WriteWRL writes quads as a VRML97 IndexedFaceSet. Each quad contributes
// its four corners and one four-sided face.
func WriteWRL(w io.Writer, quads []mesh.Quad) error {
	ew := &errWriter{w: w}
	ew.println("#VRML V2.0 utf8")
	ew.println("Shape {")
	ew.println("  geometry IndexedFaceSet {")
	ew.println("    coord Coordinate {")
	ew.println("      point [")
	for _, q := range quads {
		for _, v := range q.Corners {
			ew.println("        " + formatFloat(v.X) + " " + formatFloat(v.Y) + " " + formatFloat(v.Z) + ",")
		}
	}
	ew.println("      ]")
	ew.println("    }")
	ew.println("    coordIndex [")
	for k := range quads {
		base := 4 * k
		ew.printf("      %d, %d, %d, %d, -1,\n", base, base+1, base+2, base+3)
	}
	ew.println("    ]")
	ew.println("  }")
	ew.println("}")
	return ew.err
}
