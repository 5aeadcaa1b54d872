package meshio

import (
	"io"

	"github.com/Faultbox/depthlab/pkg/mesh"
)

// WriteAMF writes m as a minimal AMF document. The volume references
// vertices by their position in the vertices block.
func WriteAMF(w io.Writer, m *mesh.Mesh) error {
	ew := &errWriter{w: w}
	ew.println("<?xml version='1.0' encoding='utf-8'?>")
	ew.println("<amf unit='mm'>")
	ew.println("<object id='1'>")
	ew.println("<mesh>")

	ew.println("<vertices>")
	for _, t := range m.Triangles {
		for _, v := range t.V {
			ew.println("<vertex><coordinates><x>" + formatFloat(v.X) +
				"</x><y>" + formatFloat(v.Y) +
				"</y><z>" + formatFloat(v.Z) +
				"</z></coordinates></vertex>")
		}
	}
	ew.println("</vertices>")

	ew.println("<volume>")
	for k := range m.Triangles {
		base := 3 * k
		ew.printf("<triangle><v1>%d</v1><v2>%d</v2><v3>%d</v3></triangle>\n", base, base+1, base+2)
	}
	ew.println("</volume>")

	ew.println("</mesh>")
	ew.println("</object>")
	ew.println("</amf>")
	return ew.err
}
