package mesh

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/depthlab/pkg/formats"
)

func vertex(dm *formats.DepthMap, i, j int) r3.Vec {
	return r3.Vec{X: float64(i), Y: float64(j), Z: dm.At(i, j)}
}

// quadValid checks all four corners of the quad anchored at (i, j).
func quadValid(dm *formats.DepthMap, p Policy, i, j int) bool {
	return p.Accepts(dm.At(i, j)) &&
		p.Accepts(dm.At(i+1, j)) &&
		p.Accepts(dm.At(i+1, j+1)) &&
		p.Accepts(dm.At(i, j+1))
}

// quadTriangles returns the two triangles of the quad anchored at (i, j):
// (i,j),(i+1,j),(i,j+1) and (i+1,j),(i+1,j+1),(i,j+1).
// The second triangle starts at (i+1,j), not (i+1,j+1): this is the
// historical emission order and keeps both triangles wound the same way.
func quadTriangles(dm *formats.DepthMap, i, j int) [2]Triangle {
	a := vertex(dm, i, j)
	b := vertex(dm, i+1, j)
	c := vertex(dm, i, j+1)
	d := vertex(dm, i+1, j+1)
	return [2]Triangle{
		{V: [3]r3.Vec{a, b, c}},
		{V: [3]r3.Vec{b, d, c}},
	}
}

// Triangulate builds the mesh of dm, skipping quads with any hole corner.
func Triangulate(dm *formats.DepthMap) *Mesh {
	m, _ := TriangulateWith(context.Background(), dm, ExcludeZero)
	return m
}

// TriangulateWith builds the mesh of dm under policy p. Rows are triangulated
// concurrently and concatenated in row order, so the result is the same as a
// sequential row-major scan.
func TriangulateWith(ctx context.Context, dm *formats.DepthMap, p Policy) (*Mesh, error) {
	quadRows := dm.Height() - 1
	if quadRows < 0 {
		quadRows = 0
	}
	rows := make([][]Triangle, quadRows)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < quadRows; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var tris []Triangle
			for j := 0; j < dm.Width()-1; j++ {
				if !quadValid(dm, p, i, j) {
					continue
				}
				t := quadTriangles(dm, i, j)
				tris = append(tris, t[0], t[1])
			}
			rows[i] = tris
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range rows {
		total += len(r)
	}
	m := &Mesh{
		Triangles: make([]Triangle, 0, total),
		Bounds:    emptyBounds(),
	}
	for _, r := range rows {
		m.Triangles = append(m.Triangles, r...)
	}
	for _, t := range m.Triangles {
		for _, v := range t.V {
			m.Bounds.add(v)
		}
	}
	m.Quads = len(m.Triangles) / 2
	return m, nil
}

// CountQuads returns the number of valid quads under p without building triangles.
func CountQuads(dm *formats.DepthMap, p Policy) int {
	n := 0
	for i := 0; i < dm.Height()-1; i++ {
		for j := 0; j < dm.Width()-1; j++ {
			if quadValid(dm, p, i, j) {
				n++
			}
		}
	}
	return n
}

// ScanUpward returns the valid quads in VRML scan order: rows i = 1..H-1
// paired with the row above, corners (i,j), (i-1,j), (i-1,j+1), (i,j+1).
func ScanUpward(dm *formats.DepthMap, p Policy) []Quad {
	var quads []Quad
	for i := 1; i < dm.Height(); i++ {
		for j := 0; j < dm.Width()-1; j++ {
			if !quadValid(dm, p, i-1, j) {
				continue
			}
			quads = append(quads, Quad{
				Row: i,
				Col: j,
				Corners: [4]r3.Vec{
					vertex(dm, i, j),
					vertex(dm, i-1, j),
					vertex(dm, i-1, j+1),
					vertex(dm, i, j+1),
				},
			})
		}
	}
	return quads
}
