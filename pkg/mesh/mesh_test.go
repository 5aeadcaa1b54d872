package mesh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/depthlab/pkg/formats"
)

func mustMap(t *testing.T, rows [][]float64) *formats.DepthMap {
	t.Helper()
	dm, err := formats.DepthMapFromRows(rows)
	require.NoError(t, err)
	return dm
}

func TestPolicy_Accepts(t *testing.T) {
	assert.True(t, ExcludeZero.Accepts(1))
	assert.True(t, ExcludeZero.Accepts(-1))
	assert.False(t, ExcludeZero.Accepts(0))

	assert.True(t, RequirePositive.Accepts(1))
	assert.False(t, RequirePositive.Accepts(-1))
	assert.False(t, RequirePositive.Accepts(0))
}

func TestTriangulate_SingleQuad(t *testing.T) {
	dm := mustMap(t, [][]float64{{1, 2}, {3, 4}})

	m := Triangulate(dm)
	require.Len(t, m.Triangles, 2)
	assert.Equal(t, 1, m.Quads)
	assert.Equal(t, 6, m.VertexCount())
	assert.Equal(t, 2, m.FaceCount())

	want := [2]Triangle{
		{V: [3]r3.Vec{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 3}, {X: 0, Y: 1, Z: 2}}},
		{V: [3]r3.Vec{{X: 1, Y: 0, Z: 3}, {X: 1, Y: 1, Z: 4}, {X: 0, Y: 1, Z: 2}}},
	}
	assert.Equal(t, want[0], m.Triangles[0])
	assert.Equal(t, want[1], m.Triangles[1])

	assert.Equal(t, r3.Vec{X: 0, Y: 0, Z: 1}, m.Bounds.Min)
	assert.Equal(t, r3.Vec{X: 1, Y: 1, Z: 4}, m.Bounds.Max)
}

func TestTriangulate_ConsistentWinding(t *testing.T) {
	dm := mustMap(t, [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}})

	m := Triangulate(dm)
	require.Len(t, m.Triangles, 8)
	for k, tri := range m.Triangles {
		// flat surface: every triangle must face +z in (i, j, depth) space
		assert.InDelta(t, 1, tri.Normal().Z, 1e-12, "triangle %d", k)
	}
}

func TestTriangulate_HoleCorners(t *testing.T) {
	for k := 0; k < 4; k++ {
		rows := [][]float64{{1, 1}, {1, 1}}
		rows[k/2][k%2] = 0
		m := Triangulate(mustMap(t, rows))
		assert.Empty(t, m.Triangles, "hole at corner %d", k)
		assert.True(t, m.Bounds.Empty())
		assert.Equal(t, r3.Vec{}, m.Bounds.Size())
	}
}

func TestTriangulate_NegativeSamplesAreSurface(t *testing.T) {
	dm := mustMap(t, [][]float64{{-1, -1}, {-1, -1}})

	assert.Len(t, Triangulate(dm).Triangles, 2)

	m, err := TriangulateWith(context.Background(), dm, RequirePositive)
	require.NoError(t, err)
	assert.Empty(t, m.Triangles)
}

func TestTriangulate_RowMajorOrder(t *testing.T) {
	dm := mustMap(t, [][]float64{
		{1, 1, 0},
		{1, 1, 1},
		{1, 1, 1},
	})

	m := Triangulate(dm)
	// quads (0,0), (1,0), (1,1); (0,1) touches the hole
	require.Len(t, m.Triangles, 6)
	anchors := []r3.Vec{
		m.Triangles[0].V[0], m.Triangles[2].V[0], m.Triangles[4].V[0],
	}
	assert.Equal(t, []r3.Vec{
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: 1},
		{X: 1, Y: 1, Z: 1},
	}, anchors)
}

func TestTriangulate_Deterministic(t *testing.T) {
	rows := make([][]float64, 40)
	for i := range rows {
		rows[i] = make([]float64, 30)
		for j := range rows[i] {
			if (i*7+j*3)%11 != 0 {
				rows[i][j] = float64(i + j)
			}
		}
	}
	dm := mustMap(t, rows)

	first := Triangulate(dm)
	for k := 0; k < 5; k++ {
		assert.Equal(t, first, Triangulate(dm))
	}
	assert.Equal(t, CountQuads(dm, ExcludeZero), first.Quads)
}

func TestTriangulate_TinyMaps(t *testing.T) {
	for _, rows := range [][][]float64{{{1}}, {{1, 1}}, {{1}, {1}}} {
		m := Triangulate(mustMap(t, rows))
		assert.Empty(t, m.Triangles)
	}
}

func TestTriangulateWith_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := TriangulateWith(ctx, mustMap(t, [][]float64{{1, 1}, {1, 1}}), ExcludeZero)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanUpward(t *testing.T) {
	dm := mustMap(t, [][]float64{{1, 2}, {3, 4}})

	quads := ScanUpward(dm, RequirePositive)
	require.Len(t, quads, 1)
	assert.Equal(t, 1, quads[0].Row)
	assert.Equal(t, 0, quads[0].Col)
	assert.Equal(t, [4]r3.Vec{
		{X: 1, Y: 0, Z: 3},
		{X: 0, Y: 0, Z: 1},
		{X: 0, Y: 1, Z: 2},
		{X: 1, Y: 1, Z: 4},
	}, quads[0].Corners)
}

func TestScanUpward_StricterThanTriangulate(t *testing.T) {
	dm := mustMap(t, [][]float64{
		{1, 1, 1},
		{1, -2, 1},
		{1, 1, 1},
	})

	assert.Equal(t, 4, CountQuads(dm, ExcludeZero))
	assert.Empty(t, ScanUpward(dm, RequirePositive))
	assert.Len(t, ScanUpward(dm, ExcludeZero), 4)
}
