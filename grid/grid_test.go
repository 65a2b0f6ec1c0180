package grid

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestCartesianTopology(t *testing.T) {
	g, err := NewCartesian(3, 2, 2, 3, 1, 0.5)
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	assert.Equal(t, 12, g.NumCells)
	// 4*2*2 + 3*3*2 + 3*2*3
	assert.Equal(t, 16+18+18, g.NumFaces)
	assert.Equal(t, 6*12, g.NumHalfFaces())

	var vol float64
	for _, v := range g.CellVolumes {
		vol += v
	}
	assert.InDelta(t, 1.5, vol, 1e-14)

	// Boundary faces: 2*(2*2) + 2*(3*2) + 2*(3*2)
	var nb int
	for f := 0; f < g.NumFaces; f++ {
		if g.IsBoundary(f) {
			nb++
			assert.Equal(t, nb, g.BoundaryIDs[f])
		}
	}
	assert.Equal(t, 8+12+12, nb)
	assert.Len(t, g.TagFaces(XMin), 4)
	assert.Len(t, g.TagFaces(YMax), 6)
	assert.Equal(t, []string{"xmin", "xmax", "ymin", "ymax", "zmin", "zmax"}, g.TagNames())
}

func TestCartesianNormalsPointOutOfCell(t *testing.T) {
	g, err := NewCartesian(2, 2, 1, 1, 1, 1)
	require.NoError(t, err)
	for c := 0; c < g.NumCells; c++ {
		lo, hi := g.CellFaceRange(c)
		var sum r3.Vec
		for _, f := range g.CellFaces[lo:hi] {
			n := g.OutwardNormal(c, f)
			d := r3.Sub(g.FaceCentroids[f], g.CellCentroids[c])
			assert.Greater(t, r3.Dot(n, d), 0.0, "cell %d face %d", c, f)
			sum = r3.Add(sum, r3.Scale(g.FaceAreas[f], n))
		}
		// Closed cell
		assert.InDelta(t, 0, r3.Norm(sum), 1e-14)
	}
}

func TestCartesianNeighbor(t *testing.T) {
	g, err := NewCartesian(2, 1, 1, 2, 1, 1)
	require.NoError(t, err)
	// Face 1 is the x face between the two cells
	assert.Equal(t, [2]int{0, 1}, g.FaceCells[1])
	assert.Equal(t, 1, g.Neighbor(0, 1))
	assert.Equal(t, 0, g.Neighbor(1, 1))
	assert.Equal(t, -1, g.Neighbor(0, 0))
	assert.Equal(t, r3.Vec{X: -1}, g.OutwardNormal(1, 1))
}

func TestCartesianRejectsBadInput(t *testing.T) {
	_, err := NewCartesian(0, 1, 1, 1, 1, 1)
	assert.True(t, errors.Is(err, ErrTopology))
	_, err = NewCartesian(1, 1, 1, 1, -1, 1)
	assert.True(t, errors.Is(err, ErrTopology))
}

func TestValidateDetectsBrokenTopology(t *testing.T) {
	g, err := NewCartesian(2, 1, 1, 2, 1, 1)
	require.NoError(t, err)
	g.BoundaryIDs[0] = g.BoundaryIDs[2]
	assert.True(t, errors.Is(g.Validate(), ErrTopology))

	g, _ = NewCartesian(2, 1, 1, 2, 1, 1)
	g.FaceCells[1] = [2]int{1, 0}
	assert.True(t, errors.Is(g.Validate(), ErrTopology))
}

// unit cube split into two tets sharing face (0,1,2)
func twoTets() ([]r3.Vec, [][4]int) {
	return []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1},
			{X: 0, Y: 0, Z: -1},
		}, [][4]int{
			{0, 1, 2, 3},
			{0, 2, 1, 4},
		}
}

func TestTetrahedral(t *testing.T) {
	verts, tets := twoTets()
	markers := []Marker{{Name: "bottom", Faces: [][3]int{{1, 0, 4}}}}
	g, err := NewTetrahedral(verts, tets, markers)
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	assert.Equal(t, 2, g.NumCells)
	assert.Equal(t, 7, g.NumFaces)
	assert.InDelta(t, 1.0/6.0, g.CellVolumes[0], 1e-15)
	assert.InDelta(t, 1.0/6.0, g.CellVolumes[1], 1e-15)

	var interior int
	for f := 0; f < g.NumFaces; f++ {
		if !g.IsBoundary(f) {
			interior++
			assert.Equal(t, [2]int{0, 1}, g.FaceCells[f])
			assert.InDelta(t, -1, g.FaceNormals[f].Z, 1e-15)
			assert.InDelta(t, 0.5, g.FaceAreas[f], 1e-15)
		}
	}
	assert.Equal(t, 1, interior)
	assert.Equal(t, 1, g.Tags["bottom"])
	assert.Len(t, g.TagFaces(1), 1)
	assert.Len(t, g.TagFaces(0), 5)
}

func TestTetrahedralErrors(t *testing.T) {
	verts, tets := twoTets()
	_, err := NewTetrahedral(verts, tets, []Marker{{Name: "inner", Faces: [][3]int{{0, 1, 2}}}})
	assert.True(t, errors.Is(err, ErrTopology))

	_, err = NewTetrahedral(verts, [][4]int{{0, 1, 2, 2}}, nil)
	assert.True(t, errors.Is(err, ErrTopology))

	_, err = NewTetrahedral(verts, [][4]int{{0, 1, 2, 7}}, nil)
	assert.True(t, errors.Is(err, ErrTopology))
}

const twoTetSU2 = `% two tets
NDIME= 3
NELEM= 2
10 0 1 2 3 0
10 0 2 1 4 1
NPOIN= 5
0.0 0.0 0.0 0
1.0 0.0 0.0 1
0.0 1.0 0.0 2
0.0 0.0 1.0 3
0.0 0.0 -1.0 4
NMARK= 2
MARKER_TAG= top
MARKER_ELEMS= 1
5 1 2 3
MARKER_TAG= bottom
MARKER_ELEMS= 1
5 0 1 4
`

func TestReadSU2(t *testing.T) {
	g, err := ReadSU2(strings.NewReader(twoTetSU2))
	require.NoError(t, err)
	require.NoError(t, g.Validate())
	assert.Equal(t, 2, g.NumCells)
	assert.Equal(t, map[string]int{"top": 1, "bottom": 2}, g.Tags)

	top := g.TagFaces(1)
	require.Len(t, top, 1)
	assert.InDelta(t, math.Sqrt(3)/2, g.FaceAreas[top[0]], 1e-14)
	n := g.FaceNormals[top[0]]
	assert.InDelta(t, 1/math.Sqrt(3), n.X, 1e-14)
	assert.InDelta(t, 1/math.Sqrt(3), n.Y, 1e-14)
	assert.InDelta(t, 1/math.Sqrt(3), n.Z, 1e-14)
}

func TestReadSU2Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"2D", "NDIME= 2\n"},
		{"bad element", "NDIME= 3\nNELEM= 1\n5 0 1 2\n"},
		{"truncated points", "NDIME= 3\nNPOIN= 3\n0 0 0\n"},
		{"bad marker", "NDIME= 3\nNMARK= 1\nMARKER_ELEMS= 1\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadSU2(strings.NewReader(tc.content))
			assert.Error(t, err)
		})
	}
}
