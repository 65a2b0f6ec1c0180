package grid

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Marker names a set of boundary triangles, each given by its three vertices
type Marker struct {
	Name  string
	Faces [][3]int
}

type faceKey [3]int

func newFaceKey(v [3]int) (k faceKey) {
	k = faceKey(v)
	sort.Ints(k[:])
	return
}

// Local faces of a tetrahedron, by local vertex index
var tetFaces = [4][3]int{
	{0, 2, 1},
	{0, 1, 3},
	{1, 2, 3},
	{0, 3, 2},
}

// NewTetrahedral builds a grid from a tetrahedral mesh. Marker faces tag the
// boundary faces they match; marker i gets tag i+1. Boundary faces not named
// by any marker keep tag 0.
func NewTetrahedral(vertices []r3.Vec, tets [][4]int, markers []Marker) (g *Grid, err error) {
	var (
		nc      = len(tets)
		faceMap = make(map[faceKey]int)
		faceVtx [][3]int
	)
	if nc == 0 {
		return nil, fmt.Errorf("%w: no tetrahedra", ErrTopology)
	}
	g = &Grid{
		NumCells:      nc,
		CellVolumes:   make([]float64, nc),
		CellCentroids: make([]r3.Vec, nc),
		CellFacePos:   make([]int, nc+1),
		CellFaces:     make([]int, 0, 4*nc),
		Tags:          make(map[string]int, len(markers)),
	}

	for k, tet := range tets {
		for _, v := range tet {
			if v < 0 || v >= len(vertices) {
				return nil, fmt.Errorf("%w: tet %d references vertex %d", ErrTopology, k, v)
			}
		}
		var (
			p0, p1, p2, p3 = vertices[tet[0]], vertices[tet[1]], vertices[tet[2]], vertices[tet[3]]
			vol            = r3.Dot(r3.Sub(p1, p0), r3.Cross(r3.Sub(p2, p0), r3.Sub(p3, p0))) / 6
		)
		if math.Abs(vol) < 1.e-14 {
			return nil, fmt.Errorf("%w: tet %d is degenerate", ErrTopology, k)
		}
		g.CellVolumes[k] = math.Abs(vol)
		g.CellCentroids[k] = r3.Scale(0.25, r3.Add(r3.Add(p0, p1), r3.Add(p2, p3)))

		for _, lf := range tetFaces {
			verts := [3]int{tet[lf[0]], tet[lf[1]], tet[lf[2]]}
			key := newFaceKey(verts)
			if f, exists := faceMap[key]; exists {
				// Second visit, the face becomes interior. Elements are
				// visited in order so the first owner is the low cell.
				if g.FaceCells[f][1] >= 0 {
					return nil, fmt.Errorf("%w: face %v shared by more than two tets", ErrTopology, key)
				}
				g.FaceCells[f][1] = k
			} else {
				f = len(g.FaceCells)
				faceMap[key] = f
				g.FaceCells = append(g.FaceCells, [2]int{k, -1})
				faceVtx = append(faceVtx, verts)
			}
			g.CellFaces = append(g.CellFaces, faceMap[key])
		}
		g.CellFacePos[k+1] = len(g.CellFaces)
	}

	nf := len(g.FaceCells)
	g.NumFaces = nf
	g.FaceAreas = make([]float64, nf)
	g.FaceCentroids = make([]r3.Vec, nf)
	g.FaceNormals = make([]r3.Vec, nf)
	g.BoundaryIDs = make([]int, nf)
	g.BoundaryTags = make([]int, nf)
	for f, verts := range faceVtx {
		var (
			p0, p1, p2 = vertices[verts[0]], vertices[verts[1]], vertices[verts[2]]
			cross      = r3.Cross(r3.Sub(p1, p0), r3.Sub(p2, p0))
			area       = 0.5 * r3.Norm(cross)
			centroid   = r3.Scale(1./3., r3.Add(r3.Add(p0, p1), p2))
			normal     = r3.Unit(cross)
		)
		// Orient out of the low cell
		if r3.Dot(normal, r3.Sub(centroid, g.CellCentroids[g.FaceCells[f][0]])) < 0 {
			normal = r3.Scale(-1, normal)
		}
		g.FaceAreas[f] = area
		g.FaceCentroids[f] = centroid
		g.FaceNormals[f] = normal
	}

	for i, m := range markers {
		tag := i + 1
		g.Tags[m.Name] = tag
		for _, verts := range m.Faces {
			f, ok := faceMap[newFaceKey(verts)]
			if !ok || !g.IsBoundary(f) {
				return nil, fmt.Errorf("%w: marker %q face %v is not a boundary face", ErrTopology, m.Name, verts)
			}
			g.BoundaryTags[f] = tag
		}
	}
	g.numberBoundary()
	return
}
