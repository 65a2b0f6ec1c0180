package grid

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrTopology is returned by Validate for malformed cell/face connectivity
var ErrTopology = errors.New("invalid grid topology")

// Grid is a cell centred finite volume grid with explicit face geometry.
//
// Faces are shared between at most two cells. FaceCells[f][0] is the
// registered low cell of face f and FaceNormals[f] points out of it. On the
// boundary FaceCells[f][1] is -1. Half-faces (cell/face incidences) are stored
// compressed: the faces of cell c are CellFaces[CellFacePos[c]:CellFacePos[c+1]].
type Grid struct {
	NumCells int
	NumFaces int

	// Cell geometry
	CellVolumes   []float64
	CellCentroids []r3.Vec

	// Face geometry
	FaceAreas     []float64
	FaceCentroids []r3.Vec
	FaceNormals   []r3.Vec // Unit normal, oriented from FaceCells[f][0] to FaceCells[f][1]
	FaceCells     [][2]int

	// Half-face incidence
	CellFacePos []int
	CellFaces   []int

	// Boundary data, zero on interior faces
	BoundaryIDs  []int          // Unique positive id per boundary face
	BoundaryTags []int          // Side / marker tag per boundary face
	Tags         map[string]int // Tag name -> tag
}

// NumHalfFaces returns the number of cell/face incidences
func (g *Grid) NumHalfFaces() int {
	return g.CellFacePos[g.NumCells]
}

// CellFaceRange returns the half-face index range of cell c
func (g *Grid) CellFaceRange(c int) (lo, hi int) {
	return g.CellFacePos[c], g.CellFacePos[c+1]
}

// IsBoundary reports whether face f has a single adjacent cell
func (g *Grid) IsBoundary(f int) bool {
	return g.FaceCells[f][1] < 0
}

// Neighbor returns the cell across face f as seen from cell c, or -1
func (g *Grid) Neighbor(c, f int) int {
	fc := g.FaceCells[f]
	if fc[0] == c {
		return fc[1]
	}
	return fc[0]
}

// OutwardNormal returns the unit normal of face f pointing out of cell c
func (g *Grid) OutwardNormal(c, f int) r3.Vec {
	if g.FaceCells[f][0] == c {
		return g.FaceNormals[f]
	}
	return r3.Scale(-1, g.FaceNormals[f])
}

// TagFaces returns the boundary faces carrying tag, in face order
func (g *Grid) TagFaces(tag int) (faces []int) {
	for f := 0; f < g.NumFaces; f++ {
		if g.IsBoundary(f) && g.BoundaryTags[f] == tag {
			faces = append(faces, f)
		}
	}
	return
}

// TagNames returns the tag names sorted by tag value
func (g *Grid) TagNames() (names []string) {
	for name := range g.Tags {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return g.Tags[names[i]] < g.Tags[names[j]]
	})
	return
}

// Validate checks the connectivity invariants every consumer relies on
func (g *Grid) Validate() error {
	if len(g.CellFacePos) != g.NumCells+1 {
		return fmt.Errorf("%w: CellFacePos has %d entries for %d cells",
			ErrTopology, len(g.CellFacePos), g.NumCells)
	}
	if len(g.FaceCells) != g.NumFaces || len(g.BoundaryIDs) != g.NumFaces {
		return fmt.Errorf("%w: face arrays sized %d/%d for %d faces",
			ErrTopology, len(g.FaceCells), len(g.BoundaryIDs), g.NumFaces)
	}
	incidence := make([]int, g.NumFaces)
	for c := 0; c < g.NumCells; c++ {
		lo, hi := g.CellFaceRange(c)
		for _, f := range g.CellFaces[lo:hi] {
			if f < 0 || f >= g.NumFaces {
				return fmt.Errorf("%w: cell %d references face %d", ErrTopology, c, f)
			}
			if g.FaceCells[f][0] != c && g.FaceCells[f][1] != c {
				return fmt.Errorf("%w: cell %d not adjacent to its face %d", ErrTopology, c, f)
			}
			incidence[f]++
		}
	}
	seen := make(map[int]int)
	for f := 0; f < g.NumFaces; f++ {
		fc := g.FaceCells[f]
		switch {
		case fc[0] < 0:
			return fmt.Errorf("%w: face %d has no low cell", ErrTopology, f)
		case fc[1] < 0:
			if incidence[f] != 1 {
				return fmt.Errorf("%w: boundary face %d has %d cells", ErrTopology, f, incidence[f])
			}
			bid := g.BoundaryIDs[f]
			if bid <= 0 {
				return fmt.Errorf("%w: boundary face %d has id %d", ErrTopology, f, bid)
			}
			if other, dup := seen[bid]; dup {
				return fmt.Errorf("%w: boundary id %d shared by faces %d and %d", ErrTopology, bid, other, f)
			}
			seen[bid] = f
		default:
			if incidence[f] != 2 {
				return fmt.Errorf("%w: interior face %d has %d cells", ErrTopology, f, incidence[f])
			}
			if fc[0] >= fc[1] {
				return fmt.Errorf("%w: interior face %d registered as %d->%d", ErrTopology, f, fc[0], fc[1])
			}
		}
	}
	return nil
}

// PrintStatistics prints grid statistics
func (g *Grid) PrintStatistics() {
	var (
		nb  int
		vol float64
	)
	for f := 0; f < g.NumFaces; f++ {
		if g.IsBoundary(f) {
			nb++
		}
	}
	for _, v := range g.CellVolumes {
		vol += v
	}
	fmt.Printf("Grid Statistics:\n")
	fmt.Printf("  Cells: %d\n", g.NumCells)
	fmt.Printf("  Faces: %d (%d boundary)\n", g.NumFaces, nb)
	fmt.Printf("  Half-faces: %d\n", g.NumHalfFaces())
	fmt.Printf("  Total volume: %g\n", vol)
	for _, name := range g.TagNames() {
		fmt.Printf("  Tag %d [%s]: %d faces\n", g.Tags[name], name, len(g.TagFaces(g.Tags[name])))
	}
}
