// Package boundary resolves saturation boundary conditions on a grid into
// periodic cell pairings and Dirichlet transport sources.
package boundary

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gotpfa/grid"
)

// Condition is a saturation boundary condition, either Periodic or Dirichlet
type Condition interface {
	isCondition()
	String() string
}

// Periodic identifies a boundary face with the face carrying boundary id Partner
type Periodic struct {
	Partner int
}

// Dirichlet prescribes the phase 1 saturation on a boundary face
type Dirichlet struct {
	Saturation float64
}

func (Periodic) isCondition()  {}
func (Dirichlet) isCondition() {}

func (p Periodic) String() string  { return fmt.Sprintf("Periodic{%d}", p.Partner) }
func (d Dirichlet) String() string { return fmt.Sprintf("Dirichlet{%g}", d.Saturation) }

// Set maps boundary ids to conditions
type Set map[int]Condition

// NewSet returns an empty condition set
func NewSet() Set {
	return make(Set)
}

// Dirichlet sets a Dirichlet condition on boundary id bid
func (s Set) Dirichlet(bid int, saturation float64) Set {
	s[bid] = Dirichlet{Saturation: saturation}
	return s
}

// Periodic pairs boundary ids a and b with each other
func (s Set) Periodic(a, b int) Set {
	s[a] = Periodic{Partner: b}
	s[b] = Periodic{Partner: a}
	return s
}

// Merge copies all conditions of o into s, o wins on conflicts
func (s Set) Merge(o Set) Set {
	for bid, c := range o {
		s[bid] = c
	}
	return s
}

// Side applies cond to every boundary face carrying tag
func (s Set) Side(g *grid.Grid, tag int, cond Condition) Set {
	for _, f := range g.TagFaces(tag) {
		s[g.BoundaryIDs[f]] = cond
	}
	return s
}

// Fill applies cond to every boundary face that has no condition yet
func (s Set) Fill(g *grid.Grid, cond Condition) Set {
	for f := 0; f < g.NumFaces; f++ {
		if g.IsBoundary(f) {
			if _, ok := s[g.BoundaryIDs[f]]; !ok {
				s[g.BoundaryIDs[f]] = cond
			}
		}
	}
	return s
}

// PairSides returns periodic conditions joining the faces of tag a with the
// faces of tag b. Faces are matched by the translation between the two side
// centres, within tol times the size of the grid.
func PairSides(g *grid.Grid, a, b int, tol float64) (s Set, err error) {
	var (
		fa, fb  = g.TagFaces(a), g.TagFaces(b)
		ext     float64
		matched = make([]bool, len(fb))
	)
	if len(fa) == 0 || len(fa) != len(fb) {
		return nil, fmt.Errorf("%w: sides %d and %d have %d and %d faces", ErrMissingPartner, a, b, len(fa), len(fb))
	}
	shift := r3.Sub(sideCentre(g, fb), sideCentre(g, fa))
	for _, x := range g.FaceCentroids {
		ext = math.Max(ext, math.Max(math.Abs(x.X), math.Max(math.Abs(x.Y), math.Abs(x.Z))))
	}
	tol *= math.Max(ext, 1)

	s = NewSet()
	for _, f := range fa {
		var (
			want  = r3.Add(g.FaceCentroids[f], shift)
			found = -1
		)
		for j, h := range fb {
			if matched[j] {
				continue
			}
			e := r3.Sub(g.FaceCentroids[h], want)
			if math.Abs(e.X) <= tol && math.Abs(e.Y) <= tol && math.Abs(e.Z) <= tol {
				found = j
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("%w: face %d of side %d has no translate on side %d", ErrMissingPartner, f, a, b)
		}
		matched[found] = true
		s.Periodic(g.BoundaryIDs[f], g.BoundaryIDs[fb[found]])
	}
	return
}

// sideCentre is the mean face centroid of faces
func sideCentre(g *grid.Grid, faces []int) (c r3.Vec) {
	for _, f := range faces {
		c = r3.Add(c, g.FaceCentroids[f])
	}
	return r3.Scale(1/float64(len(faces)), c)
}

// Print lists the conditions ordered by boundary id
func (s Set) Print() {
	ids := make([]int, 0, len(s))
	for bid := range s {
		ids = append(ids, bid)
	}
	sort.Ints(ids)
	for _, bid := range ids {
		fmt.Printf("BC[%d] = %s\n", bid, s[bid])
	}
}
