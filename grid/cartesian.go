package grid

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Side tags of a Cartesian box
const (
	XMin = iota + 1
	XMax
	YMin
	YMax
	ZMin
	ZMax
)

var sideNames = map[string]int{
	"xmin": XMin, "xmax": XMax,
	"ymin": YMin, "ymax": YMax,
	"zmin": ZMin, "zmax": ZMax,
}

// NewCartesian builds an nx*ny*nz box of size lx*ly*lz with its low corner at
// the origin. Cells are numbered i + nx*(j + ny*k) and every cell lists its
// faces in the order x-, x+, y-, y+, z-, z+.
func NewCartesian(nx, ny, nz int, lx, ly, lz float64) (g *Grid, err error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("%w: cartesian dimensions %dx%dx%d", ErrTopology, nx, ny, nz)
	}
	if lx <= 0 || ly <= 0 || lz <= 0 {
		return nil, fmt.Errorf("%w: cartesian extents %gx%gx%g", ErrTopology, lx, ly, lz)
	}
	var (
		dx, dy, dz = lx / float64(nx), ly / float64(ny), lz / float64(nz)
		nxf        = (nx + 1) * ny * nz
		nyf        = nx * (ny + 1) * nz
		nzf        = nx * ny * (nz + 1)
		nc         = nx * ny * nz
		nf         = nxf + nyf + nzf
	)
	cell := func(i, j, k int) int { return i + nx*(j+ny*k) }
	xFace := func(i, j, k int) int { return i + (nx+1)*(j+ny*k) }
	yFace := func(i, j, k int) int { return nxf + i + nx*(j+(ny+1)*k) }
	zFace := func(i, j, k int) int { return nxf + nyf + i + nx*(j+ny*k) }

	g = &Grid{
		NumCells:      nc,
		NumFaces:      nf,
		CellVolumes:   make([]float64, nc),
		CellCentroids: make([]r3.Vec, nc),
		FaceAreas:     make([]float64, nf),
		FaceCentroids: make([]r3.Vec, nf),
		FaceNormals:   make([]r3.Vec, nf),
		FaceCells:     make([][2]int, nf),
		CellFacePos:   make([]int, nc+1),
		CellFaces:     make([]int, 0, 6*nc),
		BoundaryIDs:   make([]int, nf),
		BoundaryTags:  make([]int, nf),
		Tags:          make(map[string]int, len(sideNames)),
	}
	for name, tag := range sideNames {
		g.Tags[name] = tag
	}

	// Each face direction is filled by a shared routine: (lo, hi) are the
	// cells on either side along the axis, either may be off the grid.
	setFace := func(f, lo, hi int, area float64, centroid, normal r3.Vec, tagLo, tagHi int) {
		g.FaceAreas[f] = area
		g.FaceCentroids[f] = centroid
		switch {
		case lo < 0:
			g.FaceCells[f] = [2]int{hi, -1}
			g.FaceNormals[f] = r3.Scale(-1, normal)
			g.BoundaryTags[f] = tagLo
		case hi < 0:
			g.FaceCells[f] = [2]int{lo, -1}
			g.FaceNormals[f] = normal
			g.BoundaryTags[f] = tagHi
		default:
			g.FaceCells[f] = [2]int{lo, hi}
			g.FaceNormals[f] = normal
		}
	}
	offGrid := func(i, n int, c int) int {
		if i < 0 || i >= n {
			return -1
		}
		return c
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i <= nx; i++ {
				lo := offGrid(i-1, nx, cell(i-1, j, k))
				hi := offGrid(i, nx, cell(i, j, k))
				c := r3.Vec{X: float64(i) * dx, Y: (float64(j) + 0.5) * dy, Z: (float64(k) + 0.5) * dz}
				setFace(xFace(i, j, k), lo, hi, dy*dz, c, r3.Vec{X: 1}, XMin, XMax)
			}
		}
	}
	for k := 0; k < nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i < nx; i++ {
				lo := offGrid(j-1, ny, cell(i, j-1, k))
				hi := offGrid(j, ny, cell(i, j, k))
				c := r3.Vec{X: (float64(i) + 0.5) * dx, Y: float64(j) * dy, Z: (float64(k) + 0.5) * dz}
				setFace(yFace(i, j, k), lo, hi, dx*dz, c, r3.Vec{Y: 1}, YMin, YMax)
			}
		}
	}
	for k := 0; k <= nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				lo := offGrid(k-1, nz, cell(i, j, k-1))
				hi := offGrid(k, nz, cell(i, j, k))
				c := r3.Vec{X: (float64(i) + 0.5) * dx, Y: (float64(j) + 0.5) * dy, Z: float64(k) * dz}
				setFace(zFace(i, j, k), lo, hi, dx*dy, c, r3.Vec{Z: 1}, ZMin, ZMax)
			}
		}
	}

	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				c := cell(i, j, k)
				g.CellVolumes[c] = dx * dy * dz
				g.CellCentroids[c] = r3.Vec{
					X: (float64(i) + 0.5) * dx,
					Y: (float64(j) + 0.5) * dy,
					Z: (float64(k) + 0.5) * dz,
				}
				g.CellFaces = append(g.CellFaces,
					xFace(i, j, k), xFace(i+1, j, k),
					yFace(i, j, k), yFace(i, j+1, k),
					zFace(i, j, k), zFace(i, j, k+1))
				g.CellFacePos[c+1] = len(g.CellFaces)
			}
		}
	}
	g.numberBoundary()
	return
}

// numberBoundary assigns consecutive boundary ids, starting at 1, in face order
func (g *Grid) numberBoundary() {
	bid := 0
	for f := 0; f < g.NumFaces; f++ {
		if g.IsBoundary(f) {
			bid++
			g.BoundaryIDs[f] = bid
		}
	}
}
