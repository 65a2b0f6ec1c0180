package grid

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// SU2 element type codes
const (
	su2Triangle = 5
	su2Tet      = 10
)

// ReadSU2File reads a 3D tetrahedral mesh in SU2 native format
func ReadSU2File(filename string) (*Grid, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadSU2(file)
}

// ReadSU2 reads a 3D tetrahedral SU2 mesh. Each MARKER_TAG becomes a grid
// tag, numbered from 1 in file order, made of its triangle marker elements.
func ReadSU2(r io.Reader) (*Grid, error) {
	var (
		scanner  = bufio.NewScanner(r)
		ndime    int
		vertices []r3.Vec
		tets     [][4]int
		markers  []Marker
		lineNo   int
	)
	next := func() (fields []string, ok bool) {
		for scanner.Scan() {
			lineNo++
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "%") {
				continue
			}
			return strings.Fields(line), true
		}
		return nil, false
	}
	header := func(line, key string) (n int, err error) {
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != key {
			return 0, fmt.Errorf("su2 line %d: expected %s=", lineNo, key)
		}
		f := strings.Fields(parts[1])
		if len(f) == 0 {
			return 0, fmt.Errorf("su2 line %d: missing %s value", lineNo, key)
		}
		if n, err = strconv.Atoi(f[0]); err != nil {
			err = fmt.Errorf("su2 line %d: bad %s: %v", lineNo, key, err)
		}
		return
	}
	ints := func(fields []string) (out []int, err error) {
		out = make([]int, len(fields))
		for i, s := range fields {
			if out[i], err = strconv.Atoi(s); err != nil {
				return nil, fmt.Errorf("su2 line %d: %v", lineNo, err)
			}
		}
		return
	}

	for {
		fields, ok := next()
		if !ok {
			break
		}
		line := strings.Join(fields, " ")
		switch {
		case strings.HasPrefix(line, "NDIME"):
			var err error
			if ndime, err = header(line, "NDIME"); err != nil {
				return nil, err
			}
			if ndime != 3 {
				return nil, fmt.Errorf("only 3D meshes are supported, got NDIME=%d", ndime)
			}

		case strings.HasPrefix(line, "NELEM"):
			nelem, err := header(line, "NELEM")
			if err != nil {
				return nil, err
			}
			tets = make([][4]int, 0, nelem)
			for i := 0; i < nelem; i++ {
				f, ok := next()
				if !ok {
					return nil, fmt.Errorf("su2: expected %d elements, got %d", nelem, i)
				}
				v, err := ints(f)
				if err != nil {
					return nil, err
				}
				if v[0] != su2Tet || len(v) < 5 {
					return nil, fmt.Errorf("su2 line %d: unsupported element type %d", lineNo, v[0])
				}
				tets = append(tets, [4]int{v[1], v[2], v[3], v[4]})
			}

		case strings.HasPrefix(line, "NPOIN"):
			npoin, err := header(line, "NPOIN")
			if err != nil {
				return nil, err
			}
			vertices = make([]r3.Vec, npoin)
			for i := 0; i < npoin; i++ {
				f, ok := next()
				if !ok || len(f) < 3 {
					return nil, fmt.Errorf("su2: expected %d points, got %d", npoin, i)
				}
				var x [3]float64
				for j := 0; j < 3; j++ {
					if x[j], err = strconv.ParseFloat(f[j], 64); err != nil {
						return nil, fmt.Errorf("su2 line %d: %v", lineNo, err)
					}
				}
				// Point ID is the optional trailing field
				id := i
				if len(f) > 3 {
					if id, err = strconv.Atoi(f[len(f)-1]); err != nil || id < 0 || id >= npoin {
						return nil, fmt.Errorf("su2 line %d: bad point id %q", lineNo, f[len(f)-1])
					}
				}
				vertices[id] = r3.Vec{X: x[0], Y: x[1], Z: x[2]}
			}

		case strings.HasPrefix(line, "NMARK"):
			nmark, err := header(line, "NMARK")
			if err != nil {
				return nil, err
			}
			for i := 0; i < nmark; i++ {
				f, ok := next()
				if !ok {
					return nil, fmt.Errorf("su2: expected %d markers, got %d", nmark, i)
				}
				tagLine := strings.Join(f, " ")
				if !strings.HasPrefix(tagLine, "MARKER_TAG") || !strings.Contains(tagLine, "=") {
					return nil, fmt.Errorf("su2 line %d: expected MARKER_TAG", lineNo)
				}
				tag := strings.TrimSpace(strings.SplitN(tagLine, "=", 2)[1])
				f, ok = next()
				if !ok {
					return nil, fmt.Errorf("su2: marker %q has no MARKER_ELEMS", tag)
				}
				nelem, err := header(strings.Join(f, " "), "MARKER_ELEMS")
				if err != nil {
					return nil, err
				}
				m := Marker{Name: tag, Faces: make([][3]int, 0, nelem)}
				for j := 0; j < nelem; j++ {
					f, ok = next()
					if !ok {
						return nil, fmt.Errorf("su2: marker %q truncated", tag)
					}
					v, err := ints(f)
					if err != nil {
						return nil, err
					}
					if v[0] != su2Triangle || len(v) < 4 {
						return nil, fmt.Errorf("su2 line %d: unsupported marker element type %d", lineNo, v[0])
					}
					m.Faces = append(m.Faces, [3]int{v[1], v[2], v[3]})
				}
				markers = append(markers, m)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewTetrahedral(vertices, tets, markers)
}
