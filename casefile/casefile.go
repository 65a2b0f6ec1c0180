// Package casefile reads YAML case descriptions and builds the grid, rock,
// fluid, boundary conditions and drive flux field they describe
package casefile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ghodss/yaml"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gotpfa/boundary"
	"github.com/notargets/gotpfa/fluid"
	"github.com/notargets/gotpfa/fluid/relperm"
	"github.com/notargets/gotpfa/grid"
	"github.com/notargets/gotpfa/pressure"
	"github.com/notargets/gotpfa/rock"
	"github.com/notargets/gotpfa/tpfa"
	"github.com/notargets/gotpfa/transport"
)

type GridSpec struct {
	Type string     `json:"Type"` // cartesian or su2
	Dims [3]int     `json:"Dims"`
	Size [3]float64 `json:"Size"`
	File string     `json:"File"` // su2 mesh, relative to the case file
}

type RockSpec struct {
	Porosity     float64    `json:"Porosity"`
	Permeability [3]float64 `json:"Permeability"` // diagonal
}

type FluidSpec struct {
	Viscosity [2]float64     `json:"Viscosity"`
	Density   [2]float64     `json:"Density"`
	RelPerm   string         `json:"RelPerm"`
	Params    relperm.Params `json:"Params"`
}

// BCSpec assigns saturation conditions by grid tag name
type BCSpec struct {
	Dirichlet map[string]float64 `json:"Dirichlet"`
	Periodic  [][2]string        `json:"Periodic"`
	Default   *float64           `json:"Default"` // Dirichlet saturation for all remaining faces
}

// DriveSpec selects the flux field, either a uniform velocity or an
// incompressible pressure solve with boundary pressures by tag name
type DriveSpec struct {
	Type     string             `json:"Type"`
	Velocity [3]float64         `json:"Velocity"`
	Pressure map[string]float64 `json:"Pressure"`
}

type ScheduleSpec struct {
	Steps int     `json:"Steps"`
	Dt    float64 `json:"Dt"`
}

// Case is the content of a case file
type Case struct {
	Title             string                 `json:"Title"`
	Grid              GridSpec               `json:"Grid"`
	Rock              RockSpec               `json:"Rock"`
	Fluid             FluidSpec              `json:"Fluid"`
	BCs               BCSpec                 `json:"BCs"`
	Drive             DriveSpec              `json:"Drive"`
	Schedule          ScheduleSpec           `json:"Schedule"`
	Gravity           [3]float64             `json:"Gravity"`
	Injection         map[int]float64        `json:"Injection"` // cell -> rate, positive injects phase 1
	InitialSaturation float64                `json:"InitialSaturation"`
	Solver            map[string]interface{} `json:"Solver"` // transport solver options
	dir               string
}

// Setup is everything a transport run needs, built from a Case
type Setup struct {
	Grid       *grid.Grid
	Rock       *rock.Properties
	Fluid      *fluid.TwoPhase
	Conditions boundary.Set
	Flux       transport.PressureSolution
	Injection  *sparse.Vector
	Gravity    r3.Vec
	Saturation []float64
}

func (c *Case) Parse(data []byte) error {
	return yaml.Unmarshal(data, c)
}

// Read parses a case file
func Read(filename string) (c *Case, err error) {
	var data []byte
	if data, err = os.ReadFile(filename); err != nil {
		return
	}
	c = &Case{dir: filepath.Dir(filename)}
	if err = c.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return
}

func (c *Case) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", c.Title)
	fmt.Printf("[%s]\t\t= Grid %v %v %s\n", c.Grid.Type, c.Grid.Dims, c.Grid.Size, c.Grid.File)
	fmt.Printf("%8.5f\t\t= Porosity\n", c.Rock.Porosity)
	fmt.Printf("%v\t\t= Permeability\n", c.Rock.Permeability)
	fmt.Printf("%v\t\t= Viscosity\n", c.Fluid.Viscosity)
	fmt.Printf("[%s]\t\t= RelPerm %v\n", c.Fluid.RelPerm, c.Fluid.Params)
	fmt.Printf("[%s]\t= Drive\n", c.Drive.Type)
	fmt.Printf("[%d x %8.5f]\t= Schedule\n", c.Schedule.Steps, c.Schedule.Dt)
	keys := make([]string, 0, len(c.BCs.Dirichlet))
	for k := range c.BCs.Dirichlet {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = Dirichlet{%g}\n", key, c.BCs.Dirichlet[key])
	}
	for _, p := range c.BCs.Periodic {
		fmt.Printf("BCs[%s, %s] = Periodic\n", p[0], p[1])
	}
}

// Build constructs the grid, rock, fluid, conditions and drive of the case
func (c *Case) Build() (s *Setup, err error) {
	s = &Setup{Gravity: r3.Vec{X: c.Gravity[0], Y: c.Gravity[1], Z: c.Gravity[2]}}
	if s.Grid, err = c.buildGrid(); err != nil {
		return nil, err
	}
	g := s.Grid
	s.Rock = rock.NewDiagonal(g.NumCells, c.Rock.Porosity, c.Rock.Permeability)
	if err = s.Rock.Validate(g); err != nil {
		return nil, err
	}
	if s.Fluid, err = c.buildFluid(); err != nil {
		return nil, err
	}
	if s.Conditions, err = c.buildConditions(g); err != nil {
		return nil, err
	}
	if s.Flux, err = c.buildDrive(g, s.Rock); err != nil {
		return nil, err
	}
	if len(c.Injection) != 0 {
		cells := make([]int, 0, len(c.Injection))
		for cell := range c.Injection {
			if cell < 0 || cell >= g.NumCells {
				return nil, fmt.Errorf("injection cell %d outside grid of %d cells", cell, g.NumCells)
			}
			cells = append(cells, cell)
		}
		sort.Ints(cells)
		rates := make([]float64, len(cells))
		for i, cell := range cells {
			rates[i] = c.Injection[cell]
		}
		s.Injection = sparse.NewVector(g.NumCells, cells, rates)
	}
	s.Saturation = make([]float64, g.NumCells)
	for i := range s.Saturation {
		s.Saturation[i] = c.InitialSaturation
	}
	return
}

func (c *Case) buildGrid() (*grid.Grid, error) {
	switch c.Grid.Type {
	case "cartesian", "":
		d, l := c.Grid.Dims, c.Grid.Size
		return grid.NewCartesian(d[0], d[1], d[2], l[0], l[1], l[2])
	case "su2":
		file := c.Grid.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(c.dir, file)
		}
		return grid.ReadSU2File(file)
	}
	return nil, fmt.Errorf("unknown grid type %q", c.Grid.Type)
}

func (c *Case) buildFluid() (*fluid.TwoPhase, error) {
	name := c.Fluid.RelPerm
	if name == "" {
		name = "linear"
	}
	kr, err := relperm.New(name)
	if err != nil {
		return nil, err
	}
	if err = kr.Init(c.Fluid.Params); err != nil {
		return nil, err
	}
	return fluid.New(c.Fluid.Viscosity, c.Fluid.Density, kr)
}

func (c *Case) tag(g *grid.Grid, name string) (int, error) {
	tag, ok := g.Tags[name]
	if !ok {
		return 0, fmt.Errorf("grid has no boundary tag %q, have %v", name, g.TagNames())
	}
	return tag, nil
}

func (c *Case) buildConditions(g *grid.Grid) (conds boundary.Set, err error) {
	conds = boundary.NewSet()
	for _, p := range c.BCs.Periodic {
		var a, b int
		if a, err = c.tag(g, p[0]); err != nil {
			return
		}
		if b, err = c.tag(g, p[1]); err != nil {
			return
		}
		var pair boundary.Set
		if pair, err = boundary.PairSides(g, a, b, 1e-8); err != nil {
			return nil, err
		}
		conds.Merge(pair)
	}
	for name, sat := range c.BCs.Dirichlet {
		var tag int
		if tag, err = c.tag(g, name); err != nil {
			return
		}
		conds.Side(g, tag, boundary.Dirichlet{Saturation: sat})
	}
	if c.BCs.Default != nil {
		conds.Fill(g, boundary.Dirichlet{Saturation: *c.BCs.Default})
	}
	return
}

func (c *Case) buildDrive(g *grid.Grid, r *rock.Properties) (transport.PressureSolution, error) {
	switch c.Drive.Type {
	case "velocity", "":
		v := c.Drive.Velocity
		return pressure.Uniform(g, r3.Vec{X: v[0], Y: v[1], Z: v[2]}), nil
	case "pressure":
		trans, err := tpfa.Build(g, r)
		if err != nil {
			return nil, err
		}
		opts := pressure.Options{Dirichlet: make(map[int]float64, len(c.Drive.Pressure))}
		for name, p := range c.Drive.Pressure {
			tag, err := c.tag(g, name)
			if err != nil {
				return nil, err
			}
			opts.Dirichlet[tag] = p
		}
		sol, err := pressure.SolveTPFA(g, trans, opts)
		if err != nil {
			return nil, err
		}
		return sol, nil
	}
	return nil, fmt.Errorf("unknown drive type %q", c.Drive.Type)
}
