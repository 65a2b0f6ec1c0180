package plot

import (
	"image/color"
	"math"
	"time"

	"github.com/notargets/avs/chart2d"
	utils2 "github.com/notargets/avs/utils"
)

// Segments converts the polyline through (x[i], y[i]) into the pairwise
// segment list chart2d draws, x0,y0,x1,y1 for every segment
func Segments(x, y []float64) (line []float32) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n < 2 {
		return nil
	}
	line = make([]float32, 0, 4*(n-1))
	for i := 0; i < n-1; i++ {
		line = append(line,
			float32(x[i]), float32(y[i]),
			float32(x[i+1]), float32(y[i+1]),
		)
	}
	return
}

// Bounds returns the range of x padded so the chart never collapses
func Bounds(x []float64) (lo, hi float32) {
	l, h := math.MaxFloat64, -math.MaxFloat64
	for _, v := range x {
		l, h = math.Min(l, v), math.Max(h, v)
	}
	if len(x) == 0 {
		return 0, 1
	}
	if h-l < 1e-12 {
		l, h = l-0.5, h+0.5
	}
	return float32(l), float32(h)
}

// Chart shows saturation against cell centre position. Each Update redraws
// the profile in the next colour of the palette.
type Chart struct {
	ch      *chart2d.Chart2D
	x       []float64
	palette []color.RGBA
	count   int
	Delay   time.Duration
}

// NewChart opens a window for profiles sampled at positions x, with
// saturation on the vertical axis
func NewChart(x []float64, delay time.Duration) *Chart {
	xMin, xMax := Bounds(x)
	return &Chart{
		ch:      chart2d.NewChart2D(xMin, xMax, -0.05, 1.05, 1920, 1080, utils2.WHITE, utils2.BLACK),
		x:       x,
		palette: []color.RGBA{utils2.RED, utils2.GREEN, utils2.BLUE, utils2.WHITE},
		Delay:   delay,
	}
}

func (c *Chart) Update(sat []float64) {
	c.ch.AddLine(Segments(c.x, sat), c.palette[c.count%len(c.palette)])
	c.count++
	if c.Delay > 0 {
		time.Sleep(c.Delay)
	}
}
