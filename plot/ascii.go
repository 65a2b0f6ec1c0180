// Package plot draws saturation profiles, as text in the terminal or in an
// OpenGL chart window
package plot

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

// ASCII renders one series per line of cells as a terminal graph
func ASCII(sat []float64, height, width int, caption string) string {
	if len(sat) == 0 {
		return ""
	}
	return asciigraph.Plot(sat,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// Caption labels a profile with its report step and simulated time
func Caption(step int, time float64) string {
	return fmt.Sprintf("saturation, step %d, t = %8.5f", step, time)
}
