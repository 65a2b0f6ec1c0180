package fluid

// Pair is a two-phase quantity whose components sum to one, such as the
// saturations (s, 1-s) or the fractional flows (f, 1-f).
// The zero value is (0, 1).
type Pair struct {
	first float64
}

// NewPair returns (v, 1-v)
func NewPair(v float64) Pair {
	return Pair{first: v}
}

// First returns the phase 1 component
func (p Pair) First() float64 { return p.first }

// Second returns the phase 2 component
func (p Pair) Second() float64 { return 1 - p.first }

// Array returns both components
func (p Pair) Array() [2]float64 { return [2]float64{p.first, 1 - p.first} }

// Expand converts phase 1 saturations into pairs, reusing dst when large enough
func Expand(s []float64, dst []Pair) []Pair {
	if cap(dst) < len(s) {
		dst = make([]Pair, len(s))
	}
	dst = dst[:len(s)]
	for i, v := range s {
		dst[i] = NewPair(v)
	}
	return dst
}

// Collapse writes the phase 1 component of every pair into s
func Collapse(p []Pair, s []float64) {
	for i := range p {
		s[i] = p[i].first
	}
}
