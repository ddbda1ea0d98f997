package img

import (
	"errors"
	"image"
	"math/bits"
	"math/rand"

	"shroud/cryptography"
)

// ErrPointsExhausted is returned once every point has been generated.
var ErrPointsExhausted = errors.New("no more points available")

// PointSet is a set of image coordinates.
type PointSet struct {
	width, height int
	words         []uint64
	count         int
}

func NewPointSet(width, height int) *PointSet {
	return &PointSet{
		width:  width,
		height: height,
		words:  make([]uint64, (width*height+63)/64),
	}
}

func (s *PointSet) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.width && y < s.height
}

func (s *PointSet) Add(x, y int) {
	if !s.inside(x, y) {
		return
	}
	i := y*s.width + x
	mask := uint64(1) << (i % 64)
	if s.words[i/64]&mask == 0 {
		s.words[i/64] |= mask
		s.count++
	}
}

func (s *PointSet) Contains(x, y int) bool {
	if !s.inside(x, y) {
		return false
	}
	i := y*s.width + x
	return s.words[i/64]&(uint64(1)<<(i%64)) != 0
}

// Len is the number of points in the set.
func (s *PointSet) Len() int {
	return s.count
}

// Union adds every point of other, both sets must have the same size.
func (s *PointSet) Union(other *PointSet) {
	s.count = 0
	for i := range s.words {
		s.words[i] |= other.words[i]
		s.count += bits.OnesCount64(s.words[i])
	}
}

func (s *PointSet) Equal(other *PointSet) bool {
	if s.width != other.width || s.height != other.height || s.count != other.count {
		return false
	}
	for i := range s.words {
		if s.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

/*
 * PointGenerator walks the coordinates of an image in a password-seeded
 * random order. Excluded points are skipped; all others are yielded
 * maxIterations times in a row, so a caller can embed into several bit
 * planes of the same point. The walk is a lazily evaluated Fisher-Yates
 * shuffle, every point comes up at most once.
 */
type PointGenerator struct {
	width, height int
	excluded      *PointSet
	maxIterations int

	rnd   *rand.Rand
	swaps map[int]int
	drawn int

	generated *PointSet
	current   image.Point
	iteration int
}

// NewPointGenerator creates the walk for a width x height image. excluded
// may be nil.
func NewPointGenerator(width, height int, password string, excluded *PointSet, maxIterations int) *PointGenerator {
	if maxIterations < 1 {
		maxIterations = 1
	}
	return &PointGenerator{
		width:         width,
		height:        height,
		excluded:      excluded,
		maxIterations: maxIterations,
		rnd:           cryptography.SeededRandom(password),
		swaps:         map[int]int{},
		generated:     NewPointSet(width, height),
	}
}

func (g *PointGenerator) at(i int) int {
	if v, ok := g.swaps[i]; ok {
		return v
	}
	return i
}

// draw returns the next coordinate of the shuffle, excluded or not.
func (g *PointGenerator) draw() (int, bool) {
	total := g.width * g.height
	if g.drawn >= total {
		return 0, false
	}
	i := g.drawn
	j := i + g.rnd.Intn(total-i)
	vi, vj := g.at(i), g.at(j)
	g.swaps[j] = vi
	delete(g.swaps, i)
	g.drawn++
	return vj, true
}

// Next returns the next point. The same point is returned maxIterations
// times before a new one is drawn.
func (g *PointGenerator) Next() (image.Point, error) {
	if g.iteration > 0 && g.iteration < g.maxIterations {
		g.iteration++
		return g.current, nil
	}
	for {
		v, ok := g.draw()
		if !ok {
			return image.Point{}, ErrPointsExhausted
		}
		x, y := v%g.width, v/g.width
		if g.excluded != nil && g.excluded.Contains(x, y) {
			continue
		}
		g.current = image.Point{X: x, Y: y}
		g.iteration = 1
		g.generated.Add(x, y)
		return g.current, nil
	}
}

// IterationCount is how often the current point has been returned, from 1
// to maxIterations. Bit plane IterationCount()-1 is the one to use.
func (g *PointGenerator) IterationCount() int {
	return g.iteration
}

// WasGenerated reports whether Next ever returned the point.
func (g *PointGenerator) WasGenerated(x, y int) bool {
	return g.generated.Contains(x, y)
}
