package img

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointSet(t *testing.T) {
	set := NewPointSet(10, 7)
	set.Add(3, 4)
	set.Add(3, 4)
	set.Add(9, 6)
	set.Add(10, 0)
	set.Add(-1, 2)
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains(3, 4))
	assert.False(t, set.Contains(4, 3))
	assert.True(t, set.Contains(9, 6))
	assert.False(t, set.Contains(10, 0))

	other := NewPointSet(10, 7)
	other.Add(0, 0)
	other.Add(3, 4)
	assert.False(t, set.Equal(other))
	set.Union(other)
	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains(0, 0))
}

func drainGenerator(g *PointGenerator) []image.Point {
	points := []image.Point{}
	for {
		p, err := g.Next()
		if err != nil {
			return points
		}
		points = append(points, p)
	}
}

func TestPointGeneratorVisitsAll(t *testing.T) {
	g := NewPointGenerator(13, 9, "pw", nil, 1)
	points := drainGenerator(g)
	require.Len(t, points, 13*9)

	seen := NewPointSet(13, 9)
	for _, p := range points {
		seen.Add(p.X, p.Y)
		assert.True(t, g.WasGenerated(p.X, p.Y))
	}
	assert.Equal(t, 13*9, seen.Len())

	_, err := g.Next()
	assert.True(t, errors.Is(err, ErrPointsExhausted))
}

func TestPointGeneratorDeterministic(t *testing.T) {
	a := drainGenerator(NewPointGenerator(20, 20, "pw", nil, 1))
	b := drainGenerator(NewPointGenerator(20, 20, "pw", nil, 1))
	c := drainGenerator(NewPointGenerator(20, 20, "other", nil, 1))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestPointGeneratorSkipsExcluded(t *testing.T) {
	excluded := NewPointSet(8, 8)
	for x := 0; x < 8; x++ {
		excluded.Add(x, 2)
	}
	all := drainGenerator(NewPointGenerator(8, 8, "pw", nil, 1))
	filtered := drainGenerator(NewPointGenerator(8, 8, "pw", excluded, 1))
	require.Len(t, filtered, 56)

	// the walk is the same, excluded points are just left out
	expected := []image.Point{}
	for _, p := range all {
		if p.Y != 2 {
			expected = append(expected, p)
		}
	}
	assert.Equal(t, expected, filtered)
}

func TestPointGeneratorIterations(t *testing.T) {
	g := NewPointGenerator(4, 4, "pw", nil, 3)
	first, err := g.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, g.IterationCount())
	for i := 2; i <= 3; i++ {
		p, err := g.Next()
		require.NoError(t, err)
		assert.Equal(t, first, p)
		assert.Equal(t, i, g.IterationCount())
	}
	next, err := g.Next()
	require.NoError(t, err)
	assert.NotEqual(t, first, next)
	assert.Equal(t, 1, g.IterationCount())
	assert.True(t, g.WasGenerated(first.X, first.Y))
}

func TestProgress(t *testing.T) {
	reported := []int{}
	p := NewProgress(func(percent int) {
		reported = append(reported, percent)
	})
	for _, done := range []int{0, 1, 1, 5, 3, 10, 10} {
		p.Update(done, 10)
	}
	assert.Equal(t, []int{10, 50, 100}, reported)

	var none *Progress
	assert.NotPanics(t, func() { none.Update(1, 2) })
	NewProgress(nil).Update(1, 2)
}
