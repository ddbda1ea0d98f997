package img

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterKind(t *testing.T) {
	kind, err := ParseFilterKind("none")
	require.NoError(t, err)
	assert.Equal(t, FilterNone, kind)
	kind, err = ParseFilterKind("Homogeneous")
	require.NoError(t, err)
	assert.Equal(t, FilterHomogeneous, kind)
	_, err = ParseFilterKind("blur")
	assert.Error(t, err)
}

func TestMaxLsbCount(t *testing.T) {
	assert.Equal(t, 8, NewPointFilter(FilterNone, FormatPNG).MaxLsbCount())
	assert.Equal(t, 8, NewPointFilter(FilterNone, FormatBMP).MaxLsbCount())
	assert.Equal(t, 1, NewPointFilter(FilterNone, FormatGIF).MaxLsbCount())
	assert.Equal(t, 1, NewPointFilter(FilterNone, FormatJPEG).MaxLsbCount())
	assert.Equal(t, 1, NewPointFilter(FilterHomogeneous, FormatPNG).MaxLsbCount())
	assert.Equal(t, 1, NewPointFilter(FilterHomogeneous, FormatGIF).MaxLsbCount())
}

func TestRGBHomogeneousFilter(t *testing.T) {
	m := NewRGBImage(FormatPNG, noiseImage(30, 30, image.Rect(5, 5, 15, 12)))
	// LSB noise inside the flat area must not matter
	m.SetRGB(7, 7, [3]uint8{0x81, 0x80, 0x81})

	filter := NewPointFilter(FilterHomogeneous, FormatPNG)
	excluded := filter.Excluded(m)
	assert.Equal(t, 10*7, excluded.Len())
	assert.True(t, excluded.Contains(5, 5))
	assert.True(t, excluded.Contains(14, 11))
	assert.False(t, excluded.Contains(15, 11))
	assert.False(t, excluded.Contains(4, 5))

	// cached until the next mutation
	assert.Same(t, excluded, filter.Excluded(m))
	m.SetRGB(10, 8, [3]uint8{0, 0, 0})
	changed := filter.Excluded(m)
	assert.NotSame(t, excluded, changed)
	assert.Less(t, changed.Len(), excluded.Len())
}

func TestRGBFilterStableAfterEmbedding(t *testing.T) {
	carrier := NewRGBImage(FormatPNG, noiseImage(64, 64, image.Rect(8, 8, 40, 30)))
	method, err := NewMethod(carrier, DefaultOptions())
	require.NoError(t, err)
	steganogram, err := method.Embed(messagePayload("pw", "a message long enough to touch the flat area maybe"), nil)
	require.NoError(t, err)

	filter := NewPointFilter(FilterHomogeneous, FormatPNG)
	fresh := NewRGBImage(FormatPNG, carrier.Image())
	assert.True(t, filter.Excluded(carrier).Equal(filter.Excluded(fresh)))
	assert.True(t, filter.Excluded(carrier).Equal(filter.Excluded(steganogram)))
}

func TestGIFHomogeneousFilter(t *testing.T) {
	m, err := NewGIFImage(noiseGIF(40, 30, 32, image.Rect(4, 4, 14, 10)))
	require.NoError(t, err)
	filter := NewPointFilter(FilterHomogeneous, FormatGIF)
	excluded := filter.Excluded(m)

	for y := 4; y < 10; y++ {
		for x := 4; x < 14; x++ {
			assert.True(t, excluded.Contains(x, y), "(%d, %d) should be excluded", x, y)
		}
	}
	assert.GreaterOrEqual(t, excluded.Len(), 60)
	assert.True(t, filter.Excluded(m).Equal(excluded))
}

func TestCollectRuns(t *testing.T) {
	w := 8
	values := []int{
		2, 2, 2, 2, 4, 4, 6, 6,
		2, 2, 2, 2, 4, 4, 6, 6,
		2, 2, 2, 8, 4, 4, 6, 6,
	}
	set := NewPointSet(w, 3)
	collectRuns(set, values, w, 0)
	// columns 0-2 are a run of 3, 4-5 only two wide; 6-7 too
	assert.Equal(t, 9, set.Len())
	assert.True(t, set.Contains(2, 2))
	assert.False(t, set.Contains(3, 0))
	assert.False(t, set.Contains(4, 0))

	values = []int{
		0, 0, 0, 0, 0, 1, 1, 1,
		0, 0, 0, 0, 0, 1, 1, 1,
		0, 0, 0, 0, 0, 1, 1, 1,
	}
	set = NewPointSet(w, 3)
	collectRuns(set, values, w, 0)
	assert.Equal(t, 24, set.Len())
}
