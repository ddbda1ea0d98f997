package palette

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCIEDE2000Reference(t *testing.T) {
	// pairs from the Sharma, Wu and Dalal test data
	tests := []struct {
		lab1, lab2 lab
		expected   float64
	}{
		{lab{50.0000, 2.6772, -79.7751}, lab{50.0000, 0.0000, -82.7485}, 2.0425},
		{lab{50.0000, 3.1571, -77.2803}, lab{50.0000, 0.0000, -82.7485}, 2.8615},
		{lab{50.0000, 2.8361, -74.0200}, lab{50.0000, 0.0000, -82.7485}, 3.4412},
		{lab{50.0000, -1.3802, -84.2814}, lab{50.0000, 0.0000, -82.7485}, 1.0000},
		{lab{50.0000, 0.0000, 0.0000}, lab{50.0000, -1.0000, 2.0000}, 2.3669},
		{lab{50.0000, 2.5000, 0.0000}, lab{50.0000, 0.0000, -2.5000}, 4.3065},
		{lab{60.2574, -34.0099, 36.2677}, lab{60.4626, -34.1751, 39.4387}, 1.2644},
		{lab{22.7233, 20.0904, -46.6940}, lab{23.0331, 14.9730, -42.5619}, 2.0373},
	}
	for _, test := range tests {
		got := ciede2000(test.lab1, test.lab2)
		if math.Abs(got-test.expected) > 1e-4 {
			t.Errorf("ciede2000(%v, %v) = %.4f, expected %.4f", test.lab1, test.lab2, got, test.expected)
		}
	}
}

func TestRGB2Lab(t *testing.T) {
	white := rgb2lab(Opaque(255, 255, 255))
	assert.InDelta(t, 100.0, white[0], 0.01)
	assert.InDelta(t, 0.0, white[1], 0.01)
	assert.InDelta(t, 0.0, white[2], 0.01)

	black := rgb2lab(Opaque(0, 0, 0))
	assert.InDelta(t, 0.0, black[0], 0.01)
}

func TestDistanceSymmetric(t *testing.T) {
	a := Opaque(200, 10, 40)
	b := Opaque(15, 99, 220)
	for _, d := range []Distance{CIEDE2000, RGBEuclid} {
		assert.Equal(t, 0.0, d.Between(a, a))
		assert.Equal(t, d.Between(a, b), d.Between(b, a))
		assert.Greater(t, d.Between(a, b), 0.0)
	}
	assert.InDelta(t, math.Sqrt(3*100), RGBEuclid.Between(Opaque(0, 0, 0), Opaque(10, 10, 10)), 1e-9)
}

func testColors() []Color {
	colors := []Color{}
	for i := 0; i < 24; i++ {
		colors = append(colors, Opaque(uint8(i*37), uint8(255-i*11), uint8((i*91)%256)))
	}
	return colors
}

func chainLength(colors []Color, d Distance) float64 {
	total := 0.0
	for i := 1; i < len(colors); i++ {
		total += d.Between(colors[i-1], colors[i])
	}
	return total
}

func TestSortOrderIndependent(t *testing.T) {
	colors := testColors()
	sorted := Sort(colors, CIEDE2000)
	require.Len(t, sorted, len(colors))
	assert.ElementsMatch(t, colors, sorted)

	reversed := make([]Color, len(colors))
	for i, c := range colors {
		reversed[len(colors)-1-i] = c
	}
	withDup := append(append([]Color{}, reversed...), colors[3], colors[7])
	assert.Equal(t, sorted, Sort(withDup, CIEDE2000))
	assert.Equal(t, sorted, Sort(colors, CIEDE2000))
}

func TestSortIsGreedyBest(t *testing.T) {
	colors := testColors()
	sorted := Sort(colors, RGBEuclid)
	// the best greedy chain is never longer than the chain in input order
	assert.LessOrEqual(t, chainLength(sorted, RGBEuclid), chainLength(colors, RGBEuclid))

	// gray ramp has an obvious optimum
	ramp := []Color{Opaque(90, 90, 90), Opaque(0, 0, 0), Opaque(60, 60, 60), Opaque(30, 30, 30)}
	assert.Equal(t, []Color{Opaque(0, 0, 0), Opaque(30, 30, 30), Opaque(60, 60, 60), Opaque(90, 90, 90)}, Sort(ramp, RGBEuclid))
}

func TestSortSmall(t *testing.T) {
	assert.Empty(t, Sort(nil, CIEDE2000))
	assert.Equal(t, []Color{Opaque(1, 2, 3)}, Sort([]Color{Opaque(1, 2, 3), Opaque(1, 2, 3)}, CIEDE2000))
}

func TestHistogram(t *testing.T) {
	hist := Histogram(4, []uint8{0, 0, 2, 2, 2, 9})
	assert.Equal(t, []int{2, 0, 3, 0}, hist)
	assert.Equal(t, []int{1, 3}, Unreferenced(hist))
}

func TestIndex(t *testing.T) {
	idx := Index([]Color{Opaque(1, 1, 1), Opaque(2, 2, 2), Opaque(1, 1, 1)})
	assert.Equal(t, 0, idx[Opaque(1, 1, 1)])
	assert.Equal(t, 1, idx[Opaque(2, 2, 2)])
}
