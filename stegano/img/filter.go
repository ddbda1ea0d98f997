package img

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"shroud/stegano/palette"
	"shroud/stegano/util"
)

type FilterKind int

const (
	// FilterNone embeds into every point.
	FilterNone FilterKind = iota
	// FilterHomogeneous skips points inside flat areas.
	FilterHomogeneous
)

func (k FilterKind) String() string {
	if k == FilterHomogeneous {
		return "homogeneous"
	}
	return "none"
}

func ParseFilterKind(s string) (FilterKind, error) {
	switch strings.ToLower(s) {
	case "", "homogeneous":
		return FilterHomogeneous, nil
	case "none":
		return FilterNone, nil
	}
	return FilterNone, fmt.Errorf("unknown point filter %q", s)
}

/*
 * PointFilter decides which points of a carrier must not carry payload.
 * Filters never look at the bit planes embedding writes to, so the result
 * for a steganogram equals the result for its carrier.
 */
type PointFilter interface {
	Kind() FilterKind
	// MaxLsbCount is the number of bit planes per channel embedding may use.
	MaxLsbCount() int
	// Excluded returns the filtered points. The result is cached in the
	// carrier and must not be modified.
	Excluded(c Carrier) *PointSet
}

// NewPointFilter returns the filter variant for the carrier format.
func NewPointFilter(kind FilterKind, format Format) PointFilter {
	switch {
	case kind == FilterHomogeneous && format.TrueColor():
		return rgbHomogeneous{}
	case kind == FilterHomogeneous && format == FormatGIF:
		return gifHomogeneous{}
	case format.TrueColor():
		return noneFilter{maxLsb: 8}
	}
	return noneFilter{maxLsb: 1}
}

type noneFilter struct {
	maxLsb int
}

func (f noneFilter) Kind() FilterKind { return FilterNone }
func (f noneFilter) MaxLsbCount() int { return f.maxLsb }

func (f noneFilter) Excluded(c Carrier) *PointSet {
	return c.filters().get("none", func() *PointSet {
		return NewPointSet(c.Width(), c.Height())
	})
}

// rowSlices splits rows [0, rows) into up to one chunk per CPU and runs fn
// on every chunk in parallel. Every chunk gets its own set; they are merged
// when all are done.
func rowSlices(width, height, rows int, fn func(set *PointSet, from, to int)) *PointSet {
	result := NewPointSet(width, height)
	if rows <= 0 {
		return result
	}
	slices := runtime.NumCPU()
	if slices > rows {
		slices = rows
	}
	perSlice := (rows + slices - 1) / slices

	sets := make([]*PointSet, slices)
	wg := sync.WaitGroup{}
	for i := 0; i < slices; i++ {
		from := i * perSlice
		to := from + perSlice
		if to > rows {
			to = rows
		}
		sets[i] = NewPointSet(width, height)
		if from >= to {
			continue
		}
		wg.Add(1)
		go func(set *PointSet, from, to int) {
			defer wg.Done()
			fn(set, from, to)
		}(sets[i], from, to)
	}
	wg.Wait()

	for _, set := range sets {
		result.Union(set)
	}
	return result
}

// only the lowest bit of every color channel is written
const maskRGBLsb = ^uint32(0x00010101)

// rgbHomogeneous excludes every 3x3 block whose nine pixels have the same
// color once the channel LSBs are ignored.
type rgbHomogeneous struct{}

func (f rgbHomogeneous) Kind() FilterKind { return FilterHomogeneous }
func (f rgbHomogeneous) MaxLsbCount() int { return 1 }

func (f rgbHomogeneous) Excluded(c Carrier) *PointSet {
	return c.filters().get("homogeneous", func() *PointSet {
		m := c.(*RGBImage)
		w, h := m.Width(), m.Height()
		values := make([]uint32, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				values[y*w+x] = m.argb(x, y) & maskRGBLsb
			}
		}

		// center rows 1 .. h-2
		set := rowSlices(w, h, h-2, func(set *PointSet, from, to int) {
			for cy := from + 1; cy <= to; cy++ {
				for cx := 1; cx < w-1; cx++ {
					if flatBlock(values, w, cx, cy) {
						for y := cy - 1; y <= cy+1; y++ {
							for x := cx - 1; x <= cx+1; x++ {
								set.Add(x, y)
							}
						}
					}
				}
			}
		})
		util.DebugPrintf("Homogeneous filter excluded %d of %d points", set.Len(), w*h)
		return set
	})
}

func flatBlock(values []uint32, w, cx, cy int) bool {
	ref := values[cy*w+cx]
	for y := cy - 1; y <= cy+1; y++ {
		for x := cx - 1; x <= cx+1; x++ {
			if values[y*w+x] != ref {
				return false
			}
		}
	}
	return true
}

// gifHomogeneous excludes runs of at least three columns of three rows
// that have the same sorted rank once the parity bit is ignored.
type gifHomogeneous struct{}

const minHomogeneousRun = 3

func (f gifHomogeneous) Kind() FilterKind { return FilterHomogeneous }
func (f gifHomogeneous) MaxLsbCount() int { return 1 }

func (f gifHomogeneous) Excluded(c Carrier) *PointSet {
	return c.filters().get("homogeneous", func() *PointSet {
		m := c.(*GIFImage)
		w, h := m.Width(), m.Height()
		ranks := m.Ranks(palette.CIEDE2000)
		pix := m.Pixels()
		values := make([]int, len(pix))
		for i, idx := range pix {
			values[i] = ranks[idx] &^ 1
		}

		// windows of the rows y, y+1, y+2
		set := rowSlices(w, h, h-2, func(set *PointSet, from, to int) {
			for y := from; y < to; y++ {
				collectRuns(set, values, w, y)
			}
		})
		util.DebugPrintf("Homogeneous filter excluded %d of %d points", set.Len(), w*h)
		return set
	})
}

func collectRuns(set *PointSet, values []int, w, y int) {
	flushRun := func(start, end int) {
		if end-start < minHomogeneousRun {
			return
		}
		for x := start; x < end; x++ {
			for dy := 0; dy < 3; dy++ {
				set.Add(x, y+dy)
			}
		}
	}

	start := -1
	for x := 0; x < w; x++ {
		v := values[y*w+x]
		flat := values[(y+1)*w+x] == v && values[(y+2)*w+x] == v
		if flat && start >= 0 && values[y*w+start] == v {
			continue
		}
		if start >= 0 {
			flushRun(start, x)
		}
		if flat {
			start = x
		} else {
			start = -1
		}
	}
	if start >= 0 {
		flushRun(start, w)
	}
}
