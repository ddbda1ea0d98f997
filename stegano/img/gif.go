package img

import (
	"sort"

	"shroud/stegano/palette"
	"shroud/stegano/payload"
	"shroud/stegano/util"
)

const (
	// the last colors of the sorted table differ most from their
	// neighbours and never carry payload
	skipTrailingColors = 6
	// replacements tried per color that embedding left unreferenced
	maxReinsertAttempts = 32
)

/*
 * gifSortedMethod hides one bit per pixel in the parity of the pixel's
 * rank in the CIEDE2000 sorted color table. A bit that does not match is
 * written by switching to the neighbouring color of the sorted table.
 */
type gifSortedMethod struct {
	image      *GIFImage
	filter     PointFilter
	visualizer *Visualizer
}

// skipped marks the palette indices whose pixels are never used.
func skipped(m *GIFImage) []bool {
	sorted := m.SortedTable(palette.CIEDE2000)
	n := len(sorted)
	count := skipTrailingColors + n%2
	if count > n {
		count = n
	}
	pos := palette.Index(m.Table())
	skip := make([]bool, n)
	for i := 0; i < count; i++ {
		skip[pos[sorted[n-1-i]]] = true
	}
	return skip
}

func (m *gifSortedMethod) Capacity() int {
	hist := m.image.Histogram()
	skipPixels := 0
	for idx, skip := range skipped(m.image) {
		if skip {
			skipPixels += hist[idx]
		}
	}
	filtered := m.filter.Excluded(m.image).Len()
	capacity := (m.image.Width()*m.image.Height() - filtered - skipPixels) / 8
	if capacity < 0 {
		return 0
	}
	return capacity
}

func (m *gifSortedMethod) Visualizer() *Visualizer {
	return m.visualizer
}

func (m *gifSortedMethod) generator(password string) *PointGenerator {
	return NewPointGenerator(m.image.Width(), m.image.Height(), password, m.filter.Excluded(m.image), 1)
}

func (m *gifSortedMethod) Embed(p *payload.Payload, progress *Progress) (Carrier, error) {
	util.DebugPrintln("Performing GIF sorted color table embedding")
	embedder, err := payload.NewEmbedder(p, m.Capacity())
	if err != nil {
		return nil, err
	}

	clone := m.image.Clone().(*GIFImage)
	util.DebugPrintf("Embedding into the first of %d frames", clone.Frames())
	m.visualizer = NewVisualizer(clone)
	w := clone.Width()
	gen := m.generator(p.SteganoPassword)

	skip := skipped(clone)
	ranks := clone.Ranks(palette.CIEDE2000)
	sorted := clone.SortedTable(palette.CIEDE2000)
	pos := palette.Index(clone.Table())
	histBefore := append([]int{}, clone.Histogram()...)
	pix := clone.Pixels()

	bits := embedder.Bits()
	for bits.HasNext() {
		bit := bits.Next()
		var i int
		for {
			point, err := gen.Next()
			if err != nil {
				return nil, &payload.EmbedError{Message: "carrier too small", Err: err}
			}
			i = point.Y*w + point.X
			if !skip[pix[i]] {
				break
			}
		}

		rank := ranks[pix[i]]
		if byte(rank%2) == bit {
			m.visualizer.Visualize(i%w, i/w, Unaltered)
		} else {
			flipped := rank ^ 1
			if flipped >= len(sorted) {
				flipped = len(sorted) - 1
			}
			pix[i] = uint8(pos[sorted[flipped]])
			m.visualizer.Visualize(i%w, i/w, Altered)
		}
		progress.Update(bits.Position()/8, embedder.Len())
	}
	clone.SetPixels(pix)

	if err := m.reinsert(clone, gen, histBefore, skip); err != nil {
		return nil, err
	}
	clone.SortByFrequency()
	return clone, nil
}

// reinsert brings back colors that were referenced before embedding but
// are not any more. One pixel of the most similar color that is referenced
// at least twice and was never touched by the generator is repainted, as
// long as that leaves the filter result unchanged.
func (m *gifSortedMethod) reinsert(clone *GIFImage, gen *PointGenerator, histBefore []int, skip []bool) error {
	table := clone.Table()
	excluded := m.filter.Excluded(m.image)
	w := clone.Width()

	lost := []int{}
	for _, idx := range palette.Unreferenced(clone.Histogram()) {
		if histBefore[idx] > 0 {
			lost = append(lost, idx)
		}
	}
	if len(lost) == 0 {
		return nil
	}
	util.DebugPrintf("Reinserting %d unreferenced colors", len(lost))

	for _, target := range lost {
		similar := make([]int, 0, len(table)-1)
		for idx := range table {
			if idx != target {
				similar = append(similar, idx)
			}
		}
		sort.SliceStable(similar, func(a, b int) bool {
			return palette.CIEDE2000.Between(table[target], table[similar[a]]) <
				palette.CIEDE2000.Between(table[target], table[similar[b]])
		})

		attempts := 0
		fixed := false
		pix := clone.Pixels()
		for _, candidate := range similar {
			if fixed || attempts >= maxReinsertAttempts {
				break
			}
			// a swap across the skipped colors would change the capacity
			if clone.Histogram()[candidate] < 2 || skip[candidate] != skip[target] {
				continue
			}
			for i, idx := range pix {
				if int(idx) != candidate || gen.WasGenerated(i%w, i/w) {
					continue
				}
				pix[i] = uint8(target)
				clone.SetPixels(pix)
				if m.filter.Excluded(clone).Equal(excluded) {
					fixed = true
					break
				}
				pix[i] = idx
				clone.SetPixels(pix)
				attempts++
				if attempts >= maxReinsertAttempts {
					break
				}
			}
		}
		if !fixed {
			util.DebugPrintf("Could not reinsert color %s", table[target])
			if table[target].IsPadding() {
				// dropped on reload, the sorted table would change
				return &payload.EmbedError{Message: "embedding would remove black from the color table"}
			}
		}
	}
	return nil
}

func (m *gifSortedMethod) Extract(p *payload.Payload, progress *Progress) error {
	util.DebugPrintln("Performing GIF sorted color table extraction")
	extractor := payload.NewExtractor(p)
	extractor.SetCapacity(m.Capacity())
	m.visualizer = NewVisualizer(m.image)
	w := m.image.Width()
	gen := m.generator(p.SteganoPassword)

	skip := skipped(m.image)
	ranks := m.image.Ranks(palette.CIEDE2000)
	pix := m.image.Pixels()

	for !extractor.Finished() {
		point, err := gen.Next()
		if err != nil {
			return exhausted(err)
		}
		idx := pix[point.Y*w+point.X]
		if skip[idx] {
			continue
		}
		if err := extractor.ProcessBit(byte(ranks[idx] % 2)); err != nil {
			return err
		}
		m.visualizer.Visualize(point.X, point.Y, Altered)

		if length, ok := extractor.PayloadLength(); ok {
			progress.Update(extractor.ProcessedBytes(), length)
		}
	}
	return nil
}
