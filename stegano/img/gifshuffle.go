package img

import (
	"math/big"

	"shroud/cryptography"
	"shroud/stegano/palette"
	"shroud/stegano/payload"
	"shroud/stegano/util"
)

/*
 * gifShuffleMethod stores the payload in the order of the color table,
 * the pixels stay untouched apart from being renumbered. The framed
 * payload, prefixed with a 1 byte so leading zeros survive, is read as a
 * number and written as a permutation of a password-shuffled reference
 * order of the colors.
 */
type gifShuffleMethod struct {
	image *GIFImage
}

// ShuffleCapacity is the number of payload bytes a table of n colors can
// hold: floor(log2(n!) / 8) - 1.
func ShuffleCapacity(n int) int {
	if n < 2 {
		return 0
	}
	factorial := new(big.Int).MulRange(1, int64(n))
	// floor(log2(n!)) for n! >= 2
	bits := factorial.BitLen() - 1
	capacity := bits/8 - 1
	if capacity < 0 {
		return 0
	}
	return capacity
}

func (m *gifShuffleMethod) Capacity() int {
	return ShuffleCapacity(len(m.image.Table()))
}

func (m *gifShuffleMethod) Visualizer() *Visualizer {
	return nil
}

// reference is the password dependent order both sides agree on.
func reference(m *GIFImage, password string) []palette.Color {
	ref := append([]palette.Color{}, m.SortedTable(palette.RGBEuclid)...)
	rnd := cryptography.SeededRandom(password)
	rnd.Shuffle(len(ref), func(i, j int) {
		ref[i], ref[j] = ref[j], ref[i]
	})
	return ref
}

func (m *gifShuffleMethod) Embed(p *payload.Payload, progress *Progress) (Carrier, error) {
	util.DebugPrintln("Performing GIF shuffle embedding")
	embedder, err := payload.NewEmbedder(p, m.Capacity())
	if err != nil {
		return nil, err
	}

	clone := m.image.Clone().(*GIFImage)
	table := clone.Table()
	n := len(table)
	ref := reference(clone, p.SteganoPassword)

	value := new(big.Int).SetBytes(util.Concat([]byte{1}, embedder.Bytes()))
	radix := new(big.Int)
	pos := new(big.Int)

	shuffled := make([]palette.Color, n)
	for i := 0; i < n; i++ {
		radix.SetInt64(int64(i + 1))
		value.DivMod(value, radix, pos)
		at := int(pos.Int64())
		copy(shuffled[at+1:i+1], shuffled[at:i])
		shuffled[at] = ref[n-1-i]
		progress.Update(i+1, n)
	}

	newIndex := palette.Index(shuffled)
	remap := make([]uint8, n)
	for i, c := range table {
		remap[i] = uint8(newIndex[c])
	}
	clone.SetTable(shuffled, remap)
	return clone, nil
}

func (m *gifShuffleMethod) Extract(p *payload.Payload, progress *Progress) error {
	util.DebugPrintln("Performing GIF shuffle extraction")
	table := m.image.Table()
	n := len(table)
	ref := reference(m.image, p.SteganoPassword)
	positions := palette.Index(table)

	value := new(big.Int)
	for i := 0; i < n-1; i++ {
		at := positions[ref[i]]
		value.Mul(value, big.NewInt(int64(n-i)))
		value.Add(value, big.NewInt(int64(at)))
		for _, c := range ref[i+1:] {
			if positions[c] > at {
				positions[c]--
			}
		}
		progress.Update(i+2, n)
	}

	data := value.Bytes()
	if len(data) == 0 || data[0] != 1 {
		return payload.NewKeyError("missing payload marker", nil)
	}
	extractor := payload.NewExtractor(p)
	extractor.SetCapacity(m.Capacity())
	for _, b := range data[1:] {
		if err := extractor.ProcessByte(b); err != nil {
			return err
		}
		if extractor.Finished() {
			return nil
		}
	}
	return payload.NewKeyError("payload is shorter than its header claims", nil)
}
