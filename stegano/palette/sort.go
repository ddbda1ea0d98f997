package palette

import (
	"runtime"
	"sort"
	"sync"
)

type chain struct {
	order []int
	total float64
}

// Sort orders the distinct colors so that neighbours are similar: starting
// from every color in turn, it greedily appends the nearest unused color
// and keeps the chain with the smallest total distance.
//
// The result only depends on the set of colors, not on their order in the
// input. Ties go to the color with the smallest 0xRRGGBB value.
func Sort(colors []Color, d Distance) []Color {
	unique := distinct(colors)
	n := len(unique)
	if n < 3 {
		return unique
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dist[i][j] = d.Between(unique[i], unique[j])
			dist[j][i] = dist[i][j]
		}
	}

	chains := make([]chain, n)
	starts := make(chan int)
	wg := sync.WaitGroup{}
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for start := range starts {
				chains[start] = greedyChain(dist, start)
			}
		}()
	}
	for start := 0; start < n; start++ {
		starts <- start
	}
	close(starts)
	wg.Wait()

	best := 0
	for i := 1; i < n; i++ {
		if chains[i].total < chains[best].total {
			best = i
		}
	}

	sorted := make([]Color, n)
	for i, idx := range chains[best].order {
		sorted[i] = unique[idx]
	}
	return sorted
}

func greedyChain(dist [][]float64, start int) chain {
	n := len(dist)
	used := make([]bool, n)
	order := make([]int, 1, n)
	order[0] = start
	used[start] = true

	total := 0.0
	last := start
	for len(order) < n {
		next := -1
		for j := 0; j < n; j++ {
			if used[j] {
				continue
			}
			if next < 0 || dist[last][j] < dist[last][next] {
				next = j
			}
		}
		total += dist[last][next]
		used[next] = true
		order = append(order, next)
		last = next
	}
	return chain{order: order, total: total}
}

// distinct drops duplicates and orders the rest by packed value.
func distinct(colors []Color) []Color {
	seen := make(map[Color]bool, len(colors))
	out := make([]Color, 0, len(colors))
	for _, c := range colors {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].key() < out[j].key()
	})
	return out
}

// Histogram counts how many pixels reference each of the n palette indices.
// Indices outside the palette are ignored.
func Histogram(n int, pix []uint8) []int {
	hist := make([]int, n)
	for _, p := range pix {
		if int(p) < n {
			hist[p]++
		}
	}
	return hist
}

// Unreferenced lists the palette indices no pixel points to.
func Unreferenced(hist []int) []int {
	out := []int{}
	for i, count := range hist {
		if count == 0 {
			out = append(out, i)
		}
	}
	return out
}

// Index maps each color to its position in the table. For duplicate
// entries the first position wins.
func Index(table []Color) map[Color]int {
	idx := make(map[Color]int, len(table))
	for i, c := range table {
		if _, ok := idx[c]; !ok {
			idx[c] = i
		}
	}
	return idx
}
