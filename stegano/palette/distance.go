package palette

import (
	"math"
	"sync"
)

// Distance is a color difference metric. Lower means more similar.
type Distance int

const (
	CIEDE2000 Distance = iota
	RGBEuclid
)

func (d Distance) String() string {
	switch d {
	case CIEDE2000:
		return "ciede2000"
	case RGBEuclid:
		return "rgb-euclid"
	}
	return "unknown"
}

// upper bound of entries per metric before the cache starts over
const maxCacheEntries = 1 << 20

type pairCache struct {
	mu      sync.RWMutex
	entries map[uint64]float64
}

var caches = [...]*pairCache{
	CIEDE2000: {entries: map[uint64]float64{}},
	RGBEuclid: {entries: map[uint64]float64{}},
}

// symmetric key, (a, b) and (b, a) share the entry
func pairKey(a, b Color) uint64 {
	pa, pb := a.Packed(), b.Packed()
	if pa > pb {
		pa, pb = pb, pa
	}
	return uint64(pa)<<24 | uint64(pb)
}

// Between returns the distance of two colors. Results are memoized and safe
// for concurrent use.
func (d Distance) Between(a, b Color) float64 {
	if a == b {
		return 0
	}
	cache := caches[d]
	key := pairKey(a, b)

	cache.mu.RLock()
	dist, ok := cache.entries[key]
	cache.mu.RUnlock()
	if ok {
		return dist
	}

	dist = d.compute(a, b)
	cache.mu.Lock()
	if len(cache.entries) >= maxCacheEntries {
		cache.entries = map[uint64]float64{}
	}
	cache.entries[key] = dist
	cache.mu.Unlock()
	return dist
}

func (d Distance) compute(a, b Color) float64 {
	if d == RGBEuclid {
		dr := float64(a.R) - float64(b.R)
		dg := float64(a.G) - float64(b.G)
		db := float64(a.B) - float64(b.B)
		return math.Sqrt(dr*dr + dg*dg + db*db)
	}
	return ciede2000(rgb2lab(a), rgb2lab(b))
}

type lab [3]float64

// D65 reference white
const (
	refX = 0.950470
	refY = 1.0
	refZ = 1.088830
)

func linearize(v uint8) float64 {
	c := float64(v) / 255.0
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func labF(t float64) float64 {
	if t > 0.008856 {
		return math.Cbrt(t)
	}
	return 7.787037*t + 4.0/29
}

// rgb2lab maps sRGB to L*a*b* through CIE XYZ.
func rgb2lab(c Color) lab {
	r, g, b := linearize(c.R), linearize(c.G), linearize(c.B)

	x := (0.4124564*r + 0.3575761*g + 0.1804375*b) / refX
	y := (0.2126729*r + 0.7151522*g + 0.0721750*b) / refY
	z := (0.0193339*r + 0.1191920*g + 0.9503041*b) / refZ

	fx, fy, fz := labF(x), labF(y), labF(z)
	return lab{116*fy - 16, 500 * (fx - fy), 200 * (fy - fz)}
}

func pow7(x float64) float64 {
	x2 := x * x
	return x2 * x2 * x2 * x
}

// ciede2000 follows Sharma, Wu and Dalal with unit parametric factors.
func ciede2000(lab1, lab2 lab) float64 {
	const kl, kc, kh = 1.0, 1.0, 1.0
	pi := math.Pi
	pow25 := pow7(25)

	L1, a1, b1 := lab1[0], lab1[1], lab1[2]
	L2, a2, b2 := lab2[0], lab2[1], lab2[2]

	cab := 0.5 * (math.Hypot(a1, b1) + math.Hypot(a2, b2))
	g := 0.5 * (1 - math.Sqrt(pow7(cab)/(pow7(cab)+pow25)))
	ap1, ap2 := (1+g)*a1, (1+g)*a2
	cp1, cp2 := math.Hypot(ap1, b1), math.Hypot(ap2, b2)
	cpp := cp1 * cp2

	hp1 := math.Atan2(b1, ap1)
	if hp1 < 0 {
		hp1 += 2 * pi
	}
	hp2 := math.Atan2(b2, ap2)
	if hp2 < 0 {
		hp2 += 2 * pi
	}

	dL := L2 - L1
	dC := cp2 - cp1
	dhp := hp2 - hp1
	if dhp > pi {
		dhp -= 2 * pi
	}
	if dhp < -pi {
		dhp += 2 * pi
	}
	if cpp == 0 {
		dhp = 0
	}
	dH := 2 * math.Sqrt(cpp) * math.Sin(dhp/2)

	lp := 0.5 * (L1 + L2)
	cp := 0.5 * (cp1 + cp2)

	hp := 0.5 * (hp1 + hp2)
	if math.Abs(hp1-hp2) > pi {
		hp -= pi
	}
	if hp < 0 {
		hp += 2 * pi
	}
	if cpp == 0 {
		hp = hp1 + hp2
	}

	lpm502 := (lp - 50) * (lp - 50)
	sl := 1 + 0.015*lpm502/math.Sqrt(20+lpm502)
	sc := 1 + 0.045*cp
	t := 1 - 0.17*math.Cos(hp-pi/6) +
		0.24*math.Cos(2*hp) +
		0.32*math.Cos(3*hp+pi/30) -
		0.20*math.Cos(4*hp-63*pi/180)
	sh := 1 + 0.015*cp*t
	ex := (180/pi*hp - 275) / 25
	delthetarad := 30 * pi / 180 * math.Exp(-ex*ex)
	rc := 2 * math.Sqrt(pow7(cp)/(pow7(cp)+pow25))
	rt := -math.Sin(2*delthetarad) * rc

	dL /= kl * sl
	dC /= kc * sc
	dH /= kh * sh
	return math.Sqrt(dL*dL + dC*dC + dH*dH + rt*dC*dH)
}
