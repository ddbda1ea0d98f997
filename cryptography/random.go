package cryptography

import (
	"math/rand"
)

const (
	lcgMultiplier = 0x5DEECE66D
	lcgAddend     = 0xB
	lcgMask       = (1 << 48) - 1
)

// lcgSource is a 48 bit linear congruential generator. It is only used for
// reproducible shuffles, never for key material.
type lcgSource struct {
	state uint64
}

func (s *lcgSource) Seed(seed int64) {
	s.state = (uint64(seed) ^ lcgMultiplier) & lcgMask
}

func (s *lcgSource) next(bits uint) uint64 {
	s.state = (s.state*lcgMultiplier + lcgAddend) & lcgMask
	return s.state >> (48 - bits)
}

func (s *lcgSource) Int63() int64 {
	return int64(s.next(31)<<32 | s.next(32))
}

// SeededRandom returns a deterministic random source for the password.
func SeededRandom(password string) *rand.Rand {
	src := &lcgSource{}
	src.Seed(PasswordSeed(password))
	return rand.New(src)
}

// Keystream returns n pseudo random bytes derived from password.
func Keystream(password string, n int) []byte {
	rnd := SeededRandom(password)
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(rnd.Int63() >> 23)
	}
	return out
}
