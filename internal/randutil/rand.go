package randutil

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The helper centralises how we derive the two 64-bit seeds required by
// rand/v2 so that every call site gets reproducible sequences from the same
// seed. Deck shuffles, AI decisions and tests all construct their randomness
// through here.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Auto returns a *rand.Rand seeded from the system entropy source, falling
// back to the wall clock if entropy is unavailable.
func Auto() *rand.Rand {
	var b [8]byte
	if _, err := cryptorand.Read(b[:]); err != nil {
		return New(time.Now().UnixNano())
	}
	return New(int64(binary.LittleEndian.Uint64(b[:])))
}

// ForSeed maps the config convention onto a generator: zero means "pick a
// random seed", anything else is used verbatim.
func ForSeed(seed int64) *rand.Rand {
	if seed == 0 {
		return Auto()
	}
	return New(seed)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
