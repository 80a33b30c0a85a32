// Package gameid mints the identifiers handed out by POST /games: UUIDv7
// values rendered as 26-character Crockford base32, so ids sort by creation
// time and stay readable in logs and URLs.
package gameid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Crockford's base32 alphabet (the TypeID variant, lowercase).
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// RandSource supplies the random tail of an id. Injected by tests that need
// reproducible ids; production uses the uuid package's entropy.
type RandSource interface {
	Intn(n int) int
}

// Generator produces game ids, optionally from an injected RandSource.
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a generator. A nil RandSource means crypto entropy.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new game id.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new game id from this generator's randomness.
func (g *Generator) Generate() string {
	return encodeBase32(g.newUUIDv7())
}

func (g *Generator) newUUIDv7() [16]byte {
	if g.randSource == nil {
		if id, err := uuid.NewV7(); err == nil {
			return [16]byte(id)
		}
		// fall through to the hand-rolled layout on entropy failure
	}

	// UUIDv7 layout: 48-bit unix-ms timestamp, then version/variant bits
	// over random data.
	var id [16]byte
	now := time.Now().UnixMilli()
	id[0] = byte(now >> 40)
	id[1] = byte(now >> 32)
	id[2] = byte(now >> 24)
	id[3] = byte(now >> 16)
	id[4] = byte(now >> 8)
	id[5] = byte(now)

	nanos := time.Now().UnixNano()
	for i := 6; i < 16; i++ {
		if g.randSource != nil {
			id[i] = byte(g.randSource.Intn(256))
		} else {
			id[i] = byte(nanos >> (uint(i-6) * 4))
		}
	}

	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}

// encodeBase32 renders 128 bits as 26 characters, most significant bits
// first, with the final group padded by two zero bits.
func encodeBase32(data [16]byte) string {
	var out [26]byte
	var acc uint32
	bits := 0
	n := 0
	for _, b := range data {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			out[n] = alphabet[(acc>>uint(bits-5))&0x1f]
			bits -= 5
			n++
		}
	}
	out[n] = alphabet[(acc<<uint(5-bits))&0x1f]
	return string(out[:])
}

// Validate checks that an id has the shape Generate produces.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("game id must be exactly 26 characters, got %d", len(id))
	}

	// 128 bits into 130 means the first character only spans 3 data bits.
	if id[0] > '7' {
		return fmt.Errorf("game id first character must be 0-7, got %c", id[0])
	}

	for i, char := range id {
		valid := false
		for _, validChar := range alphabet {
			if char == validChar {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}

	return nil
}
