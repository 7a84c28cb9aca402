// Package matchid generates sortable match identifiers in TypeID form:
// a lowercase prefix, an underscore, and a UUIDv7 encoded as 26 characters
// of Crockford base32. IDs generated later sort after earlier ones.
package matchid

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// DefaultPrefix is used by New.
const DefaultPrefix = "match"

// Crockford's base32 alphabet, lowercase
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

const encodedLen = 26

// RandSource supplies the random bits of an ID. *dice.Rand satisfies it,
// which keeps simulated matches reproducible.
type RandSource interface {
	Intn(n int) int
}

// Generator builds IDs with a fixed prefix.
type Generator struct {
	prefix string
	src    RandSource
	now    func() time.Time
}

// NewGenerator returns a generator for prefix. A nil src uses crypto/rand.
func NewGenerator(prefix string, src RandSource) *Generator {
	return &Generator{prefix: prefix, src: src, now: time.Now}
}

// New returns a fresh match ID using crypto/rand.
func New() string {
	return NewGenerator(DefaultPrefix, nil).Generate()
}

// Generate returns a new ID.
func (g *Generator) Generate() string {
	u := g.uuidV7()
	return g.prefix + "_" + encode(u)
}

func (g *Generator) uuidV7() [16]byte {
	var u [16]byte
	ms := g.now().UnixMilli()
	for i := 0; i < 6; i++ {
		u[i] = byte(ms >> (40 - 8*i))
	}
	if g.src != nil {
		for i := 6; i < 16; i++ {
			u[i] = byte(g.src.Intn(256))
		}
	} else if _, err := rand.Read(u[6:]); err != nil {
		panic("matchid: crypto/rand failed: " + err.Error())
	}
	u[6] = (u[6] & 0x0f) | 0x70 // version 7
	u[8] = (u[8] & 0x3f) | 0x80 // variant 10
	return u
}

// encode writes the 128-bit value as 26 base32 characters, treating it as a
// 130-bit number with two leading zero bits.
func encode(u [16]byte) string {
	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(u[i])
		lo = lo<<8 | uint64(u[i+8])
	}
	out := make([]byte, encodedLen)
	for i := encodedLen - 1; i >= 0; i-- {
		out[i] = alphabet[lo&0x1f]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out)
}

func decode(s string) ([16]byte, error) {
	var u [16]byte
	var hi, lo uint64
	for i := 0; i < len(s); i++ {
		v := strings.IndexByte(alphabet, s[i])
		if v < 0 {
			return u, fmt.Errorf("invalid character %q at position %d", s[i], i)
		}
		hi = hi<<5 | lo>>59
		lo = lo<<5 | uint64(v)
	}
	for i := 0; i < 8; i++ {
		u[7-i] = byte(hi >> (8 * i))
		u[15-i] = byte(lo >> (8 * i))
	}
	return u, nil
}

// Parse splits id into its prefix and creation time.
func Parse(id string) (string, time.Time, error) {
	if err := Validate(id); err != nil {
		return "", time.Time{}, err
	}
	sep := strings.LastIndexByte(id, '_')
	u, err := decode(id[sep+1:])
	if err != nil {
		return "", time.Time{}, err
	}
	var ms int64
	for i := 0; i < 6; i++ {
		ms = ms<<8 | int64(u[i])
	}
	return id[:sep], time.UnixMilli(ms), nil
}

// Validate checks that id has a prefix and a well-formed suffix.
func Validate(id string) error {
	sep := strings.LastIndexByte(id, '_')
	if sep <= 0 {
		return fmt.Errorf("match ID %q has no prefix", id)
	}
	suffix := id[sep+1:]
	if len(suffix) != encodedLen {
		return fmt.Errorf("match ID suffix must be exactly %d characters, got %d", encodedLen, len(suffix))
	}
	if suffix[0] > '7' {
		return fmt.Errorf("match ID suffix must start with 0-7, got %c", suffix[0])
	}
	for i := 0; i < len(suffix); i++ {
		if strings.IndexByte(alphabet, suffix[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", suffix[i], i)
		}
	}
	return nil
}
