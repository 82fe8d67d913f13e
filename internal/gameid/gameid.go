// Package gameid generates round identifiers: UUIDv7 values written as 26
// characters of Crockford base32, so IDs sort by creation time.
package gameid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/blackjack-trainer/internal/randutil"
)

const (
	alphabet = "0123456789abcdefghjkmnpqrstvwxyz"
	idLength = 26
)

// Generator creates round IDs. It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	clock quartz.Clock
	rng   randutil.Source
}

// NewGenerator returns a generator reading time from clock. When rng is nil
// the random bits come from crypto/rand.
func NewGenerator(clock quartz.Clock, rng randutil.Source) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Generator{clock: clock, rng: rng}
}

// Generate returns an ID from the wall clock and crypto/rand
func Generate() string {
	return NewGenerator(nil, nil).Generate()
}

// Generate returns a new ID
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return encode(g.uuidV7())
}

func (g *Generator) uuidV7() [16]byte {
	var id [16]byte

	ms := uint64(g.clock.Now().UnixMilli())
	binary.BigEndian.PutUint16(id[0:2], uint16(ms>>32))
	binary.BigEndian.PutUint32(id[2:6], uint32(ms))

	if g.rng != nil {
		for i := 6; i < len(id); i++ {
			id[i] = byte(g.rng.IntN(256))
		}
	} else if _, err := rand.Read(id[6:]); err != nil {
		panic("gameid: crypto/rand failed: " + err.Error())
	}

	id[6] = id[6]&0x0f | 0x70 // version 7
	id[8] = id[8]&0x3f | 0x80 // RFC 4122 variant
	return id
}

// encode writes the 128-bit value as 26 base32 digits, most significant
// first. The two spare high bits are zero, so the first digit is 0-7.
func encode(id [16]byte) string {
	hi := binary.BigEndian.Uint64(id[:8])
	lo := binary.BigEndian.Uint64(id[8:])

	var out [idLength]byte
	for i := idLength - 1; i >= 0; i-- {
		out[i] = alphabet[lo&0x1f]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}

func decode(s string) (hi, lo uint64, err error) {
	if len(s) != idLength {
		return 0, 0, fmt.Errorf("round ID must be exactly %d characters, got %d", idLength, len(s))
	}
	if s[0] > '7' {
		return 0, 0, fmt.Errorf("round ID first character must be 0-7, got %c", s[0])
	}
	for i := 0; i < len(s); i++ {
		v := strings.IndexByte(alphabet, s[i])
		if v < 0 {
			return 0, 0, fmt.Errorf("invalid character %c at position %d", s[i], i)
		}
		hi = hi<<5 | lo>>59
		lo = lo<<5 | uint64(v)
	}
	return hi, lo, nil
}

// Validate checks that id is 26 base32 characters encoding at most 128 bits
func Validate(id string) error {
	_, _, err := decode(id)
	return err
}

// Timestamp returns the millisecond creation time embedded in id
func Timestamp(id string) (time.Time, error) {
	hi, _, err := decode(id)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(int64(hi >> 16)), nil
}
