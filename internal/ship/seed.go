package ship

import (
	"math/rand/v2"
	"strings"
	"sync"
)

const seedAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var (
	defaultSeedMu sync.RWMutex
	defaultSeed   string
)

// SetDefaultSeed sets the seed used for blank input. An empty value means a fresh
// random seed each time.
func SetDefaultSeed(seed string) {
	defaultSeedMu.Lock()
	defer defaultSeedMu.Unlock()
	defaultSeed = strings.TrimSpace(seed)
}

// NormalizeSeed returns seed unchanged unless it is blank, in which case it returns the
// default seed or, with none set, a fresh one.
func NormalizeSeed(seed string) string {
	if strings.TrimSpace(seed) != "" {
		return seed
	}
	defaultSeedMu.RLock()
	d := defaultSeed
	defaultSeedMu.RUnlock()
	if d != "" {
		return d
	}
	return FreshSeed()
}

// FreshSeed returns a new random seed of the form "ship-xxxxxxxx".
func FreshSeed() string {
	var b strings.Builder
	b.WriteString("ship-")
	for range 8 {
		b.WriteByte(seedAlphabet[rand.IntN(len(seedAlphabet))])
	}
	return b.String()
}
