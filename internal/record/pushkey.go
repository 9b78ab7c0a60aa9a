package record

import (
	"crypto/rand"
	"sync"
	"time"
)

// pushAlphabet is ordered by ASCII value so generated keys sort
// lexicographically in creation order.
const pushAlphabet = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

const (
	pushTimeChars = 8
	pushRandChars = 12
)

// keyGenerator allocates unique keys whose lexicographic order follows
// creation time: an 8-character base-64 millisecond timestamp followed by
// 12 random characters. Keys generated within the same millisecond reuse
// the previous random suffix incremented by one, which keeps them both
// unique and ordered. An all-maximum suffix wraps to zero and would regress
// order within that millisecond; with 12 random characters the chance is
// about 2^-72 per millisecond, so no carry into the timestamp is attempted.
// Safe for concurrent use.
type keyGenerator struct {
	mu         sync.Mutex
	lastMillis int64
	lastRand   [pushRandChars]byte

	// now is overridable in tests.
	now func() time.Time
}

func newKeyGenerator() *keyGenerator {
	return &keyGenerator{now: time.Now}
}

func (g *keyGenerator) next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	millis := g.now().UnixMilli()

	if millis == g.lastMillis {
		// Same millisecond: increment the previous suffix.
		for i := pushRandChars - 1; i >= 0; i-- {
			if g.lastRand[i] < 63 {
				g.lastRand[i]++
				break
			}
			g.lastRand[i] = 0
		}
	} else {
		var b [pushRandChars]byte
		if _, err := rand.Read(b[:]); err != nil {
			return "", err
		}
		for i := range b {
			b[i] %= 64
		}
		g.lastRand = b
		g.lastMillis = millis
	}

	var key [pushTimeChars + pushRandChars]byte
	for i := pushTimeChars - 1; i >= 0; i-- {
		key[i] = pushAlphabet[millis%64]
		millis /= 64
	}
	for i, b := range g.lastRand {
		key[pushTimeChars+i] = pushAlphabet[b]
	}

	return string(key[:]), nil
}
