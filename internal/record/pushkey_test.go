package record

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyGenerator_KeysAreOrdered(t *testing.T) {
	g := newKeyGenerator()

	ts := time.UnixMilli(1700000000000)
	g.now = func() time.Time {
		ts = ts.Add(time.Millisecond)
		return ts
	}

	var keys []string
	for i := 0; i < 100; i++ {
		k, err := g.next()
		require.NoError(t, err)
		require.Len(t, k, pushTimeChars+pushRandChars)
		keys = append(keys, k)
	}

	assert.True(t, sort.StringsAreSorted(keys), "keys must sort in creation order")
}

func TestKeyGenerator_SameMillisecondStaysOrderedAndUnique(t *testing.T) {
	g := newKeyGenerator()
	g.now = func() time.Time { return time.UnixMilli(1700000000000) }

	seen := map[string]struct{}{}
	var prev string
	for i := 0; i < 1000; i++ {
		k, err := g.next()
		require.NoError(t, err)

		_, dup := seen[k]
		require.False(t, dup, "duplicate key %q", k)
		seen[k] = struct{}{}

		if prev != "" {
			assert.Greater(t, k, prev)
		}
		prev = k
	}
}

func TestKeyGenerator_ConcurrentUse(t *testing.T) {
	g := newKeyGenerator()

	const workers = 8
	const perWorker = 200

	var mu sync.Mutex
	seen := map[string]struct{}{}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				k, err := g.next()
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				seen[k] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker, "all keys must be unique")
}
