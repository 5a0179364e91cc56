package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockIDGenerator(t *testing.T) {
	t.Run("uses the clock when it moves forward", func(t *testing.T) {
		now := time.UnixMilli(5000)
		gen := NewClockIDGenerator(func() time.Time { return now })

		assert.Equal(t, int64(5000), gen.NextID())
		now = now.Add(10 * time.Millisecond)
		assert.Equal(t, int64(5010), gen.NextID())
	})

	t.Run("bumps within the same millisecond", func(t *testing.T) {
		gen := NewClockIDGenerator(fixedClock())

		first := gen.NextID()
		assert.Equal(t, first+1, gen.NextID())
		assert.Equal(t, first+2, gen.NextID())
	})

	t.Run("never returns an observed id", func(t *testing.T) {
		gen := NewClockIDGenerator(func() time.Time { return time.UnixMilli(10) })
		gen.Observe(500)
		gen.Observe(20)

		assert.Equal(t, int64(501), gen.NextID())
	})

	t.Run("survives a clock going backwards", func(t *testing.T) {
		now := time.UnixMilli(9000)
		gen := NewClockIDGenerator(func() time.Time { return now })

		a := gen.NextID()
		now = time.UnixMilli(100)
		assert.Greater(t, gen.NextID(), a)
	})

	t.Run("unique under concurrency", func(t *testing.T) {
		gen := NewClockIDGenerator(fixedClock())

		var mu sync.Mutex
		seen := map[int64]bool{}
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					id := gen.NextID()
					mu.Lock()
					seen[id] = true
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Len(t, seen, 1000)
	})
}
