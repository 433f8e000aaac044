package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock(t *testing.T) {
	tests := []struct {
		name  string
		start int64
	}{
		{"fresh", 0},
		{"continued", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClock(tt.start)
			assert.Equal(t, tt.start, c.Current())
			assert.Equal(t, tt.start+1, c.Next())
			assert.Equal(t, tt.start+2, c.Next())
			assert.Equal(t, tt.start+2, c.Current())
		})
	}
}

func TestClock_UniqueStampsAcrossGoroutines(t *testing.T) {
	c := NewClock(0)
	const goroutines = 20
	const stamps = 50

	var mu sync.Mutex
	seen := make(map[int64]bool)

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range stamps {
				seq := c.Next()
				mu.Lock()
				seen[seq] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*stamps)
	assert.Equal(t, int64(goroutines*stamps), c.Current())
}
