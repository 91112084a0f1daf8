package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtomicAddFloat64(t *testing.T) {
	var total float64
	var wg sync.WaitGroup
	const n = 1000
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			AtomicAddFloat64(&total, 0.5)
		}()
	}
	wg.Wait()
	assert.Equal(t, float64(n)*0.5, total)
}

func TestAtomicOrInt32(t *testing.T) {
	var bits int32
	var wg sync.WaitGroup
	for _, b := range []int32{1, 2, 4, 8, 16, 32, 64} {
		wg.Add(1)
		go func(b int32) {
			defer wg.Done()
			AtomicOrInt32(&bits, b)
		}(b)
	}
	wg.Wait()
	assert.Equal(t, int32(127), bits)
}
