package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMapCoversRange(t *testing.T) {
	for _, tc := range []struct{ degree, n int }{
		{1, 0}, {1, 10}, {4, 10}, {8, 287}, {32, 256}, {5, 17},
	} {
		pm := NewPartitionMap(tc.degree, tc.n)
		seen := make([]bool, tc.n)
		for b := 0; b < pm.ParallelDegree; b++ {
			begin, end := pm.Bucket(b)
			assert.True(t, begin <= end)
			for i := begin; i < end; i++ {
				assert.False(t, seen[i], "index %d covered twice", i)
				seen[i] = true
			}
		}
		for i, s := range seen {
			assert.True(t, s, "index %d never covered", i)
		}
	}
}

func TestPartitionMapBalanced(t *testing.T) {
	pm := NewPartitionMap(4, 10)
	var lens []int
	for b := 0; b < pm.ParallelDegree; b++ {
		lens = append(lens, pm.BucketLen(b))
	}
	min, max := lens[0], lens[0]
	for _, l := range lens {
		if l < min {
			min = l
		}
		if l > max {
			max = l
		}
	}
	assert.LessOrEqual(t, max-min, 1)
}
