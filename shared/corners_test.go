package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCornerIndexDeduplicatesAcrossAdjacentCells(t *testing.T) {
	tbl := NewTables()
	// cell (0,0,0)'s +x+y+z corner is cell (1,1,1)'s origin corner.
	a := tbl.CornerIndex(3, [3]uint32{0, 0, 0}, 7)
	b := tbl.CornerIndex(3, [3]uint32{1, 1, 1}, 0)
	assert.Equal(t, a, b)
	assert.Equal(t, int32(1), tbl.CornerCount())
}

func TestCornerIndexDistinctAcrossDepths(t *testing.T) {
	tbl := NewTables()
	a := tbl.CornerIndex(3, [3]uint32{0, 0, 0}, 0)
	b := tbl.CornerIndex(4, [3]uint32{0, 0, 0}, 0)
	assert.NotEqual(t, a, b)
}

func TestCornerIndexDistinctCornersGetDistinctIds(t *testing.T) {
	tbl := NewTables()
	seen := make(map[int32]bool)
	for c := 0; c < 8; c++ {
		id := tbl.CornerIndex(2, [3]uint32{0, 0, 0}, c)
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Equal(t, int32(8), tbl.CornerCount())
}
