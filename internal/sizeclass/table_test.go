package sizeclass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_StrictlyAscending(t *testing.T) {
	require.True(t, len(Table) < 16, "spec requires a linear-scan-friendly table")
	for i := 1; i < len(Table); i++ {
		assert.Less(t, Table[i-1].SlotSize, Table[i].SlotSize)
	}
}

func TestTable_SatisfiesCapacityInvariant(t *testing.T) {
	for i, c := range Table {
		assert.LessOrEqualf(t, int64(c.SlotSize)*int64(c.SlotCount)+HeaderSize, int64(c.ChunkPages)*PageSize,
			"class %d violates slot_size*slot_count+header <= chunk_pages*page_size", i)
		assert.LessOrEqual(t, c.SlotCount, int32(OccupancyBits))
	}
}

func TestTable_EmptyPatternMarksOutOfRangeBitsOnly(t *testing.T) {
	for i, c := range Table {
		ones := 0
		for bit := int32(0); bit < OccupancyBits; bit++ {
			set := c.Empty[bit/64]&(1<<uint(bit%64)) != 0
			if bit < c.SlotCount {
				assert.False(t, set, "class %d bit %d should start clear", i, bit)
			} else {
				assert.True(t, set, "class %d bit %d should be a permanent sentinel", i, bit)
				if set {
					ones++
				}
			}
		}
		assert.Equal(t, int(OccupancyBits-c.SlotCount), ones)
	}
}

func TestClassFor_SmallestFit(t *testing.T) {
	idx := ClassFor(1)
	require.NotEqual(t, None, idx)
	assert.Equal(t, Table[0].SlotSize, Table[idx].SlotSize)

	idx = ClassFor(Table[0].SlotSize)
	assert.Equal(t, 0, idx)

	idx = ClassFor(Table[0].SlotSize + 1)
	assert.Equal(t, 1, idx)
}

func TestClassFor_TooBig(t *testing.T) {
	biggest := Table[len(Table)-1].SlotSize
	assert.Equal(t, None, ClassFor(biggest+1))
}
