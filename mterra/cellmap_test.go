package mterra_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evosoup/mactierra/mterra"
)

func TestCellMap_InsertAndSpaceAt(t *testing.T) {
	cm := mterra.NewCellMap(100)

	require.True(t, cm.Insert(1, 10, 20))
	assert.False(t, cm.SpaceAt(15, 5))
	assert.False(t, cm.SpaceAt(5, 10)) // overlaps [10,30) at the tail
	assert.True(t, cm.SpaceAt(30, 10))
	assert.True(t, cm.SpaceAt(0, 10))
}

func TestCellMap_InsertRejectsOverlap(t *testing.T) {
	cm := mterra.NewCellMap(100)
	require.True(t, cm.Insert(1, 10, 20))
	assert.False(t, cm.Insert(2, 20, 5))
	assert.False(t, cm.Insert(2, 0, 15))
}

func TestCellMap_InsertRejectsOutOfRange(t *testing.T) {
	cm := mterra.NewCellMap(100)
	assert.False(t, cm.Insert(1, 95, 10))
	assert.False(t, cm.Insert(1, -1, 10))
}

func TestCellMap_RemoveFreesSpace(t *testing.T) {
	cm := mterra.NewCellMap(100)
	require.True(t, cm.Insert(1, 10, 20))
	cm.Remove(1)

	assert.True(t, cm.SpaceAt(10, 20))
	_, ok := cm.Interval(1)
	assert.False(t, ok)
}

func TestCellMap_FullnessNeverExceedsOne(t *testing.T) {
	cm := mterra.NewCellMap(100)
	require.True(t, cm.Insert(1, 0, 60))
	require.True(t, cm.Insert(2, 60, 40))

	assert.InDelta(t, 1.0, cm.Fullness(), 1e-9)
}

func TestCellMap_SearchForSpace_OriginFirst(t *testing.T) {
	cm := mterra.NewCellMap(100)
	addr, ok := cm.SearchForSpace(50, 5, 10, mterra.DirBothways)
	require.True(t, ok)
	assert.Equal(t, 50, addr)
}

func TestCellMap_SearchForSpace_ScansOutward(t *testing.T) {
	cm := mterra.NewCellMap(100)
	require.True(t, cm.Insert(1, 48, 10)) // occupies [48,58)

	addr, ok := cm.SearchForSpace(50, 3, 20, mterra.DirUpward)
	require.True(t, ok)
	assert.GreaterOrEqual(t, addr, 58)
}

func TestCellMap_SearchForSpace_GivesUpBeyondMaxRange(t *testing.T) {
	cm := mterra.NewCellMap(10)
	require.True(t, cm.Insert(1, 0, 10))

	_, ok := cm.SearchForSpace(0, 1, 2, mterra.DirBothways)
	assert.False(t, ok)
}

func TestCellMap_Intervals_SortedByStart(t *testing.T) {
	cm := mterra.NewCellMap(100)
	require.True(t, cm.Insert(1, 50, 5))
	require.True(t, cm.Insert(2, 10, 5))
	require.True(t, cm.Insert(3, 80, 5))

	ivs := cm.Intervals()
	require.Len(t, ivs, 3)
	assert.Equal(t, 10, ivs[0].Start)
	assert.Equal(t, 50, ivs[1].Start)
	assert.Equal(t, 80, ivs[2].Start)
}
