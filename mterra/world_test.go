package mterra_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evosoup/mactierra/mterra"
	"github.com/evosoup/mactierra/mterra/rng"
)

func newTestWorld(t *testing.T, soupSize int) *mterra.World {
	t.Helper()
	settings := mterra.DefaultSettings(soupSize)
	return mterra.NewWorld(settings, rng.New(1))
}

func TestWorld_InsertCreature(t *testing.T) {
	w := newTestWorld(t, 1000)
	genome := []mterra.Instruction{mterra.OpNop0, mterra.OpNop1, mterra.OpDivide}

	c, err := w.InsertCreature(10, genome)
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, 10, c.Location)
	assert.Equal(t, 3, c.Length)
	assert.Equal(t, 10, c.IP)
	assert.Equal(t, 1, w.NumAdultCreatures())
	assert.Equal(t, uint32(1), w.Inventory().Genotypes()[0].NumAlive())

	iv, ok := w.CellMap().Interval(c.ID)
	require.True(t, ok)
	assert.Equal(t, 10, iv.Start)
	assert.Equal(t, 3, iv.Length)
}

func TestWorld_InsertCreatureRejectsOverlap(t *testing.T) {
	w := newTestWorld(t, 100)
	genome := []mterra.Instruction{mterra.OpNop0, mterra.OpNop0}

	_, err := w.InsertCreature(0, genome)
	require.NoError(t, err)

	_, err = w.InsertCreature(1, genome)
	assert.Error(t, err)
}

func TestWorld_InsertedGenomeMatchesSoup(t *testing.T) {
	w := newTestWorld(t, 100)
	genome := []mterra.Instruction{mterra.OpNop0, mterra.OpMal, mterra.OpDivide}
	c, err := w.InsertCreature(5, genome)
	require.NoError(t, err)

	assert.Equal(t, mterra.Genome(genome), c.GenomeData(w.Soup()))
}

func TestWorld_IterateOnEmptyWorldIsNoOp(t *testing.T) {
	w := newTestWorld(t, 100)
	assert.NoError(t, w.Iterate(1000))
}

func TestWorld_IterateAdvancesInstructionCounter(t *testing.T) {
	w := newTestWorld(t, 1000)
	genome := []mterra.Instruction{mterra.OpNop0, mterra.OpNop0, mterra.OpNop0}
	_, err := w.InsertCreature(100, genome)
	require.NoError(t, err)

	require.NoError(t, w.Iterate(10))
	assert.Equal(t, uint64(10), w.TimeSlicer().InstructionsExecuted())
}

// TestWorld_MalMovIABDivide exercises the full birth pipeline end to end: a
// parent with CX pre-loaded allocates space for a daughter, copies three of
// its own instructions into it via mov_iab, then divides. It is a mechanical
// exercise of mal/mov_iab/divide wiring, not a faithful self-replicator.
func TestWorld_MalMovIABDivide(t *testing.T) {
	w := newTestWorld(t, 1000)
	genome := []mterra.Instruction{
		mterra.OpMal,    // 0: daughter length comes from CX
		mterra.OpMovAB,  // 1: BX = AX (daughter offset)
		mterra.OpSubAB,  // 2: AX = AX - BX = 0 (own start)
		mterra.OpMovIAB, // 3
		mterra.OpMovIAB, // 4
		mterra.OpMovIAB, // 5
		mterra.OpDivide, // 6
	}
	parent, err := w.InsertCreature(100, genome)
	require.NoError(t, err)
	parent.CPU.CX = 3

	require.NoError(t, w.Iterate(7))

	assert.Equal(t, 2, w.NumAdultCreatures())

	var daughter *mterra.Creature
	for _, c := range w.Creatures() {
		if c.ID != parent.ID {
			daughter = c
		}
	}
	require.NotNil(t, daughter)

	assert.Equal(t, 3, daughter.Length)
	assert.Equal(t, mterra.Genome{mterra.OpMal, mterra.OpMovAB, mterra.OpSubAB}, daughter.GenomeData(w.Soup()))
	assert.Nil(t, parent.Daughter)
	assert.Equal(t, 1, daughter.Divergence)
	assert.Same(t, parent.Genotype, daughter.Genotype)

	iv, ok := w.CellMap().Interval(daughter.ID)
	require.True(t, ok)
	assert.Equal(t, daughter.Location, iv.Start)
}

func TestWorld_InvariantCellmapFullnessNeverExceedsOne(t *testing.T) {
	w := newTestWorld(t, 50)
	genome := []mterra.Instruction{mterra.OpNop0, mterra.OpNop0, mterra.OpNop0, mterra.OpNop0, mterra.OpNop0}
	_, err := w.InsertCreature(0, genome)
	require.NoError(t, err)

	require.NoError(t, w.Iterate(200))
	assert.LessOrEqual(t, w.CellMap().Fullness(), 1.0)
}

func TestWorld_ReapThresholdCullsAtSliceBoundary(t *testing.T) {
	settings := mterra.DefaultSettings(30)
	settings.ReapThreshold = 0.3
	settings.DefaultSliceSize = 2
	settings.SliceSizeVariance = 0
	w := mterra.NewWorld(settings, rng.New(1))

	genome := make([]mterra.Instruction, 10)
	for i := range genome {
		genome[i] = mterra.OpNop0
	}

	first, err := w.InsertCreature(0, genome)
	require.NoError(t, err)
	_, err = w.InsertCreature(10, genome)
	require.NoError(t, err)
	_, err = w.InsertCreature(20, genome)
	require.NoError(t, err)

	require.Greater(t, w.CellMap().Fullness(), settings.ReapThreshold)

	require.NoError(t, w.Iterate(3)) // exhaust the first creature's 2-cycle slice, triggering the reap check

	assert.Equal(t, 2, w.NumAdultCreatures())
	_, stillAlive := w.Creature(first.ID)
	assert.False(t, stillAlive)
}

func TestWorld_SetSettingsPreservesSoupSize(t *testing.T) {
	w := newTestWorld(t, 1000)
	newSettings := mterra.DefaultSettings(999999)
	newSettings.CosmicRate = 0.5
	w.SetSettings(newSettings)

	assert.Equal(t, 1000, w.Settings().SoupSize)
	assert.Equal(t, 0.5, w.Settings().CosmicRate)
}

func TestWorld_StepCreatureRunsExactlyOneCycle(t *testing.T) {
	w := newTestWorld(t, 1000)
	genome := []mterra.Instruction{mterra.OpNop0, mterra.OpNop0, mterra.OpNop0}
	_, err := w.InsertCreature(0, genome)
	require.NoError(t, err)

	ran, err := w.StepCreature()
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, uint64(1), w.TimeSlicer().InstructionsExecuted())
}

func TestWorld_StepCreatureOnEmptyWorld(t *testing.T) {
	w := newTestWorld(t, 100)
	ran, err := w.StepCreature()
	require.NoError(t, err)
	assert.False(t, ran)
}

// TestWorld_StepCreature_DrainsOtherSlicesBeforeRepeating exercises
// stepCreature's full contract: finishing the current creature's slice
// lets every other live creature run out its own current slice before the
// original creature is stepped again.
func TestWorld_StepCreature_DrainsOtherSlicesBeforeRepeating(t *testing.T) {
	settings := mterra.DefaultSettings(1000)
	settings.DefaultSliceSize = 2
	settings.SliceSizeVariance = 0
	w := mterra.NewWorld(settings, rng.New(1))

	genome := []mterra.Instruction{mterra.OpNop0, mterra.OpNop0, mterra.OpNop0, mterra.OpNop0, mterra.OpNop0}
	a, err := w.InsertCreature(0, genome)
	require.NoError(t, err)
	b, err := w.InsertCreature(100, genome)
	require.NoError(t, err)
	c, err := w.InsertCreature(200, genome)
	require.NoError(t, err)

	require.Equal(t, a.ID, w.TimeSlicer().Current().ID)

	// burn A's first cycle, leaving exactly one cycle left in its slice.
	require.NoError(t, w.Iterate(1))
	require.Equal(t, a.ID, w.TimeSlicer().Current().ID)

	aIPBefore, bIPBefore, cIPBefore := a.IP, b.IP, c.IP

	ran, err := w.StepCreature()
	require.NoError(t, err)
	assert.True(t, ran)

	assert.Equal(t, aIPBefore+2, a.IP, "A finishes its last slice cycle, then runs one fresh cycle once the ring returns to it")
	assert.Equal(t, bIPBefore+2, b.IP, "B should have run its whole 2-cycle slice")
	assert.Equal(t, cIPBefore+2, c.IP, "C should have run its whole 2-cycle slice")
	assert.Equal(t, a.ID, w.TimeSlicer().Current().ID)
	assert.Equal(t, uint64(7), w.TimeSlicer().InstructionsExecuted()) // 1 burned cycle + 6 cycles run by StepCreature
}

// TestWorld_MutationScheduler_CopyErrorFiresOverManyMovIABCycles is the S6
// check: with copy_error_rate > 0, CopyErrorPending should trip roughly
// once per MeanCopyErrorInterval mov_iab executions, not never.
func TestWorld_MutationScheduler_CopyErrorFiresOverManyMovIABCycles(t *testing.T) {
	const cycles = 20000
	const mean = 200.0

	settings := mterra.DefaultSettings(50000)
	settings.CopyErrorRate = 1
	settings.MeanCopyErrorInterval = mean
	w := mterra.NewWorld(settings, rng.New(3))

	genome := make([]mterra.Instruction, cycles)
	for i := range genome {
		genome[i] = mterra.OpMovIAB
	}
	parent, err := w.InsertCreature(0, genome)
	require.NoError(t, err)
	parent.CPU.AX = 0
	parent.CPU.BX = int32(cycles) + 100 // write well clear of the genome itself

	var pendingCount int
	for i := 0; i < cycles; i++ {
		if w.CopyErrorPending() {
			pendingCount++
		}
		require.NoError(t, w.Iterate(1))
	}

	assert.Greater(t, pendingCount, 0, "copy-error scheduler never fired")
	expected := float64(cycles) / mean
	assert.InDelta(t, expected, float64(pendingCount), expected, "copy-error rate far from the configured mean")
}
