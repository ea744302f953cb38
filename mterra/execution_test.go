package mterra_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evosoup/mactierra/mterra"
)

func newExecTestCreature(w *mterra.World, loc int, genome []mterra.Instruction) *mterra.Creature {
	c := mterra.NewCreature(1)
	c.Location = loc
	c.ReferencedLocation = loc
	c.IP = loc
	w.Soup().Inject(loc, genome)
	return c
}

func TestExecution_IncAndPush(t *testing.T) {
	w := newTestWorld(t, 100)
	c := newExecTestCreature(w, 0, []mterra.Instruction{mterra.OpIncA, mterra.OpPushAX})
	exec := mterra.ExecutionUnit0{}

	_, err := exec.Execute(c, w, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(1), c.CPU.AX)
	assert.Equal(t, 1, c.IP)

	_, err = exec.Execute(c, w, 0)
	require.NoError(t, err)

	v, ok := c.CPU.Pop()
	require.True(t, ok)
	assert.Equal(t, int32(1), v)
}

func TestExecution_IfCZSkipsNextWhenNonzero(t *testing.T) {
	w := newTestWorld(t, 100)
	c := newExecTestCreature(w, 0, []mterra.Instruction{mterra.OpIfCZ, mterra.OpIncA, mterra.OpIncB})
	c.CPU.CX = 1 // nonzero -> skip the next instruction (inc_a)
	exec := mterra.ExecutionUnit0{}

	_, err := exec.Execute(c, w, 0) // if_cz: CX != 0, so IP skips past inc_a
	require.NoError(t, err)
	assert.Equal(t, 2, c.IP)

	_, err = exec.Execute(c, w, 0) // executes inc_b
	require.NoError(t, err)
	assert.Equal(t, int32(0), c.CPU.AX)
	assert.Equal(t, int32(1), c.CPU.BX)
}

func TestExecution_IfCZRunsNextWhenZero(t *testing.T) {
	w := newTestWorld(t, 100)
	c := newExecTestCreature(w, 0, []mterra.Instruction{mterra.OpIfCZ, mterra.OpIncA})
	exec := mterra.ExecutionUnit0{}

	_, err := exec.Execute(c, w, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, c.IP)

	_, err = exec.Execute(c, w, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(1), c.CPU.AX)
}

func TestExecution_PopOnEmptyStackSetsFlag(t *testing.T) {
	w := newTestWorld(t, 100)
	c := newExecTestCreature(w, 0, []mterra.Instruction{mterra.OpPopAX})
	exec := mterra.ExecutionUnit0{}

	_, err := exec.Execute(c, w, 0)
	require.NoError(t, err)
	assert.True(t, c.CPU.Flag)
}

func TestExecution_JmpJumpsPastComplementTemplate(t *testing.T) {
	w := newTestWorld(t, 100)
	// jmp, nop0 (its own template); elsewhere, nop1 (the complement) then a marker.
	genome := []mterra.Instruction{mterra.OpJmp, mterra.OpNop0, mterra.OpIncB, mterra.OpIncC}
	c := newExecTestCreature(w, 0, genome)
	w.Soup().Write(10, mterra.OpNop1)
	w.Soup().Write(11, mterra.OpIncA)

	exec := mterra.ExecutionUnit0{}
	_, err := exec.Execute(c, w, 0)
	require.NoError(t, err)
	assert.False(t, c.CPU.Flag)
	assert.Equal(t, 11, c.IP) // landed just past the matched nop1 at 10
}

func TestExecution_JmpSetsFlagWhenNoComplementFound(t *testing.T) {
	w := newTestWorld(t, 100)
	genome := []mterra.Instruction{mterra.OpJmp, mterra.OpNop0, mterra.OpIncB}
	c := newExecTestCreature(w, 0, genome)

	exec := mterra.ExecutionUnit0{}
	_, err := exec.Execute(c, w, 0)
	require.NoError(t, err)
	assert.True(t, c.CPU.Flag)
}

func TestExecution_AdrRecordsOffsetWithoutMovingBeyondTemplate(t *testing.T) {
	w := newTestWorld(t, 100)
	genome := []mterra.Instruction{mterra.OpAdr, mterra.OpNop0, mterra.OpIncB}
	c := newExecTestCreature(w, 0, genome)
	w.Soup().Write(20, mterra.OpNop1)

	exec := mterra.ExecutionUnit0{}
	_, err := exec.Execute(c, w, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(20), c.CPU.AX)
	assert.Equal(t, 2, c.IP) // adr does not jump; IP only advances past its own template
}

func TestExecution_MalFailsOnNonPositiveLength(t *testing.T) {
	w := newTestWorld(t, 100)
	c := newExecTestCreature(w, 0, []mterra.Instruction{mterra.OpMal})

	exec := mterra.ExecutionUnit0{}
	_, err := exec.Execute(c, w, 0)
	require.NoError(t, err)
	assert.True(t, c.CPU.Flag)
	assert.Nil(t, c.Daughter)
}

func TestExecution_DivideFailsWithoutDaughter(t *testing.T) {
	w := newTestWorld(t, 100)
	c := newExecTestCreature(w, 0, []mterra.Instruction{mterra.OpDivide})

	exec := mterra.ExecutionUnit0{}
	daughter, err := exec.Execute(c, w, 0)
	require.NoError(t, err)
	assert.Nil(t, daughter)
	assert.True(t, c.CPU.Flag)
}

func TestExecution_FlawPerturbsArithmeticOnly(t *testing.T) {
	w := newTestWorld(t, 100)
	c := newExecTestCreature(w, 0, []mterra.Instruction{mterra.OpIncA})
	exec := mterra.ExecutionUnit0{}

	_, err := exec.Execute(c, w, 1) // +1 flaw on top of inc_a's own +1
	require.NoError(t, err)
	assert.Equal(t, int32(2), c.CPU.AX)
}
