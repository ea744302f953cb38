package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evosoup/mactierra/mterra"
)

func TestAncestor_ReadWriteRoundTrip(t *testing.T) {
	genome := []mterra.Instruction{
		mterra.OpNop0, mterra.OpNop1, mterra.OpIncA, mterra.OpMal, mterra.OpDivide,
	}

	var buf bytes.Buffer
	require.NoError(t, writeAncestor(&buf, genome))

	got, err := readAncestor(&buf)
	require.NoError(t, err)
	assert.Equal(t, genome, got)
}

func TestReadAncestor_SkipsBlankLinesAndComments(t *testing.T) {
	input := "# ancestor\n\nnop0\n  \n# trailing comment\nmal\n"
	got, err := readAncestor(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []mterra.Instruction{mterra.OpNop0, mterra.OpMal}, got)
}

func TestReadAncestor_UnknownOpcodeErrors(t *testing.T) {
	_, err := readAncestor(strings.NewReader("nop0\nbogus_opcode\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadAncestor_EmptyInputErrors(t *testing.T) {
	_, err := readAncestor(strings.NewReader("\n# just a comment\n"))
	assert.Error(t, err)
}
