package mterra_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evosoup/mactierra/mterra"
)

func TestGenome_Equal(t *testing.T) {
	a := mterra.Genome{mterra.OpNop0, mterra.OpMal}
	b := mterra.Genome{mterra.OpNop0, mterra.OpMal}
	c := mterra.Genome{mterra.OpNop0, mterra.OpDivide}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(mterra.Genome{mterra.OpNop0}))
}

func TestGenome_String(t *testing.T) {
	g := mterra.Genome{mterra.OpNop0, mterra.OpMal, mterra.OpDivide}
	assert.Equal(t, "nop0 mal divide", g.String())
}
