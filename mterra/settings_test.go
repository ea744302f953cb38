package mterra_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evosoup/mactierra/mterra"
)

func TestDefaultSettings_RatesStartAtZero(t *testing.T) {
	s := mterra.DefaultSettings(1000)
	assert.Equal(t, 1000, s.SoupSize)
	assert.Zero(t, s.FlawRate)
	assert.Zero(t, s.CopyErrorRate)
	assert.Zero(t, s.CosmicRate)
}

func TestDefaultSettings_SearchRangeScalesWithSoupSize(t *testing.T) {
	assert.Equal(t, 250, mterra.DefaultSettings(1000).MaxAllocSearchRange)
	assert.Equal(t, 250, mterra.DefaultSettings(1000).TemplateSearchRange)
}

func TestDefaultSettings_SearchRangeNeverZeroForTinySoup(t *testing.T) {
	s := mterra.DefaultSettings(2)
	assert.Equal(t, 1, s.MaxAllocSearchRange)
	assert.Equal(t, 1, s.TemplateSearchRange)
}

func TestMutationType_String(t *testing.T) {
	assert.Equal(t, "add_or_dec", mterra.MutationAddOrDec.String())
	assert.Equal(t, "bit_flip", mterra.MutationBitFlip.String())
	assert.Equal(t, "random_choice", mterra.MutationRandomChoice.String())
	assert.Equal(t, "unknown", mterra.MutationType(99).String())
}
