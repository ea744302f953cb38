package archive_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evosoup/mactierra/mterra"
	"github.com/evosoup/mactierra/mterra/archive"
	"github.com/evosoup/mactierra/mterra/rng"
)

func sampleArchive(t *testing.T) *mterra.Archive {
	t.Helper()
	settings := mterra.DefaultSettings(50)
	w := mterra.NewWorld(settings, rng.New(3))
	_, err := w.InsertCreature(5, []mterra.Instruction{mterra.OpNop0, mterra.OpIncA, mterra.OpIncB})
	require.NoError(t, err)
	return w.Snapshot()
}

func TestArchive_BinaryRoundTrip(t *testing.T) {
	a := sampleArchive(t)

	var buf bytes.Buffer
	require.NoError(t, archive.EncodeBinary(&buf, a))

	got, err := archive.DecodeBinary(&buf)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestArchive_TextRoundTrip(t *testing.T) {
	a := sampleArchive(t)

	var buf bytes.Buffer
	require.NoError(t, archive.EncodeText(&buf, a))

	got, err := archive.DecodeText(&buf)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestArchive_BytesMatchesEncode(t *testing.T) {
	a := sampleArchive(t)

	var buf bytes.Buffer
	require.NoError(t, archive.Encode(&buf, a, archive.Binary))

	b, err := archive.Bytes(a, archive.Binary)
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), b)
}

func TestArchive_DecodeUnknownFormat(t *testing.T) {
	_, err := archive.Decode(bytes.NewReader(nil), archive.Format(99))
	assert.Error(t, err)
}

func TestArchive_DecodeMalformedBinaryErrors(t *testing.T) {
	_, err := archive.DecodeBinary(bytes.NewReader([]byte("not a gob stream")))
	assert.Error(t, err)
}

func TestArchive_DecodeMalformedTextErrors(t *testing.T) {
	_, err := archive.DecodeText(bytes.NewReader([]byte("{not json")))
	assert.Error(t, err)
}
