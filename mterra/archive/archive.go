// Package archive encodes and decodes an mterra.Archive as an opaque byte
// stream, in either of the two formats the engine recognizes: binary
// (gob) or textual (JSON). Grounded on the teacher's snapshot pattern
// (TTrapper-evosoup main.go/state.go: gob.NewEncoder/NewDecoder over a
// SimulationState, json.Marshal for the live-viewer feed), generalized
// from the teacher's single gob-only format to the spec's dual-format
// contract (spec.md §6).
package archive

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/evosoup/mactierra/mterra"
)

// Format selects the wire encoding for Encode/Decode.
type Format int

const (
	// Binary is the compact gob encoding, the default for snapshot files.
	Binary Format = iota
	// Text is the JSON encoding, for human-readable dumps and the
	// `mactierra inspect` CLI command.
	Text
)

// Encode writes a archived world to w in the given format.
func Encode(w io.Writer, a *mterra.Archive, format Format) error {
	switch format {
	case Binary:
		if err := gob.NewEncoder(w).Encode(a); err != nil {
			return errors.Wrap(err, "archive: gob encode")
		}
		return nil
	case Text:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(a); err != nil {
			return errors.Wrap(err, "archive: json encode")
		}
		return nil
	default:
		return errors.Errorf("archive: unknown format %d", format)
	}
}

// Decode reads an archived world from r in the given format. On any
// failure it returns a nil *mterra.Archive and a non-nil error — callers
// must never act on a partially decoded archive (spec.md §7).
func Decode(r io.Reader, format Format) (*mterra.Archive, error) {
	var a mterra.Archive
	switch format {
	case Binary:
		if err := gob.NewDecoder(r).Decode(&a); err != nil {
			return nil, errors.Wrap(err, "archive: gob decode")
		}
	case Text:
		if err := json.NewDecoder(r).Decode(&a); err != nil {
			return nil, errors.Wrap(err, "archive: json decode")
		}
	default:
		return nil, errors.Errorf("archive: unknown format %d", format)
	}
	return &a, nil
}

// EncodeBinary is a convenience wrapper over Encode(w, a, Binary).
func EncodeBinary(w io.Writer, a *mterra.Archive) error {
	return Encode(w, a, Binary)
}

// DecodeBinary is a convenience wrapper over Decode(r, Binary).
func DecodeBinary(r io.Reader) (*mterra.Archive, error) {
	return Decode(r, Binary)
}

// EncodeText is a convenience wrapper over Encode(w, a, Text).
func EncodeText(w io.Writer, a *mterra.Archive) error {
	return Encode(w, a, Text)
}

// DecodeText is a convenience wrapper over Decode(r, Text).
func DecodeText(r io.Reader) (*mterra.Archive, error) {
	return Decode(r, Text)
}

// Bytes encodes a to an in-memory byte slice, e.g. for tests.
func Bytes(a *mterra.Archive, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, a, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
