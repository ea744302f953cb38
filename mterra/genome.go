package mterra

import "bytes"

// Genome is the immutable byte sequence of a creature's code as of some
// reference moment (spec.md GLOSSARY). It is compared by value, not
// identity: two creatures with byte-identical code share a genome.
type Genome []Instruction

// Equal reports whether two genomes are byte-for-byte identical.
func (g Genome) Equal(other Genome) bool {
	if len(g) != len(other) {
		return false
	}
	return bytes.Equal(instructionsToBytes(g), instructionsToBytes(other))
}

// key returns a value usable as a map key (Go slices aren't comparable).
func (g Genome) key() string {
	return string(instructionsToBytes(g))
}

// String renders the genome as a compact, printable instruction list —
// the idiomatic-Go stand-in for the original's printableGenome() debug
// dump (spec.md §9 / original_source MT_Inventory.h Genotype base class).
func (g Genome) String() string {
	var b bytes.Buffer
	for i, inst := range g {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(inst.String())
	}
	return b.String()
}

func instructionsToBytes(g Genome) []byte {
	out := make([]byte, len(g))
	for i, inst := range g {
		out[i] = byte(inst)
	}
	return out
}

// genomeFromBytes reconstructs a Genome from raw bytes (archive restore).
func genomeFromBytes(b []byte) Genome {
	out := make(Genome, len(b))
	for i, v := range b {
		out[i] = Instruction(v)
	}
	return out
}
