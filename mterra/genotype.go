package mterra

import "fmt"

// Genotype is a canonical genome plus population statistics (spec.md
// GLOSSARY, §3). It is created once per distinct genome and never deleted
// — it is the historical record for that species.
//
// Grounded directly on original_source/Source/engine/MT_Inventory.h's
// InventoryGenotype: identifier string, genome, numAlive/numEverLived,
// origin instructions/generation, and the Inventory-only creatureBorn/
// creatureDied mutators.
type Genotype struct {
	ID     string
	Genome Genome

	numAlive     uint32
	numEverLived uint32

	originInstructions uint64
	originGenerations  uint32
}

// NumAlive is the count of divergence-0 creatures currently pointing at
// this genotype (spec.md §3 invariant).
func (g *Genotype) NumAlive() uint32 { return g.numAlive }

// NumEverLived is monotonically non-decreasing and always >= NumAlive.
func (g *Genotype) NumEverLived() uint32 { return g.numEverLived }

func (g *Genotype) OriginInstructions() uint64 { return g.originInstructions }
func (g *Genotype) OriginGenerations() uint32  { return g.originGenerations }

func (g *Genotype) setOrigin(instructions uint64, generations uint32) {
	g.originInstructions = instructions
	g.originGenerations = generations
}

// creatureBorn records a new living member of this species. Inventory-only.
func (g *Genotype) creatureBorn() {
	g.numAlive++
	g.numEverLived++
}

// creatureDied records the death of a living member. Inventory-only.
// numAlive must never go negative (spec.md §4.8, §7): on underflow it
// returns an *InvariantError and leaves the count unchanged.
func (g *Genotype) creatureDied() error {
	if g.numAlive == 0 {
		return newInvariantError("genotype %s: creatureDied with numAlive already 0", g.ID)
	}
	g.numAlive--
	return nil
}

func (g *Genotype) String() string {
	return fmt.Sprintf("%s (alive=%d ever=%d) %s", g.ID, g.numAlive, g.numEverLived, g.Genome)
}
