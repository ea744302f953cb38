package mterra

import (
	"fmt"
	"sort"
)

// InventoryListener is notified the first time a genotype's alive count
// crosses Inventory's configured threshold (spec.md §4.8). Each
// (genotype, listener) pair fires at most once.
type InventoryListener interface {
	GenotypeCrossedThreshold(g *Genotype)
}

// Inventory is the registry of every species ever observed (spec.md §3,
// §4.8), grounded directly on original_source/MT_Inventory.h: a
// genome-keyed map, a length-keyed multimap for per-length serial
// identifiers, and speciation/extinction counters.
type Inventory struct {
	byGenome map[string]*Genotype
	byLength map[int][]*Genotype // ordered multimap: length -> genotypes, insertion order

	speciationCount uint32
	extinctionCount uint32

	listenerAliveThreshold uint32
	listeners              []InventoryListener
	notified               map[listenerKey]struct{}
}

type listenerKey struct {
	genome   string
	listener InventoryListener
}

// NewInventory creates an empty species registry.
func NewInventory(listenerAliveThreshold uint32) *Inventory {
	return &Inventory{
		byGenome:               make(map[string]*Genotype),
		byLength:               make(map[int][]*Genotype),
		listenerAliveThreshold: listenerAliveThreshold,
		notified:               make(map[listenerKey]struct{}),
	}
}

// Find looks up a genotype by exact byte-sequence match.
func (inv *Inventory) Find(genome Genome) *Genotype {
	return inv.byGenome[genome.key()]
}

// Enter idempotently inserts genome, returning its genotype and whether it
// was newly created. On first insertion the genotype gets an identifier of
// the form "<length>-<serial>" and origin is set from the caller-supplied
// instruction count and generation (spec.md §4.8).
func (inv *Inventory) Enter(genome Genome, originInstructions uint64, originGeneration uint32) (*Genotype, bool) {
	key := genome.key()
	if g, ok := inv.byGenome[key]; ok {
		return g, false
	}

	id := inv.uniqueIdentifier(len(genome))
	g := &Genotype{ID: id, Genome: genome}
	g.setOrigin(originInstructions, originGeneration)

	inv.byGenome[key] = g
	inv.byLength[len(genome)] = append(inv.byLength[len(genome)], g)
	inv.speciationCount++

	return g, true
}

func (inv *Inventory) uniqueIdentifier(length int) string {
	serial := len(inv.byLength[length])
	for {
		id := fmt.Sprintf("%d-%d", length, serial)
		if _, taken := inv.findByID(id); !taken {
			return id
		}
		serial++
	}
}

func (inv *Inventory) findByID(id string) (*Genotype, bool) {
	for _, g := range inv.byGenome {
		if g.ID == id {
			return g, true
		}
	}
	return nil, false
}

// CreatureBorn records a new living member of g, notifying listeners if
// its alive count has just crossed the configured threshold.
func (inv *Inventory) CreatureBorn(g *Genotype) {
	g.creatureBorn()
	inv.notifyIfThresholdCrossed(g)
}

// CreatureDied records the death of a living member of g. It is a fatal
// invariant violation for numAlive to go negative (spec.md §7).
func (inv *Inventory) CreatureDied(g *Genotype) error {
	wasAlive := g.numAlive
	if err := g.creatureDied(); err != nil {
		return err
	}
	if wasAlive == 1 {
		inv.extinctionCount++
	}
	return nil
}

func (inv *Inventory) notifyIfThresholdCrossed(g *Genotype) {
	if inv.listenerAliveThreshold == 0 || g.numAlive < inv.listenerAliveThreshold {
		return
	}
	key := g.Genome.key()
	for _, l := range inv.listeners {
		lk := listenerKey{genome: key, listener: l}
		if _, done := inv.notified[lk]; done {
			continue
		}
		inv.notified[lk] = struct{}{}
		l.GenotypeCrossedThreshold(g)
	}
}

func (inv *Inventory) RegisterListener(l InventoryListener) {
	inv.listeners = append(inv.listeners, l)
}

func (inv *Inventory) UnregisterListener(l InventoryListener) {
	for i, existing := range inv.listeners {
		if existing == l {
			inv.listeners = append(inv.listeners[:i], inv.listeners[i+1:]...)
			return
		}
	}
}

func (inv *Inventory) SpeciationCount() uint32 { return inv.speciationCount }
func (inv *Inventory) ExtinctionCount() uint32 { return inv.extinctionCount }

// restoreGenotype reinserts a genotype with its original identifier and
// counters, bypassing Enter's serial-ID assignment. Archive restore only.
func (inv *Inventory) restoreGenotype(id string, genome Genome, numAlive, numEverLived uint32, originInstructions uint64, originGenerations uint32) *Genotype {
	g := &Genotype{
		ID:           id,
		Genome:       genome,
		numAlive:     numAlive,
		numEverLived: numEverLived,
	}
	g.setOrigin(originInstructions, originGenerations)

	key := genome.key()
	inv.byGenome[key] = g
	inv.byLength[len(genome)] = append(inv.byLength[len(genome)], g)
	return g
}

// setCounts overwrites the speciation/extinction counters. Archive restore
// only.
func (inv *Inventory) setCounts(speciation, extinction uint32) {
	inv.speciationCount = speciation
	inv.extinctionCount = extinction
}

// Genotypes returns every known genotype (alive or extinct), sorted by ID
// for deterministic iteration (archival, debug printing).
func (inv *Inventory) Genotypes() []*Genotype {
	out := make([]*Genotype, 0, len(inv.byGenome))
	for _, g := range inv.byGenome {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PrintCreatures is the idiomatic-Go stand-in for the original's debug
// dump (MT_Inventory.h printCreatures()); it renders to a string rather
// than writing to a stream, leaving the caller to log or print it.
func (inv *Inventory) PrintCreatures() string {
	var out string
	for _, g := range inv.Genotypes() {
		out += g.String() + "\n"
	}
	return out
}
