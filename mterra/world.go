package mterra

import (
	"log/slog"

	"github.com/evosoup/mactierra/mterra/rng"
)

// World is the central orchestrator: the soup, the occupancy map, the
// species registry, the reaper and scheduler queues, the mutation
// scheduler, and the one execution unit, all serialized through a single
// goroutine (spec.md §3, §9: "single-threaded, deterministic core").
//
// Grounded directly on original_source/MT_World.{h,cpp}'s World class; the
// teacher has nothing resembling this (TTrapper-evosoup scatters the
// equivalent state across AppState and a goroutine per IP), so the field
// layout and Iterate control flow are carried over from the C++ almost
// method-for-method, renamed to Go idiom.
type World struct {
	soup      *Soup
	cellMap   *CellMap
	inventory *Inventory
	reaper    *Reaper
	slicer    *TimeSlicer
	mutation  *MutationScheduler
	execUnit  ExecutionUnit

	settings Settings
	rng      rng.Source

	creatures      map[int]*Creature
	nextCreatureID int

	curCreatureCycles      uint32
	curCreatureSliceCycles uint32

	log *slog.Logger
}

// NewWorld creates a world ready for InsertCreature/Iterate, with a soup of
// settings.SoupSize instructions and every queue empty.
func NewWorld(settings Settings, r rng.Source) *World {
	w := &World{
		soup:           NewSoup(settings.SoupSize),
		cellMap:        NewCellMap(settings.SoupSize),
		inventory:      NewInventory(settings.ListenerAliveThreshold),
		reaper:         NewReaper(),
		slicer:         NewTimeSlicer(settings.DefaultSliceSize),
		mutation:       NewMutationScheduler(r, settings.MeanCopyErrorInterval),
		execUnit:       ExecutionUnit0{},
		settings:       settings,
		rng:            r,
		creatures:      make(map[int]*Creature),
		nextCreatureID: 1,
		log:            slog.Default(),
	}
	return w
}

// SetLogger overrides the world's structured logger (default: slog.Default()).
func (w *World) SetLogger(l *slog.Logger) { w.log = l }

// Soup returns the underlying instruction array.
func (w *World) Soup() *Soup { return w.soup }

// CellMap returns the occupancy index.
func (w *World) CellMap() *CellMap { return w.cellMap }

// Inventory returns the species registry.
func (w *World) Inventory() *Inventory { return w.inventory }

// Reaper returns the death-priority queue.
func (w *World) Reaper() *Reaper { return w.reaper }

// TimeSlicer returns the round-robin scheduler.
func (w *World) TimeSlicer() *TimeSlicer { return w.slicer }

// Settings returns the engine configuration currently in force.
func (w *World) Settings() Settings { return w.settings }

// RNG exposes the world's random source, chiefly for the archive codec and
// for tests that need to drive specific draws.
func (w *World) RNG() rng.Source { return w.rng }

// SetSettings replaces the engine configuration in force. SoupSize and
// DefaultSliceSize are fixed at construction and are ignored here; every
// other option (rates, mutation type, allocation strategy, thresholds)
// takes effect on the next Iterate call (spec.md §6: "settings()/
// set_settings()").
func (w *World) SetSettings(s Settings) {
	s.SoupSize = w.settings.SoupSize
	s.DefaultSliceSize = w.settings.DefaultSliceSize
	w.settings = s
	w.inventory.listenerAliveThreshold = s.ListenerAliveThreshold
}

// Creature looks up a live creature by id.
func (w *World) Creature(id int) (*Creature, bool) {
	c, ok := w.creatures[id]
	return c, ok
}

// Creatures returns every live creature, unordered.
func (w *World) Creatures() []*Creature {
	out := make([]*Creature, 0, len(w.creatures))
	for _, c := range w.creatures {
		out = append(out, c)
	}
	return out
}

// NumAdultCreatures is the number of creatures currently alive in the
// world (spec.md's supplemented numAdultCreatures() accessor).
func (w *World) NumAdultCreatures() int { return len(w.creatures) }

// MeanCreatureSize is the average genome length across every live
// creature, or 0 if the world is empty (spec.md's supplemented
// meanCreatureSize() accessor).
func (w *World) MeanCreatureSize() float64 {
	if len(w.creatures) == 0 {
		return 0
	}
	total := 0
	for _, c := range w.creatures {
		total += c.Length
	}
	return float64(total) / float64(len(w.creatures))
}

// createCreature allocates a fresh creature with the next unique id. It is
// not yet placed anywhere — the caller locates and inserts it.
func (w *World) createCreature() *Creature {
	id := w.nextCreatureID
	w.nextCreatureID++
	return NewCreature(id)
}

// InsertCreature places a hand-authored ancestor genome at addr, entering
// it into the cell map, the species registry, the reaper and the
// scheduler. It fails if the region is not free (spec.md §4.1, §4.9).
func (w *World) InsertCreature(addr int, instructions []Instruction) (*Creature, error) {
	length := len(instructions)
	if !w.cellMap.SpaceAt(addr, length) {
		return nil, ErrSoupOverflow
	}

	c := w.createCreature()
	c.Location = addr
	c.Length = length
	c.IP = addr

	w.soup.Inject(addr, instructions)

	genotype, isNew := w.inventory.Enter(c.GenomeData(w.soup), w.slicer.InstructionsExecuted(), 1)
	if isNew {
		genotype.setOrigin(w.slicer.InstructionsExecuted(), 1)
	}
	c.Genotype = genotype
	c.Generation = 1
	w.inventory.CreatureBorn(genotype)

	c.SliceSize = w.slicer.InitialSliceSize(c.Length, w.settings.SizeSelection, w.settings.SizePowerExponent)
	c.ReferencedLocation = c.Location

	if !w.cellMap.Insert(c.ID, c.Location, c.Length) {
		return nil, ErrSoupOverflow
	}

	w.creatureAdded(c)
	w.log.Info("creature_inserted", "id", c.ID, "location", c.Location, "length", c.Length)

	return c, nil
}

// creatureAdded registers a creature already placed in the cell map with
// the world's id table, scheduler and reaper.
func (w *World) creatureAdded(c *Creature) {
	w.creatures[c.ID] = c
	w.slicer.InsertCreature(c)
	w.reaper.Add(c)
}

// creatureRemoved unregisters a creature from the world's id table,
// scheduler and reaper. It does not touch the cell map or the soup.
func (w *World) creatureRemoved(c *Creature) {
	w.reaper.Remove(c)
	w.slicer.RemoveCreature(c)
	delete(w.creatures, c.ID)
}

// eradicateCreature permanently removes a creature and, if it was
// mid-division, its unborn daughter too (spec.md §4.9's death path).
func (w *World) eradicateCreature(c *Creature) {
	if c.IsDividing() {
		daughter := c.Daughter
		if w.settings.ClearReapedCreatures {
			w.soup.Inject(daughter.Location, make([]Instruction, daughter.Length))
		}
		w.cellMap.Remove(daughter.ID)
		c.clearDaughter()
	}

	if w.settings.ClearReapedCreatures {
		w.soup.Inject(c.Location, make([]Instruction, c.Length))
	}

	w.cellMap.Remove(c.ID)
	w.creatureRemoved(c)
}

// AllocateSpaceForOffspring finds room in the soup for a daughter of the
// given length, per the configured allocation strategy (spec.md §4.4,
// §4.9's Open Question: "closest" reads BX, "preferred" reads AX). It
// returns the new (unplaced-in-queues) daughter creature, or nil if no
// space could be found within the configured search bounds.
func (w *World) AllocateSpaceForOffspring(parent *Creature, daughterLength int) *Creature {
	n := w.soup.Size()
	location := -1
	found := false

	switch w.settings.DaughterAllocationStrategy {
	case AllocRandom:
		for attempts := 0; attempts < w.settings.MaxAllocAttempts; attempts++ {
			offset := w.rng.IntRange(-n, n)
			candidate := wrapMod(parent.Location+offset, n)
			if w.cellMap.SpaceAt(candidate, daughterLength) {
				location = candidate
				found = true
				break
			}
		}

	case AllocRandomPacked:
		offset := w.rng.IntRange(-n, n)
		origin := wrapMod(parent.Location+offset, n)
		location, found = w.cellMap.SearchForSpace(origin, daughterLength, w.settings.MaxAllocSearchRange, DirBothways)

	case AllocClosest:
		origin := parent.AddressFromOffset(parent.CPU.BX, n)
		location, found = w.cellMap.SearchForSpace(origin, daughterLength, w.settings.MaxAllocSearchRange, DirBothways)

	case AllocPreferred:
		origin := parent.AddressFromOffset(parent.CPU.AX, n)
		location, found = w.cellMap.SearchForSpace(origin, daughterLength, w.settings.MaxAllocSearchRange, DirBothways)
	}

	if !found {
		return nil
	}

	daughter := w.createCreature()
	daughter.Location = location
	daughter.Length = daughterLength
	daughter.IP = location

	if !w.cellMap.Insert(daughter.ID, location, daughterLength) {
		return nil
	}
	return daughter
}

// MutateInstruction perturbs inst according to the world's configured
// mutation type (spec.md §4.7): add-or-subtract-one wrapping modulo the
// instruction set size, a single bit flip in the low 5 bits, or a fresh
// uniform draw.
func (w *World) MutateInstruction(inst Instruction) Instruction {
	switch w.settings.MutationType {
	case MutationBitFlip:
		return inst ^ (1 << uint(w.rng.Intn(5)))
	case MutationRandomChoice:
		return Instruction(w.rng.Intn(int(InstructionSetSize)))
	default: // MutationAddOrDec
		delta := 1
		if w.rng.Bool() {
			delta = -1
		}
		return Instruction((int(inst) + int(InstructionSetSize) + delta) % int(InstructionSetSize))
	}
}

// CopyErrorPending reports whether the mov_iab about to execute should
// write a mutated instruction (spec.md §4.7).
func (w *World) CopyErrorPending() bool {
	return w.settings.CopyErrorRate > 0 && w.mutation.CopyErrorPending()
}

// handleBirth finishes installing a just-divided daughter: it assigns the
// daughter's slice size and referenced location, enters it (and, if
// necessary, the parent) into the species registry, and decides bred-true
// vs. divergence (spec.md §4.3, §4.9 — ported from World::handleBirth).
func (w *World) handleBirth(parent, child *Creature) {
	child.SliceSize = w.slicer.InitialSliceSize(child.Length, w.settings.SizeSelection, w.settings.SizePowerExponent)
	child.ReferencedLocation = child.Location
	child.Generation = parent.Generation + 1
	child.OriginInstructions = w.slicer.InstructionsExecuted()

	w.creatureAdded(child)

	bredTrue := parent.GaveBirth(child, w.soup)
	if bredTrue {
		var parentGenotype *Genotype
		if parent.Divergence == 0 {
			parentGenotype = parent.Genotype
		}

		foundGenotype, isNew := w.inventory.Enter(parent.GenomeData(w.soup), parent.OriginInstructions, parent.Generation)
		if isNew {
			foundGenotype.setOrigin(parent.OriginInstructions, parent.Generation)
		}

		if parentGenotype != foundGenotype {
			if parentGenotype != nil {
				w.inventory.CreatureDied(parentGenotype)
			}
			parent.Genotype = foundGenotype
			parent.Divergence = 0
			w.inventory.CreatureBorn(foundGenotype)
		}

		child.Genotype = foundGenotype
		child.Divergence = 0
		w.inventory.CreatureBorn(foundGenotype)
	} else {
		child.Genotype = parent.Genotype
		child.Divergence = parent.Divergence + 1
	}

	child.resetOnBirth()
}

// handleDeath retires a creature: if it has not diverged from its
// genotype, the genotype loses a member, then the creature (and any
// unborn daughter) is eradicated from every queue and the soup (spec.md
// §4.9 — ported from World::handleDeath).
func (w *World) handleDeath(c *Creature) error {
	if c.Divergence == 0 && c.Genotype != nil {
		if err := w.inventory.CreatureDied(c.Genotype); err != nil {
			return err
		}
	}
	w.eradicateCreature(c)
	return nil
}

// Iterate runs up to numCycles execution cycles, stopping early if the
// world runs out of live creatures (spec.md §4.9). It mirrors
// World::iterate's two-phase loop: execute one cycle of the current
// creature's slice, or — once the slice is exhausted — maybe reap, then
// rotate the scheduler onto the next creature.
func (w *World) Iterate(numCycles uint32) error {
	current := w.slicer.Current()
	if current == nil {
		return nil
	}

	if w.curCreatureCycles == 0 {
		w.curCreatureSliceCycles = uint32(w.slicer.SizeForThisSlice(current.SliceSize, w.settings.SliceSizeVariance, w.rng))
	}

	var cycles uint32
	for cycles < numCycles {
		if w.curCreatureCycles < w.curCreatureSliceCycles {
			if err := w.stepOneCycle(current); err != nil {
				return err
			}
			w.curCreatureCycles++
			cycles++
			continue
		}

		// End of this creature's slice: maybe reap, then rotate.
		if w.cellMap.Fullness() > w.settings.ReapThreshold {
			if doomed := w.reaper.Head(); doomed != nil {
				if err := w.handleDeath(doomed); err != nil {
					return err
				}
			}
		}

		w.slicer.Advance()

		current = w.slicer.Current()
		if current == nil {
			break
		}

		w.curCreatureCycles = 0
		w.curCreatureSliceCycles = uint32(w.slicer.SizeForThisSlice(current.SliceSize, w.settings.SliceSizeVariance, w.rng))
	}

	return nil
}

// StepCreature executes one cycle for the current creature; if that
// finished its slice, every other live creature is let run out its own
// current slice before the original creature is stepped again — the
// original's stepCreature developer tool (original_source/MT_World.h:
// "execute one cycle for the current creature; at the end if its slice,
// execute all other creatures and then step the same creature again").
// It reports whether a cycle ran for the creature that was current when
// it was called. Useful on its own for a viewer or an `inspect` CLI
// command wanting fine-grained single-creature tracing without upsetting
// the round-robin's fairness toward everyone else.
func (w *World) StepCreature() (bool, error) {
	original := w.slicer.Current()
	if original == nil {
		return false, nil
	}

	if err := w.Iterate(1); err != nil {
		return false, err
	}

	if w.slicer.Current() == original && w.curCreatureCycles < w.curCreatureSliceCycles {
		return true, nil // original's slice is still open; nothing else to do
	}

	// original's slice just ended: let every other live creature run out
	// its own current slice, one Iterate(1) call at a time, until the
	// ring rotates back onto original — which also steps original's
	// first cycle of its fresh slice in that same call.
	for {
		if _, stillAlive := w.creatures[original.ID]; !stillAlive {
			return true, nil
		}
		if err := w.Iterate(1); err != nil {
			return false, err
		}
		if w.slicer.Current() == nil || w.slicer.Current() == original {
			return true, nil
		}
	}
}

// stepOneCycle runs cosmic-ray/flaw bookkeeping, then one instruction for
// cur, then updates the reaper order and copy-error scheduler — the body
// of World::iterate's inner branch.
func (w *World) stepOneCycle(cur *Creature) error {
	instructionCount := w.slicer.InstructionsExecuted()

	if w.mutation.TimeForCosmicRay(instructionCount, w.settings.CosmicRate) {
		w.mutation.CosmicRay(w, instructionCount)
	}

	var flaw int32
	if w.mutation.TimeForFlaw(instructionCount, w.settings.FlawRate) {
		flaw = w.mutation.InstructionFlaw(instructionCount, w.settings.MeanFlawInterval, w.rng)
	}

	daughter, err := w.execUnit.Execute(cur, w, flaw)
	if err != nil {
		return err
	}
	if daughter != nil {
		w.handleBirth(cur, daughter)
	}

	if cur.CPU.Flag {
		w.reaper.ConditionalMoveUp(cur)
	} else if cur.LastInstruction == OpMal || cur.LastInstruction == OpDivide {
		w.reaper.ConditionalMoveDown(cur)
	}

	if w.settings.CopyErrorRate > 0 && cur.LastInstruction == OpMovIAB {
		w.mutation.NoteInstructionCopy(w.settings.MeanCopyErrorInterval, w.rng)
	}

	w.slicer.ExecutedInstruction()
	return nil
}
