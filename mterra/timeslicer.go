package mterra

import (
	"container/list"
	"math"

	"github.com/evosoup/mactierra/mterra/rng"
)

// TimeSlicer is the round-robin scheduler over live creatures (spec.md §3,
// §4.6): a circular order with a "current" pointer and a global
// instructions-executed counter.
//
// Grounded on original_source/MT_World.h/.cpp (mTimeSlicer,
// setDefaultSliceSize(20), instructionsExecuted(), sizeForThisSlice,
// initialSliceSizeForCreature); the teacher has no analogue (its
// scheduler is one goroutine per IP), so the ring itself follows the
// Reaper's container/list + opaque-handle technique (spec.md §9).
type TimeSlicer struct {
	ring     *list.List
	elements map[int]*list.Element
	current  *list.Element

	instructionsExecuted uint64

	defaultSliceSize int
}

// NewTimeSlicer creates an empty scheduler ring.
func NewTimeSlicer(defaultSliceSize int) *TimeSlicer {
	return &TimeSlicer{
		ring:             list.New(),
		elements:         make(map[int]*list.Element),
		defaultSliceSize: defaultSliceSize,
	}
}

// InsertCreature adds a creature to the ring. If the ring was empty,
// it becomes current.
func (t *TimeSlicer) InsertCreature(c *Creature) {
	e := t.ring.PushBack(c)
	t.elements[c.ID] = e
	if t.current == nil {
		t.current = e
	}
}

// RemoveCreature removes a creature from the ring. If it was current,
// current advances to the next creature (or becomes nil if the ring is
// now empty).
func (t *TimeSlicer) RemoveCreature(c *Creature) {
	e, ok := t.elements[c.ID]
	if !ok {
		return
	}
	wasCurrent := t.current == e

	var next *list.Element
	if wasCurrent {
		next = e.Next()
		if next == nil {
			next = t.ring.Front() // wrap; may be e itself if it's the only element
		}
	}

	t.ring.Remove(e)
	delete(t.elements, c.ID)

	if wasCurrent {
		if next == e || t.ring.Len() == 0 {
			t.current = nil
		} else {
			t.current = next
		}
	}
}

// Current returns the creature whose turn it is, or nil if the ring is empty.
func (t *TimeSlicer) Current() *Creature {
	if t.current == nil {
		return nil
	}
	return t.current.Value.(*Creature)
}

// Advance moves current to the next live creature, wrapping around the
// ring. It returns true when the ring wraps (one full generation of the
// slicer has elapsed).
func (t *TimeSlicer) Advance() bool {
	if t.current == nil {
		return false
	}
	next := t.current.Next()
	cycled := next == nil
	if cycled {
		next = t.ring.Front()
	}
	t.current = next
	return cycled
}

// ExecutedInstruction increments the global instruction counter, called
// once per executed cycle.
func (t *TimeSlicer) ExecutedInstruction() {
	t.instructionsExecuted++
}

// InstructionsExecuted is the total number of cycles executed across the
// whole world — the clock the mutation schedulers are keyed on.
func (t *TimeSlicer) InstructionsExecuted() uint64 {
	return t.instructionsExecuted
}

// InitialSliceSize returns the starting slice, in cycles, for a newly
// created creature, per the configured size-selection bias (spec.md §4.6).
func (t *TimeSlicer) InitialSliceSize(length int, sel SizeSelection, exponent float64) int {
	switch sel {
	case SizeLinear:
		return length
	case SizePower:
		return int(math.Max(1, math.Pow(float64(length), exponent)))
	default: // SizeNeutral
		return t.defaultSliceSize
	}
}

// SizeForThisSlice perturbs a creature's base slice size by a bounded
// uniform factor at the start of each of its turns (spec.md §4.6).
func (t *TimeSlicer) SizeForThisSlice(baseSliceSize int, variance float64, r rng.Source) int {
	if variance <= 0 {
		return baseSliceSize
	}
	factor := 1.0 + (r.Float64()*2.0-1.0)*variance
	size := int(math.Round(float64(baseSliceSize) * factor))
	if size < 1 {
		size = 1
	}
	return size
}

// Creatures returns the ring's order (front to back) for archival.
// CurrentID reports which creature is "current", separately.
func (t *TimeSlicer) Creatures() []*Creature {
	out := make([]*Creature, 0, t.ring.Len())
	for e := t.ring.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*Creature))
	}
	return out
}

// CurrentID returns the id of the current creature, and false if the ring
// is empty.
func (t *TimeSlicer) CurrentID() (int, bool) {
	if t.current == nil {
		return 0, false
	}
	return t.current.Value.(*Creature).ID, true
}

// SetCurrent moves the "current" pointer to the creature with the given
// id, for archive restore. It reports whether that id was found in the
// ring.
func (t *TimeSlicer) SetCurrent(id int) bool {
	e, ok := t.elements[id]
	if !ok {
		return false
	}
	t.current = e
	return true
}

// SetInstructionsExecuted overwrites the global instruction counter, for
// archive restore.
func (t *TimeSlicer) SetInstructionsExecuted(n uint64) {
	t.instructionsExecuted = n
}
