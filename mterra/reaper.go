package mterra

import "container/list"

// Reaper is the doubly-linked total order over live creatures whose head
// is the next to die (spec.md §3, §4.5). Moves are single-step neighbour
// swaps by design — aggressive reordering is deliberately avoided so that
// evolutionary pressure on reaper rank stays smooth.
//
// Per spec.md §9 design notes ("Back-references from queues"): each
// creature's position is stored as an opaque handle (here, a
// *list.Element) so Remove/move operations are O(1), not O(n) scans.
type Reaper struct {
	order    *list.List
	elements map[int]*list.Element // creature id -> its element
}

// NewReaper creates an empty reaper queue.
func NewReaper() *Reaper {
	return &Reaper{
		order:    list.New(),
		elements: make(map[int]*list.Element),
	}
}

// Add appends a creature at the tail (youngest position).
func (r *Reaper) Add(c *Creature) {
	r.elements[c.ID] = r.order.PushBack(c)
}

// Remove deletes a creature from the queue, if present.
func (r *Reaper) Remove(c *Creature) {
	if e, ok := r.elements[c.ID]; ok {
		r.order.Remove(e)
		delete(r.elements, c.ID)
	}
}

// Head returns the next creature to die, or nil if the queue is empty.
func (r *Reaper) Head() *Creature {
	if e := r.order.Front(); e != nil {
		return e.Value.(*Creature)
	}
	return nil
}

// Len reports the number of creatures currently tracked.
func (r *Reaper) Len() int { return r.order.Len() }

// ConditionalMoveUp swaps c one step toward the head, if it is not
// already there. Called after a guarded instruction sets the creature's
// error flag (spec.md §4.5, §4.9).
func (r *Reaper) ConditionalMoveUp(c *Creature) {
	e, ok := r.elements[c.ID]
	if !ok || e.Prev() == nil {
		return
	}
	r.order.MoveBefore(e, e.Prev())
}

// ConditionalMoveDown swaps c one step toward the tail, if it is not
// already there. Called after a successful mal/divide (spec.md §4.5, §4.9).
func (r *Reaper) ConditionalMoveDown(c *Creature) {
	e, ok := r.elements[c.ID]
	if !ok || e.Next() == nil {
		return
	}
	r.order.MoveAfter(e, e.Next())
}

// Creatures returns the current reaper order, head first, for archival or
// invariant checking.
func (r *Reaper) Creatures() []*Creature {
	out := make([]*Creature, 0, r.order.Len())
	for e := r.order.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*Creature))
	}
	return out
}
