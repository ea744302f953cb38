package mterra

import "sort"

// Interval names the soup region owned by one creature: [Start, Start+Length).
// Per spec.md §3, an occupied region never wraps across address 0.
type Interval struct {
	Start      int
	Length     int
	CreatureID int
}

func (iv Interval) end() int { return iv.Start + iv.Length }

// CellMap is an ordered occupancy index over the soup (spec.md §4.2): an
// ordered structure keyed by interval start, used to answer "is this span
// free" and to scan outward for free space.
//
// No analogue exists in the teacher (TTrapper-evosoup addresses creatures
// purely by a free-running pointer with no occupancy bookkeeping), so this
// is written fresh against spec.md's contract, using stdlib sort over a
// start-ordered slice — no off-the-shelf ordered-map/interval-tree library
// appears anywhere in the retrieved corpus, so a hand-rolled sorted slice
// is the right call here (see DESIGN.md).
type CellMap struct {
	soupSize  int
	intervals []Interval       // sorted by Start
	byID      map[int]Interval // creature id -> its interval, for O(1) removal lookup
}

// NewCellMap creates an empty occupancy index over a soup of the given size.
func NewCellMap(soupSize int) *CellMap {
	return &CellMap{
		soupSize: soupSize,
		byID:     make(map[int]Interval),
	}
}

// indexOf returns the slice index of the first interval whose Start >= addr.
func (c *CellMap) indexOf(addr int) int {
	return sort.Search(len(c.intervals), func(i int) bool {
		return c.intervals[i].Start >= addr
	})
}

// SpaceAt reports whether [addr, addr+length) is disjoint from every
// stored interval and lies within [0, soupSize) without wrapping.
func (c *CellMap) SpaceAt(addr, length int) bool {
	if length <= 0 || addr < 0 || addr+length > c.soupSize {
		return false
	}
	end := addr + length

	i := c.indexOf(addr)
	// Check the interval immediately before addr (may overlap from the left).
	if i > 0 {
		prev := c.intervals[i-1]
		if prev.end() > addr {
			return false
		}
	}
	// Check every interval starting within [addr, end).
	for ; i < len(c.intervals) && c.intervals[i].Start < end; i++ {
		return false
	}
	return true
}

// Insert records a creature's occupied region. It fails (returns false) if
// the region overlaps any existing interval or lies outside the soup.
func (c *CellMap) Insert(creatureID, start, length int) bool {
	if _, exists := c.byID[creatureID]; exists {
		return false
	}
	if !c.SpaceAt(start, length) {
		return false
	}
	iv := Interval{Start: start, Length: length, CreatureID: creatureID}
	i := c.indexOf(start)
	c.intervals = append(c.intervals, Interval{})
	copy(c.intervals[i+1:], c.intervals[i:])
	c.intervals[i] = iv
	c.byID[creatureID] = iv
	return true
}

// Remove deletes the creature's occupied region, if any.
func (c *CellMap) Remove(creatureID int) {
	iv, ok := c.byID[creatureID]
	if !ok {
		return
	}
	delete(c.byID, creatureID)
	i := c.indexOf(iv.Start)
	for ; i < len(c.intervals); i++ {
		if c.intervals[i].CreatureID == creatureID {
			c.intervals = append(c.intervals[:i], c.intervals[i+1:]...)
			return
		}
	}
}

// Interval returns the creature's current occupied interval, if tracked.
func (c *CellMap) Interval(creatureID int) (Interval, bool) {
	iv, ok := c.byID[creatureID]
	return iv, ok
}

// SearchForSpace scans outward from origin for the first span of length
// that fits, per spec.md §4.2: upward/downward scan in one direction,
// bothways alternates ±1, ±2, … up to maxRange. Ties are broken by the
// lower address. origin itself is tried first.
func (c *CellMap) SearchForSpace(origin, length, maxRange int, dir Direction) (int, bool) {
	origin = wrapMod(origin, c.soupSize)

	try := func(addr int) (int, bool) {
		addr = wrapMod(addr, c.soupSize)
		if addr+length > c.soupSize {
			return 0, false
		}
		if c.SpaceAt(addr, length) {
			return addr, true
		}
		return 0, false
	}

	if addr, ok := try(origin); ok {
		return addr, true
	}

	switch dir {
	case DirUpward:
		for d := 1; d <= maxRange; d++ {
			if addr, ok := try(origin + d); ok {
				return addr, true
			}
		}
	case DirDownward:
		for d := 1; d <= maxRange; d++ {
			if addr, ok := try(origin - d); ok {
				return addr, true
			}
		}
	case DirBothways:
		for d := 1; d <= maxRange; d++ {
			if addr, ok := try(origin - d); ok {
				return addr, true
			}
			if addr, ok := try(origin + d); ok {
				return addr, true
			}
		}
	}
	return 0, false
}

// Fullness returns the fraction of the soup currently occupied
// (Σ lengths / N), used by the reap threshold (spec.md §4.2, §4.9).
func (c *CellMap) Fullness() float64 {
	total := 0
	for _, iv := range c.intervals {
		total += iv.Length
	}
	return float64(total) / float64(c.soupSize)
}

// Intervals returns a snapshot of every occupied region, sorted by start
// address, for iteration (e.g. by a viewer or the archive codec).
func (c *CellMap) Intervals() []Interval {
	out := make([]Interval, len(c.intervals))
	copy(out, c.intervals)
	return out
}

func wrapMod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
