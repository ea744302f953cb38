package mterra

// StackDepth is the bounded depth of a creature's call/data stack
// (spec.md §4.3: "bounded stack of small depth", matching the original's
// documented depth of 10).
const StackDepth = 10

// CPU is the per-creature virtual-CPU state: four general-purpose
// registers, a bounded stack, and a one-bit error flag (spec.md §3, §4.3).
type CPU struct {
	AX, BX, CX, DX int32

	stack    [StackDepth]int32
	stackLen int

	Flag bool
}

// Push stores v on top of the stack. When full, the oldest value is
// dropped to make room (spec.md §4.3).
func (c *CPU) Push(v int32) {
	if c.stackLen == StackDepth {
		copy(c.stack[:], c.stack[1:])
		c.stack[StackDepth-1] = v
		return
	}
	c.stack[c.stackLen] = v
	c.stackLen++
}

// Pop removes and returns the top of the stack. ok is false if empty.
func (c *CPU) Pop() (v int32, ok bool) {
	if c.stackLen == 0 {
		return 0, false
	}
	c.stackLen--
	return c.stack[c.stackLen], true
}

// StackSnapshot returns a copy of the live portion of the stack, oldest
// entry first, for archival. An empty stack is returned as nil, so the
// gob and JSON codecs both round-trip it to the same value.
func (c *CPU) StackSnapshot() []int32 {
	if c.stackLen == 0 {
		return nil
	}
	out := make([]int32, c.stackLen)
	copy(out, c.stack[:c.stackLen])
	return out
}

// RestoreStack replaces the stack contents from an archived snapshot.
func (c *CPU) RestoreStack(vals []int32) {
	c.stackLen = len(vals)
	copy(c.stack[:], vals)
}

// Register reads one of the four GP registers by index (0=AX..3=DX); any
// index other than 0, 1 or 2 reads DX.
func (c *CPU) Register(idx int) int32 {
	switch idx {
	case regAX:
		return c.AX
	case regBX:
		return c.BX
	case regCX:
		return c.CX
	default:
		return c.DX
	}
}

const (
	regAX = iota
	regBX
	regCX
	regDX
)

// Creature is one executable entity: CPU state, location/length in the
// soup, parent/daughter linkage, and a back-reference to its genotype
// (spec.md §3).
type Creature struct {
	ID       int
	Location int
	Length   int

	// ReferencedLocation is the origin that register-relative addressing
	// (AddressFromOffset) is computed against. It is set once at birth and
	// does not move even if Location later changes (it doesn't, in this
	// engine, but the original keeps the two concepts distinct).
	ReferencedLocation int

	CPU CPU
	IP  int

	LastInstruction Instruction

	SliceSize int

	Genotype   *Genotype
	Divergence int

	Daughter *Creature

	ErrorCount int
	Generation uint32

	// OriginInstructions is the instructions-executed count at the moment
	// this creature was created (used to seed a new genotype's origin if
	// this creature later diverges into one — spec.md §4.9 handleBirth).
	OriginInstructions uint64

	// movIABCount counts mov_iab executions since this creature's most
	// recent divide/birth; divide requires it to be >= 1 (spec.md §4.4
	// "viability" rule).
	movIABCount int
}

// NewCreature constructs a creature with zeroed CPU state, ready to be
// placed in the soup by World.
func NewCreature(id int) *Creature {
	return &Creature{ID: id}
}

// AddressFromOffset converts a register-held offset into an absolute soup
// address, relative to this creature's referenced location (spec.md §4.4,
// §9: "closest reads bx", "preferred reads ax").
func (c *Creature) AddressFromOffset(offset int32, soupSize int) int {
	return wrapMod(c.ReferencedLocation+int(offset), soupSize)
}

// GenomeData returns the byte sequence currently occupying this
// creature's region of the soup (spec.md §4.3).
func (c *Creature) GenomeData(soup *Soup) Genome {
	g := make(Genome, c.Length)
	for i := 0; i < c.Length; i++ {
		g[i] = soup.Read(c.Location + i)
	}
	return g
}

// IsDividing reports whether this creature has an in-progress daughter
// (set by a successful mal, cleared by divide or eradication).
func (c *Creature) IsDividing() bool {
	return c.Daughter != nil
}

func (c *Creature) clearDaughter() {
	c.Daughter = nil
}

// noteMovIAB records one mov_iab execution, establishing divide
// viability (spec.md §4.4).
func (c *Creature) noteMovIAB() {
	c.movIABCount++
}

// resetOnBirth clears a newly divided child's divide bookkeeping (its
// mov_iab count and daughter slot). World.handleBirth calls it for the
// child only; CPU registers are left as they are.
func (c *Creature) resetOnBirth() {
	c.movIABCount = 0
	c.Daughter = nil
}

// GaveBirth decides whether child is "bred true": the parent has not
// diverged from its recorded genotype, and the child's genome is
// byte-for-byte identical to the parent's current genome (spec.md §4.3).
func (c *Creature) GaveBirth(child *Creature, soup *Soup) bool {
	if c.Divergence != 0 {
		return false
	}
	return c.GenomeData(soup).Equal(child.GenomeData(soup))
}
