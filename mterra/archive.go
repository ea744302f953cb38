package mterra

import "github.com/evosoup/mactierra/mterra/rng"

// Archive is the complete, self-contained object graph a saved world
// round-trips (spec.md §6's "Persisted state" list): settings, RNG state,
// soup, cellmap, the creature table, the slicer ring and its clock, the
// reaper order, the full species inventory, and the three mutation
// schedulers' next-event fields. Nothing else from the core is persisted;
// surrounding UI state is out of scope.
//
// Archive itself carries no codec logic — encoding/decoding it as gob or
// JSON lives in the sibling mterra/archive package, grounded on the
// teacher's SimulationState/gob pattern (TTrapper-evosoup main.go,
// state.go), generalized from the teacher's flat IP-list to this engine's
// full graph.
type Archive struct {
	Settings Settings
	RNGState uint64

	SoupSize  int
	SoupBytes []byte

	Cells []ArchivedInterval

	NextCreatureID int
	Creatures      []ArchivedCreature

	SlicerOrder          []int
	SlicerCurrentID      int // 0 means "no current" (creature ids start at 1)
	InstructionsExecuted uint64

	ReaperOrder []int // head (next to die) first

	Genotypes       []ArchivedGenotype
	SpeciationCount uint32
	ExtinctionCount uint32

	NextFlawInstruction      uint64
	NextCosmicRayInstruction uint64
	CopyErrorPending         bool
	CopiesSinceLastError     uint32
	NextCopyError            uint32
}

// ArchivedInterval is one CellMap occupied region.
type ArchivedInterval struct {
	Start      int
	Length     int
	CreatureID int
}

// ArchivedCreature is one installed (in the creature table, slicer and
// reaper) creature's full persisted state. A daughter that is mid-division
// is not itself a table entry — it is referenced from its parent via
// HasDaughter/DaughterID/DaughterLocation/DaughterLength, matching the
// spec's "daughter reference if any" wording.
type ArchivedCreature struct {
	ID                 int
	Location           int
	Length             int
	ReferencedLocation int

	AX, BX, CX, DX int32
	Stack          []int32
	Flag           bool

	IP              int
	LastInstruction Instruction
	SliceSize       int

	GenotypeID string
	Divergence int
	Generation uint32
	ErrorCount int

	OriginInstructions uint64

	HasDaughter      bool
	DaughterID       int
	DaughterLocation int
	DaughterLength   int
}

// ArchivedGenotype is one species record.
type ArchivedGenotype struct {
	ID                 string
	Genome             []byte
	NumAlive           uint32
	NumEverLived       uint32
	OriginInstructions uint64
	OriginGenerations  uint32
}

// Snapshot captures the world's entire persisted object graph.
func (w *World) Snapshot() *Archive {
	a := &Archive{
		Settings:             w.settings,
		RNGState:             w.rng.State(),
		SoupSize:             w.soup.Size(),
		SoupBytes:            soupToBytes(w.soup),
		NextCreatureID:       w.nextCreatureID,
		InstructionsExecuted: w.slicer.InstructionsExecuted(),
		SpeciationCount:      w.inventory.SpeciationCount(),
		ExtinctionCount:      w.inventory.ExtinctionCount(),

		NextFlawInstruction:      w.mutation.nextFlawInstruction,
		NextCosmicRayInstruction: w.mutation.nextCosmicRayInstruction,
		CopyErrorPending:         w.mutation.copyErrorPending,
		CopiesSinceLastError:     w.mutation.copiesSinceLastError,
		NextCopyError:            w.mutation.nextCopyError,
	}

	for _, iv := range w.cellMap.Intervals() {
		a.Cells = append(a.Cells, ArchivedInterval{Start: iv.Start, Length: iv.Length, CreatureID: iv.CreatureID})
	}

	for _, c := range w.slicer.Creatures() {
		a.SlicerOrder = append(a.SlicerOrder, c.ID)
	}
	if id, ok := w.slicer.CurrentID(); ok {
		a.SlicerCurrentID = id
	}

	for _, c := range w.reaper.Creatures() {
		a.ReaperOrder = append(a.ReaperOrder, c.ID)
		a.Creatures = append(a.Creatures, archiveCreature(c))
	}

	for _, g := range w.inventory.Genotypes() {
		a.Genotypes = append(a.Genotypes, ArchivedGenotype{
			ID:                 g.ID,
			Genome:             instructionsToBytes(g.Genome),
			NumAlive:           g.numAlive,
			NumEverLived:       g.numEverLived,
			OriginInstructions: g.originInstructions,
			OriginGenerations:  g.originGenerations,
		})
	}

	return a
}

func archiveCreature(c *Creature) ArchivedCreature {
	ac := ArchivedCreature{
		ID:                 c.ID,
		Location:           c.Location,
		Length:             c.Length,
		ReferencedLocation: c.ReferencedLocation,
		AX:                 c.CPU.AX,
		BX:                 c.CPU.BX,
		CX:                 c.CPU.CX,
		DX:                 c.CPU.DX,
		Stack:              c.CPU.StackSnapshot(),
		Flag:               c.CPU.Flag,
		IP:                 c.IP,
		LastInstruction:    c.LastInstruction,
		SliceSize:          c.SliceSize,
		Divergence:         c.Divergence,
		Generation:         c.Generation,
		ErrorCount:         c.ErrorCount,
		OriginInstructions: c.OriginInstructions,
	}
	if c.Genotype != nil {
		ac.GenotypeID = c.Genotype.ID
	}
	if c.Daughter != nil {
		ac.HasDaughter = true
		ac.DaughterID = c.Daughter.ID
		ac.DaughterLocation = c.Daughter.Location
		ac.DaughterLength = c.Daughter.Length
	}
	return ac
}

// RestoreWorld rebuilds a World from a previously captured Archive. It
// either succeeds completely or returns a non-nil error and no World — the
// engine is never partially constructed (spec.md §7).
func RestoreWorld(a *Archive, r rng.Source) (*World, error) {
	if len(a.SoupBytes) != a.SoupSize {
		return nil, newArchiveError(nil, "soup bytes length does not match soup size")
	}

	w := NewWorld(a.Settings, r)
	w.rng.SetState(a.RNGState)
	w.soup.SetBytes(bytesToInstructions(a.SoupBytes))
	w.nextCreatureID = a.NextCreatureID

	w.mutation = &MutationScheduler{
		nextFlawInstruction:      a.NextFlawInstruction,
		nextCosmicRayInstruction: a.NextCosmicRayInstruction,
		copyErrorPending:         a.CopyErrorPending,
		copiesSinceLastError:     a.CopiesSinceLastError,
		nextCopyError:            a.NextCopyError,
	}

	w.cellMap = NewCellMap(a.SoupSize)
	for _, iv := range a.Cells {
		if !w.cellMap.Insert(iv.CreatureID, iv.Start, iv.Length) {
			return nil, newArchiveError(nil, "cellmap interval could not be restored")
		}
	}

	w.inventory = NewInventory(a.Settings.ListenerAliveThreshold)
	for _, ag := range a.Genotypes {
		w.inventory.restoreGenotype(ag.ID, genomeFromBytes(ag.Genome), ag.NumAlive, ag.NumEverLived, ag.OriginInstructions, ag.OriginGenerations)
	}
	w.inventory.setCounts(a.SpeciationCount, a.ExtinctionCount)

	creaturesByID := make(map[int]*Creature, len(a.Creatures))
	for _, ac := range a.Creatures {
		c, err := restoreCreature(ac, w.inventory)
		if err != nil {
			return nil, err
		}
		creaturesByID[c.ID] = c
	}

	w.slicer = NewTimeSlicer(a.Settings.DefaultSliceSize)
	for _, id := range a.SlicerOrder {
		c, ok := creaturesByID[id]
		if !ok {
			return nil, newArchiveError(nil, "slicer references unknown creature id")
		}
		w.slicer.InsertCreature(c)
	}
	w.slicer.SetInstructionsExecuted(a.InstructionsExecuted)
	if a.SlicerCurrentID != 0 {
		if !w.slicer.SetCurrent(a.SlicerCurrentID) {
			return nil, newArchiveError(nil, "slicer current references unknown creature id")
		}
	}

	w.reaper = NewReaper()
	for _, id := range a.ReaperOrder {
		c, ok := creaturesByID[id]
		if !ok {
			return nil, newArchiveError(nil, "reaper references unknown creature id")
		}
		w.reaper.Add(c)
	}

	w.creatures = creaturesByID
	return w, nil
}

func restoreCreature(ac ArchivedCreature, inv *Inventory) (*Creature, error) {
	c := NewCreature(ac.ID)
	c.Location = ac.Location
	c.Length = ac.Length
	c.ReferencedLocation = ac.ReferencedLocation
	c.CPU.AX, c.CPU.BX, c.CPU.CX, c.CPU.DX = ac.AX, ac.BX, ac.CX, ac.DX
	c.CPU.RestoreStack(ac.Stack)
	c.CPU.Flag = ac.Flag
	c.IP = ac.IP
	c.LastInstruction = ac.LastInstruction
	c.SliceSize = ac.SliceSize
	c.Divergence = ac.Divergence
	c.Generation = ac.Generation
	c.ErrorCount = ac.ErrorCount
	c.OriginInstructions = ac.OriginInstructions

	if ac.GenotypeID != "" {
		g, ok := inv.findByID(ac.GenotypeID)
		if !ok {
			return nil, newArchiveError(nil, "creature references unknown genotype id "+ac.GenotypeID)
		}
		c.Genotype = g
	}

	if ac.HasDaughter {
		d := NewCreature(ac.DaughterID)
		d.Location = ac.DaughterLocation
		d.Length = ac.DaughterLength
		c.Daughter = d
	}

	return c, nil
}

func soupToBytes(s *Soup) []byte {
	cells := s.Bytes()
	out := make([]byte, len(cells))
	for i, c := range cells {
		out[i] = byte(c)
	}
	return out
}

func bytesToInstructions(b []byte) []Instruction {
	out := make([]Instruction, len(b))
	for i, v := range b {
		out[i] = Instruction(v)
	}
	return out
}
