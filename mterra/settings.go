package mterra

// MutationType selects how a single soup instruction is perturbed by a
// cosmic ray or (indirectly) by a copy error (spec.md §4.7).
type MutationType int

const (
	MutationAddOrDec MutationType = iota
	MutationBitFlip
	MutationRandomChoice
)

func (m MutationType) String() string {
	switch m {
	case MutationAddOrDec:
		return "add_or_dec"
	case MutationBitFlip:
		return "bit_flip"
	case MutationRandomChoice:
		return "random_choice"
	default:
		return "unknown"
	}
}

// AllocationStrategy selects how `mal` locates space for a daughter
// creature (spec.md §4.4, §4.9).
type AllocationStrategy int

const (
	AllocRandom AllocationStrategy = iota
	AllocRandomPacked
	AllocClosest
	AllocPreferred
)

// SizeSelection selects how a creature's initial time-slice is biased by
// its length (spec.md §4.6).
type SizeSelection int

const (
	SizeNeutral SizeSelection = iota
	SizeLinear
	SizePower
)

// Settings holds every recognized engine option (spec.md §6). Values are
// the implementer-chosen defaults; zero-value Settings is invalid, so start
// from DefaultSettings() and override fields from there.
type Settings struct {
	SoupSize int

	MeanFlawInterval float64
	FlawRate         float64

	MeanCopyErrorInterval float64
	CopyErrorRate         float64

	MeanCosmicTimeInterval float64
	CosmicRate             float64

	MutationType MutationType

	ReapThreshold float64

	DaughterAllocationStrategy AllocationStrategy
	SizeSelection              SizeSelection
	SizePowerExponent          float64 // used when SizeSelection == SizePower
	SliceSizeVariance          float64

	ClearReapedCreatures bool

	// DefaultSliceSize is the baseline slice (in cycles) used when
	// SizeSelection == SizeNeutral. The original engine hardcodes 20
	// (mTimeSlicer.setDefaultSliceSize(20)); kept as a setting here.
	DefaultSliceSize int

	// MaxAllocAttempts bounds Settings.DaughterAllocationStrategy ==
	// AllocRandom's retry loop (kMaxMalAttempts in the original).
	MaxAllocAttempts int
	// MaxAllocSearchRange bounds the outward search radius used by
	// AllocRandomPacked/AllocClosest/AllocPreferred (kMaxMalSearchRange in
	// the original). Template matching uses TemplateSearchRange instead.
	MaxAllocSearchRange int

	// MaxTemplateSize bounds how many consecutive nop0/nop1 cells form an
	// addressable template before matching gives up.
	MaxTemplateSize int

	// TemplateSearchRange bounds how far jmp/jmpb/call/adr/adrb/adrf scan
	// for a complementary template (spec.md §4.4: "the original uses a
	// configurable window; the implementer sets it from settings").
	TemplateSearchRange int

	// ListenerAliveThreshold is the alive-count a genotype must cross
	// before inventory listeners are notified (spec.md §4.8).
	ListenerAliveThreshold uint32
}

// DefaultSettings returns the engine defaults for a soup of the given
// size, with every mutation source disabled (rate 0) so a caller opts in
// deliberately — mirroring the end-to-end scenarios in spec.md §8, which
// start from all-rates-zero.
func DefaultSettings(soupSize int) Settings {
	return Settings{
		SoupSize: soupSize,

		MeanFlawInterval: 1000,
		FlawRate:         0,

		MeanCopyErrorInterval: 1000,
		CopyErrorRate:         0,

		MeanCosmicTimeInterval: 1000,
		CosmicRate:             0,

		MutationType: MutationAddOrDec,

		ReapThreshold: 0.8,

		DaughterAllocationStrategy: AllocRandomPacked,
		SizeSelection:              SizeNeutral,
		SizePowerExponent:          1.0,
		SliceSizeVariance:          0.2,

		ClearReapedCreatures: true,

		DefaultSliceSize: 20,

		MaxAllocAttempts:    64,
		MaxAllocSearchRange: maxInt(soupSize/4, 1),

		MaxTemplateSize:     10,
		TemplateSearchRange: maxInt(soupSize/4, 1),

		ListenerAliveThreshold: 1,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
