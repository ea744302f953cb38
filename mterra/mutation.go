package mterra

import "github.com/evosoup/mactierra/mterra/rng"

// MutationScheduler runs the three independent exponential-interval event
// streams — cosmic rays, flaws, and copy errors — all clocked by
// TimeSlicer.InstructionsExecuted (spec.md §4.7).
//
// Ported in control flow from original_source/MT_World.cpp's
// noteInstructionCopy/instructionFlaw/cosmicRay/computeNext* methods,
// renamed to Go idiom; World owns one instance and calls into it from
// Iterate exactly where the original calls the equivalent World methods.
type MutationScheduler struct {
	nextFlawInstruction     uint64
	nextCosmicRayInstruction uint64

	copyErrorPending     bool
	copiesSinceLastError uint32
	nextCopyError        uint32
}

// NewMutationScheduler builds a scheduler with its copy-error clock already
// armed: the first interval is drawn immediately, the same way
// nextFlawInstruction/nextCosmicRayInstruction self-bootstrap against an
// instructionsExecuted clock that starts at 0. Without this draw,
// nextCopyError stays at its zero value forever and copiesSinceLastError
// — which only ever counts up from 0 — can never equal it, so
// copyErrorPending would never arm.
func NewMutationScheduler(r rng.Source, meanCopyErrorInterval float64) *MutationScheduler {
	return &MutationScheduler{
		nextCopyError: uint32(rng.PositiveExponential(r, meanCopyErrorInterval)),
	}
}

// TimeForFlaw reports whether a flaw should be injected into the
// instruction about to execute at instructionCount.
func (m *MutationScheduler) TimeForFlaw(instructionCount uint64, flawRate float64) bool {
	return flawRate > 0 && instructionCount == m.nextFlawInstruction
}

// TimeForCosmicRay reports whether a cosmic ray should fire before the
// instruction about to execute at instructionCount.
func (m *MutationScheduler) TimeForCosmicRay(instructionCount uint64, cosmicRate float64) bool {
	return cosmicRate > 0 && instructionCount == m.nextCosmicRayInstruction
}

// CopyErrorPending reports whether the next mov_iab should write a
// mutated instruction instead of an exact copy.
func (m *MutationScheduler) CopyErrorPending() bool {
	return m.copyErrorPending
}

// InstructionFlaw draws a ±1 flaw and schedules the next flaw event.
func (m *MutationScheduler) InstructionFlaw(instructionCount uint64, mean float64, r rng.Source) int32 {
	flaw := int32(1)
	if r.Bool() {
		flaw = -1
	}
	delay := rng.PositiveExponential(r, mean)
	m.nextFlawInstruction = instructionCount + uint64(delay)
	return flaw
}

// CosmicRay mutates one random soup instruction and schedules the next
// cosmic-ray event.
func (m *MutationScheduler) CosmicRay(w *World, instructionCount uint64) {
	soup := w.Soup()
	target := safeIntn(w.rng, soup.Size())

	inst := soup.Read(target)
	inst = w.MutateInstruction(inst)
	soup.Write(target, inst)

	delay := rng.PositiveExponential(w.rng, w.settings.MeanCosmicTimeInterval)
	m.nextCosmicRayInstruction = instructionCount + uint64(delay)
}

// NoteInstructionCopy is called after every mov_iab execution when
// copy_error_rate > 0 (spec.md §4.7, §4.9's pseudocode). It mirrors the
// original's noteInstructionCopy() exactly: if a copy error was just
// consumed, reschedule the next one; otherwise tick the count and arm
// copyErrorPending once the scheduled count is reached.
func (m *MutationScheduler) NoteInstructionCopy(meanCopyErrorInterval float64, r rng.Source) {
	if m.copyErrorPending {
		delay := rng.PositiveExponential(r, meanCopyErrorInterval)
		m.nextCopyError = uint32(delay)
		m.copiesSinceLastError = 0
		m.copyErrorPending = false
		return
	}
	m.copiesSinceLastError++
	m.copyErrorPending = m.copiesSinceLastError == m.nextCopyError
}

// safeIntn draws in [0,n) when n>0, or returns 0 for a degenerate soup size
// — kept as a tiny helper so CosmicRay reads like the one-liner it is in
// the original.
func safeIntn(r rng.Source, n int) int {
	if n <= 0 {
		return 0
	}
	return r.Intn(n)
}
