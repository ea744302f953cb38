package mterra

// Instruction is a single soup cell: a small integer opcode in
// [0, InstructionSetSize).
type Instruction uint8

// Opcodes. Exact numbering is an internal detail but stable within a
// saved world (spec.md §6) — callers should use the named constants, not
// literal values.
const (
	OpNop0 Instruction = iota
	OpNop1
	OpOr1
	OpShl
	OpZero
	OpIfCZ
	OpSubAB
	OpSubAC
	OpIncA
	OpIncB
	OpIncC
	OpDecC
	OpPushAX
	OpPushBX
	OpPushCX
	OpPushDX
	OpPopAX
	OpPopBX
	OpPopCX
	OpPopDX
	OpJmp
	OpJmpb
	OpCall
	OpRet
	OpMovCD
	OpMovAB
	OpMovIAB
	OpAdr
	OpAdrb
	OpAdrf
	OpMal
	OpDivide

	// InstructionSetSize is the number of defined opcodes (kInstructionSetSize).
	InstructionSetSize
)

var opcodeNames = [...]string{
	"nop0", "nop1", "or1", "shl", "zero", "if_cz",
	"sub_ab", "sub_ac", "inc_a", "inc_b", "inc_c", "dec_c",
	"push_ax", "push_bx", "push_cx", "push_dx",
	"pop_ax", "pop_bx", "pop_cx", "pop_dx",
	"jmp", "jmpb", "call", "ret",
	"mov_cd", "mov_ab", "mov_iab",
	"adr", "adrb", "adrf", "mal", "divide",
}

func (i Instruction) String() string {
	if int(i) < len(opcodeNames) {
		return opcodeNames[i]
	}
	return "???"
}

// isTemplateNop reports whether inst is one of the addressable template
// markers (nop0/nop1) used by control-transfer opcodes.
func isTemplateNop(inst Instruction) bool {
	return inst == OpNop0 || inst == OpNop1
}

// Direction controls how CellMap.SearchForSpace (and ISA template search)
// scans outward from an origin address.
type Direction int

const (
	DirUpward Direction = iota
	DirDownward
	DirBothways
)
