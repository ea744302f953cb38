package mterra

// ExecutionUnit performs exactly one instruction for a creature in a
// world, optionally perturbed by flaw (spec.md §4.4). It is a capability:
// World holds one as an ExecutionUnit interface value and calls Execute
// through that interface on every cycle; the variant is not resolved to a
// concrete type per Iterate call.
type ExecutionUnit interface {
	Execute(c *Creature, w *World, flaw int32) (daughter *Creature, err error)
}

// ExecutionUnit0 is the one concrete ISA implementation (spec.md §9:
// "One concrete variant exists"). Its technique — a cursor over the soup
// with relative-operand reads — is carried over from the teacher's
// vm.IP.Step (TTrapper-evosoup/vm/vm.go), generalized from the teacher's
// 10 toy opcodes to the spec's 32-opcode Tierran ISA with template
// matching, mal and divide.
type ExecutionUnit0 struct{}

var _ ExecutionUnit = ExecutionUnit0{}

// Execute runs one instruction pointed to by c.IP, advances c.IP (mod N),
// and returns a newly constructed daughter if the instruction was divide.
func (ExecutionUnit0) Execute(c *Creature, w *World, flaw int32) (*Creature, error) {
	soup := w.Soup()
	n := soup.Size()

	opcodeAddr := wrapMod(c.IP, n)
	inst := soup.Read(opcodeAddr)
	c.IP = wrapMod(opcodeAddr+1, n)
	c.LastInstruction = inst

	arith := func(result int32) int32 {
		if flaw != 0 {
			return result + flaw
		}
		return result
	}

	switch inst {
	case OpNop0, OpNop1:
		// addressable markers only; no effect on their own.

	case OpOr1:
		c.CPU.CX |= 1

	case OpShl:
		c.CPU.CX <<= 1

	case OpZero:
		c.CPU.CX = 0

	case OpIfCZ:
		// "if cx zero": execute the next instruction only if CX == 0;
		// otherwise skip it (spec.md's `ifz`).
		if c.CPU.CX != 0 {
			c.IP = wrapMod(c.IP+1, n)
		}

	case OpSubAB:
		c.CPU.AX = arith(c.CPU.AX - c.CPU.BX)

	case OpSubAC:
		c.CPU.AX = arith(c.CPU.AX - c.CPU.CX)

	case OpIncA:
		c.CPU.AX = arith(c.CPU.AX + 1)

	case OpIncB:
		c.CPU.BX = arith(c.CPU.BX + 1)

	case OpIncC:
		c.CPU.CX = arith(c.CPU.CX + 1)

	case OpDecC:
		c.CPU.CX = arith(c.CPU.CX - 1)

	case OpPushAX:
		c.CPU.Push(c.CPU.AX)
	case OpPushBX:
		c.CPU.Push(c.CPU.BX)
	case OpPushCX:
		c.CPU.Push(c.CPU.CX)
	case OpPushDX:
		c.CPU.Push(c.CPU.DX)

	case OpPopAX:
		if v, ok := c.CPU.Pop(); ok {
			c.CPU.AX = v
		} else {
			c.CPU.Flag = true
		}
	case OpPopBX:
		if v, ok := c.CPU.Pop(); ok {
			c.CPU.BX = v
		} else {
			c.CPU.Flag = true
		}
	case OpPopCX:
		if v, ok := c.CPU.Pop(); ok {
			c.CPU.CX = v
		} else {
			c.CPU.Flag = true
		}
	case OpPopDX:
		if v, ok := c.CPU.Pop(); ok {
			c.CPU.DX = v
		} else {
			c.CPU.Flag = true
		}

	case OpJmp:
		execTemplateJump(c, w, DirBothways, false)

	case OpJmpb:
		execTemplateJump(c, w, DirDownward, false)

	case OpCall:
		execTemplateJump(c, w, DirBothways, true)

	case OpRet:
		if v, ok := c.CPU.Pop(); ok {
			c.IP = wrapMod(int(v), n)
		} else {
			c.CPU.Flag = true
		}

	case OpMovCD:
		c.CPU.DX = c.CPU.CX

	case OpMovAB:
		c.CPU.BX = c.CPU.AX

	case OpMovIAB:
		execMovIAB(c, w, flaw)

	case OpAdr:
		execAdr(c, w, DirBothways)
	case OpAdrb:
		execAdr(c, w, DirDownward)
	case OpAdrf:
		execAdr(c, w, DirUpward)

	case OpMal:
		execMal(c, w)

	case OpDivide:
		return execDivide(c, w)
	}

	return nil, nil
}

// execTemplateJump implements jmp/jmpb/call: read the template following
// the opcode, search for its complement, and (on success) set IP to just
// past the matched template. call additionally pushes the return address
// — the address right after this jmp's own template — before jumping.
func execTemplateJump(c *Creature, w *World, dir Direction, isCall bool) {
	soup := w.Soup()
	n := soup.Size()
	settings := w.Settings()

	pattern, consumed := readTemplate(soup, c.IP, settings.MaxTemplateSize)
	returnAddr := wrapMod(c.IP+consumed, n)
	c.IP = returnAddr

	if len(pattern) == 0 {
		c.CPU.Flag = true
		return
	}

	target, found := searchTemplate(soup, c.IP, pattern, dir, settings.TemplateSearchRange)
	if !found {
		c.CPU.Flag = true
		return
	}

	if isCall {
		c.CPU.Push(int32(returnAddr))
	}
	c.IP = wrapMod(target+len(pattern), n)
}

// execAdr implements adr/adrb/adrf: locate the nearest complementary
// template and record its offset from the creature's ReferencedLocation in
// AX. It does not jump: IP only advances past adr's own template.
func execAdr(c *Creature, w *World, dir Direction) {
	soup := w.Soup()
	settings := w.Settings()

	pattern, consumed := readTemplate(soup, c.IP, settings.MaxTemplateSize)
	c.IP = wrapMod(c.IP+consumed, soup.Size())

	if len(pattern) == 0 {
		c.CPU.Flag = true
		return
	}

	target, found := searchTemplate(soup, c.IP, pattern, dir, settings.TemplateSearchRange)
	if !found {
		c.CPU.Flag = true
		return
	}
	c.CPU.AX = int32(target - c.ReferencedLocation)
}

// execMovIAB copies the instruction at addr(AX) to addr(BX) — the sole
// instruction counted for copy-error accounting (spec.md §4.4, §4.7) —
// then advances both heads. If a copy error is pending, the written
// instruction is mutated instead of copied exactly.
func execMovIAB(c *Creature, w *World, flaw int32) {
	soup := w.Soup()
	n := soup.Size()

	srcAddr := c.AddressFromOffset(c.CPU.AX, n)
	dstAddr := c.AddressFromOffset(c.CPU.BX, n)

	srcInst := soup.Read(srcAddr)
	if w.CopyErrorPending() {
		srcInst = w.MutateInstruction(srcInst)
	}
	soup.Write(dstAddr, srcInst)

	c.CPU.AX++
	c.CPU.BX++
	c.noteMovIAB()
	_ = flaw // mov_iab is not arithmetic; flaw is ignored (spec.md §4.4).
}

// execMal implements allocation: the desired daughter length comes from
// CX, and World.AllocateSpaceForOffspring applies the configured
// strategy. On success the creature's daughter slot is populated and AX
// holds the daughter's location offset; on failure the flag is set.
func execMal(c *Creature, w *World) {
	length := int(c.CPU.CX)
	if length <= 0 {
		c.CPU.Flag = true
		return
	}

	daughter := w.AllocateSpaceForOffspring(c, length)
	if daughter == nil {
		c.CPU.Flag = true
		return
	}
	c.Daughter = daughter
	c.CPU.AX = int32(daughter.Location - c.ReferencedLocation)
}

// execDivide implements divide: requires an in-progress daughter and at
// least one mov_iab executed since the parent's last birth (spec.md §4.4
// viability rule). On success the daughter is detached and the world is
// signaled via handleBirth.
func execDivide(c *Creature, w *World) (*Creature, error) {
	if c.Daughter == nil || c.movIABCount == 0 {
		c.CPU.Flag = true
		return nil, nil
	}

	daughter := c.Daughter
	c.Daughter = nil
	c.movIABCount = 0

	return daughter, nil
}
