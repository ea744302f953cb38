package mterra

// readTemplate reads up to maxLen consecutive nop0/nop1 cells starting at
// addr, stopping at the first non-nop instruction. It returns the pattern
// (true = nop1, false = nop0) and how many cells were consumed.
func readTemplate(soup *Soup, addr, maxLen int) (pattern []bool, consumed int) {
	for consumed = 0; consumed < maxLen; consumed++ {
		inst := soup.Read(addr + consumed)
		if !isTemplateNop(inst) {
			break
		}
		pattern = append(pattern, inst == OpNop1)
	}
	return pattern, consumed
}

// matchesComplementAt reports whether the cells starting at addr are
// exactly len(pattern) nop cells forming pattern's bitwise complement —
// the contract template-matching control-transfer opcodes rely on
// (spec.md §4.4): "the target is the nearest address whose following run
// is the complement pattern."
func matchesComplementAt(soup *Soup, addr int, pattern []bool) bool {
	if len(pattern) == 0 {
		return false
	}
	for i, want := range pattern {
		inst := soup.Read(addr + i)
		if !isTemplateNop(inst) {
			return false
		}
		got := inst == OpNop1
		if got == want { // want the complement, i.e. NOT equal
			return false
		}
	}
	return true
}

// searchTemplate scans outward from origin (per dir, bounded by maxRange)
// for the nearest address whose following run exactly complements
// pattern. Ties are broken by the lower address, mirroring
// CellMap.SearchForSpace's tie-break rule.
func searchTemplate(soup *Soup, origin int, pattern []bool, dir Direction, maxRange int) (int, bool) {
	soupSize := soup.Size()
	try := func(addr int) (int, bool) {
		addr = wrapMod(addr, soupSize)
		if matchesComplementAt(soup, addr, pattern) {
			return addr, true
		}
		return 0, false
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
