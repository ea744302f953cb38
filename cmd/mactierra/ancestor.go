package main

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/evosoup/mactierra/mterra"
)

// opcodeByName inverts mterra.Instruction's String() method. It is built
// once at package init from the full opcode range, rather than
// hand-duplicating the name table.
var opcodeByName = func() map[string]mterra.Instruction {
	m := make(map[string]mterra.Instruction, mterra.InstructionSetSize)
	for i := mterra.Instruction(0); i < mterra.InstructionSetSize; i++ {
		m[i.String()] = i
	}
	return m
}()

// readAncestor parses an ancestor genome as one opcode mnemonic per line;
// blank lines and "#"-prefixed comments are ignored, matching the
// teacher's plain-text config style.
func readAncestor(r io.Reader) ([]mterra.Instruction, error) {
	var out []mterra.Instruction
	scanner := bufio.NewScanner(r)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inst, ok := opcodeByName[line]
		if !ok {
			return nil, errors.Errorf("ancestor genome line %d: unknown opcode %q", lineNum, line)
		}
		out = append(out, inst)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading ancestor genome")
	}
	if len(out) == 0 {
		return nil, errors.New("ancestor genome is empty")
	}
	return out, nil
}

// writeAncestor renders a genome in the same one-mnemonic-per-line format
// readAncestor expects.
func writeAncestor(w io.Writer, genome []mterra.Instruction) error {
	bw := bufio.NewWriter(w)
	for _, inst := range genome {
		if _, err := bw.WriteString(inst.String()); err != nil {
			return err
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
