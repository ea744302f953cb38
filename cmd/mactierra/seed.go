package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/evosoup/mactierra/mterra"
)

func init() {
	flags := seedCmd.Flags()
	flags.String("out", "ancestor.genome", "file to write the ancestor genome to")
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write an illustrative hand-authored ancestor genome",
	RunE:  runSeed,
}

// defaultAncestor is a small self-copying loop in the spirit of the
// original MacTierra distribution's size-80 ancestor: it templates its
// own start and end with nop0/nop1 markers, repeatedly mov_iab's
// instructions into newly mal'd space, then divides off the copy.
//
// It is illustrative, not a faithful reproduction of any particular
// historical ancestor — the exact self-replicator used to seed a run is
// an implementer choice (spec.md §4.9's Open Question on the initial
// population).
var defaultAncestor = []mterra.Instruction{
	mterra.OpNop0, mterra.OpNop0, mterra.OpNop0, // start template: 000

	mterra.OpPushCX,
	mterra.OpZero,
	mterra.OpPopCX,

	mterra.OpAdrf, // AX = offset of the next complementary template
	mterra.OpNop1, mterra.OpNop1, mterra.OpNop1,

	mterra.OpSubAC,
	mterra.OpMal, // length from CX; on success AX = daughter offset

	mterra.OpMovCD,
	mterra.OpZero,
	mterra.OpPopCX,

	// copy loop: copy_loop:
	mterra.OpMovIAB,
	mterra.OpIncC,
	mterra.OpIncB,
	mterra.OpSubAC,
	mterra.OpIfCZ,
	mterra.OpJmp,
	mterra.OpNop0, mterra.OpNop1, mterra.OpNop0, // back to copy_loop template

	mterra.OpDivide,

	mterra.OpNop1, mterra.OpNop1, mterra.OpNop1, // end template: 111
}

func runSeed(cmd *cobra.Command, args []string) error {
	out := viper.GetString("out")
	f, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "creating ancestor genome file")
	}
	defer f.Close()
	if err := writeAncestor(f, defaultAncestor); err != nil {
		return errors.Wrap(err, "writing ancestor genome")
	}
	cmd.Printf("wrote %d-instruction ancestor genome to %s\n", len(defaultAncestor), out)
	return nil
}
