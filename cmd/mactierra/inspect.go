package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/evosoup/mactierra/mterra/archive"
)

func init() {
	flags := inspectCmd.Flags()
	flags.String("format", "binary", "binary | text")
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [archive file]",
	Short: "Print a summary of an archived world",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return errors.Wrap(err, "opening archive")
	}
	defer f.Close()

	format := archive.Binary
	if viper.GetString("format") == "text" {
		format = archive.Text
	}

	a, err := archive.Decode(f, format)
	if err != nil {
		return errors.Wrap(err, "decoding archive")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "soup size:             %d\n", a.SoupSize)
	fmt.Fprintf(cmd.OutOrStdout(), "instructions executed:  %d\n", a.InstructionsExecuted)
	fmt.Fprintf(cmd.OutOrStdout(), "adult creatures:        %d\n", len(a.Creatures))
	fmt.Fprintf(cmd.OutOrStdout(), "genotypes recorded:     %d\n", len(a.Genotypes))
	fmt.Fprintf(cmd.OutOrStdout(), "speciations:            %d\n", a.SpeciationCount)
	fmt.Fprintf(cmd.OutOrStdout(), "extinctions:            %d\n", a.ExtinctionCount)
	fmt.Fprintln(cmd.OutOrStdout())

	fmt.Fprintln(cmd.OutOrStdout(), "live genotypes:")
	for _, g := range a.Genotypes {
		if g.NumAlive == 0 {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s  len=%d  alive=%d  ever_lived=%d\n",
			g.ID, len(g.Genome), g.NumAlive, g.NumEverLived)
	}

	return nil
}
