package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/evosoup/mactierra/mterra"
)

// cfgFile is the optional --config file bound into viper (grounded on
// other_examples' unikmer cmd package's cobra+viper flag-binding idiom).
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mactierra",
	Short: "A Tierra-style artificial-life soup simulator",
	Long: `mactierra runs a population of self-replicating creatures in a
shared instruction soup: a single-threaded, cooperatively time-sliced
virtual machine population subject to cosmic rays, copy errors and
instruction flaws.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (JSON/YAML/TOML; overrides flag defaults)")
	flags.Int("soup-size", 60000, "soup size, in instructions")
	flags.Int64("seed", 1, "RNG seed")
	flags.Float64("mean-flaw-interval", 1000, "mean instructions between flaws")
	flags.Float64("flaw-rate", 0, "flaw rate (> 0 enables flaws)")
	flags.Float64("mean-copy-error-interval", 1000, "mean mov_iab count between copy errors")
	flags.Float64("copy-error-rate", 0, "copy error rate (> 0 enables copy errors)")
	flags.Float64("mean-cosmic-time-interval", 1000, "mean instructions between cosmic rays")
	flags.Float64("cosmic-rate", 0, "cosmic ray rate (> 0 enables cosmic rays)")
	flags.String("mutation-type", "add_or_dec", "add_or_dec | bit_flip | random_choice")
	flags.Float64("reap-threshold", 0.8, "fullness fraction, in (0,1], that triggers reaping")
	flags.String("allocation-strategy", "random_packed", "random | random_packed | closest | preferred")
	flags.Bool("clear-reaped", true, "zero a reaped creature's soup region")

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintln(os.Stderr, "mactierra: binding flags:", err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "mactierra: reading config:", errors.Wrap(err, cfgFile))
		os.Exit(1)
	}
}

// settingsFromFlags builds a Settings value from the bound persistent flags.
func settingsFromFlags() (mterra.Settings, error) {
	s := mterra.DefaultSettings(viper.GetInt("soup-size"))
	s.MeanFlawInterval = viper.GetFloat64("mean-flaw-interval")
	s.FlawRate = viper.GetFloat64("flaw-rate")
	s.MeanCopyErrorInterval = viper.GetFloat64("mean-copy-error-interval")
	s.CopyErrorRate = viper.GetFloat64("copy-error-rate")
	s.MeanCosmicTimeInterval = viper.GetFloat64("mean-cosmic-time-interval")
	s.CosmicRate = viper.GetFloat64("cosmic-rate")
	s.ReapThreshold = viper.GetFloat64("reap-threshold")
	s.ClearReapedCreatures = viper.GetBool("clear-reaped")

	mt, err := parseMutationType(viper.GetString("mutation-type"))
	if err != nil {
		return mterra.Settings{}, err
	}
	s.MutationType = mt

	as, err := parseAllocationStrategy(viper.GetString("allocation-strategy"))
	if err != nil {
		return mterra.Settings{}, err
	}
	s.DaughterAllocationStrategy = as

	return s, nil
}

func parseMutationType(s string) (mterra.MutationType, error) {
	switch s {
	case "add_or_dec":
		return mterra.MutationAddOrDec, nil
	case "bit_flip":
		return mterra.MutationBitFlip, nil
	case "random_choice":
		return mterra.MutationRandomChoice, nil
	default:
		return 0, errors.Errorf("unknown --mutation-type %q", s)
	}
}

func parseAllocationStrategy(s string) (mterra.AllocationStrategy, error) {
	switch s {
	case "random":
		return mterra.AllocRandom, nil
	case "random_packed":
		return mterra.AllocRandomPacked, nil
	case "closest":
		return mterra.AllocClosest, nil
	case "preferred":
		return mterra.AllocPreferred, nil
	default:
		return 0, errors.Errorf("unknown --allocation-strategy %q", s)
	}
}
