package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/evosoup/mactierra/mterra"
	"github.com/evosoup/mactierra/mterra/archive"
	"github.com/evosoup/mactierra/mterra/rng"
	"github.com/evosoup/mactierra/viewer"
)

func init() {
	flags := runCmd.Flags()
	flags.String("ancestor", "", "path to an ancestor genome (required)")
	flags.Uint32("cycles", 0, "stop after this many ticks of --cycles-per-tick (0 runs forever)")
	flags.Uint32("cycles-per-tick", 1000, "CPU cycles executed per tick")
	flags.Duration("tick-interval", 0, "pause between ticks (0 runs flat out)")
	flags.String("listen", "", "if set, serve the live viewer on this address (e.g. :8080)")
	flags.String("snapshot", "", "if set, write an archive here every --snapshot-interval ticks")
	flags.Uint32("snapshot-interval", 1000, "ticks between snapshots")
	flags.String("snapshot-format", "binary", "binary | text")
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a soup simulation from an ancestor genome",
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	settings, err := settingsFromFlags()
	if err != nil {
		return err
	}

	ancestorPath := viper.GetString("ancestor")
	if ancestorPath == "" {
		return errors.New("--ancestor is required")
	}
	f, err := os.Open(ancestorPath)
	if err != nil {
		return errors.Wrap(err, "opening ancestor genome")
	}
	genome, err := readAncestor(f)
	f.Close()
	if err != nil {
		return errors.Wrap(err, "parsing ancestor genome")
	}

	r := rng.New(viper.GetInt64("seed"))
	world := mterra.NewWorld(settings, r)
	world.SetLogger(slog.Default())

	origin := settings.SoupSize / 2
	if _, err := world.InsertCreature(origin, genome); err != nil {
		return errors.Wrap(err, "inserting ancestor")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	listen := viper.GetString("listen")
	var hub *viewer.Hub
	if listen != "" {
		hub = viewer.NewHub()
		go hub.Run()
	}

	cyclesPerTick := viper.GetUint32("cycles-per-tick")
	tickInterval := viper.GetDuration("tick-interval")
	control := viewer.NewControl(world, hub, cyclesPerTick, tickInterval)

	if listen != "" {
		go func() {
			if err := viewer.StartServer(hub, control, listen); err != nil {
				slog.Error("viewer_server_failed", "err", err)
			}
		}()
	}

	snapshotPath := viper.GetString("snapshot")
	snapshotEvery := viper.GetUint32("snapshot-interval")
	snapshotFormat := archive.Binary
	if viper.GetString("snapshot-format") == "text" {
		snapshotFormat = archive.Text
	}

	maxTicks := viper.GetUint32("cycles")
	var ticks uint32
	control.OnTick = func() {
		ticks++
		if snapshotPath != "" && snapshotEvery > 0 && ticks%snapshotEvery == 0 {
			if err := writeSnapshot(world, snapshotPath, snapshotFormat); err != nil {
				slog.Error("snapshot_failed", "err", err)
			}
		}
		if maxTicks > 0 && ticks >= maxTicks {
			cancel()
		}
	}

	if err := control.Run(ctx); err != nil {
		return errors.Wrap(err, "running")
	}
	return finalSnapshot(world, snapshotPath, snapshotFormat)
}

func writeSnapshot(world *mterra.World, path string, format archive.Format) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating snapshot file")
	}
	defer f.Close()
	return archive.Encode(f, world.Snapshot(), format)
}

func finalSnapshot(world *mterra.World, path string, format archive.Format) error {
	if path == "" {
		return nil
	}
	return writeSnapshot(world, path, format)
}
