package viewer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/evosoup/mactierra/mterra"
)

// Control is the single goroutine permitted to touch a *mterra.World after
// construction (spec.md §5: "exclusively owned by the World"), ticking
// Iterate on a timer and exposing pause/resume/step as the teacher's
// AppState does (TTrapper-evosoup state.go's Pause/Resume/Step), adapted
// from goroutine-per-IP cancellation to a single cooperatively-stepped
// loop matching this engine's concurrency model.
type Control struct {
	world *mterra.World
	hub   *Hub

	paused       int32 // atomic: 0 running, 1 paused
	stepRequests chan struct{}

	cyclesPerTick uint32
	tickInterval  time.Duration

	// OnTick, if set, runs on Control's own goroutine after each
	// successful batch of cycles (not after a single Step). Callers use
	// it for periodic work like snapshotting or a run-length cutoff.
	OnTick func()

	log *slog.Logger
}

// NewControl creates a driver for world, ticking cyclesPerTick CPU cycles
// every tickInterval while running. hub may be nil, in which case no
// stats are computed or broadcast.
func NewControl(world *mterra.World, hub *Hub, cyclesPerTick uint32, tickInterval time.Duration) *Control {
	if tickInterval <= 0 {
		tickInterval = time.Millisecond
	}
	return &Control{
		world:         world,
		hub:           hub,
		stepRequests:  make(chan struct{}, 1),
		cyclesPerTick: cyclesPerTick,
		tickInterval:  tickInterval,
		log:           slog.Default(),
	}
}

// Paused reports whether the driver is currently paused.
func (c *Control) Paused() bool {
	return atomic.LoadInt32(&c.paused) == 1
}

// Pause stops the automatic tick loop; Step still works while paused.
func (c *Control) Pause() {
	if atomic.CompareAndSwapInt32(&c.paused, 0, 1) {
		c.log.Info("simulation_paused")
	}
}

// Resume restarts the automatic tick loop.
func (c *Control) Resume() {
	if atomic.CompareAndSwapInt32(&c.paused, 1, 0) {
		c.log.Info("simulation_resumed")
	}
}

// Step requests one World.StepCreature call the next time Run's loop is
// idle: one cycle of the current creature, or, when that cycle ends its
// slice, every other creature's slice as well up to and including the
// current creature's next cycle. It is a no-op unless the driver is paused.
func (c *Control) Step() {
	select {
	case c.stepRequests <- struct{}{}:
	default:
	}
}

// SetCosmicRate adjusts the live cosmic-ray rate without touching any
// other setting, mirroring the teacher's SetCosmicRayRate.
func (c *Control) SetCosmicRate(rate float64) {
	s := c.world.Settings()
	s.CosmicRate = rate
	c.world.SetSettings(s)
}

// Run drives the world until ctx is canceled or a step fails: on each
// tick it runs one batch of cycles (unless paused), and on each step
// request it runs World.StepCreature once (only while paused). After every
// cycle batch it broadcasts a Stats frame to the hub, if any.
func (c *Control) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-c.stepRequests:
			if !c.Paused() {
				continue
			}
			ran, err := c.world.StepCreature()
			if err != nil {
				c.log.Error("step_failed", "err", err)
				return err
			}
			if ran {
				c.broadcastStats()
			}

		case <-ticker.C:
			if c.Paused() {
				continue
			}
			if err := c.world.Iterate(c.cyclesPerTick); err != nil {
				c.log.Error("iterate_failed", "err", err)
				return err
			}
			c.broadcastStats()
			if c.OnTick != nil {
				c.OnTick()
			}
		}
	}
}

// Stats is the JSON frame broadcast to viewers after each tick, the
// generalized counterpart of the teacher's GenerationStats.
type Stats struct {
	Population           int     `json:"population"`
	MeanCreatureSize     float64 `json:"mean_creature_size"`
	Fullness             float64 `json:"fullness"`
	Speciations          uint32  `json:"speciations"`
	Extinctions          uint32  `json:"extinctions"`
	InstructionsExecuted uint64  `json:"instructions_executed"`
}

func (c *Control) broadcastStats() {
	if c.hub == nil {
		return
	}
	stats := Stats{
		Population:           c.world.NumAdultCreatures(),
		MeanCreatureSize:     c.world.MeanCreatureSize(),
		Fullness:             c.world.CellMap().Fullness(),
		Speciations:          c.world.Inventory().SpeciationCount(),
		Extinctions:          c.world.Inventory().ExtinctionCount(),
		InstructionsExecuted: c.world.TimeSlicer().InstructionsExecuted(),
	}
	data, err := json.Marshal(stats)
	if err != nil {
		c.log.Error("stats_marshal_failed", "err", err)
		return
	}
	select {
	case c.hub.Broadcast <- data:
	default:
		// slow consumer; the next tick will supersede this frame anyway.
	}
}
