package game

import (
	"context"
	"sync"
	"time"

	"github.com/qnkhuat/blockterm/pkg/event"
	"github.com/rs/zerolog"
)

// TickInterval is how often the driver ticks the game by default.
const TickInterval = 20 * time.Millisecond

// Driver ticks a game on a clock and serialises ticks with player input, so
// readers only ever see the game between ticks.
type Driver struct {
	// OnTick is called after every tick, outside the lock.
	OnTick func(Outcome)

	game     *Game
	interval time.Duration
	events   *event.Log
	logger   zerolog.Logger

	paused bool
	ticks  uint64

	sync.Mutex
}

func NewDriver(g *Game, interval time.Duration, logger zerolog.Logger) *Driver {
	if interval <= 0 {
		interval = TickInterval
	}

	return &Driver{
		game:     g,
		interval: interval,
		events:   event.NewLog(),
		logger:   logger.With().Str("module", "driver").Logger(),
	}
}

// Run ticks the game until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	t := time.NewTicker(d.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}

		d.Lock()
		if d.paused {
			d.Unlock()
			continue
		}
		o := d.stepL()
		d.Unlock()

		if d.OnTick != nil {
			d.OnTick(o)
		}
	}
}

// Step ticks the game once regardless of the clock.
func (d *Driver) Step() Outcome {
	d.Lock()
	o := d.stepL()
	d.Unlock()

	if d.OnTick != nil {
		d.OnTick(o)
	}

	return o
}

func (d *Driver) stepL() Outcome {
	o := d.game.Tick()
	d.ticks++

	if o.None() {
		return o
	}

	if o.Locked {
		d.events.Logf("%s dropped onto board.", o.Shape)
		d.logger.Debug().Uint64("tick", d.ticks).Stringer("shape", o.Shape).Msg("piece locked")
	}
	if o.Cleared > 0 {
		d.events.Logf("%d line(s) cleared.", o.Cleared)
		d.logger.Info().Uint64("tick", d.ticks).Int("lines", o.Cleared).Int("score", d.game.Score()).Msg("lines cleared")
	}
	if o.GameOver {
		d.events.Logf("Game ended with %d line(s) cleared.", d.game.Score())
		d.logger.Info().Uint64("tick", d.ticks).Int("score", d.game.Score()).Msg("game over")
	}

	return o
}

func (d *Driver) Submit(a event.GameAction) {
	d.Lock()
	defer d.Unlock()

	if d.paused {
		return
	}

	d.game.Submit(a)
}

// View calls f with the game while no tick can run.
func (d *Driver) View(f func(g *Game)) {
	d.Lock()
	defer d.Unlock()

	f(d.game)
}

func (d *Driver) State() *State {
	d.Lock()
	defer d.Unlock()

	return d.game.State()
}

// Restore loads s into the running game.
func (d *Driver) Restore(s *State) error {
	d.Lock()
	defer d.Unlock()

	if err := d.game.Restore(s); err != nil {
		return err
	}

	d.events.Logf("Game loaded with %d line(s) cleared.", s.Score)
	d.logger.Info().Int("score", s.Score).Bool("ended", s.Ended).Msg("game restored")

	return nil
}

func (d *Driver) Reset() {
	d.Lock()
	defer d.Unlock()

	d.game.Reset()
	d.events.Logf("New game started.")
	d.logger.Info().Msg("game reset")
}

func (d *Driver) Pause() {
	d.Lock()
	defer d.Unlock()

	d.paused = true
}

func (d *Driver) Resume() {
	d.Lock()
	defer d.Unlock()

	d.paused = false
}

func (d *Driver) Paused() bool {
	d.Lock()
	defer d.Unlock()

	return d.paused
}

func (d *Driver) Ticks() uint64 {
	d.Lock()
	defer d.Unlock()

	return d.ticks
}

func (d *Driver) Events() *event.Log {
	return d.events
}
