// Package macro plays a hold-and-tap key sequence through an injection sink.
//
// One playback is
//
//	pause, press(hold), pause, (tap(k), pause) for each k, release(hold), pause
//
// The hold key is released exactly once whenever its press succeeded, even
// when a tap fails or the context is cancelled mid-sequence. Calls to Play
// are serialized so two macros never interleave their events.
package macro

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"markestedt/stratagem/keys"
)

// DefaultStepDelay is the pause between steps. The receiving game tells
// sequential taps apart from simultaneous presses by timing, so it must not
// be zero.
const DefaultStepDelay = 100 * time.Millisecond

// Sink receives the synthesized key events.
type Sink interface {
	Press(k keys.Key) error
	Release(k keys.Key) error
	Tap(k keys.Key) error
}

// InjectionError reports which step of a macro the sink rejected.
type InjectionError struct {
	Op   string // "press", "tap" or "release"
	Key  keys.Key
	Step int // index into the tap sequence, -1 for the hold key
	Err  error
}

func (e *InjectionError) Error() string {
	if e.Step >= 0 {
		return fmt.Sprintf("%s %s (step %d): %v", e.Op, e.Key, e.Step, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *InjectionError) Unwrap() error {
	return e.Err
}

// Options configures a Player.
type Options struct {
	StepDelay time.Duration
}

// Player drives a Sink with timed macro sequences.
type Player struct {
	sink  Sink
	delay time.Duration
	mu    sync.Mutex
}

// NewPlayer creates a player. A non-positive StepDelay falls back to
// DefaultStepDelay.
func NewPlayer(sink Sink, opts Options) *Player {
	delay := opts.StepDelay
	if delay <= 0 {
		delay = DefaultStepDelay
	}
	return &Player{sink: sink, delay: delay}
}

// StepDelay returns the pause used between steps.
func (p *Player) StepDelay() time.Duration {
	return p.delay
}

// Play holds hold down while tapping each key of taps in order, then
// releases hold. An empty taps is a plain hold and release.
func (p *Player) Play(ctx context.Context, hold keys.Key, taps []keys.Key) (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.pause(ctx); err != nil {
		return err
	}

	if err := p.sink.Press(hold); err != nil {
		return &InjectionError{Op: "press", Key: hold, Step: -1, Err: err}
	}
	defer func() {
		if rerr := p.sink.Release(hold); rerr != nil {
			err = errors.Join(err, &InjectionError{Op: "release", Key: hold, Step: -1, Err: rerr})
			return
		}
		if err == nil {
			err = p.pause(ctx)
		}
	}()

	if err := p.pause(ctx); err != nil {
		return err
	}

	for i, k := range taps {
		if err := p.sink.Tap(k); err != nil {
			return &InjectionError{Op: "tap", Key: k, Step: i, Err: err}
		}
		if err := p.pause(ctx); err != nil {
			return err
		}
	}

	return nil
}

// pause waits one step delay, returning early with the context's error when
// it is cancelled
func (p *Player) pause(ctx context.Context) error {
	t := time.NewTimer(p.delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
