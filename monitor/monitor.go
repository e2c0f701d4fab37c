// Package monitor polls the keyboard and plays a macro when a configured
// chord goes down.
//
// Firing is edge-triggered: a chord that stays held fires once, and fires
// again only after its primary key (the first key of the chord) has been
// released. Playback runs inline, so sampling pauses until the macro ends.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"markestedt/stratagem/keys"
)

// DefaultPollInterval bounds both input latency and CPU use.
const DefaultPollInterval = 10 * time.Millisecond

// ErrExitRequested is returned by Poll when the exit key is down.
var ErrExitRequested = errors.New("exit key pressed")

// Source reports the keys currently down.
type Source interface {
	Pressed() (keys.Set, error)
}

// Player plays one macro and returns when it is done.
type Player interface {
	Play(ctx context.Context, hold keys.Key, taps []keys.Key) error
}

// Options configures a Monitor.
type Options struct {
	PollInterval time.Duration
	// ExitKey stops Run when pressed. The zero key disables it.
	ExitKey keys.Key
	Logger  *slog.Logger
}

// Monitor is the polling loop. It is not safe for concurrent use.
type Monitor struct {
	source   Source
	player   Player
	triggers []Trigger
	interval time.Duration
	exitKey  keys.Key
	state    *debounce
	logger   *slog.Logger
}

// New validates triggers and builds a monitor over them.
func New(source Source, player Player, triggers []Trigger, opts Options) (*Monitor, error) {
	if err := Validate(triggers); err != nil {
		return nil, err
	}
	if !opts.ExitKey.IsZero() && !opts.ExitKey.Valid() {
		return nil, fmt.Errorf("invalid exit key %s", opts.ExitKey)
	}

	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracked := make(keys.Set)
	if !opts.ExitKey.IsZero() {
		tracked.Add(opts.ExitKey)
	}
	for _, t := range triggers {
		for _, k := range t.Keys {
			tracked.Add(k)
		}
	}

	return &Monitor{
		source:   source,
		player:   player,
		triggers: append([]Trigger(nil), triggers...),
		interval: interval,
		exitKey:  opts.ExitKey,
		state:    newDebounce(tracked),
		logger:   logger,
	}, nil
}

// Triggers returns the monitored triggers in evaluation order.
func (m *Monitor) Triggers() []Trigger {
	return append([]Trigger(nil), m.triggers...)
}

// Run polls until ctx is cancelled, the exit key is pressed or the key state
// source fails. Only a source failure is returned as an error.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("Trigger monitor started", "triggers", len(m.triggers), "poll_interval", m.interval)
	if !m.exitKey.IsZero() {
		m.logger.Info("Press the exit key to stop", "exit_key", m.exitKey.String())
	}
	for _, t := range m.triggers {
		m.logger.Info("Trigger configured", "label", t.Label, "chord", keys.Join(t.Keys, "+"), "macro", t.String())
	}

	timer := time.NewTimer(m.interval)
	defer timer.Stop()

	for {
		if err := m.Poll(ctx); err != nil {
			if errors.Is(err, ErrExitRequested) {
				m.logger.Info("Exit key pressed, stopping")
				return nil
			}
			return err
		}

		timer.Reset(m.interval)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

// Poll runs one sampling cycle: sample, fire newly satisfied chords, prune
// the debounce state.
func (m *Monitor) Poll(ctx context.Context) error {
	sample, err := m.source.Pressed()
	if err != nil {
		return fmt.Errorf("failed to sample key state: %w", err)
	}

	if !m.exitKey.IsZero() && sample.Has(m.exitKey) {
		return ErrExitRequested
	}

	for _, t := range m.triggers {
		if !sample.HasAll(t.Keys) {
			continue
		}
		token := t.Primary()
		if m.state.isArmed(token) {
			continue
		}
		m.fire(ctx, t)
		// armed even when playback failed, so a broken macro is not retried
		// on every cycle of the same hold
		m.state.arm(token)
	}

	m.state.prune(sample)
	return nil
}

func (m *Monitor) fire(ctx context.Context, t Trigger) {
	id := uuid.NewString()
	log := m.logger.With("label", t.Label, "firing_id", id)

	log.Info("Trigger fired", "chord", keys.Join(t.Keys, "+"))
	start := time.Now()

	if err := m.player.Play(ctx, t.Hold, t.Taps); err != nil {
		if ctx.Err() != nil {
			log.Warn("Macro cancelled", "error", err)
			return
		}
		log.Error("Macro failed", "error", err, "duration", time.Since(start))
		return
	}
	log.Debug("Macro finished", "duration", time.Since(start))
}
