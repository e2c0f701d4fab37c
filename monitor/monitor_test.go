package monitor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markestedt/stratagem/keys"
	"markestedt/stratagem/macro"
	"markestedt/stratagem/platform"
)

var (
	one   = keys.Char('1')
	two   = keys.Char('2')
	quiet = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// scriptedSource returns one sample per call. When the script runs out it
// calls done (if set) and keeps returning the last sample.
type scriptedSource struct {
	samples []keys.Set
	next    int
	err     error
	done    func()
}

func (s *scriptedSource) Pressed() (keys.Set, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.next >= len(s.samples) {
		if s.done != nil {
			s.done()
		}
		if len(s.samples) == 0 {
			return keys.NewSet(), nil
		}
		return s.samples[len(s.samples)-1], nil
	}
	sample := s.samples[s.next]
	s.next++
	return sample, nil
}

type playCall struct {
	hold keys.Key
	taps []keys.Key
}

type recordingPlayer struct {
	calls []playCall
	err   error
}

func (p *recordingPlayer) Play(ctx context.Context, hold keys.Key, taps []keys.Key) error {
	p.calls = append(p.calls, playCall{hold, taps})
	return p.err
}

func newMonitor(t *testing.T, src Source, player Player, triggers ...Trigger) *Monitor {
	t.Helper()
	m, err := New(src, player, triggers, Options{PollInterval: time.Millisecond, Logger: quiet})
	require.NoError(t, err)
	return m
}

func pollAll(t *testing.T, m *Monitor, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, m.Poll(context.Background()))
	}
}

func TestPressHoldReleaseFiresOnce(t *testing.T) {
	trigger := Trigger{
		Keys:  []keys.Key{keys.Ctrl, one},
		Hold:  keys.Ctrl,
		Taps:  []keys.Key{keys.Char('w'), keys.Char('d'), keys.Char('s'), keys.Char('d')},
		Label: "X",
	}
	src := &scriptedSource{samples: []keys.Set{
		keys.NewSet(),
		keys.NewSet(keys.Ctrl, one),
		keys.NewSet(keys.Ctrl, one),
		keys.NewSet(),
	}}
	player := &recordingPlayer{}
	m := newMonitor(t, src, player, trigger)

	pollAll(t, m, 4)

	require.Len(t, player.calls, 1)
	assert.Equal(t, keys.Ctrl, player.calls[0].hold)
	assert.Equal(t, trigger.Taps, player.calls[0].taps)
}

func TestHeldChordFiresOnce(t *testing.T) {
	held := keys.NewSet(one, keys.Ctrl)
	samples := make([]keys.Set, 50)
	for i := range samples {
		samples[i] = held
	}
	player := &recordingPlayer{}
	m := newMonitor(t, &scriptedSource{samples: samples}, player,
		Trigger{Keys: []keys.Key{one, keys.Ctrl}, Hold: keys.Space, Taps: []keys.Key{keys.Up}, Label: "a"})

	pollAll(t, m, len(samples))

	assert.Len(t, player.calls, 1)
}

func TestReleasingPrimaryKeyRearms(t *testing.T) {
	chord := keys.NewSet(one, keys.Ctrl)
	src := &scriptedSource{samples: []keys.Set{
		chord,
		chord,
		keys.NewSet(keys.Ctrl), // primary released, modifier still held
		chord,
		chord,
	}}
	player := &recordingPlayer{}
	m := newMonitor(t, src, player,
		Trigger{Keys: []keys.Key{one, keys.Ctrl}, Hold: keys.Space, Label: "a"})

	pollAll(t, m, 5)

	assert.Len(t, player.calls, 2)
}

func TestReleasingSecondaryKeyDoesNotRearm(t *testing.T) {
	chord := keys.NewSet(keys.Ctrl, one)
	src := &scriptedSource{samples: []keys.Set{
		chord,
		keys.NewSet(keys.Ctrl), // primary ctrl stays down
		chord,
	}}
	player := &recordingPlayer{}
	m := newMonitor(t, src, player,
		Trigger{Keys: []keys.Key{keys.Ctrl, one}, Hold: keys.Space, Label: "a"})

	pollAll(t, m, 3)

	assert.Len(t, player.calls, 1)
}

func TestIndependentTriggers(t *testing.T) {
	a := Trigger{Keys: []keys.Key{one, keys.Ctrl}, Hold: keys.Space, Taps: []keys.Key{keys.Up}, Label: "a"}
	b := Trigger{Keys: []keys.Key{two, keys.Ctrl}, Hold: keys.Space, Taps: []keys.Key{keys.Down}, Label: "b"}

	src := &scriptedSource{samples: []keys.Set{
		keys.NewSet(keys.Ctrl, one),
		keys.NewSet(keys.Ctrl, one, two), // b fires while a stays debounced
		keys.NewSet(keys.Ctrl, two),      // a re-arms, b stays debounced
		keys.NewSet(keys.Ctrl, one, two), // a fires again
		keys.NewSet(keys.Ctrl, one, two),
	}}
	player := &recordingPlayer{}
	m := newMonitor(t, src, player, a, b)

	pollAll(t, m, 5)

	require.Len(t, player.calls, 3)
	assert.Equal(t, a.Taps, player.calls[0].taps)
	assert.Equal(t, b.Taps, player.calls[1].taps)
	assert.Equal(t, a.Taps, player.calls[2].taps)
}

type timelineSink struct {
	mu     sync.Mutex
	events []string
}

func (s *timelineSink) add(op string, k keys.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, op+" "+k.String())
	return nil
}

func (s *timelineSink) Press(k keys.Key) error   { return s.add("press", k) }
func (s *timelineSink) Release(k keys.Key) error { return s.add("release", k) }
func (s *timelineSink) Tap(k keys.Key) error     { return s.add("tap", k) }

func TestSimultaneousTriggersDoNotInterleave(t *testing.T) {
	a := Trigger{Keys: []keys.Key{one, keys.Ctrl}, Hold: keys.Space, Taps: []keys.Key{keys.Up, keys.Right}, Label: "a"}
	b := Trigger{Keys: []keys.Key{two, keys.Ctrl}, Hold: keys.Shift, Taps: []keys.Key{keys.Down, keys.Left}, Label: "b"}

	sink := &timelineSink{}
	player := macro.NewPlayer(sink, macro.Options{StepDelay: time.Millisecond})
	src := &scriptedSource{samples: []keys.Set{keys.NewSet(keys.Ctrl, one, two)}}
	m := newMonitor(t, src, player, a, b)

	pollAll(t, m, 1)

	assert.Equal(t, []string{
		"press space", "tap up", "tap right", "release space",
		"press shift", "tap down", "tap left", "release shift",
	}, sink.events)
}

func TestFailedMacroIsNotRetriedWhileHeld(t *testing.T) {
	chord := keys.NewSet(one, keys.Ctrl)
	player := &recordingPlayer{err: fmt.Errorf("press space: %w", platform.ErrInjectionFailed)}
	src := &scriptedSource{samples: []keys.Set{chord, chord, chord, keys.NewSet(), chord}}
	m := newMonitor(t, src, player,
		Trigger{Keys: []keys.Key{one, keys.Ctrl}, Hold: keys.Space, Label: "a"})

	pollAll(t, m, 5)

	assert.Len(t, player.calls, 2)
}

func TestPollFailsWhenSourceUnavailable(t *testing.T) {
	src := &scriptedSource{err: fmt.Errorf("%w: device unplugged", platform.ErrSourceUnavailable)}
	m := newMonitor(t, src, &recordingPlayer{},
		Trigger{Keys: []keys.Key{one}, Hold: keys.Space, Label: "a"})

	err := m.Poll(context.Background())
	assert.ErrorIs(t, err, platform.ErrSourceUnavailable)
}

func TestRunReturnsSourceError(t *testing.T) {
	src := &scriptedSource{err: fmt.Errorf("%w: permission denied", platform.ErrSourceUnavailable)}
	m := newMonitor(t, src, &recordingPlayer{},
		Trigger{Keys: []keys.Key{one}, Hold: keys.Space, Label: "a"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := m.Run(ctx)
	assert.ErrorIs(t, err, platform.ErrSourceUnavailable)
}

func TestRunStopsOnExitKey(t *testing.T) {
	src := &scriptedSource{samples: []keys.Set{
		keys.NewSet(),
		keys.NewSet(one),
		keys.NewSet(keys.Escape),
	}}
	player := &recordingPlayer{}
	m, err := New(src, player,
		[]Trigger{{Keys: []keys.Key{one}, Hold: keys.Space, Label: "a"}},
		Options{PollInterval: time.Millisecond, ExitKey: keys.Escape, Logger: quiet})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, m.Run(ctx))
	assert.NoError(t, ctx.Err(), "Run should return before the deadline")
	assert.Len(t, player.calls, 1)
}

func TestPollReportsExitKey(t *testing.T) {
	src := &scriptedSource{samples: []keys.Set{keys.NewSet(keys.Escape, one)}}
	player := &recordingPlayer{}
	m, err := New(src, player,
		[]Trigger{{Keys: []keys.Key{one}, Hold: keys.Space, Label: "a"}},
		Options{ExitKey: keys.Escape, Logger: quiet})
	require.NoError(t, err)

	assert.ErrorIs(t, m.Poll(context.Background()), ErrExitRequested)
	assert.Empty(t, player.calls)
}

func TestExitKeyDisabledByDefault(t *testing.T) {
	src := &scriptedSource{samples: []keys.Set{keys.NewSet(keys.Escape)}}
	m := newMonitor(t, src, &recordingPlayer{},
		Trigger{Keys: []keys.Key{one}, Hold: keys.Space, Label: "a"})

	assert.NoError(t, m.Poll(context.Background()))
	assert.False(t, m.state.tracked.Has(keys.Escape))
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chord := keys.NewSet(one)
	src := &scriptedSource{samples: []keys.Set{chord, chord, chord}, done: cancel}
	player := &recordingPlayer{}
	m := newMonitor(t, src, player,
		Trigger{Keys: []keys.Key{one}, Hold: keys.Space, Label: "a"})

	require.NoError(t, m.Run(ctx))
	assert.Len(t, player.calls, 1)
}

func TestRunLogsSummary(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx, cancel := context.WithCancel(context.Background())
	src := &scriptedSource{done: cancel}
	m, err := New(src, &recordingPlayer{}, []Trigger{
		{Keys: []keys.Key{one, keys.Ctrl}, Hold: keys.Space, Taps: []keys.Key{keys.Up}, Label: "Airstrike"},
		{Keys: []keys.Key{two, keys.Ctrl}, Hold: keys.Space, Label: "Cluster"},
	}, Options{PollInterval: time.Millisecond, Logger: logger})
	require.NoError(t, err)

	require.NoError(t, m.Run(ctx))

	out := buf.String()
	assert.Contains(t, out, "Trigger monitor started")
	assert.Contains(t, out, "label=Airstrike chord=1+ctrl")
	assert.Contains(t, out, "label=Cluster chord=2+ctrl")
}

func TestNewRejectsInvalidTriggers(t *testing.T) {
	tests := []struct {
		name     string
		triggers []Trigger
		want     string
	}{
		{
			name:     "empty chord",
			triggers: []Trigger{{Hold: keys.Space, Label: "empty"}},
			want:     "empty: no trigger keys",
		},
		{
			name: "duplicate primary",
			triggers: []Trigger{
				{Keys: []keys.Key{keys.Ctrl, one}, Hold: keys.Space, Label: "a"},
				{Keys: []keys.Key{keys.Ctrl, two}, Hold: keys.Space, Label: "b"},
			},
			want: "b: primary key ctrl is already used by a",
		},
		{
			name:     "missing hold",
			triggers: []Trigger{{Keys: []keys.Key{one}, Label: "nohold"}},
			want:     "nohold: invalid hold key none",
		},
		{
			name:     "repeated key",
			triggers: []Trigger{{Keys: []keys.Key{one, one}, Hold: keys.Space}},
			want:     "trigger 0: trigger key 1 listed twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&scriptedSource{}, &recordingPlayer{}, tt.triggers, Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTrigger)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	err := Validate([]Trigger{
		{Label: "a", Hold: keys.Space},
		{Label: "b", Keys: []keys.Key{one}},
	})
	require.Error(t, err)

	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))
	assert.Len(t, joined.Unwrap(), 2)
}

func TestDebouncePrunesUntrackedTokens(t *testing.T) {
	d := newDebounce(keys.NewSet(one))
	d.arm(one)
	d.arm(two)

	d.prune(keys.NewSet(one, two))

	assert.True(t, d.isArmed(one))
	assert.False(t, d.isArmed(two))

	d.prune(keys.NewSet())
	assert.False(t, d.isArmed(one))
}

func TestTriggerString(t *testing.T) {
	tr := Trigger{Keys: []keys.Key{one, keys.Ctrl}, Hold: keys.Space, Taps: []keys.Key{keys.Up, keys.Right}}
	assert.Equal(t, "1+ctrl -> hold space, tap up right", tr.String())

	tr.Taps = nil
	assert.Equal(t, "1+ctrl -> hold space", tr.String())
	assert.Equal(t, one, tr.Primary())
	assert.Equal(t, keys.Key{}, Trigger{}.Primary())
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSummary(&buf, []Trigger{
		{Keys: []keys.Key{one, keys.Ctrl}, Hold: keys.Space, Taps: []keys.Key{keys.Up}, Label: "Airstrike"},
		{Keys: []keys.Key{keys.Char('q'), keys.Shift}, Hold: keys.Ctrl, Label: "Mortar"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Airstrike: 1+ctrl -> hold space, tap up\nMortar: q+shift -> hold ctrl\n", buf.String())
}
