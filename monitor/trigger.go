package monitor

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"markestedt/stratagem/keys"
)

// ErrInvalidTrigger is wrapped by every trigger validation failure.
var ErrInvalidTrigger = errors.New("invalid trigger")

// Trigger binds a chord to a macro.
type Trigger struct {
	// Keys must all be down at once. Keys[0] is the primary key: it is the
	// debounce token and must be unique across one trigger set.
	Keys []keys.Key
	// Hold stays pressed for the whole macro.
	Hold keys.Key
	// Taps are tapped in order while Hold is down.
	Taps  []keys.Key
	Label string
}

// Primary returns the chord's debounce token.
func (t Trigger) Primary() keys.Key {
	if len(t.Keys) == 0 {
		return keys.Key{}
	}
	return t.Keys[0]
}

// String renders the trigger as "1+ctrl -> hold space, tap up right".
func (t Trigger) String() string {
	var b strings.Builder
	b.WriteString(keys.Join(t.Keys, "+"))
	b.WriteString(" -> hold ")
	b.WriteString(t.Hold.String())
	if len(t.Taps) > 0 {
		b.WriteString(", tap ")
		b.WriteString(keys.Join(t.Taps, " "))
	}
	return b.String()
}

// Validate checks every trigger and the set as a whole, returning all
// problems joined.
func Validate(triggers []Trigger) error {
	var errs []error
	primaries := make(map[keys.Key]string)

	for i, t := range triggers {
		name := t.Label
		if name == "" {
			name = fmt.Sprintf("trigger %d", i)
		}
		fail := func(format string, args ...any) {
			errs = append(errs, fmt.Errorf("%w: %s: %s", ErrInvalidTrigger, name, fmt.Sprintf(format, args...)))
		}

		if len(t.Keys) == 0 {
			fail("no trigger keys")
			continue
		}
		seen := make(keys.Set, len(t.Keys))
		for _, k := range t.Keys {
			if !k.Valid() {
				fail("invalid trigger key %s", k)
			}
			if seen.Has(k) {
				fail("trigger key %s listed twice", k)
			}
			seen.Add(k)
		}
		if !t.Hold.Valid() {
			fail("invalid hold key %s", t.Hold)
		}
		for _, k := range t.Taps {
			if !k.Valid() {
				fail("invalid tap key %s", k)
			}
		}

		p := t.Primary()
		if other, dup := primaries[p]; dup {
			fail("primary key %s is already used by %s", p, other)
			continue
		}
		primaries[p] = name
	}

	return errors.Join(errs...)
}

// WriteSummary writes one line per trigger.
func WriteSummary(w io.Writer, triggers []Trigger) error {
	for _, t := range triggers {
		if _, err := fmt.Fprintf(w, "%s: %s\n", t.Label, t); err != nil {
			return err
		}
	}
	return nil
}
