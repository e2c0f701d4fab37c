package monitor

import (
	"markestedt/stratagem/keys"
)

// debounce holds the primary keys of chords that already fired during the
// current hold. Only the monitor loop touches it, so it has no lock.
type debounce struct {
	armed   keys.Set
	tracked keys.Set
}

func newDebounce(tracked keys.Set) *debounce {
	return &debounce{
		armed:   make(keys.Set),
		tracked: tracked,
	}
}

func (d *debounce) isArmed(token keys.Key) bool {
	return d.armed.Has(token)
}

func (d *debounce) arm(token keys.Key) {
	d.armed.Add(token)
}

// prune drops every token whose key is no longer down or is not tracked,
// letting that chord fire again on its next press.
func (d *debounce) prune(sample keys.Set) {
	for token := range d.armed {
		if !sample.Has(token) || !d.tracked.Has(token) {
			d.armed.Remove(token)
		}
	}
}
