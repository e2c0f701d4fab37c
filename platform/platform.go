package platform

import (
	"markestedt/stratagem/keys"
)

// KeyState reports which physical keys are currently held down.
type KeyState interface {
	// Pressed returns a fresh snapshot of the keys that are down. An error
	// means the state could not be read at all; it never means "nothing
	// pressed".
	Pressed() (keys.Set, error)
	Close() error
}

// Injector synthesizes key events to the focused application
type Injector interface {
	Press(k keys.Key) error
	Release(k keys.Key) error
	// Tap presses and releases k.
	Tap(k keys.Key) error
	Close() error
}

// Options configures the OS backends
type Options struct {
	// Devices lists evdev device paths to read on Linux. Empty means
	// autodetect every keyboard.
	Devices []string
}
