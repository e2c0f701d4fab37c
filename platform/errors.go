package platform

import "errors"

var (
	// ErrSourceUnavailable is returned when the keyboard state cannot be read,
	// e.g. missing permissions or a disconnected device
	ErrSourceUnavailable = errors.New("key state source unavailable")

	// ErrInjectionFailed is returned when the OS rejects a synthesized key event
	ErrInjectionFailed = errors.New("key injection failed")

	// ErrUnsupportedPlatform is returned when no backend exists for this OS
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrUnmappedKey is returned when a key has no OS key code
	ErrUnmappedKey = errors.New("key has no platform key code")
)
