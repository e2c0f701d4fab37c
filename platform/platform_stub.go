//go:build !windows && !linux

package platform

import (
	"fmt"
	"runtime"
)

// NewKeyState returns ErrUnsupportedPlatform on this OS
func NewKeyState(opts Options) (KeyState, error) {
	return nil, fmt.Errorf("%w: reading key state on %s", ErrUnsupportedPlatform, runtime.GOOS)
}

// NewInjector returns ErrUnsupportedPlatform on this OS
func NewInjector(opts Options) (Injector, error) {
	return nil, fmt.Errorf("%w: key injection on %s", ErrUnsupportedPlatform, runtime.GOOS)
}
