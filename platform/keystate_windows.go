//go:build windows

package platform

import (
	"fmt"

	"markestedt/stratagem/keys"
)

type polledKey struct {
	key keys.Key
	vks []uint16
}

// WindowsKeyState implements KeyState by polling GetAsyncKeyState
type WindowsKeyState struct {
	watched []polledKey
}

// NewKeyState creates a key state reader for Windows
func NewKeyState(opts Options) (KeyState, error) {
	if err := getAsyncKeyState.Find(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	s := &WindowsKeyState{}
	for _, k := range keys.All() {
		if vks := stateVirtualKeys(k); len(vks) > 0 {
			s.watched = append(s.watched, polledKey{key: k, vks: vks})
		}
	}
	return s, nil
}

// Pressed returns the keys whose high bit is set in GetAsyncKeyState
func (s *WindowsKeyState) Pressed() (keys.Set, error) {
	down := make(keys.Set)
	for _, pk := range s.watched {
		for _, vk := range pk.vks {
			r, _, _ := getAsyncKeyState.Call(uintptr(vk))
			if r&0x8000 != 0 {
				down.Add(pk.key)
				break
			}
		}
	}
	return down, nil
}

func (s *WindowsKeyState) Close() error {
	return nil
}
