//go:build linux

package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"markestedt/stratagem/keys"
)

// eviocgkey is EVIOCGKEY(len): _IOC(_IOC_READ, 'E', 0x18, len)
func eviocgkey(n int) uintptr {
	return 2<<30 | uintptr(n)<<16 | uintptr('E')<<8 | 0x18
}

type watchedKey struct {
	key   keys.Key
	codes []uint16
}

// LinuxKeyState implements KeyState by querying the key bitmap of evdev
// devices with EVIOCGKEY
type LinuxKeyState struct {
	devices []*os.File
	watched []watchedKey
	buf     []byte
}

// NewKeyState opens the configured evdev devices, or every keyboard found in
// /proc/bus/input/devices when none are configured
func NewKeyState(opts Options) (KeyState, error) {
	paths := opts.Devices
	if len(paths) == 0 {
		found, err := findKeyboardDevices()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to list input devices: %v", ErrSourceUnavailable, err)
		}
		paths = found
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no keyboard device found", ErrSourceUnavailable)
	}

	s := &LinuxKeyState{buf: make([]byte, evKeyMax/8+1)}
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("%w: failed to open keyboard device %s: %v (try running as root or add user to 'input' group)", ErrSourceUnavailable, path, err)
		}
		slog.Debug("Opened keyboard device", "path", path)
		s.devices = append(s.devices, f)
	}

	for _, k := range keys.All() {
		if codes := evdevCodes(k); len(codes) > 0 {
			s.watched = append(s.watched, watchedKey{key: k, codes: codes})
		}
	}
	return s, nil
}

// Pressed returns the union of the keys held on every opened device
func (s *LinuxKeyState) Pressed() (keys.Set, error) {
	down := make(keys.Set)
	for _, dev := range s.devices {
		clear(s.buf)
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, dev.Fd(), eviocgkey(len(s.buf)), uintptr(unsafe.Pointer(&s.buf[0])))
		if errno != 0 {
			return nil, fmt.Errorf("%w: EVIOCGKEY on %s: %v", ErrSourceUnavailable, dev.Name(), errno)
		}
		for _, w := range s.watched {
			for _, c := range w.codes {
				if s.buf[c/8]&(1<<(c%8)) != 0 {
					down.Add(w.key)
					break
				}
			}
		}
	}
	return down, nil
}

func (s *LinuxKeyState) Close() error {
	var errs []error
	for _, dev := range s.devices {
		errs = append(errs, dev.Close())
	}
	s.devices = nil
	return errors.Join(errs...)
}
