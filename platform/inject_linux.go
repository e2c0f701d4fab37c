//go:build linux

package platform

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"markestedt/stratagem/keys"
)

const (
	uinputPath = "/dev/uinput"

	uiSetEvbit   = 0x40045564 // _IOW('U', 100, int)
	uiSetKeybit  = 0x40045565 // _IOW('U', 101, int)
	uiDevCreate  = 0x5501     // _IO('U', 1)
	uiDevDestroy = 0x5502     // _IO('U', 2)

	evSyn     = 0x00
	evKey     = 0x01
	synReport = 0
	busUSB    = 0x03

	keyReleased = 0
	keyPressed  = 1
)

// uinputUserDev mirrors struct uinput_user_dev
type uinputUserDev struct {
	Name         [80]byte
	BusType      uint16
	Vendor       uint16
	Product      uint16
	Version      uint16
	FFEffectsMax uint32
	AbsMax       [64]int32
	AbsMin       [64]int32
	AbsFuzz      [64]int32
	AbsFlat      [64]int32
}

// inputEvent mirrors struct input_event
type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// LinuxInjector implements Injector with a uinput virtual keyboard
type LinuxInjector struct {
	mu  sync.Mutex
	dev *os.File
}

// NewInjector registers a virtual keyboard that can emit every key in
// keys.All
func NewInjector(opts Options) (Injector, error) {
	f, err := os.OpenFile(uinputPath, os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v (try running as root or add user to 'input' group)", ErrInjectionFailed, uinputPath, err)
	}
	fd := int(f.Fd())

	if err := unix.IoctlSetInt(fd, uiSetEvbit, evKey); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: UI_SET_EVBIT: %v", ErrInjectionFailed, err)
	}
	for _, k := range keys.All() {
		for _, code := range evdevCodes(k) {
			if err := unix.IoctlSetInt(fd, uiSetKeybit, int(code)); err != nil {
				f.Close()
				return nil, fmt.Errorf("%w: UI_SET_KEYBIT %d: %v", ErrInjectionFailed, code, err)
			}
		}
	}

	dev := uinputUserDev{
		BusType: busUSB,
		Vendor:  0x1,
		Product: 0x1,
		Version: 1,
	}
	copy(dev.Name[:], "stratagem virtual keyboard")
	if err := binary.Write(f, binary.NativeEndian, &dev); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: failed to write device description: %v", ErrInjectionFailed, err)
	}
	if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: UI_DEV_CREATE: %v", ErrInjectionFailed, err)
	}

	// Give the compositor time to pick up the new device before the first event
	time.Sleep(200 * time.Millisecond)

	return &LinuxInjector{dev: f}, nil
}

func (l *LinuxInjector) Press(k keys.Key) error {
	return l.emit(k, keyPressed)
}

func (l *LinuxInjector) Release(k keys.Key) error {
	return l.emit(k, keyReleased)
}

func (l *LinuxInjector) Tap(k keys.Key) error {
	return l.emit(k, keyPressed, keyReleased)
}

func (l *LinuxInjector) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dev == nil {
		return nil
	}
	unix.IoctlSetInt(int(l.dev.Fd()), uiDevDestroy, 0)
	err := l.dev.Close()
	l.dev = nil
	return err
}

// emit writes one key event per value, each followed by a SYN_REPORT, in a
// single write
func (l *LinuxInjector) emit(k keys.Key, values ...int32) error {
	codes := evdevCodes(k)
	if len(codes) == 0 {
		return fmt.Errorf("%w: %s", ErrUnmappedKey, k)
	}

	var buf bytes.Buffer
	for _, v := range values {
		binary.Write(&buf, binary.NativeEndian, inputEvent{Type: evKey, Code: codes[0], Value: v})
		binary.Write(&buf, binary.NativeEndian, inputEvent{Type: evSyn, Code: synReport})
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dev == nil {
		return fmt.Errorf("%w: device closed", ErrInjectionFailed)
	}
	if _, err := l.dev.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInjectionFailed, k, err)
	}
	return nil
}
