//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"markestedt/stratagem/keys"
)

const (
	inputKeyboard        = 1
	keyeventfExtendedKey = 0x0001
	keyeventfKeyup       = 0x0002
	keyeventfScancode    = 0x0008
	mapvkVkToVsc         = 0
)

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type input struct {
	inputType uint32
	ki        keyboardInput
	padding   [8]byte // Padding to match C struct size
}

// WindowsInjector implements the Injector interface with SendInput
type WindowsInjector struct{}

// NewInjector creates a new Windows injector
func NewInjector(opts Options) (Injector, error) {
	for _, p := range []interface{ Find() error }{sendInput, mapVirtualKeyW} {
		if err := p.Find(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInjectionFailed, err)
		}
	}
	return &WindowsInjector{}, nil
}

func (w *WindowsInjector) Press(k keys.Key) error {
	in, err := keyInput(k, false)
	if err != nil {
		return err
	}
	return send([]input{in})
}

func (w *WindowsInjector) Release(k keys.Key) error {
	in, err := keyInput(k, true)
	if err != nil {
		return err
	}
	return send([]input{in})
}

// Tap sends the down and up events in one SendInput call so nothing can be
// interleaved between them
func (w *WindowsInjector) Tap(k keys.Key) error {
	down, err := keyInput(k, false)
	if err != nil {
		return err
	}
	up, _ := keyInput(k, true)
	return send([]input{down, up})
}

func (w *WindowsInjector) Close() error {
	return nil
}

// keyInput builds a scan code based event, which games reading raw input
// accept more reliably than virtual key events
func keyInput(k keys.Key, up bool) (input, error) {
	vk, ok := virtualKey(k)
	if !ok {
		return input{}, fmt.Errorf("%w: %s", ErrUnmappedKey, k)
	}
	scan, _, _ := mapVirtualKeyW.Call(uintptr(vk), mapvkVkToVsc)

	flags := uint32(keyeventfScancode)
	if isExtended(vk) {
		flags |= keyeventfExtendedKey
	}
	if up {
		flags |= keyeventfKeyup
	}

	return input{
		inputType: inputKeyboard,
		ki: keyboardInput{
			wVk:     vk,
			wScan:   uint16(scan),
			dwFlags: flags,
		},
	}, nil
}

func send(inputs []input) error {
	ret, _, err := sendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(ret) != len(inputs) {
		return fmt.Errorf("%w: SendInput sent %d of %d events: %v", ErrInjectionFailed, ret, len(inputs), err)
	}
	return nil
}
