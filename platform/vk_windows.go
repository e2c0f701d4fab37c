//go:build windows

package platform

import (
	"markestedt/stratagem/keys"
)

const (
	vkBack    = 0x08
	vkTab     = 0x09
	vkReturn  = 0x0D
	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12
	vkEscape  = 0x1B
	vkSpace   = 0x20
	vkLeft    = 0x25
	vkUp      = 0x26
	vkRight   = 0x27
	vkDown    = 0x28
	vkLwin    = 0x5B
	vkRwin    = 0x5C
	vkF1      = 0x70
)

var specialVK = map[keys.Code]uint16{
	keys.CodeEscape:    vkEscape,
	keys.CodeEnter:     vkReturn,
	keys.CodeTab:       vkTab,
	keys.CodeBackspace: vkBack,
	keys.CodeSpace:     vkSpace,
	keys.CodeUp:        vkUp,
	keys.CodeDown:      vkDown,
	keys.CodeLeft:      vkLeft,
	keys.CodeRight:     vkRight,
	keys.CodeCtrl:      vkControl,
	keys.CodeShift:     vkShift,
	keys.CodeAlt:       vkMenu,
	keys.CodeMeta:      vkLwin,
}

// virtualKey returns the Windows virtual key code used to inject k.
func virtualKey(k keys.Key) (uint16, bool) {
	switch {
	case k.Code == keys.CodeRune && k.Rune >= 'a' && k.Rune <= 'z':
		return uint16(k.Rune - 'a' + 'A'), true
	case k.Code == keys.CodeRune && k.Rune >= '0' && k.Rune <= '9':
		return uint16(k.Rune), true
	case k.Code >= keys.CodeF1 && k.Code <= keys.CodeF12:
		return vkF1 + uint16(k.Code-keys.CodeF1), true
	}
	vk, ok := specialVK[k.Code]
	return vk, ok
}

// stateVirtualKeys returns every virtual key whose down state means k is down.
func stateVirtualKeys(k keys.Key) []uint16 {
	if k.Code == keys.CodeMeta {
		return []uint16{vkLwin, vkRwin}
	}
	if vk, ok := virtualKey(k); ok {
		return []uint16{vk}
	}
	return nil
}

// isExtended reports whether the key needs KEYEVENTF_EXTENDEDKEY when sent
// by scan code.
func isExtended(vk uint16) bool {
	switch vk {
	case vkLeft, vkUp, vkRight, vkDown, vkLwin, vkRwin:
		return true
	}
	return false
}
