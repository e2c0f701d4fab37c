//go:build linux

package platform

import (
	"markestedt/stratagem/keys"
)

// Linux evdev key codes (linux/input-event-codes.h)
const (
	evKeyEsc        = 1
	evKeyBackspace  = 14
	evKeyTab        = 15
	evKeyEnter      = 28
	evKeyLeftCtrl   = 29
	evKeyLeftShift  = 42
	evKeyRightShift = 54
	evKeyLeftAlt    = 56
	evKeySpace      = 57
	evKeyF1         = 59
	evKeyF11        = 87
	evKeyF12        = 88
	evKeyRightCtrl  = 97
	evKeyRightAlt   = 100
	evKeyUp         = 103
	evKeyLeft       = 105
	evKeyRight      = 106
	evKeyDown       = 108
	evKeyLeftMeta   = 125
	evKeyRightMeta  = 126

	// evKeyMax is KEY_MAX, the highest code EVIOCGKEY reports
	evKeyMax = 0x2ff
)

// Letters follow the physical QWERTY rows, not the alphabet.
var letterCodes = map[rune]uint16{
	'q': 16, 'w': 17, 'e': 18, 'r': 19, 't': 20, 'y': 21, 'u': 22, 'i': 23, 'o': 24, 'p': 25,
	'a': 30, 's': 31, 'd': 32, 'f': 33, 'g': 34, 'h': 35, 'j': 36, 'k': 37, 'l': 38,
	'z': 44, 'x': 45, 'c': 46, 'v': 47, 'b': 48, 'n': 49, 'm': 50,
}

var specialCodes = map[keys.Code][]uint16{
	keys.CodeEscape:    {evKeyEsc},
	keys.CodeEnter:     {evKeyEnter},
	keys.CodeTab:       {evKeyTab},
	keys.CodeBackspace: {evKeyBackspace},
	keys.CodeSpace:     {evKeySpace},
	keys.CodeUp:        {evKeyUp},
	keys.CodeDown:      {evKeyDown},
	keys.CodeLeft:      {evKeyLeft},
	keys.CodeRight:     {evKeyRight},
	keys.CodeCtrl:      {evKeyLeftCtrl, evKeyRightCtrl},
	keys.CodeShift:     {evKeyLeftShift, evKeyRightShift},
	keys.CodeAlt:       {evKeyLeftAlt, evKeyRightAlt},
	keys.CodeMeta:      {evKeyLeftMeta, evKeyRightMeta},
	keys.CodeF11:       {evKeyF11},
	keys.CodeF12:       {evKeyF12},
}

// evdevCodes returns every evdev code that counts as k. The first entry is
// the one used for injection.
func evdevCodes(k keys.Key) []uint16 {
	switch {
	case k.Code == keys.CodeRune && k.Rune == '0':
		return []uint16{11}
	case k.Code == keys.CodeRune && k.Rune >= '1' && k.Rune <= '9':
		return []uint16{uint16(k.Rune-'1') + 2}
	case k.Code == keys.CodeRune:
		if c, ok := letterCodes[k.Rune]; ok {
			return []uint16{c}
		}
		return nil
	case k.Code >= keys.CodeF1 && k.Code <= keys.CodeF10:
		return []uint16{evKeyF1 + uint16(k.Code-keys.CodeF1)}
	}
	return specialCodes[k.Code]
}
