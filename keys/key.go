// Package keys defines the key identifiers shared by trigger chords and
// injected macros.
package keys

import (
	"fmt"
	"sort"
	"strings"
)

// Code identifies a special key. Character keys use CodeRune and carry the
// character in Key.Rune.
type Code uint8

const (
	CodeNone Code = iota

	CodeEscape
	CodeEnter
	CodeTab
	CodeBackspace
	CodeSpace

	// Arrow keys
	CodeUp
	CodeDown
	CodeLeft
	CodeRight

	// Modifiers (left and right variants are not distinguished)
	CodeCtrl
	CodeShift
	CodeAlt
	CodeMeta

	CodeF1
	CodeF2
	CodeF3
	CodeF4
	CodeF5
	CodeF6
	CodeF7
	CodeF8
	CodeF9
	CodeF10
	CodeF11
	CodeF12

	// CodeRune is used for letters and digits.
	CodeRune
)

var codeNames = map[Code]string{
	CodeEscape:    "esc",
	CodeEnter:     "enter",
	CodeTab:       "tab",
	CodeBackspace: "backspace",
	CodeSpace:     "space",
	CodeUp:        "up",
	CodeDown:      "down",
	CodeLeft:      "left",
	CodeRight:     "right",
	CodeCtrl:      "ctrl",
	CodeShift:     "shift",
	CodeAlt:       "alt",
	CodeMeta:      "meta",
	CodeF1:        "f1",
	CodeF2:        "f2",
	CodeF3:        "f3",
	CodeF4:        "f4",
	CodeF5:        "f5",
	CodeF6:        "f6",
	CodeF7:        "f7",
	CodeF8:        "f8",
	CodeF9:        "f9",
	CodeF10:       "f10",
	CodeF11:       "f11",
	CodeF12:       "f12",
}

// Key is a single keyboard key. The zero value means "no key".
type Key struct {
	Code Code
	Rune rune
}

// Special returns the key for a special code.
func Special(c Code) Key {
	return Key{Code: c}
}

// Char returns the key for a letter or digit. Letters are folded to lowercase.
func Char(r rune) Key {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	return Key{Code: CodeRune, Rune: r}
}

// Frequently used keys.
var (
	Escape = Special(CodeEscape)
	Space  = Special(CodeSpace)
	Ctrl   = Special(CodeCtrl)
	Shift  = Special(CodeShift)
	Alt    = Special(CodeAlt)
	Up     = Special(CodeUp)
	Down   = Special(CodeDown)
	Left   = Special(CodeLeft)
	Right  = Special(CodeRight)
)

// IsZero reports whether k is the zero key.
func (k Key) IsZero() bool {
	return k.Code == CodeNone
}

// IsModifier reports whether k is ctrl, shift, alt or meta.
func (k Key) IsModifier() bool {
	return k.Code >= CodeCtrl && k.Code <= CodeMeta
}

// Valid reports whether k is a key the parser could have produced.
func (k Key) Valid() bool {
	if k.Code == CodeRune {
		return (k.Rune >= 'a' && k.Rune <= 'z') || (k.Rune >= '0' && k.Rune <= '9')
	}
	_, ok := codeNames[k.Code]
	return ok
}

// String returns the canonical lowercase name of the key.
func (k Key) String() string {
	if k.Code == CodeRune {
		return string(k.Rune)
	}
	if name, ok := codeNames[k.Code]; ok {
		return name
	}
	if k.Code == CodeNone {
		return "none"
	}
	return fmt.Sprintf("code(%d)", k.Code)
}

// All returns every valid key, special keys first in code order, then
// letters and digits.
func All() []Key {
	all := make([]Key, 0, len(codeNames)+36)
	for c := CodeEscape; c < CodeRune; c++ {
		all = append(all, Special(c))
	}
	for r := 'a'; r <= 'z'; r++ {
		all = append(all, Char(r))
	}
	for r := '0'; r <= '9'; r++ {
		all = append(all, Char(r))
	}
	return all
}

// Join renders keys as a chord string, e.g. "1+ctrl".
func Join(ks []Key, sep string) string {
	names := make([]string, len(ks))
	for i, k := range ks {
		names[i] = k.String()
	}
	return strings.Join(names, sep)
}

// less orders keys for deterministic output.
func less(a, b Key) bool {
	if a.Code != b.Code {
		return a.Code < b.Code
	}
	return a.Rune < b.Rune
}

func sortKeys(ks []Key) {
	sort.Slice(ks, func(i, j int) bool { return less(ks[i], ks[j]) })
}
