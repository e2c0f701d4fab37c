package keys

import (
	"fmt"
	"strings"
)

var aliases = map[string]Code{
	"escape":     CodeEscape,
	"return":     CodeEnter,
	"bs":         CodeBackspace,
	"control":    CodeCtrl,
	"lctrl":      CodeCtrl,
	"rctrl":      CodeCtrl,
	"lcontrol":   CodeCtrl,
	"rcontrol":   CodeCtrl,
	"lshift":     CodeShift,
	"rshift":     CodeShift,
	"option":     CodeAlt,
	"lalt":       CodeAlt,
	"ralt":       CodeAlt,
	"cmd":        CodeMeta,
	"win":        CodeMeta,
	"super":      CodeMeta,
	"arrowup":    CodeUp,
	"arrowdown":  CodeDown,
	"arrowleft":  CodeLeft,
	"uparrow":    CodeUp,
	"downarrow":  CodeDown,
	"leftarrow":  CodeLeft,
	"arrowright": CodeRight,
	"rightarrow": CodeRight,
}

var byName map[string]Code

func init() {
	byName = make(map[string]Code, len(codeNames)+len(aliases))
	for c, name := range codeNames {
		byName[name] = c
	}
	for name, c := range aliases {
		byName[name] = c
	}
}

// Parse returns the key for a name such as "ctrl", "Space", "w" or "1".
// Names are case-insensitive.
func Parse(name string) (Key, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Key{}, fmt.Errorf("empty key name")
	}
	if c, ok := byName[n]; ok {
		return Special(c), nil
	}
	if len(n) == 1 {
		k := Char(rune(n[0]))
		if k.Valid() {
			return k, nil
		}
	}
	return Key{}, fmt.Errorf("unknown key: %q", name)
}

// ParseList parses every name in order.
func ParseList(names []string) ([]Key, error) {
	out := make([]Key, 0, len(names))
	for _, name := range names {
		k, err := Parse(name)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// ParseChord parses a "+" separated chord like "ctrl+1".
func ParseChord(chord string) ([]Key, error) {
	if strings.TrimSpace(chord) == "" {
		return nil, fmt.Errorf("empty chord")
	}
	return ParseList(strings.Split(chord, "+"))
}

// MustParse is like Parse but panics on an unknown name.
func MustParse(name string) Key {
	k, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return k
}
