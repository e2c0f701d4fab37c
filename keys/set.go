package keys

// Set is an unordered set of keys.
type Set map[Key]struct{}

// NewSet returns a set holding ks.
func NewSet(ks ...Key) Set {
	s := make(Set, len(ks))
	for _, k := range ks {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether k is in the set.
func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// HasAll reports whether every key in ks is in the set. An empty ks is never
// satisfied.
func (s Set) HasAll(ks []Key) bool {
	if len(ks) == 0 {
		return false
	}
	for _, k := range ks {
		if !s.Has(k) {
			return false
		}
	}
	return true
}

func (s Set) Add(k Key) {
	s[k] = struct{}{}
}

func (s Set) Remove(k Key) {
	delete(s, k)
}

// Sorted returns the members in a stable order.
func (s Set) Sorted() []Key {
	out := make([]Key, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sortKeys(out)
	return out
}
