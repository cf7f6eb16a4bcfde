// Package patterns provides the preset pattern library used by REGEX_MATCH
// conditions.
//
// A Library is built once with New and is immutable afterwards: nothing
// adds, removes or recompiles an entry, so one Library can be shared by any
// number of concurrent evaluations without locking. There is no package
// level registry; callers construct a Library and pass it to the engine.
//
// All presets compile with Go's RE2 engine, which matches in time linear in
// the input and cannot backtrack catastrophically.
package patterns

import (
	"fmt"
	"regexp"
	"sort"
)

// Library is an immutable registry of compiled named patterns.
type Library struct {
	entries map[string]entry
	order   []string
}

type entry struct {
	preset Preset
	re     *regexp.Regexp
}

// New compiles the builtin presets plus any extra presets. Extra presets may
// not reuse a builtin name.
func New(extra ...Preset) (*Library, error) {
	builtin := Builtin()
	all := make([]Preset, 0, len(builtin)+len(extra))
	all = append(all, builtin...)
	all = append(all, extra...)

	l := &Library{
		entries: make(map[string]entry, len(all)),
		order:   make([]string, 0, len(all)),
	}
	for _, p := range all {
		if p.Name == "" {
			return nil, fmt.Errorf("preset pattern name cannot be empty")
		}
		if _, exists := l.entries[p.Name]; exists {
			return nil, fmt.Errorf("duplicate preset pattern %q", p.Name)
		}
		re, err := regexp.Compile(p.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to compile preset pattern %q: %w", p.Name, err)
		}
		l.entries[p.Name] = entry{preset: p, re: re}
		l.order = append(l.order, p.Name)
	}
	return l, nil
}

// MustNew is like New but panics on error. It is meant for tests and for
// the builtin set, which always compiles.
func MustNew(extra ...Preset) *Library {
	l, err := New(extra...)
	if err != nil {
		panic(err)
	}
	return l
}

// Get returns the compiled pattern for name.
func (l *Library) Get(name string) (*regexp.Regexp, bool) {
	if l == nil {
		return nil, false
	}
	e, ok := l.entries[name]
	if !ok {
		return nil, false
	}
	return e.re, true
}

// Match reports whether the named pattern matches s. found is false for an
// unknown name, in which case matched is also false.
func (l *Library) Match(name, s string) (matched, found bool) {
	re, ok := l.Get(name)
	if !ok {
		return false, false
	}
	return re.MatchString(s), true
}

// Has reports whether name is registered.
func (l *Library) Has(name string) bool {
	_, ok := l.Get(name)
	return ok
}

// Names returns the registered names in registration order.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// SortedNames returns the registered names sorted alphabetically.
func (l *Library) SortedNames() []string {
	names := l.Names()
	sort.Strings(names)
	return names
}

// Presets returns the preset definitions in registration order.
func (l *Library) Presets() []Preset {
	if l == nil {
		return nil
	}
	out := make([]Preset, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.entries[name].preset)
	}
	return out
}

// Len returns the number of registered patterns.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.order)
}
