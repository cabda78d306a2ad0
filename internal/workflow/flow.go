// Package workflow holds the declarative status tables for every entity the
// gateway exposes. The same table decides which controls a view renders and
// whether the dispatcher may call the upstream at all.
package workflow

import "fmt"

// Transition is one outgoing edge of a status.
type Transition[S ~string, A ~string] struct {
	Action A
	To     S
}

// Flow is an immutable transition table for one entity type.
type Flow[S ~string, A ~string] struct {
	name    string
	initial S
	states  []S
	edges   map[S][]Transition[S, A]
}

// Define validates and builds a flow. Every state must be declared, every
// target must be a declared state and an action may appear once per state.
func Define[S ~string, A ~string](name string, initial S, states []S, edges map[S][]Transition[S, A]) (*Flow[S, A], error) {
	declared := make(map[S]struct{}, len(states))
	for _, s := range states {
		declared[s] = struct{}{}
	}
	if _, ok := declared[initial]; !ok {
		return nil, fmt.Errorf("%s: initial status %q is not declared", name, initial)
	}
	for from, list := range edges {
		if _, ok := declared[from]; !ok {
			return nil, fmt.Errorf("%s: status %q is not declared", name, from)
		}
		seen := make(map[A]struct{}, len(list))
		for _, t := range list {
			if _, ok := declared[t.To]; !ok {
				return nil, fmt.Errorf("%s: %s --%s--> %q targets an undeclared status", name, from, t.Action, t.To)
			}
			if _, dup := seen[t.Action]; dup {
				return nil, fmt.Errorf("%s: action %q declared twice on %s", name, t.Action, from)
			}
			seen[t.Action] = struct{}{}
		}
	}
	return &Flow[S, A]{name: name, initial: initial, states: states, edges: edges}, nil
}

// MustDefine is Define for package-level tables.
func MustDefine[S ~string, A ~string](name string, initial S, states []S, edges map[S][]Transition[S, A]) *Flow[S, A] {
	f, err := Define(name, initial, states, edges)
	if err != nil {
		panic(err)
	}
	return f
}

// Name identifies the entity the flow governs.
func (f *Flow[S, A]) Name() string { return f.name }

// Initial returns the status new entities start in.
func (f *Flow[S, A]) Initial() S { return f.initial }

// States returns every declared status in declaration order.
func (f *Flow[S, A]) States() []S {
	out := make([]S, len(f.states))
	copy(out, f.states)
	return out
}

// Known reports whether s is a declared status.
func (f *Flow[S, A]) Known(s S) bool {
	for _, state := range f.states {
		if state == s {
			return true
		}
	}
	return false
}

// Actions lists the permitted actions for a status in table order.
// Terminal and unknown statuses yield an empty, non-nil slice.
func (f *Flow[S, A]) Actions(s S) []A {
	list := f.edges[s]
	out := make([]A, 0, len(list))
	for _, t := range list {
		out = append(out, t.Action)
	}
	return out
}

// Can reports whether action a is permitted from status s.
func (f *Flow[S, A]) Can(s S, a A) bool {
	_, ok := f.Next(s, a)
	return ok
}

// Next returns the status reached by taking action a from s.
func (f *Flow[S, A]) Next(s S, a A) (S, bool) {
	for _, t := range f.edges[s] {
		if t.Action == a {
			return t.To, true
		}
	}
	var zero S
	return zero, false
}

// Terminal reports whether no action leaves status s.
func (f *Flow[S, A]) Terminal(s S) bool {
	return f.Known(s) && len(f.edges[s]) == 0
}

// AllActions lists every action the flow knows, deduplicated in first-seen order.
func (f *Flow[S, A]) AllActions() []A {
	seen := make(map[A]struct{})
	var out []A
	for _, s := range f.states {
		for _, t := range f.edges[s] {
			if _, ok := seen[t.Action]; ok {
				continue
			}
			seen[t.Action] = struct{}{}
			out = append(out, t.Action)
		}
	}
	return out
}

// Filter returns the actions permitted from s that also satisfy keep.
func (f *Flow[S, A]) Filter(s S, keep func(A) bool) []A {
	actions := f.Actions(s)
	out := actions[:0]
	for _, a := range actions {
		if keep == nil || keep(a) {
			out = append(out, a)
		}
	}
	return out
}
