// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package explorer

// FilterState maps tag names to their TriState. A tag with no entry is None,
// so tags discovered after the state was created need no initialization.
type FilterState map[string]TriState

// Get returns the state of tag.
func (f FilterState) Get(tag string) TriState {
	return f[tag]
}

// Toggle advances tag to its next state and returns it.
func (f FilterState) Toggle(tag string) TriState {
	next := f[tag].Next()
	f.Set(tag, next)
	return next
}

// Set assigns a state. Setting None removes the entry.
func (f FilterState) Set(tag string, s TriState) {
	if s == None {
		delete(f, tag)
		return
	}
	f[tag] = s
}

// Clone returns an independent copy.
func (f FilterState) Clone() FilterState {
	out := make(FilterState, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Without returns a copy of f minus the tags in skip.
func (f FilterState) Without(skip map[string]struct{}) FilterState {
	out := make(FilterState, len(f))
	for k, v := range f {
		if _, ok := skip[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// Active returns the number of tags with a constraint.
func (f FilterState) Active() int {
	n := 0
	for _, v := range f {
		if v != None {
			n++
		}
	}
	return n
}

// FilterFromLists builds a FilterState from include and exclude tag lists.
// A tag named in both lists ends up excluded.
func FilterFromLists(include, exclude []string) FilterState {
	f := make(FilterState, len(include)+len(exclude))
	for _, t := range include {
		if t != "" {
			f.Set(t, Include)
		}
	}
	for _, t := range exclude {
		if t != "" {
			f.Set(t, Exclude)
		}
	}
	return f
}
