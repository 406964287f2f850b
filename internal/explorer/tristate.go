// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package explorer

import (
	"fmt"
	"strings"
)

// TriState is the filter state of one tag.
type TriState uint8

const (
	// None places no constraint on the tag.
	None TriState = iota
	// Include requires the tag to be true.
	Include
	// Exclude requires the tag to be false or absent.
	Exclude
)

// Next returns the state after one toggle: none -> include -> exclude -> none.
func (s TriState) Next() TriState {
	switch s {
	case None:
		return Include
	case Include:
		return Exclude
	default:
		return None
	}
}

// Allows reports whether a recipe whose tag value is v passes this state.
func (s TriState) Allows(v bool) bool {
	switch s {
	case Include:
		return v
	case Exclude:
		return !v
	default:
		return true
	}
}

func (s TriState) String() string {
	switch s {
	case None:
		return "none"
	case Include:
		return "include"
	case Exclude:
		return "exclude"
	default:
		return fmt.Sprintf("TriState(%d)", uint8(s))
	}
}

// ParseTriState parses "none", "include" or "exclude", ignoring case.
// An empty string is none.
func ParseTriState(s string) (TriState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "include":
		return Include, nil
	case "exclude":
		return Exclude, nil
	default:
		return None, fmt.Errorf("invalid tag state %q: want none, include or exclude", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s TriState) MarshalText() ([]byte, error) {
	if s > Exclude {
		return nil, fmt.Errorf("invalid tag state %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *TriState) UnmarshalText(text []byte) error {
	v, err := ParseTriState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
