package config

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=AccessMode,MappingStrategy -linecomment -output=enum_string.go

// AccessMode selects which members the default access strategy scans.
type AccessMode int

const (
	AccessBoth      AccessMode = iota // both
	AccessFields                      // fields
	AccessAccessors                   // accessors
)

// ParseAccessMode parses "both", "fields" or "accessors".
func ParseAccessMode(s string) (AccessMode, error) {
	for _, m := range []AccessMode{AccessBoth, AccessFields, AccessAccessors} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}

	return 0, fmt.Errorf("unknown access mode %q (expected both, fields or accessors)", s)
}

// MappingStrategy selects a built-in transience strategy.
type MappingStrategy int

const (
	OptOutStrategy MappingStrategy = iota // opt-out
	OptInStrategy                         // opt-in
)

// ParseMappingStrategy parses "opt-out" or "opt-in".
func ParseMappingStrategy(s string) (MappingStrategy, error) {
	for _, m := range []MappingStrategy{OptOutStrategy, OptInStrategy} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}

	return 0, fmt.Errorf("unknown mapping strategy %q (expected opt-out or opt-in)", s)
}

// Transience returns the built-in strategy for s.
func (s MappingStrategy) Transience() TransienceStrategy {
	if s == OptInStrategy {
		return OptIn()
	}

	return OptOut()
}
