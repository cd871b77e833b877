// Package model contains domain models passed between layers.
package model

import "strings"

// Lane is one of the five positions of a 5v5 match.
type Lane string

const (
	LaneTop     Lane = "top"
	LaneJungle  Lane = "jungle"
	LaneMid     Lane = "mid"
	LaneADC     Lane = "adc"
	LaneSupport Lane = "support"
)

// AllLanes lists every lane in assignment order.
var AllLanes = [5]Lane{LaneTop, LaneJungle, LaneMid, LaneADC, LaneSupport}

// IsValid reports whether l is one of the five lanes.
func (l Lane) IsValid() bool {
	switch l {
	case LaneTop, LaneJungle, LaneMid, LaneADC, LaneSupport:
		return true
	}
	return false
}

func (l Lane) String() string {
	return string(l)
}

// ParseLane accepts a lane name case-insensitively. The empty string parses
// to the zero Lane, which callers treat as "no preference".
func ParseLane(s string) (Lane, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	l := Lane(s)
	if !l.IsValid() {
		return "", ErrInvalidLane
	}
	return l, nil
}

// Side identifies one of the two teams.
type Side string

const (
	SideBlue Side = "blue"
	SideRed  Side = "red"
)

// IsValid reports whether s is blue or red.
func (s Side) IsValid() bool {
	return s == SideBlue || s == SideRed
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBlue {
		return SideRed
	}
	return SideBlue
}

// RoleMatch records which assignment phase placed a player in a lane.
type RoleMatch string

const (
	RoleMatchPrimary   RoleMatch = "primary"
	RoleMatchSecondary RoleMatch = "secondary"
	RoleMatchStats     RoleMatch = "stats"
	RoleMatchFallback  RoleMatch = "fallback"
	RoleMatchRandom    RoleMatch = "random"
)

// AllRoleMatches lists every provenance tag.
var AllRoleMatches = [5]RoleMatch{
	RoleMatchPrimary, RoleMatchSecondary, RoleMatchStats, RoleMatchFallback, RoleMatchRandom,
}
