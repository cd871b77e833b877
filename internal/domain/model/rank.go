package model

import "strings"

// Tier is a ranked ladder tier.
type Tier string

const (
	TierIron        Tier = "IRON"
	TierBronze      Tier = "BRONZE"
	TierSilver      Tier = "SILVER"
	TierGold        Tier = "GOLD"
	TierPlatinum    Tier = "PLATINUM"
	TierEmerald     Tier = "EMERALD"
	TierDiamond     Tier = "DIAMOND"
	TierMaster      Tier = "MASTER"
	TierGrandmaster Tier = "GRANDMASTER"
	TierChallenger  Tier = "CHALLENGER"
)

// AllTiers lists the tiers from lowest to highest.
var AllTiers = [10]Tier{
	TierIron, TierBronze, TierSilver, TierGold, TierPlatinum,
	TierEmerald, TierDiamond, TierMaster, TierGrandmaster, TierChallenger,
}

// Index returns the position of t in AllTiers, or -1 when t is unknown.
func (t Tier) Index() int {
	for i, v := range AllTiers {
		if v == t {
			return i
		}
	}
	return -1
}

// IsValid reports whether t is a known tier.
func (t Tier) IsValid() bool { return t.Index() >= 0 }

// IsApex reports whether t has no divisions.
func (t Tier) IsApex() bool {
	return t == TierMaster || t == TierGrandmaster || t == TierChallenger
}

// ParseTier accepts a tier name case-insensitively.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidTier
	}
	return t, nil
}

// Division is a sub-rank inside a non-apex tier. IV is the lowest.
type Division string

const (
	DivisionIV  Division = "IV"
	DivisionIII Division = "III"
	DivisionII  Division = "II"
	DivisionI   Division = "I"
)

// Index returns 0 for IV through 3 for I, or -1 when d is unknown.
func (d Division) Index() int {
	switch d {
	case DivisionIV:
		return 0
	case DivisionIII:
		return 1
	case DivisionII:
		return 2
	case DivisionI:
		return 3
	}
	return -1
}

// ParseDivision accepts a division name case-insensitively; empty is allowed
// for apex tiers.
func ParseDivision(s string) (Division, error) {
	d := Division(strings.ToUpper(strings.TrimSpace(s)))
	if d == "" {
		return "", nil
	}
	if d.Index() < 0 {
		return "", ErrInvalidDivision
	}
	return d, nil
}

// SoloRank is a player's ranked solo/duo standing.
type SoloRank struct {
	Tier         Tier     `json:"tier"`
	Rank         Division `json:"rank,omitempty"`
	LeaguePoints int      `json:"leaguePoints"`
	Wins         int      `json:"wins"`
	Losses       int      `json:"losses"`
}

// Less orders ranks by tier, division and league points.
func (r SoloRank) Less(o SoloRank) bool {
	if r.Tier.Index() != o.Tier.Index() {
		return r.Tier.Index() < o.Tier.Index()
	}
	if r.Rank.Index() != o.Rank.Index() {
		return r.Rank.Index() < o.Rank.Index()
	}
	return r.LeaguePoints < o.LeaguePoints
}

func (r SoloRank) String() string {
	if r.Tier.IsApex() || r.Rank == "" {
		return string(r.Tier)
	}
	return string(r.Tier) + " " + string(r.Rank)
}
