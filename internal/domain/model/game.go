package model

import (
	"fmt"
	"time"
)

// Participant is one player's line in a recorded game.
type Participant struct {
	PlayerID string `json:"playerId"`
	Side     Side   `json:"side"`
	Lane     Lane   `json:"lane"`
	Champion string `json:"champion,omitempty"`
	Kills    int    `json:"kills"`
	Deaths   int    `json:"deaths"`
	Assists  int    `json:"assists"`
}

// Game is a finished 5v5 match.
type Game struct {
	ID           string        `json:"id"`
	WinningSide  Side          `json:"winningSide"`
	PlayedAt     time.Time     `json:"playedAt"`
	Participants []Participant `json:"participants"`
}

// Won reports whether part was on the winning side of g.
func (g *Game) Won(part Participant) bool {
	return part.Side == g.WinningSide
}

// Team returns the participants on side s.
func (g *Game) Team(s Side) []Participant {
	out := make([]Participant, 0, len(g.Participants)/2)
	for _, p := range g.Participants {
		if p.Side == s {
			out = append(out, p)
		}
	}
	return out
}

// SideSize is the number of players on each side of a game.
const SideSize = 5

// Validate checks that g can be recorded: an id, a valid winner, and five
// distinct players per side, each side holding a lane at most once.
func (g *Game) Validate() error {
	switch {
	case g.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidGame)
	case !g.WinningSide.IsValid():
		return fmt.Errorf("%w: winning side %q", ErrInvalidSide, g.WinningSide)
	case len(g.Participants) != 2*SideSize:
		return fmt.Errorf("%w: %d participants, want %d", ErrInvalidGame, len(g.Participants), 2*SideSize)
	}
	seen := make(map[string]struct{}, len(g.Participants))
	perSide := make(map[Side]int, 2)
	lanes := make(map[Side]map[Lane]struct{}, 2)
	for _, p := range g.Participants {
		if p.PlayerID == "" {
			return fmt.Errorf("%w: participant without player id", ErrInvalidGame)
		}
		if _, dup := seen[p.PlayerID]; dup {
			return fmt.Errorf("%w: player %s listed twice", ErrInvalidGame, p.PlayerID)
		}
		seen[p.PlayerID] = struct{}{}
		if !p.Side.IsValid() {
			return fmt.Errorf("%w: side %q", ErrInvalidSide, p.Side)
		}
		perSide[p.Side]++
		if p.Lane == "" {
			continue
		}
		if !p.Lane.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidLane, p.Lane)
		}
		if lanes[p.Side] == nil {
			lanes[p.Side] = make(map[Lane]struct{}, SideSize)
		}
		if _, dup := lanes[p.Side][p.Lane]; dup {
			return fmt.Errorf("%w: %s lane %s taken twice", ErrInvalidLane, p.Side, p.Lane)
		}
		lanes[p.Side][p.Lane] = struct{}{}
	}
	if perSide[SideBlue] != SideSize || perSide[SideRed] != SideSize {
		return fmt.Errorf("%w: sides of %d and %d players", ErrInvalidGame, perSide[SideBlue], perSide[SideRed])
	}
	return nil
}
