package simulate

import (
	"fmt"

	"github.com/okian/riftbalance/internal/domain/balance"
	"github.com/okian/riftbalance/internal/domain/model"
)

// verifyResult checks the invariants every split must hold: two teams of
// five that together contain each requested player once, and for lane mode
// all five lanes on each side.
func verifyResult(mode balance.Mode, requested []Player, res balance.Result) error {
	if res.Mode != mode {
		return fmt.Errorf("%w: asked for %s, got %s", ErrVerification, mode, res.Mode)
	}
	if len(res.BlueTeam) != balance.TeamSize || len(res.RedTeam) != balance.TeamSize {
		return fmt.Errorf("%w: team sizes %d/%d", ErrVerification, len(res.BlueTeam), len(res.RedTeam))
	}

	want := make(map[string]bool, len(requested))
	for _, p := range requested {
		want[p.ID] = true
	}
	seen := make(map[string]bool, len(requested))
	for _, m := range append(append(balance.Team{}, res.BlueTeam...), res.RedTeam...) {
		if !want[m.ID] {
			return fmt.Errorf("%w: unexpected player %s", ErrVerification, m.ID)
		}
		if seen[m.ID] {
			return fmt.Errorf("%w: player %s placed twice", ErrVerification, m.ID)
		}
		seen[m.ID] = true
	}
	if len(seen) != len(want) {
		return fmt.Errorf("%w: %d of %d players placed", ErrVerification, len(seen), len(want))
	}

	if mode == balance.ModeLanes {
		for side, team := range map[model.Side]balance.Team{model.SideBlue: res.BlueTeam, model.SideRed: res.RedTeam} {
			filled := make(map[model.Lane]bool, balance.TeamSize)
			for _, m := range team {
				if !m.Lane.IsValid() || filled[m.Lane] {
					return fmt.Errorf("%w: %s side lane %q missing or doubled", ErrVerification, side, m.Lane)
				}
				filled[m.Lane] = true
			}
		}
	}

	if q := res.Metrics.BalanceQuality; q < 0 || q > 100 {
		return fmt.Errorf("%w: quality %.2f out of range", ErrVerification, q)
	}
	return nil
}
