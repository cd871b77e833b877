package model_test

import (
	"fmt"
	"testing"

	model "github.com/okian/riftbalance/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestLane(t *testing.T) {
	convey.Convey("Given lane names", t, func() {
		convey.Convey("When parsing valid names in any case", func() {
			l, err := model.ParseLane(" MID ")

			convey.Convey("Then the lane should be recognised", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(l, convey.ShouldEqual, model.LaneMid)
			})
		})

		convey.Convey("When parsing an empty name", func() {
			l, err := model.ParseLane("")

			convey.Convey("Then it should mean no preference", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(l, convey.ShouldEqual, model.Lane(""))
			})
		})

		convey.Convey("When parsing an unknown name", func() {
			_, err := model.ParseLane("bottom")

			convey.Convey("Then it should fail with ErrInvalidLane", func() {
				convey.So(err, convey.ShouldEqual, model.ErrInvalidLane)
			})
		})

		convey.Convey("Then every listed lane should be valid", func() {
			for _, l := range model.AllLanes {
				convey.So(l.IsValid(), convey.ShouldBeTrue)
			}
		})
	})
}

func TestSide(t *testing.T) {
	convey.Convey("Given the two sides", t, func() {
		convey.So(model.SideBlue.Opposite(), convey.ShouldEqual, model.SideRed)
		convey.So(model.SideRed.Opposite(), convey.ShouldEqual, model.SideBlue)
		convey.So(model.Side("green").IsValid(), convey.ShouldBeFalse)
	})
}

func TestSoloRank(t *testing.T) {
	convey.Convey("Given ranked standings", t, func() {
		gold2 := model.SoloRank{Tier: model.TierGold, Rank: model.DivisionII, LeaguePoints: 40}
		gold1 := model.SoloRank{Tier: model.TierGold, Rank: model.DivisionI, LeaguePoints: 0}
		master := model.SoloRank{Tier: model.TierMaster, LeaguePoints: 10}

		convey.Convey("Then ordering should follow tier, division and points", func() {
			convey.So(gold2.Less(gold1), convey.ShouldBeTrue)
			convey.So(gold1.Less(master), convey.ShouldBeTrue)
			convey.So(master.Less(gold2), convey.ShouldBeFalse)
		})

		convey.Convey("Then apex tiers should print without a division", func() {
			convey.So(master.String(), convey.ShouldEqual, "MASTER")
			convey.So(gold2.String(), convey.ShouldEqual, "GOLD II")
		})

		convey.Convey("When parsing tiers and divisions", func() {
			tier, err := model.ParseTier("platinum")
			convey.So(err, convey.ShouldBeNil)
			convey.So(tier, convey.ShouldEqual, model.TierPlatinum)
			convey.So(tier.Index(), convey.ShouldEqual, 4)

			_, err = model.ParseTier("wood")
			convey.So(err, convey.ShouldEqual, model.ErrInvalidTier)

			_, err = model.ParseDivision("V")
			convey.So(err, convey.ShouldEqual, model.ErrInvalidDivision)
		})
	})
}

func TestPlayerCandidate(t *testing.T) {
	convey.Convey("Given a player with lane stats and a rank", t, func() {
		p := &model.Player{
			ID:          "p1",
			Name:        "Faker",
			WinRate:     0.6,
			StatsByLane: map[model.Lane]model.LaneStats{model.LaneMid: {GamesPlayed: 4, Wins: 3, WinRate: 0.75}},
			SoloRank:    &model.SoloRank{Tier: model.TierChallenger, LeaguePoints: 1200},
		}

		convey.Convey("When projecting it into a candidate", func() {
			c := p.Candidate(model.LaneMid, model.LaneTop)

			convey.Convey("Then the candidate should carry copies of the data", func() {
				convey.So(c.ID, convey.ShouldEqual, "p1")
				convey.So(c.PrimaryRole, convey.ShouldEqual, model.LaneMid)
				convey.So(c.SecondaryRole, convey.ShouldEqual, model.LaneTop)
				convey.So(c.Lane(model.LaneMid).GamesPlayed, convey.ShouldEqual, 4)
				convey.So(c.Lane(model.LaneADC).GamesPlayed, convey.ShouldEqual, 0)

				c.StatsByLane[model.LaneMid] = model.LaneStats{}
				c.SoloRank.LeaguePoints = 0
				convey.So(p.StatsByLane[model.LaneMid].GamesPlayed, convey.ShouldEqual, 4)
				convey.So(p.SoloRank.LeaguePoints, convey.ShouldEqual, 1200)
			})
		})
	})
}

func TestGame(t *testing.T) {
	convey.Convey("Given a recorded game", t, func() {
		g := &model.Game{
			ID:          "g1",
			WinningSide: model.SideRed,
			Participants: []model.Participant{
				{PlayerID: "a", Side: model.SideBlue},
				{PlayerID: "b", Side: model.SideRed},
			},
		}

		convey.So(g.Won(g.Participants[0]), convey.ShouldBeFalse)
		convey.So(g.Won(g.Participants[1]), convey.ShouldBeTrue)
		convey.So(len(g.Team(model.SideBlue)), convey.ShouldEqual, 1)
	})
}

// fullGame seats players p0..p9, the first five on blue, each side taking
// the five lanes in order.
func fullGame(id string) model.Game {
	g := model.Game{ID: id, WinningSide: model.SideBlue}
	for i := 0; i < 2*model.SideSize; i++ {
		side := model.SideBlue
		if i >= model.SideSize {
			side = model.SideRed
		}
		g.Participants = append(g.Participants, model.Participant{
			PlayerID: fmt.Sprintf("p%d", i),
			Side:     side,
			Lane:     model.AllLanes[i%model.SideSize],
		})
	}
	return g
}

func TestGameValidate(t *testing.T) {
	convey.Convey("Given games to validate", t, func() {
		valid := fullGame("g1")
		convey.So(valid.Validate(), convey.ShouldBeNil)

		convey.Convey("Lanes may be left unset", func() {
			g := fullGame("g1")
			for i := range g.Participants {
				g.Participants[i].Lane = ""
			}
			convey.So(g.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("A missing id or unknown winner is rejected", func() {
			noID := fullGame("")
			convey.So(noID.Validate(), convey.ShouldWrap, model.ErrInvalidGame)

			badWinner := fullGame("g1")
			badWinner.WinningSide = "purple"
			convey.So(badWinner.Validate(), convey.ShouldWrap, model.ErrInvalidSide)
		})

		convey.Convey("A short game is rejected", func() {
			short := fullGame("g1")
			short.Participants = []model.Participant{
				{PlayerID: "a", Side: model.SideBlue, Lane: model.LaneMid},
				{PlayerID: "b", Side: model.SideBlue, Lane: model.LaneMid},
			}
			convey.So(short.Validate(), convey.ShouldWrap, model.ErrInvalidGame)
		})

		convey.Convey("A one-sided game is rejected", func() {
			g := fullGame("g1")
			for i := range g.Participants {
				g.Participants[i].Side = model.SideBlue
				g.Participants[i].Lane = ""
			}
			convey.So(g.Validate(), convey.ShouldWrap, model.ErrInvalidGame)
		})

		convey.Convey("A lane taken twice on one side is rejected", func() {
			g := fullGame("g1")
			g.Participants[1].Lane = model.LaneTop
			convey.So(g.Validate(), convey.ShouldWrap, model.ErrInvalidLane)
		})

		convey.Convey("A player listed twice is rejected", func() {
			g := fullGame("g1")
			g.Participants[9].PlayerID = "p0"
			convey.So(g.Validate(), convey.ShouldWrap, model.ErrInvalidGame)
		})

		convey.Convey("Unknown sides and lanes are rejected", func() {
			g := fullGame("g1")
			g.Participants[0].Lane = "bot"
			convey.So(g.Validate(), convey.ShouldWrap, model.ErrInvalidLane)

			g = fullGame("g1")
			g.Participants[0].Side = "green"
			convey.So(g.Validate(), convey.ShouldWrap, model.ErrInvalidSide)
		})
	})
}
