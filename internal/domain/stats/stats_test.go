package stats_test

import (
	"testing"
	"time"

	"github.com/okian/riftbalance/internal/domain/model"
	"github.com/okian/riftbalance/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func game(id string, winner model.Side, at time.Time, parts ...model.Participant) model.Game {
	return model.Game{ID: id, WinningSide: winner, PlayedAt: at, Participants: parts}
}

func TestApply(t *testing.T) {
	Convey("Given a fresh player", t, func() {
		p := &model.Player{ID: "a"}
		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		Convey("When two games are applied", func() {
			g1 := game("g1", model.SideBlue, now,
				model.Participant{PlayerID: "a", Side: model.SideBlue, Lane: model.LaneMid, Champion: "Ahri", Kills: 5, Deaths: 1, Assists: 7})
			g2 := game("g2", model.SideBlue, now.Add(time.Hour),
				model.Participant{PlayerID: "a", Side: model.SideRed, Lane: model.LaneTop, Champion: "Ahri", Kills: 1, Deaths: 4, Assists: 2})
			stats.Apply(p, &g1, g1.Participants[0])
			stats.Apply(p, &g2, g2.Participants[0])

			Convey("Then totals and per-lane stats should be updated", func() {
				So(p.GamesPlayed, ShouldEqual, 2)
				So(p.Wins, ShouldEqual, 1)
				So(p.WinRate, ShouldEqual, 0.5)
				So(p.Kills, ShouldEqual, 6)
				So(p.StatsByLane[model.LaneMid].WinRate, ShouldEqual, 1.0)
				So(p.StatsByLane[model.LaneTop].WinRate, ShouldEqual, 0.0)
				So(p.StatsByChampion["Ahri"].GamesPlayed, ShouldEqual, 2)
				So(p.StatsByChampion["Ahri"].Assists, ShouldEqual, 9)
				So(p.UpdatedAt, ShouldEqual, now.Add(time.Hour))
			})
		})
	})
}

func TestRecalculate(t *testing.T) {
	Convey("Given players with stale aggregates", t, func() {
		a := &model.Player{ID: "a", GamesPlayed: 99, WinRate: 1}
		b := &model.Player{ID: "b"}
		now := time.Now()
		games := []model.Game{
			game("g2", model.SideRed, now.Add(time.Minute),
				model.Participant{PlayerID: "a", Side: model.SideBlue, Lane: model.LaneADC},
				model.Participant{PlayerID: "b", Side: model.SideRed, Lane: model.LaneSupport},
				model.Participant{PlayerID: "ghost", Side: model.SideRed}),
			game("g1", model.SideBlue, now,
				model.Participant{PlayerID: "a", Side: model.SideBlue, Lane: model.LaneADC},
				model.Participant{PlayerID: "b", Side: model.SideRed, Lane: model.LaneSupport}),
		}

		Convey("When recalculating from the game log", func() {
			stats.Recalculate([]*model.Player{a, b}, games)

			Convey("Then the aggregates should match the log", func() {
				So(a.GamesPlayed, ShouldEqual, 2)
				So(a.WinRate, ShouldEqual, 0.5)
				So(a.StatsByLane[model.LaneADC].GamesPlayed, ShouldEqual, 2)
				So(b.Wins, ShouldEqual, 1)
				So(b.StatsByLane[model.LaneSupport].WinRate, ShouldEqual, 0.5)
			})
		})
	})
}

func TestSynergy(t *testing.T) {
	Convey("Given a small game log", t, func() {
		now := time.Now()
		games := []model.Game{
			game("g1", model.SideBlue, now,
				model.Participant{PlayerID: "a", Side: model.SideBlue},
				model.Participant{PlayerID: "b", Side: model.SideBlue},
				model.Participant{PlayerID: "c", Side: model.SideRed}),
			game("g2", model.SideRed, now,
				model.Participant{PlayerID: "a", Side: model.SideBlue},
				model.Participant{PlayerID: "b", Side: model.SideBlue},
				model.Participant{PlayerID: "c", Side: model.SideRed}),
			game("g3", model.SideRed, now,
				model.Participant{PlayerID: "a", Side: model.SideRed},
				model.Participant{PlayerID: "c", Side: model.SideRed},
				model.Participant{PlayerID: "d", Side: model.SideBlue}),
			game("g4", model.SideRed, now,
				model.Participant{PlayerID: "x", Side: model.SideRed}),
		}

		Convey("When computing affinity for a", func() {
			s := stats.ComputeSynergy("a", games)

			Convey("Then teammates and opponents should be tallied", func() {
				So(len(s.Teammates), ShouldEqual, 2)
				So(s.Teammates[0].PlayerID, ShouldEqual, "b")
				So(s.Teammates[0].Games, ShouldEqual, 2)
				So(s.Teammates[0].WinRate, ShouldEqual, 0.5)
				So(s.Teammates[1].PlayerID, ShouldEqual, "c")
				So(s.Teammates[1].WinRate, ShouldEqual, 1.0)

				So(len(s.Opponents), ShouldEqual, 2)
				So(s.Opponents[0].PlayerID, ShouldEqual, "c")
				So(s.Opponents[0].Games, ShouldEqual, 2)
				So(s.Opponents[1].PlayerID, ShouldEqual, "d")
			})
		})
	})
}

func TestKDA(t *testing.T) {
	Convey("Given kill participation numbers", t, func() {
		So(stats.KDA(4, 2, 6), ShouldEqual, 5.0)
		So(stats.KDA(3, 0, 1), ShouldEqual, 4.0)
	})
}
