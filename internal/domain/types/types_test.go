package types_test

import (
	"testing"

	"github.com/okian/riftbalance/internal/domain/model"
	"github.com/okian/riftbalance/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

func TestEntry(t *testing.T) {
	convey.Convey("Given a player with history", t, func() {
		p := &model.Player{ID: "p1", Name: "Caps", WinRate: 0.6, GamesPlayed: 10, Kills: 30, Deaths: 10, Assists: 50}

		convey.Convey("When building a leaderboard entry", func() {
			e := types.NewEntry(3, p)

			convey.Convey("Then it should carry rank, identity and KDA", func() {
				convey.So(e.Rank, convey.ShouldEqual, 3)
				convey.So(e.PlayerID, convey.ShouldEqual, "p1")
				convey.So(e.KDA, convey.ShouldEqual, 8.0)
			})
		})
	})
}

func TestAhead(t *testing.T) {
	convey.Convey("Given players to order", t, func() {
		a := &model.Player{Name: "a", WinRate: 0.5, GamesPlayed: 4}
		b := &model.Player{Name: "b", WinRate: 0.5, GamesPlayed: 8}
		c := &model.Player{Name: "c", WinRate: 0.7, GamesPlayed: 1}
		d := &model.Player{Name: "d", WinRate: 0.5, GamesPlayed: 8}

		convey.So(types.Ahead(c, b), convey.ShouldBeTrue)
		convey.So(types.Ahead(b, a), convey.ShouldBeTrue)
		convey.So(types.Ahead(b, d), convey.ShouldBeTrue)
		convey.So(types.Ahead(d, b), convey.ShouldBeFalse)
	})
}
