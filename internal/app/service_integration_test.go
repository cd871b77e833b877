package service_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/riftbalance/internal/adapters/repository"
	service "github.com/okian/riftbalance/internal/app"
	"github.com/okian/riftbalance/internal/domain/balance"
	"github.com/okian/riftbalance/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var laneOrder = []model.Lane{model.LaneTop, model.LaneJungle, model.LaneMid, model.LaneADC, model.LaneSupport}

// matchGame puts players[0:5] on blue and players[5:10] on red, each in
// lane order.
func matchGame(id string, winner model.Side, players []*model.Player, at time.Time) model.Game {
	g := model.Game{ID: id, WinningSide: winner, PlayedAt: at}
	for i, p := range players {
		side := model.SideBlue
		if i >= 5 {
			side = model.SideRed
		}
		g.Participants = append(g.Participants, model.Participant{
			PlayerID: p.ID,
			Side:     side,
			Lane:     laneOrder[i%5],
			Champion: fmt.Sprintf("champ-%d", i),
			Kills:    i,
			Deaths:   1,
			Assists:  2,
		})
	}
	return g
}

// stalledStore blocks RecordGame until release is closed.
type stalledStore struct {
	repository.Store
	release chan struct{}
}

func (s *stalledStore) RecordGame(ctx context.Context, g model.Game) error {
	<-s.release
	return s.Store.RecordGame(ctx, g)
}

// waitRecorded polls until the workers have recorded n games.
func waitRecorded(svc *service.Service, n int64) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if recorded, _ := svc.GetStats()["gamesRecorded"].(int64); recorded >= n {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service with ten players", t, func() {
		svc, ctx, cancel := startService()
		defer cancel()
		defer svc.Stop()
		players := createPlayers(ctx, svc, 10)
		base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

		Convey("When three games are ingested end-to-end", func() {
			games := []model.Game{
				matchGame("m1", model.SideBlue, players, base),
				matchGame("m2", model.SideBlue, players, base.Add(time.Hour)),
				matchGame("m3", model.SideRed, players, base.Add(2*time.Hour)),
			}
			for i := range games {
				So(svc.ValidateGame(ctx, &games[i]), ShouldBeNil)
				So(svc.SeenAndRecord(ctx, games[i].ID), ShouldBeFalse)
				So(svc.Enqueue(ctx, games[i]), ShouldBeNil)
			}
			So(waitRecorded(svc, 3), ShouldBeTrue)

			Convey("Then player stats reflect the games", func() {
				blue, err := svc.GetPlayer(ctx, players[0].ID)
				So(err, ShouldBeNil)
				So(blue.GamesPlayed, ShouldEqual, 3)
				So(blue.Wins, ShouldEqual, 2)
				So(blue.StatsByLane[model.LaneTop].GamesPlayed, ShouldEqual, 3)

				red, err := svc.GetPlayer(ctx, players[7].ID)
				So(err, ShouldBeNil)
				So(red.Wins, ShouldEqual, 1)

				byName, err := svc.PlayerByName(ctx, strings.ToUpper(players[7].Name))
				So(err, ShouldBeNil)
				So(byName.ID, ShouldEqual, players[7].ID)
				So(byName.Wins, ShouldEqual, 1)
			})

			Convey("And the game log lists them by play time", func() {
				log, err := svc.ListGames(ctx)
				So(err, ShouldBeNil)
				So(len(log), ShouldEqual, 3)
				So(log[0].ID, ShouldEqual, "m1")
				So(log[2].ID, ShouldEqual, "m3")
			})

			Convey("And duplicate games should be detected", func() {
				So(svc.SeenAndRecord(ctx, "m1"), ShouldBeTrue)
			})

			Convey("And the leaderboard should rank blue players first", func() {
				top, err := svc.TopN(ctx, 20)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 10)
				So(top[0].Rank, ShouldEqual, 1)
				So(top[0].WinRate, ShouldAlmostEqual, 2.0/3.0, 1e-9)
				So(top[9].WinRate, ShouldAlmostEqual, 1.0/3.0, 1e-9)

				entry, err := svc.Rank(ctx, players[9].ID)
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldBeGreaterThan, 5)
			})

			Convey("And synergy should count shared games", func() {
				syn, err := svc.Synergy(ctx, players[0].ID)
				So(err, ShouldBeNil)
				So(len(syn.Teammates), ShouldEqual, 4)
				So(len(syn.Opponents), ShouldEqual, 5)
				So(syn.Teammates[0].Games, ShouldEqual, 3)
			})

			Convey("And recalculation should reproduce the same stats", func() {
				n, err := svc.Recalculate(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 10)
				p, err := svc.GetPlayer(ctx, players[0].ID)
				So(err, ShouldBeNil)
				So(p.GamesPlayed, ShouldEqual, 3)
				So(p.Wins, ShouldEqual, 2)
			})

			Convey("And balancing should mix the previous winners", func() {
				res, err := svc.Balance(ctx, balance.ModeBasic, refs(players))
				So(err, ShouldBeNil)
				winners := 0
				for _, m := range res.BlueTeam {
					for _, p := range players[:5] {
						if m.ID == p.ID {
							winners++
						}
					}
				}
				So(winners, ShouldBeIn, 2, 3)
				So(res.Metrics.Difference, ShouldBeLessThan, 0.5)
			})
		})

		Convey("When many games are enqueued concurrently", func() {
			const total = 50
			var wg sync.WaitGroup
			errs := make(chan error, total)
			for i := 0; i < total; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					g := matchGame(fmt.Sprintf("bulk-%d", i), model.SideRed, players, base.Add(time.Duration(i)*time.Minute))
					if !svc.SeenAndRecord(ctx, g.ID) {
						errs <- svc.Enqueue(ctx, g)
					}
				}(i)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				So(err, ShouldBeNil)
			}

			Convey("Then every game should be recorded", func() {
				So(waitRecorded(svc, total), ShouldBeTrue)
				p, err := svc.GetPlayer(ctx, players[5].ID)
				So(err, ShouldBeNil)
				So(p.GamesPlayed, ShouldEqual, total)
				So(p.WinRate, ShouldEqual, 1.0)
			})
		})

		Convey("When stats are recalculated while the workers record games", func() {
			const total = 30
			done := make(chan struct{})
			recalcErrs := make(chan error, 1)
			go func() {
				defer close(recalcErrs)
				for {
					select {
					case <-done:
						return
					default:
					}
					if _, err := svc.Recalculate(ctx); err != nil {
						recalcErrs <- err
						return
					}
				}
			}()
			for i := 0; i < total; i++ {
				g := matchGame(fmt.Sprintf("race-%d", i), model.SideBlue, players, base.Add(time.Duration(i)*time.Minute))
				So(svc.SeenAndRecord(ctx, g.ID), ShouldBeFalse)
				So(svc.Enqueue(ctx, g), ShouldBeNil)
			}
			recorded := waitRecorded(svc, total)
			close(done)

			Convey("Then no recorded game is lost from the stats", func() {
				So(recorded, ShouldBeTrue)
				So(<-recalcErrs, ShouldBeNil)
				p, err := svc.GetPlayer(ctx, players[0].ID)
				So(err, ShouldBeNil)
				So(p.GamesPlayed, ShouldEqual, total)
				So(p.Wins, ShouldEqual, total)
			})
		})
	})
}

func TestServiceErrorHandling(t *testing.T) {
	Convey("Given a service with a tiny queue and a stalled store", t, func() {
		store := &stalledStore{Store: repository.NewMemoryStore(), release: make(chan struct{})}
		svc := service.New(service.WithQueueSize(2), service.WithWorkerCount(1), service.WithStore(store))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		defer close(store.release)

		Convey("When enqueueing beyond queue capacity", func() {
			var rejected int
			for i := 0; i < 20; i++ {
				if err := svc.Enqueue(ctx, model.Game{ID: fmt.Sprintf("flood-%d", i)}); err != nil {
					So(err, ShouldWrap, service.ErrBackpressure)
					rejected++
				}
			}

			Convey("Then games beyond the buffer are rejected due to backpressure", func() {
				So(rejected, ShouldBeGreaterThanOrEqualTo, 17)
			})
		})
	})

	Convey("Given a game that fails to record", t, func() {
		svc, ctx, cancel := startService()
		defer cancel()
		defer svc.Stop()
		players := createPlayers(ctx, svc, 10)
		g := matchGame("orphan", model.SideBlue, players, time.Now())
		So(svc.ValidateGame(ctx, &g), ShouldBeNil)
		So(svc.DeletePlayer(ctx, players[3].ID), ShouldBeNil)

		Convey("When it is ingested", func() {
			So(svc.SeenAndRecord(ctx, g.ID), ShouldBeFalse)
			So(svc.Enqueue(ctx, g), ShouldBeNil)

			Convey("Then its id is released for a corrected resubmission", func() {
				deadline := time.Now().Add(5 * time.Second)
				for time.Now().Before(deadline) {
					if failed, _ := svc.GetStats()["gamesFailed"].(int64); failed >= 1 {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				So(svc.GetStats()["gamesFailed"], ShouldEqual, 1)
				So(svc.SeenAndRecord(ctx, g.ID), ShouldBeFalse)
			})
		})
	})
}

func TestServiceSQLite(t *testing.T) {
	Convey("Given a service backed by SQLite", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "rift.db")
		store, err := repository.OpenSQLite(ctx, path)
		So(err, ShouldBeNil)
		svc, ctx, cancel := startService(service.WithStore(store))
		defer cancel()
		players := createPlayers(ctx, svc, 10)

		Convey("When a game is ingested and the service restarts", func() {
			g := matchGame("persisted", model.SideRed, players, time.Now().UTC())
			So(svc.ValidateGame(ctx, &g), ShouldBeNil)
			So(svc.SeenAndRecord(ctx, g.ID), ShouldBeFalse)
			So(svc.Enqueue(ctx, g), ShouldBeNil)
			So(waitRecorded(svc, 1), ShouldBeTrue)
			svc.Stop()

			reopened, err := repository.OpenSQLite(ctx, path)
			So(err, ShouldBeNil)
			again, ctx2, cancel2 := startService(service.WithStore(reopened))
			defer cancel2()
			defer again.Stop()

			Convey("Then stats and seen ids survive", func() {
				p, err := again.GetPlayer(ctx2, players[6].ID)
				So(err, ShouldBeNil)
				So(p.Wins, ShouldEqual, 1)
				So(again.SeenAndRecord(ctx2, "persisted"), ShouldBeTrue)
			})
		})
	})
}
