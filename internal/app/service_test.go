package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/okian/riftbalance/internal/adapters/repository"
	service "github.com/okian/riftbalance/internal/app"
	"github.com/okian/riftbalance/internal/domain/balance"
	"github.com/okian/riftbalance/internal/domain/model"
	"github.com/okian/riftbalance/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type fakeRiot struct {
	acct  model.RiotAccount
	rank  *model.SoloRank
	err   error
	calls int
}

func (f *fakeRiot) Configured() bool { return true }

func (f *fakeRiot) Lookup(_ context.Context, gameName, tagLine string) (model.RiotAccount, *model.SoloRank, error) {
	f.calls++
	if f.err != nil {
		return model.RiotAccount{}, nil, f.err
	}
	acct := f.acct
	acct.GameName, acct.TagLine = gameName, tagLine
	return acct, f.rank, nil
}

func startService(opts ...service.Option) (*service.Service, context.Context, context.CancelFunc) {
	svc := service.New(append([]service.Option{service.WithWorkerCount(2)}, opts...)...)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	So(svc.Start(ctx), ShouldBeNil)
	return svc, ctx, cancel
}

func createPlayers(ctx context.Context, svc *service.Service, n int) []*model.Player {
	out := make([]*model.Player, n)
	for i := range out {
		p, err := svc.CreatePlayer(ctx, fmt.Sprintf("player-%02d", i), "", "")
		So(err, ShouldBeNil)
		out[i] = p
	}
	return out
}

func refs(players []*model.Player) []service.PlayerRef {
	out := make([]service.PlayerRef, len(players))
	for i, p := range players {
		out[i] = service.PlayerRef{ID: p.ID}
	}
	return out
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.GetStats()["workerCount"], ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithDedupeSize(25_000),
			service.WithStore(repository.NewMemoryStore()),
			service.WithBalancer(balance.New(balance.WithTrials(10))),
		)

		Convey("Then the options should be reflected in stats", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 8)
			So(stats["queueSize"], ShouldEqual, 50_000)
			So(stats["dedupeSize"], ShouldEqual, 25_000)
			So(stats["riotEnabled"], ShouldBeFalse)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, _, cancel := startService()
		defer cancel()

		Convey("Then it should be marked as started", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["queueLength"], ShouldEqual, 0)
			So(stats["totalPlayers"], ShouldEqual, 0)
		})

		Convey("When stopping the service twice", func() {
			svc.Stop()
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given a store that already holds games", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		players := make([]*model.Player, 10)
		for i := range players {
			players[i] = &model.Player{Name: fmt.Sprintf("veteran-%d", i)}
			So(store.CreatePlayer(ctx, players[i]), ShouldBeNil)
		}
		So(store.RecordGame(ctx, matchGame("old-game", model.SideBlue, players, time.Now())), ShouldBeNil)

		Convey("When the service starts", func() {
			svc, ctx, cancel := startService(service.WithStore(store))
			defer cancel()
			defer svc.Stop()

			Convey("Then stored game ids are already known", func() {
				So(svc.Size(), ShouldEqual, 1)
				So(svc.SeenAndRecord(ctx, "old-game"), ShouldBeTrue)
			})
		})
	})
}

func TestService_Players(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx, cancel := startService()
		defer cancel()
		defer svc.Stop()

		Convey("When creating a player", func() {
			p, err := svc.CreatePlayer(ctx, "  Faker ", "Hide on bush", "KR1")
			So(err, ShouldBeNil)

			Convey("Then it should be retrievable by id", func() {
				got, err := svc.GetPlayer(ctx, p.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Faker")
				So(got.Riot.TagLine, ShouldEqual, "KR1")
			})

			Convey("Then a second player with the same name is rejected", func() {
				_, err := svc.CreatePlayer(ctx, "faker", "", "")
				So(err, ShouldWrap, repository.ErrPlayerExists)
			})

			Convey("Then deleting it removes it from the list", func() {
				So(svc.DeletePlayer(ctx, p.ID), ShouldBeNil)
				list, err := svc.ListPlayers(ctx)
				So(err, ShouldBeNil)
				So(list, ShouldBeEmpty)
				So(svc.DeletePlayer(ctx, p.ID), ShouldWrap, repository.ErrPlayerNotFound)
			})
		})
	})
}

func TestService_Balance(t *testing.T) {
	Convey("Given ten registered players", t, func() {
		svc, ctx, cancel := startService()
		defer cancel()
		defer svc.Stop()
		players := createPlayers(ctx, svc, 10)

		Convey("When balancing in basic mode", func() {
			res, err := svc.Balance(ctx, balance.ModeBasic, refs(players))

			Convey("Then every player lands on exactly one side", func() {
				So(err, ShouldBeNil)
				So(len(res.BlueTeam), ShouldEqual, 5)
				So(len(res.RedTeam), ShouldEqual, 5)
				seen := map[string]bool{}
				for _, m := range append(res.BlueTeam, res.RedTeam...) {
					seen[m.ID] = true
				}
				So(len(seen), ShouldEqual, 10)
			})
		})

		Convey("When balancing with lanes and stated roles", func() {
			r := refs(players)
			lanes := []model.Lane{model.LaneTop, model.LaneJungle, model.LaneMid, model.LaneADC, model.LaneSupport}
			for i := range r {
				r[i].PrimaryRole = lanes[i%5]
			}
			res, err := svc.Balance(ctx, balance.ModeLanes, r)

			Convey("Then each side fields all five lanes", func() {
				So(err, ShouldBeNil)
				for _, team := range []balance.Team{res.BlueTeam, res.RedTeam} {
					got := map[model.Lane]bool{}
					for _, m := range team {
						got[m.Lane] = true
					}
					So(len(got), ShouldEqual, 5)
				}
			})
		})

		Convey("When a player id is unknown", func() {
			r := refs(players)
			r[3].ID = "nobody"
			_, err := svc.Balance(ctx, balance.ModeBasic, r)

			Convey("Then the request fails with an unresolved player", func() {
				So(err, ShouldWrap, balance.ErrUnresolvedPlayer)
				So(err, ShouldWrap, repository.ErrPlayerNotFound)
			})
		})

		Convey("When a player is listed twice", func() {
			r := refs(players)
			r[9] = r[0]
			_, err := svc.Balance(ctx, balance.ModeBasic, r)

			Convey("Then the request fails as a duplicate", func() {
				So(err, ShouldWrap, balance.ErrDuplicatePlayer)
			})
		})

		Convey("When fewer than ten players are given", func() {
			_, err := svc.Balance(ctx, balance.ModeRank, refs(players[:9]))

			Convey("Then the request fails on player count", func() {
				So(err, ShouldWrap, balance.ErrInvalidPlayerCount)
			})
		})
	})
}

func TestService_SyncRiot(t *testing.T) {
	Convey("Given a service with a Riot client", t, func() {
		riot := &fakeRiot{
			acct: model.RiotAccount{PUUID: "puuid-1"},
			rank: &model.SoloRank{Tier: model.TierGold, Rank: model.DivisionII, LeaguePoints: 40},
		}
		svc, ctx, cancel := startService(service.WithRiotClient(riot))
		defer cancel()
		defer svc.Stop()

		Convey("When syncing a player with a Riot ID", func() {
			p, err := svc.CreatePlayer(ctx, "linked", "Linked", "EUW")
			So(err, ShouldBeNil)
			got, err := svc.SyncRiot(ctx, p.ID, "", "")

			Convey("Then the account and rank are stored", func() {
				So(err, ShouldBeNil)
				So(got.Riot.PUUID, ShouldEqual, "puuid-1")
				So(got.SoloRank, ShouldNotBeNil)
				So(got.SoloRank.Tier, ShouldEqual, model.TierGold)
			})
		})

		Convey("When the player has no Riot ID", func() {
			p, err := svc.CreatePlayer(ctx, "unlinked", "", "")
			So(err, ShouldBeNil)
			_, err = svc.SyncRiot(ctx, p.ID, "", "")

			Convey("Then the sync is refused without calling Riot", func() {
				So(err, ShouldWrap, service.ErrMissingRiotID)
				So(riot.calls, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a service without a Riot client", t, func() {
		svc, ctx, cancel := startService()
		defer cancel()
		defer svc.Stop()
		p, err := svc.CreatePlayer(ctx, "linked", "Linked", "EUW")
		So(err, ShouldBeNil)

		Convey("Then syncing reports the client as disabled", func() {
			_, err := svc.SyncRiot(ctx, p.ID, "", "")
			So(err, ShouldWrap, service.ErrRiotDisabled)
		})
	})
}

func TestService_SeenAndRecord(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx, cancel := startService()
		defer cancel()
		defer svc.Stop()

		Convey("When checking the same game ID twice", func() {
			first := svc.SeenAndRecord(ctx, "game-456")
			second := svc.SeenAndRecord(ctx, "game-456")

			Convey("Then only the second check reports it as seen", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
			})
		})

		Convey("When a game ID is unrecorded", func() {
			svc.SeenAndRecord(ctx, "game-789")
			svc.Unrecord(ctx, "game-789")

			Convey("Then it is accepted again", func() {
				So(svc.SeenAndRecord(ctx, "game-789"), ShouldBeFalse)
			})
		})
	})
}

func TestService_ValidateGame(t *testing.T) {
	Convey("Given a started service with ten players", t, func() {
		svc, ctx, cancel := startService()
		defer cancel()
		defer svc.Stop()
		players := createPlayers(ctx, svc, 10)

		Convey("When a game has no timestamp", func() {
			g := matchGame("g1", model.SideRed, players, time.Time{})
			err := svc.ValidateGame(ctx, &g)

			Convey("Then it is accepted and stamped", func() {
				So(err, ShouldBeNil)
				So(g.PlayedAt.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When a participant is not registered", func() {
			g := matchGame("g2", model.SideRed, players, time.Now())
			g.Participants[4].PlayerID = "ghost"

			Convey("Then validation fails with player not found", func() {
				So(svc.ValidateGame(ctx, &g), ShouldWrap, repository.ErrPlayerNotFound)
			})
		})

		Convey("When the winner is not a side", func() {
			g := matchGame("g3", "green", players, time.Now())

			Convey("Then validation fails with an invalid side", func() {
				So(svc.ValidateGame(ctx, &g), ShouldWrap, model.ErrInvalidSide)
			})
		})

		Convey("When only part of a match is reported", func() {
			g := matchGame("g4", model.SideBlue, players[:6], time.Now())

			Convey("Then validation fails with an invalid game", func() {
				So(svc.ValidateGame(ctx, &g), ShouldWrap, model.ErrInvalidGame)
			})
		})
	})
}

func TestService_Leaderboard(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx, cancel := startService()
		defer cancel()
		defer svc.Stop()

		Convey("When asking for a non-positive limit", func() {
			_, err := svc.TopN(ctx, 0)

			Convey("Then the limit is rejected", func() {
				So(err, ShouldWrap, service.ErrInvalidLimit)
			})
		})

		Convey("When asking for the rank of an unknown player", func() {
			_, err := svc.Rank(ctx, "nobody")

			Convey("Then it reports not found", func() {
				So(err, ShouldWrap, repository.ErrPlayerNotFound)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()

		Convey("When getting stats before starting", func() {
			stats := svc.GetStats()

			Convey("Then it should return basic stats", func() {
				So(stats, ShouldNotBeNil)
				So(stats["started"], ShouldEqual, false)
				So(stats, ShouldNotContainKey, "queueLength")
			})
		})

		Convey("When enqueueing before starting", func() {
			err := svc.Enqueue(context.Background(), model.Game{ID: "early"})

			Convey("Then it reports the service as not started", func() {
				So(err, ShouldWrap, service.ErrNotStarted)
			})
		})
	})
}
