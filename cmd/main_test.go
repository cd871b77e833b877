package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/riftbalance/internal/config"
	"github.com/okian/riftbalance/internal/domain/balance"
	"github.com/okian/riftbalance/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	convey.Convey("Given RIFT_ environment variables", t, func() {
		t.Setenv("RIFT_ADDR", ":8081")
		t.Setenv("RIFT_QUEUE_SIZE", "1000")
		t.Setenv("RIFT_WORKER_COUNT", "4")
		t.Setenv("RIFT_STORAGE_DRIVER", "SQLite")

		convey.Convey("Then configuration should pick them up", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			convey.So(cfg.StorageDriver, convey.ShouldEqual, config.StorageSQLite)
		})
	})

	convey.Convey("Given an empty listen address", t, func() {
		t.Setenv("RIFT_ADDR", " ")

		convey.Convey("Then configuration loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestBuildService(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		cfg := config.New()
		cfg.WorkerCount = 2
		cfg.BalanceSeed = 7

		convey.Convey("When the service is built on the memory store", func() {
			svc, err := buildService(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then riot sync is reported as disabled", func() {
				convey.So(svc.GetStats()["riotEnabled"], convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the service is built on SQLite", func() {
			cfg.StorageDriver = config.StorageSQLite
			cfg.SQLitePath = filepath.Join(t.TempDir(), "nested", "rift.db")
			svc, err := buildService(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then the database file should exist", func() {
				_, err := os.Stat(cfg.SQLitePath)
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestServerEndToEnd(t *testing.T) {
	convey.Convey("Given a running server", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		cfg := config.New()
		cfg.WorkerCount = 2
		svc, err := buildService(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		ts := httptest.NewServer(newMux(ctx, svc, cfg))
		defer ts.Close()

		post := func(path, body string) *http.Response {
			resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
			convey.So(err, convey.ShouldBeNil)
			return resp
		}

		convey.Convey("When ten players register and are balanced", func() {
			ids := make([]string, 10)
			for i := range ids {
				resp := post("/players", fmt.Sprintf(`{"name":"p%d"}`, i))
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)
				var p struct {
					ID string `json:"id"`
				}
				convey.So(json.NewDecoder(resp.Body).Decode(&p), convey.ShouldBeNil)
				_ = resp.Body.Close()
				ids[i] = fmt.Sprintf(`{"id":%q}`, p.ID)
			}
			resp := post("/balance/rank", `{"players":[`+strings.Join(ids, ",")+`]}`)
			defer resp.Body.Close()

			convey.Convey("Then a rank-mode split is returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				var res balance.Result
				convey.So(json.NewDecoder(resp.Body).Decode(&res), convey.ShouldBeNil)
				convey.So(res.Mode, convey.ShouldEqual, balance.ModeRank)
				convey.So(len(res.BlueTeam)+len(res.RedTeam), convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When fetching the docs and metrics", func() {
			for _, path := range []string{"/api-docs", "/openapi.yaml", "/healthz", "/stats"} {
				resp, err := http.Get(ts.URL + path)
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			}
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background updaters", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		cfg := config.New()
		svc, err := buildService(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then they return once the context is done", func() {
			convey.So(func() {
				startSystemMetricsUpdater(ctx)
				startServiceMetricsUpdater(ctx, svc)
				updateSystemMetrics()
				updateServiceMetrics(svc)
			}, convey.ShouldNotPanic)
		})
	})
}
