package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/riftbalance/internal/adapters/http/api"
	"github.com/okian/riftbalance/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

// counter reads one sample of a counter family from the service registry.
func counter(name string, labels map[string]string) float64 {
	families, err := metrics.GetRegistry().Gather()
	So(err, ShouldBeNil)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, m := range f.GetMetric() {
			got := map[string]string{}
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func httpErrors(code string) float64 {
	return counter("riftbalance_errors_total", map[string]string{"component": "http", "error_type": code})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given handlers wrapped by the metrics middleware", t, func() {
		mux := newMux(newMockDeps())
		bare := api.MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}, "bare")

		Convey("When a player lookup misses", func() {
			before := httpErrors("player_not_found")
			requests := counter("riftbalance_http_requests_total",
				map[string]string{"endpoint": "player", "method": "GET", "status_code": "404"})
			w := do(mux, http.MethodGet, "/players/nobody", "")

			Convey("Then the failure is counted under its error code", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(httpErrors("player_not_found"), ShouldEqual, before+1)
				So(counter("riftbalance_http_requests_total",
					map[string]string{"endpoint": "player", "method": "GET", "status_code": "404"}), ShouldEqual, requests+1)
			})
		})

		Convey("When a handler fails without an error body", func() {
			before := httpErrors("server_error")
			w := httptest.NewRecorder()
			bare(w, httptest.NewRequest(http.MethodGet, "/bare", nil))

			Convey("Then it is counted by status class", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(httpErrors("server_error"), ShouldEqual, before+1)
			})
		})

		Convey("When a request succeeds", func() {
			before := httpErrors("player_not_found")
			w := do(mux, http.MethodGet, "/players/p1", "")

			Convey("Then no error is counted", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(httpErrors("player_not_found"), ShouldEqual, before)
			})
		})
	})
}
