package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/unisignals/internal/adapters/http/api"
	"github.com/okian/unisignals/internal/adapters/repository"
	"github.com/okian/unisignals/internal/domain/model"
	"github.com/okian/unisignals/internal/domain/signals"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDeps struct {
	submitted []model.MatchRequest
	submitErr error
	duplicate bool
	entries   map[string]repository.Entry
	topN      []repository.Entry
	lastN     int
}

func (m *mockDeps) Normalize(_ context.Context, in model.RawMatchInput) signals.UniversalSignals {
	return signals.Normalize(in)
}

func (m *mockDeps) Submit(_ context.Context, req model.MatchRequest) (api.Submission, error) {
	if m.submitErr != nil {
		return api.Submission{}, m.submitErr
	}
	m.submitted = append(m.submitted, req)
	id := req.MatchID
	if id == "" {
		id = "generated"
	}
	return api.Submission{MatchID: id, Duplicate: m.duplicate}, nil
}

func (m *mockDeps) Get(_ context.Context, id string) (repository.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return repository.Entry{}, fmt.Errorf("get %s: %w", id, repository.ErrNotFound)
	}
	return e, nil
}

func (m *mockDeps) TopN(_ context.Context, n int) ([]repository.Entry, error) {
	m.lastN = n
	if n > len(m.topN) {
		return m.topN, nil
	}
	return m.topN[:n], nil
}

type mockStats struct{}

func (mockStats) GetStats() map[string]any {
	return map[string]any{"queue_size": 3}
}

const dominantBody = `{"sport":"soccer","home_team":"Arsenal","away_team":"Luton",
"home_form":"WWWWW","away_form":"LLLLL",
"home_stats":{"played":10,"wins":10,"scored":20,"conceded":5},
"away_stats":{"played":10,"losses":10,"scored":5,"conceded":20}}`

func newTestServer(deps *mockDeps, opts ...api.Option) http.Handler {
	return api.NewServer(deps, mockStats{}, opts...).Handler()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(rec *httptest.ResponseRecorder) map[string]string {
	var out map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out
}

func TestNormalizeEndpoint(t *testing.T) {
	Convey("Given an API server", t, func() {
		h := newTestServer(&mockDeps{})

		Convey("When posting a valid match", func() {
			rec := do(h, http.MethodPost, "/v1/normalize", dominantBody)

			Convey("Then the full bundle is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldStartWith, "application/json")

				var out signals.UniversalSignals
				So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
				So(out.StrengthEdge, ShouldEqual, "Home +20%")
				So(out.ClarityScore, ShouldEqual, 100)
			})
		})

		Convey("When posting malformed JSON", func() {
			rec := do(h, http.MethodPost, "/v1/normalize", `{"sport":`)

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(rec)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When counters are negative", func() {
			rec := do(h, http.MethodPost, "/v1/normalize", `{"home_stats":{"played":-1}}`)

			Convey("Then the field is named in the error", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(rec)["message"], ShouldContainSubstring, "home_stats")
			})
		})

		Convey("When a form string carries more than five results", func() {
			rec := do(h, http.MethodPost, "/v1/normalize", `{"away_form":"WWWWWW"}`)

			Convey("Then it is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(rec)["message"], ShouldContainSubstring, "away_form")
			})
		})
	})
}

func TestSubmitEndpoint(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &mockDeps{}
		h := newTestServer(deps)

		Convey("When submitting a new match", func() {
			body := `{"match_id":"m-1",` + strings.TrimPrefix(dominantBody, "{")
			rec := do(h, http.MethodPost, "/v1/matches", body)

			Convey("Then it is accepted and forwarded", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(rec.Body.String(), ShouldContainSubstring, `"status":"accepted"`)
				So(deps.submitted, ShouldHaveLength, 1)
				So(deps.submitted[0].MatchID, ShouldEqual, "m-1")
				So(deps.submitted[0].Input.HomeTeam, ShouldEqual, "Arsenal")
			})
		})

		Convey("When the match was seen before", func() {
			deps.duplicate = true
			rec := do(h, http.MethodPost, "/v1/matches", dominantBody)

			Convey("Then the duplicate is acknowledged", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"duplicate":true`)
			})
		})

		Convey("When the queue is full", func() {
			deps.submitErr = fmt.Errorf("enqueue: %w", api.ErrBackpressure)
			rec := do(h, http.MethodPost, "/v1/matches", dominantBody)

			Convey("Then the client is told to back off", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decodeError(rec)["code"], ShouldEqual, "backpressure")
			})
		})

		Convey("When the service fails otherwise", func() {
			deps.submitErr = errors.New("boom")
			rec := do(h, http.MethodPost, "/v1/matches", dominantBody)

			Convey("Then it is an internal error", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestMatchesReadEndpoints(t *testing.T) {
	Convey("Given a server with stored matches", t, func() {
		bundle := signals.Normalize(model.RawMatchInput{
			Sport:     "soccer",
			HomeForm:  "WWWWW",
			AwayForm:  "LLLLL",
			HomeStats: model.TeamStats{Played: 10, Wins: 10, Scored: 20, Conceded: 5},
			AwayStats: model.TeamStats{Played: 10, Losses: 10, Scored: 5, Conceded: 20},
		})
		entry := repository.Entry{Rank: 1, MatchID: "m-1", Signals: bundle}
		deps := &mockDeps{
			entries: map[string]repository.Entry{"m-1": entry},
			topN:    []repository.Entry{entry, {Rank: 2, MatchID: "m-2"}},
		}
		h := newTestServer(deps, api.WithMaxListLimit(50))

		Convey("When fetching a known match", func() {
			rec := do(h, http.MethodGet, "/v1/matches/m-1", "")

			Convey("Then the entry is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var out repository.Entry
				So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
				So(out.MatchID, ShouldEqual, "m-1")
				So(out.Rank, ShouldEqual, 1)
			})
		})

		Convey("When fetching an unknown match", func() {
			rec := do(h, http.MethodGet, "/v1/matches/missing", "")

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(rec)["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When fetching the prompt labels", func() {
			rec := do(h, http.MethodGet, "/v1/matches/m-1/prompt", "")

			Convey("Then only the five labels come back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var out map[string]string
				So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
				So(len(out), ShouldEqual, 5)
				So(out["strength_edge"], ShouldEqual, "Home +20%")
			})
		})

		Convey("When listing without a limit", func() {
			rec := do(h, http.MethodGet, "/v1/matches", "")

			Convey("Then the default limit applies", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.lastN, ShouldEqual, 10)
			})
		})

		Convey("When listing with a limit", func() {
			rec := do(h, http.MethodGet, "/v1/matches?limit=1", "")

			Convey("Then at most that many entries come back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var out []repository.Entry
				So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
				So(out, ShouldHaveLength, 1)
			})
		})

		Convey("When the limit is invalid or too large", func() {
			for _, q := range []string{"0", "-2", "abc", "51"} {
				rec := do(h, http.MethodGet, "/v1/matches?limit="+q, "")
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			}
		})
	})
}

func TestServerRoutes(t *testing.T) {
	Convey("Given an API server", t, func() {
		h := newTestServer(&mockDeps{})

		Convey("Then /stats serves the provider's map", func() {
			rec := do(h, http.MethodGet, "/stats", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"queue_size":3`)
		})

		Convey("Then /healthz serves Prometheus metrics", func() {
			do(h, http.MethodGet, "/v1/matches", "")
			rec := do(h, http.MethodGet, "/healthz", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "http_requests_total")
		})

		Convey("Then unknown routes are JSON 404s", func() {
			rec := do(h, http.MethodGet, "/nope", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(rec)["code"], ShouldEqual, "not_found")
		})

		Convey("Then the stream route is absent unless configured", func() {
			rec := do(h, http.MethodGet, "/v1/stream", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then CORS preflight is answered", func() {
			req := httptest.NewRequest(http.MethodOptions, "/v1/normalize", nil)
			req.Header.Set("Origin", "http://example.com")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldNotBeEmpty)
		})
	})

	Convey("Given a server with a stream handler", t, func() {
		called := false
		h := newTestServer(&mockDeps{}, api.WithStream(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusNoContent)
		}))

		rec := do(h, http.MethodGet, "/v1/stream", "")
		So(called, ShouldBeTrue)
		So(rec.Code, ShouldEqual, http.StatusNoContent)
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a server limited to a burst of one", t, func() {
		h := newTestServer(&mockDeps{}, api.WithRateLimit(0.001, 1))

		first := do(h, http.MethodGet, "/v1/matches", "")
		second := do(h, http.MethodGet, "/v1/matches", "")

		Convey("Then the second request is throttled", func() {
			So(first.Code, ShouldEqual, http.StatusOK)
			So(second.Code, ShouldEqual, http.StatusTooManyRequests)
			So(second.Header().Get("Retry-After"), ShouldEqual, "1")
		})

		Convey("Then ops endpoints are not limited", func() {
			So(do(h, http.MethodGet, "/stats", "").Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestError(t *testing.T) {
	Convey("Given a kinded error wrapping a cause", t, func() {
		cause := errors.New("queue full")
		err := api.WrapKind("svc.submit", api.ErrBackpressure, cause)

		Convey("Then both the kind and cause match", func() {
			So(errors.Is(err, api.ErrBackpressure), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "svc.submit: backpressure: queue full")
		})
	})

	Convey("Wrap of nil is nil", t, func() {
		So(api.Wrap("op", nil), ShouldBeNil)
	})
}
