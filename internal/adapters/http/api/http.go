// Package api exposes the normalization engine and the stored signals over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/okian/unisignals/internal/adapters/repository"
	"github.com/okian/unisignals/internal/domain/model"
	"github.com/okian/unisignals/internal/domain/signals"
)

const (
	defaultMaxListLimit = 100
	defaultListLimit    = 10
	maxFormResults      = 5
	maxBodyBytes        = 1 << 20
)

// Submission reports what happened to an asynchronous submission.
type Submission struct {
	MatchID   string
	Duplicate bool
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Normalize computes signals synchronously.
	Normalize(ctx context.Context, in model.RawMatchInput) signals.UniversalSignals

	// Submit queues a match for asynchronous normalization. It returns an
	// error wrapping ErrBackpressure when the queue cannot take it.
	Submit(ctx context.Context, req model.MatchRequest) (Submission, error)

	Get(ctx context.Context, matchID string) (repository.Entry, error)
	TopN(ctx context.Context, n int) ([]repository.Entry, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	normalizeHandler *NormalizeHandler
	matchesHandler   *MatchesHandler
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler

	stream      http.HandlerFunc
	corsOrigins []string
	limiter     *rate.Limiter
	maxLimit    int
}

// Option configures a Server.
type Option func(*Server)

// WithMaxListLimit caps GET /v1/matches?limit.
func WithMaxListLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithCORSOrigins restricts browser origins. Empty allows all.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithRateLimit limits /v1 requests to rps with the given burst. rps <= 0
// disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 && burst > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithStream mounts a websocket handler on GET /v1/stream.
func WithStream(h http.HandlerFunc) Option {
	return func(s *Server) {
		s.stream = h
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxLimit: defaultMaxListLimit}
	for _, opt := range opts {
		opt(s)
	}
	s.normalizeHandler = NewNormalizeHandler(deps)
	s.matchesHandler = NewMatchesHandler(deps, s.maxLimit)
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	return s
}

// Register attaches all routes to router.
func (s *Server) Register(router *mux.Router) {
	router.Use(MetricsMiddleware)

	router.HandleFunc("/healthz", s.healthHandler.HandleHealth).Methods(http.MethodGet)
	router.HandleFunc("/stats", s.statsHandler.HandleStats).Methods(http.MethodGet)

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.Use(RateLimitMiddleware(s.limiter))
	v1.HandleFunc("/normalize", s.normalizeHandler.HandleNormalize).Methods(http.MethodPost)
	v1.HandleFunc("/matches", s.matchesHandler.HandleSubmit).Methods(http.MethodPost)
	v1.HandleFunc("/matches", s.matchesHandler.HandleList).Methods(http.MethodGet)
	v1.HandleFunc("/matches/{id}", s.matchesHandler.HandleGet).Methods(http.MethodGet)
	v1.HandleFunc("/matches/{id}/prompt", s.matchesHandler.HandlePrompt).Methods(http.MethodGet)
	if s.stream != nil {
		v1.HandleFunc("/stream", s.stream).Methods(http.MethodGet)
	}
}

// Handler returns the full handler tree with CORS applied.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", NewKind("api.route", ErrNotFound))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", fmt.Errorf("%s not allowed", r.Method))
	})
	s.Register(router)

	origins := s.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         3600,
	})
	return c.Handler(router)
}

// matchRequest is the body of POST /v1/matches: the raw input plus an
// optional caller-chosen ID.
type matchRequest struct {
	MatchID string `json:"match_id"`
	model.RawMatchInput
}

func validateInput(in model.RawMatchInput) error {
	if err := validateStats("home_stats", in.HomeStats); err != nil {
		return err
	}
	if err := validateStats("away_stats", in.AwayStats); err != nil {
		return err
	}
	h := in.HeadToHead
	if h.Total < 0 || h.HomeWins < 0 || h.AwayWins < 0 || h.Draws < 0 {
		return fmt.Errorf("h2h: counters must not be negative")
	}
	if n := formResults(in.HomeForm); n > maxFormResults {
		return fmt.Errorf("home_form: at most %d results allowed, got %d", maxFormResults, n)
	}
	if n := formResults(in.AwayForm); n > maxFormResults {
		return fmt.Errorf("away_form: at most %d results allowed, got %d", maxFormResults, n)
	}
	return nil
}

func validateStats(field string, st model.TeamStats) error {
	if st.Played < 0 || st.Wins < 0 || st.Draws < 0 || st.Losses < 0 || st.Scored < 0 || st.Conceded < 0 {
		return fmt.Errorf("%s: counters must not be negative", field)
	}
	return nil
}

func formResults(form string) int {
	n := 0
	for _, r := range strings.ToUpper(form) {
		if r == 'W' || r == 'D' || r == 'L' {
			n++
		}
	}
	return n
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	MatchID   string `json:"match_id"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
