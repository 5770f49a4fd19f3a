// Package main implements the insight HTTP server: a thin JSON API over
// the analysis engine for hosts that keep history elsewhere and post it
// per request.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mealwise/insight/pkg/histload"
	"github.com/mealwise/insight/pkg/insight"
	"github.com/mealwise/insight/pkg/recommend"
	"github.com/mealwise/insight/pkg/record"
)

var (
	addr     = flag.String("addr", ":8080", "Listen address (or set INSIGHT_ADDR)")
	cacheTTL = flag.Duration("cache-ttl", 10*time.Minute, "Report cache TTL; 0 disables caching")
	verbose  = flag.Bool("verbose", false, "Enable verbose logging")
)

// analyzeRequest is the shared request body: a full input bundle.
type analyzeRequest = histload.Bundle

type simulateRequest struct {
	histload.Bundle
	ActionType   string             `json:"actionType"`
	ActionParams map[string]float64 `json:"actionParams"`
}

type recommendRequest struct {
	histload.Bundle
	CurrentTime         string  `json:"currentTime"`  // "HH:MM"
	LastMealTime        string  `json:"lastMealTime"` // "HH:MM", optional
	HasTrainingToday    bool    `json:"hasTrainingToday"`
	TrainingTime        string  `json:"trainingTime,omitempty"`
	SleepHoursLastNight float64 `json:"sleepHoursLastNight,omitempty"`
}

type server struct {
	engine *insight.Engine
	logger *slog.Logger
}

func main() {
	flag.Parse()

	if env := os.Getenv("INSIGHT_ADDR"); env != "" && *addr == ":8080" {
		*addr = env
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []insight.Option{insight.WithLogger(logger)}
	if *cacheTTL > 0 {
		opts = append(opts, insight.WithCache(1024, *cacheTTL))
	}
	srv := &server{engine: insight.New(opts...), logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))

	r.Get("/healthz", srv.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", srv.analyze)
		r.Post("/simulate", srv.simulate)
		r.Post("/recommend", srv.recommend)
	})

	logger.Info("insight server listening", "addr", *addr)
	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}
	report := s.engine.Analyze(req.History, req.Profile, req.Products)
	writeJSON(w, http.StatusOK, report)
}

func (s *server) simulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ActionType == "" {
		httpError(w, http.StatusBadRequest, "actionType is required")
		return
	}
	result := s.engine.Simulate(req.ActionType, req.ActionParams, req.History, req.Profile, req.Products)
	writeJSON(w, http.StatusOK, result)
}

func (s *server) recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if !decode(w, r, &req) {
		return
	}
	now, ok := record.ParseClock(req.CurrentTime)
	if !ok {
		httpError(w, http.StatusBadRequest, "currentTime must be HH:MM")
		return
	}
	ctx := recommend.Context{
		CurrentTime:         now,
		LastMealTime:        -1,
		TrainingTime:        -1,
		HasTrainingToday:    req.HasTrainingToday,
		SleepHoursLastNight: req.SleepHoursLastNight,
	}
	if t, ok := record.ParseClock(req.LastMealTime); ok {
		ctx.LastMealTime = t
	}
	if t, ok := record.ParseClock(req.TrainingTime); ok {
		ctx.TrainingTime = t
	}
	rec := s.engine.Recommend(ctx, req.History, req.Profile, req.Products)
	writeJSON(w, http.StatusOK, rec)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
