// Package insight is the engine facade: it composes the phenotype
// classifier, the adaptive thresholds, the pattern detectors, the what-if
// simulator and the meal recommender behind one configured entry point.
package insight

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mealwise/insight/pkg/patterns"
	"github.com/mealwise/insight/pkg/phenotype"
	"github.com/mealwise/insight/pkg/recommend"
	"github.com/mealwise/insight/pkg/record"
	"github.com/mealwise/insight/pkg/resultcache"
	"github.com/mealwise/insight/pkg/thresholds"
	"github.com/mealwise/insight/pkg/whatif"
)

// Report is the full analysis output for one history.
type Report struct {
	GeneratedDays     int                `json:"generatedDays"` // history length analyzed
	BaseThresholds    thresholds.Set     `json:"baseThresholds"`
	AdaptedThresholds thresholds.Set     `json:"adaptedThresholds"`
	Phenotype         *phenotype.Profile `json:"phenotype"` // nil below 30 days
	Patterns          []patterns.Result  `json:"patterns"`
}

// Engine runs analyses. The zero value is not usable; construct with New.
// Engines are safe for concurrent use: every call works on its own inputs
// and allocates its own results.
type Engine struct {
	logger   *slog.Logger
	base     thresholds.Set
	cache    *resultcache.Cache
	cacheCap int
	cacheTTL time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the slog logger. Engine computation itself is silent;
// logging covers cache behavior and degraded classifications.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithBaseThresholds overrides the default base threshold table. The table
// is versioned configuration: swapping it changes every downstream score.
func WithBaseThresholds(base thresholds.Set) Option {
	return func(e *Engine) { e.base = base.Clone() }
}

// WithCache enables report caching with the given capacity and TTL.
// Caching is strictly a facade concern; detectors always recompute.
func WithCache(capacity int, ttl time.Duration) Option {
	return func(e *Engine) {
		e.cacheCap = capacity
		e.cacheTTL = ttl
	}
}

// New builds an Engine. Defaults: slog.Default(), the stock base
// thresholds, no cache.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.Default(),
		base:   thresholds.Base(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cacheCap > 0 {
		e.cache = resultcache.New(e.cacheCap, e.cacheTTL, e.logger)
	}
	return e
}

// Analyze produces the full report: phenotype (when 30+ days allow it),
// base and adapted thresholds, and every registered pattern result.
func (e *Engine) Analyze(history []record.DailyRecord, profile record.Profile, products record.ProductIndex) Report {
	if e.cache != nil {
		if key, err := resultcache.Key(history, profile, products, e.base); err == nil {
			if data, ok := e.cache.Get(key); ok {
				var cached Report
				if err := json.Unmarshal(data, &cached); err == nil {
					return cached
				}
			}
			report := e.analyze(history, profile, products)
			if data, err := json.Marshal(report); err == nil {
				e.cache.Set(key, data)
			}
			return report
		}
	}
	return e.analyze(history, profile, products)
}

func (e *Engine) analyze(history []record.DailyRecord, profile record.Profile, products record.ProductIndex) Report {
	ph := phenotype.AutoDetect(history, profile, products)
	if ph == nil {
		e.logger.Debug("phenotype skipped", "days", len(history), "required", phenotype.MinHistoryDays)
	} else if ph.Stress.Degraded {
		e.logger.Warn("stress classification degraded to neutral", "days", len(history))
	}

	adapted := thresholds.Adapt(e.base, ph.Multiplier())
	results := patterns.RunAll(patterns.Input{
		History:    history,
		Profile:    profile,
		Products:   products,
		Thresholds: adapted,
	})

	return Report{
		GeneratedDays:     len(history),
		BaseThresholds:    e.base.Clone(),
		AdaptedThresholds: adapted,
		Phenotype:         ph,
		Patterns:          results,
	}
}

// Simulate runs a what-if projection against the adapted thresholds for
// this history.
func (e *Engine) Simulate(actionType string, params map[string]float64,
	history []record.DailyRecord, profile record.Profile, products record.ProductIndex,
) whatif.Result {
	ph := phenotype.AutoDetect(history, profile, products)
	adapted := thresholds.Adapt(e.base, ph.Multiplier())
	return whatif.Simulate(actionType, params, history, profile, products, adapted)
}

// Recommend derives the next-meal recommendation for the given context.
func (e *Engine) Recommend(ctx recommend.Context, history []record.DailyRecord,
	profile record.Profile, products record.ProductIndex,
) recommend.Recommendation {
	ph := phenotype.AutoDetect(history, profile, products)
	adapted := thresholds.Adapt(e.base, ph.Multiplier())
	return recommend.Next(ctx, history, profile, products, adapted)
}
